// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pefile

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/winmd/log"
)

// File is an open PE/COFF container, parsed just far enough to locate and
// return its CLR metadata.
type File struct {
	data mmap.MMap
	f    *os.File

	dos dosHeader
	nt  ntHeader

	sectionTableOffset uint32
	sections           []section

	mapped bool
	logger *log.Helper
}

// Options controls how a File is opened.
type Options struct {
	// Logger receives diagnostics about anomalies that do not prevent
	// locating the CLR metadata (a truncated data directory array, a
	// section whose VirtualSize is 0), and about a bad metadata signature or
	// a missing tables stream when ParseCLR fails on one. A nil Logger
	// defaults to a stderr logger filtered to LevelError.
	Logger log.Logger
}

func newLogger(opts *Options) *log.Helper {
	if opts != nil && opts.Logger != nil {
		return log.NewHelper(opts.Logger)
	}
	return log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelError)))
}

// Open memory-maps the file at name and parses its DOS/NT headers and
// section table.
func Open(name string, opts *Options) (*File, error) {
	osf, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(osf, mmap.RDONLY, 0)
	if err != nil {
		osf.Close()
		return nil, err
	}

	f := &File{data: data, f: osf, mapped: true, logger: newLogger(opts)}
	if err := f.parseHeaders(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// OpenBytes parses an in-memory PE image. The File does not take
// ownership of data's backing array; data must not be modified for the
// File's lifetime.
func OpenBytes(data []byte, opts *Options) (*File, error) {
	f := &File{data: mmap.MMap(data), logger: newLogger(opts)}
	if err := f.parseHeaders(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) parseHeaders() error {
	if err := f.parseDOSHeader(); err != nil {
		return err
	}
	if err := f.parseNTHeader(); err != nil {
		return err
	}
	return f.parseSectionHeaders()
}

// Close releases the memory mapping and underlying file handle, if any.
// A File opened with OpenBytes holds no OS resources and Close is a no-op.
func (f *File) Close() error {
	if f.mapped && f.data != nil {
		_ = f.data.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}
