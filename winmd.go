// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

import (
	"github.com/saferwall/winmd/heap"
	"github.com/saferwall/winmd/pefile"
)

// Image is a fully opened .winmd/managed PE file: its tables stream,
// resolved, plus the four content heaps the tables' indices point into.
type Image struct {
	pe     *pefile.File
	Tables *Reader
	Heaps  heap.Heaps
}

// OpenOptions controls how Open and OpenBytes tolerate deviations from a
// strictly conformant tables stream.
type OpenOptions struct {
	AllowReservedMismatch bool
}

func (o *OpenOptions) readerOptions() *Options {
	if o == nil {
		return nil
	}
	return &Options{AllowReservedMismatch: o.AllowReservedMismatch}
}

// Open memory-maps the PE file at path, locates its CLR metadata, and
// decodes the tables stream. The returned Image must be closed when the
// caller is done with it.
func Open(path string, opts *OpenOptions) (*Image, error) {
	f, err := pefile.Open(path, nil)
	if err != nil {
		return nil, err
	}
	img, err := build(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return img, nil
}

// OpenBytes is Open for an in-memory PE image. data must not be modified
// for the Image's lifetime.
func OpenBytes(data []byte, opts *OpenOptions) (*Image, error) {
	f, err := pefile.OpenBytes(data, nil)
	if err != nil {
		return nil, err
	}
	return build(f, opts)
}

func build(f *pefile.File, opts *OpenOptions) (*Image, error) {
	md, err := f.ParseCLR()
	if err != nil {
		return nil, err
	}

	tables, err := NewReader(md.TablesBytes, opts.readerOptions())
	if err != nil {
		return nil, err
	}

	strings, _ := md.Stream("#Strings")
	us, _ := md.Stream("#US")
	guids, _ := md.Stream("#GUID")
	blobs, _ := md.Stream("#Blob")

	return &Image{
		pe:     f,
		Tables: tables,
		Heaps:  heap.New(strings, us, guids, blobs),
	}, nil
}

// Close releases the underlying PE file's resources.
func (img *Image) Close() error {
	return img.pe.Close()
}
