// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pefile

import "testing"

func TestParseCLRHappyPath(t *testing.T) {
	data := buildTestImage(testImageOptions{})
	f, err := OpenBytes(data, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	md, err := f.ParseCLR()
	if err != nil {
		t.Fatalf("ParseCLR: %v", err)
	}
	if md.TablesName != "#~" {
		t.Errorf("TablesName = %q, want \"#~\"", md.TablesName)
	}
	if len(md.TablesBytes) != 24 {
		t.Errorf("TablesBytes = %d bytes, want 24", len(md.TablesBytes))
	}
	if md.VersionStr != "v4.0.30319" {
		t.Errorf("VersionStr = %q, want \"v4.0.30319\"", md.VersionStr)
	}
	if _, ok := md.Stream("#nonexistent"); ok {
		t.Error("Stream(#nonexistent) reported present")
	}
}

func TestParseCLRMissingDirectory(t *testing.T) {
	data := buildTestImage(testImageOptions{omitCLRDirectory: true})
	f, err := OpenBytes(data, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	if _, err := f.ParseCLR(); err != ErrNoCLRHeader {
		t.Fatalf("got %v, want ErrNoCLRHeader", err)
	}
}

func TestParseCLRBadMetadataSignature(t *testing.T) {
	data := buildTestImage(testImageOptions{corruptMetadataSig: true})
	f, err := OpenBytes(data, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	if _, err := f.ParseCLR(); err != ErrMetadataSignatureMismatch {
		t.Fatalf("got %v, want ErrMetadataSignatureMismatch", err)
	}
}

func TestParseCLRAlternateStreamName(t *testing.T) {
	stream := make([]byte, 24)
	stream[4], stream[7] = 2, 1
	data := buildTestImage(testImageOptions{tablesStream: stream, tablesStreamName: "#-"})
	f, err := OpenBytes(data, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	md, err := f.ParseCLR()
	if err != nil {
		t.Fatalf("ParseCLR: %v", err)
	}
	if md.TablesName != "#-" {
		t.Errorf("TablesName = %q, want \"#-\"", md.TablesName)
	}
}

func TestOpenBytesRejectsBadDOSMagic(t *testing.T) {
	data := buildTestImage(testImageOptions{badDOSMagic: true})
	if _, err := OpenBytes(data, nil); err != ErrDOSMagicNotFound {
		t.Fatalf("got %v, want ErrDOSMagicNotFound", err)
	}
}
