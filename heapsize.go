// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package winmd

// Heap bit positions within the stream header's HeapSizes byte, §II.24.2.6.
const (
	heapSizeStringBit = 0
	heapSizeGUIDBit   = 1
	heapSizeBlobBit   = 2
)

// heapSizeDescriptor gives the index width, in bytes, used for each of the
// three heaps a table row can reference. A width of 4 is indicated by the
// corresponding bit being set in HeapSizes; otherwise the width is 2.
type heapSizeDescriptor struct {
	stringIndexSize uint8
	guidIndexSize   uint8
	blobIndexSize   uint8
}

func newHeapSizeDescriptor(heapSizes uint8) heapSizeDescriptor {
	return heapSizeDescriptor{
		stringIndexSize: heapWidth(heapSizes, heapSizeStringBit),
		guidIndexSize:   heapWidth(heapSizes, heapSizeGUIDBit),
		blobIndexSize:   heapWidth(heapSizes, heapSizeBlobBit),
	}
}

func heapWidth(heapSizes uint8, bit uint) uint8 {
	if isBitSet(uint64(heapSizes), bit) {
		return 4
	}
	return 2
}

func (d heapSizeDescriptor) widthOf(h HeapKind) uint8 {
	switch h {
	case HeapString:
		return d.stringIndexSize
	case HeapGUID:
		return d.guidIndexSize
	case HeapBlob:
		return d.blobIndexSize
	default:
		return 2
	}
}

// isBitSet reports whether bit pos of n is set.
func isBitSet(n uint64, pos uint) bool {
	return n&(1<<pos) != 0
}
