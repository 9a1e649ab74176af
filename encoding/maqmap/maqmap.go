// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package maqmap decodes the legacy packed short-read alignment format
// ("in.map") this tool was built to annotate against. The format is a
// gzip-framed stream of a small header (contig count and names) followed by
// fixed-size alignment records sorted by (seqid, pos>>1).
//
// This package is the external collaborator spec.md §1 calls out as
// "specified only by the interfaces the core consumes"; encoding/maqmap is
// that interface's concrete implementation.
package maqmap

import (
	"github.com/grailbio/maqval/pileup"
)

// MaxNameLen bounds the read name field on the wire, matching the historical
// maq format's MAX_NAMELEN.
const MaxNameLen = 36

// recordBytes is the fixed on-wire size of one Record: 4 (SeqID) + 4 (Pos) +
// 1 (Size) + 1 (MapQual) + pileup.MaxReadLen (Seq) + MaxNameLen (Name).
const recordBytes = 4 + 4 + 1 + 1 + pileup.MaxReadLen + MaxNameLen

// Record is one short-read alignment. Fields mirror spec.md §3's "Alignment
// record": Pos packs the mapped strand into its low bit, and Seq packs a
// base call (top 2 bits) and quality (low 6 bits) per base, with a zero byte
// denoting an ambiguous (N) call.
type Record struct {
	SeqID   uint32
	Pos     uint32
	Size    uint8
	MapQual uint8
	Seq     [pileup.MaxReadLen]byte
	Name    string
}

// Begin returns the record's zero-based reference start position.
func (r *Record) Begin() pileup.PosType {
	return pileup.PosType(r.Pos >> 1)
}

// End returns the record's zero-based reference end position (inclusive).
func (r *Record) End() pileup.PosType {
	return r.Begin() + pileup.PosType(r.Size) - 1
}

// Strand returns the mapped strand, carried in Pos's low bit.
func (r *Record) Strand() pileup.StrandType {
	if r.Pos&1 != 0 {
		return pileup.StrandReverse
	}
	return pileup.StrandForward
}

// BaseAt returns the called base and its quality (0-63) at read offset off.
// A zero byte at that offset means an ambiguous (N) call.
func (r *Record) BaseAt(off int) (base pileup.Base, qual byte, ambiguous bool) {
	b := r.Seq[off]
	if b == 0 {
		return pileup.BaseX, 0, true
	}
	return pileup.Base(b >> 6 & 3), b & 0x3f, false
}

// Header describes the contig table an alignment stream is sorted and
// indexed against.
type Header struct {
	refNames []string
}

// RefNames returns the contig names in the order assigned by the alignment
// file (i.e. index == seqid).
func (h *Header) RefNames() []string { return h.refNames }

// NRef returns the number of contigs in the header.
func (h *Header) NRef() int { return len(h.refNames) }
