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

// Package refgenome decodes the packed reference genome ("bfa") this tool
// looks up reference bases from: a gzip-framed sequence of named contigs,
// each a 2-bit-per-base packed word array with a parallel definedness mask
// (spec.md §3, §4.6), grounded in original_source/.../ovsrc/ovc_test.c's
// get_ref_base/nst_load_bfa1.
package refgenome

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/maqval/pileup"
)

// Contig is one 2-bit-packed, mask-annotated reference sequence.
type Contig struct {
	Name string
	// Seq and Mask are word arrays of 32 packed bases each; Mask's bit pair
	// at a given base offset is zero iff that base is undefined ('N').
	Seq, Mask []uint64
	// Len is the contig length in bases.
	Len pileup.PosType
}

// Base returns the base at zero-based position pos, applying the §4.6
// word/mask/offset formula. pos must be < c.Len.
func (c *Contig) Base(pos pileup.PosType) byte {
	word := c.Seq[pos/32]
	mask := c.Mask[pos/32]
	offset := uint(31 - pos%32)
	if (mask>>(2*offset))&3 == 0 {
		return 'N'
	}
	return "ACGT"[(word>>(2*offset))&3]
}

// readContig decodes one contig record: a length-prefixed name, a base
// count, then ceil(count/32) packed words of Seq followed by the same number
// of Mask words.
func readContig(r io.Reader) (*Contig, error) {
	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, err // io.EOF (possibly io.ErrUnexpectedEOF) at a contig boundary is normal end-of-stream.
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, errors.Wrap(err, "refgenome: reading contig name")
	}
	var nBase uint64
	if err := binary.Read(r, binary.LittleEndian, &nBase); err != nil {
		return nil, errors.Wrap(err, "refgenome: reading contig length")
	}
	nWords := (nBase + 31) / 32
	seq := make([]uint64, nWords)
	mask := make([]uint64, nWords)
	if err := binary.Read(r, binary.LittleEndian, seq); err != nil {
		return nil, errors.Wrap(err, "refgenome: reading packed sequence")
	}
	if err := binary.Read(r, binary.LittleEndian, mask); err != nil {
		return nil, errors.Wrap(err, "refgenome: reading mask")
	}
	return &Contig{Name: string(nameBuf), Seq: seq, Mask: mask, Len: pileup.PosType(nBase)}, nil
}

// Source is a rewindable gzip-framed contig stream, used by Oracle to
// rescan the file on a cache miss.
type Source struct {
	newReader func() (io.ReadCloser, error)
}

// NewSource creates a Source that reopens the reference genome via newReader
// each time a full rescan is required.
func NewSource(newReader func() (io.ReadCloser, error)) *Source {
	return &Source{newReader: newReader}
}

func (s *Source) scan(name string) (*Contig, error) {
	rc, err := s.newReader()
	if err != nil {
		return nil, errors.Wrap(err, "refgenome: reopening reference genome")
	}
	defer rc.Close()
	gz, err := gzip.NewReader(rc)
	if err != nil {
		return nil, errors.Wrap(err, "refgenome: opening gzip stream")
	}
	defer gz.Close()
	for {
		c, err := readContig(gz)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, nil
			}
			return nil, err
		}
		if c.Name == name {
			return c, nil
		}
	}
}
