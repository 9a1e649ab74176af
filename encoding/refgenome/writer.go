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
package refgenome

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/maqval/pileup"
)

// PackSeq packs an ASCII ACGTN sequence into the Seq/Mask word arrays Contig
// expects. Any byte other than A/C/G/T (case-insensitive) is treated as
// undefined ('N'): its mask bits stay zero.
func PackSeq(seq []byte) (words, mask []uint64) {
	nWords := (len(seq) + 31) / 32
	words = make([]uint64, nWords)
	mask = make([]uint64, nWords)
	for i, c := range seq {
		b, ok := pileup.BaseFromASCII(c)
		if !ok {
			continue
		}
		word := i / 32
		offset := uint(31 - i%32)
		words[word] |= uint64(b) << (2 * offset)
		mask[word] |= uint64(3) << (2 * offset)
	}
	return
}

// WriteContigs writes a gzip-framed bfa stream containing the given
// name/sequence pairs, for use by tests that need a synthetic reference
// genome fixture.
func WriteContigs(w io.Writer, seqs map[string][]byte, order []string) error {
	gz := gzip.NewWriter(w)
	for _, name := range order {
		seq := seqs[name]
		words, mask := PackSeq(seq)
		if err := binary.Write(gz, binary.LittleEndian, uint32(len(name))); err != nil {
			return errors.Wrap(err, "refgenome: writing name length")
		}
		if _, err := gz.Write([]byte(name)); err != nil {
			return errors.Wrap(err, "refgenome: writing name")
		}
		if err := binary.Write(gz, binary.LittleEndian, uint64(len(seq))); err != nil {
			return errors.Wrap(err, "refgenome: writing contig length")
		}
		if err := binary.Write(gz, binary.LittleEndian, words); err != nil {
			return errors.Wrap(err, "refgenome: writing packed sequence")
		}
		if err := binary.Write(gz, binary.LittleEndian, mask); err != nil {
			return errors.Wrap(err, "refgenome: writing mask")
		}
	}
	return gz.Close()
}
