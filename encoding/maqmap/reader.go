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
package maqmap

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/maqval/pileup"
)

// Reader decodes a gzip-framed maqmap stream. It holds a one-slot lookahead
// buffer for the record decoded past the current contig's end, which Next
// returns first once it is asked for that record's contig (spec.md §9,
// "cyclic look-ahead").
type Reader struct {
	src      io.Reader
	gz       *gzip.Reader
	header   Header
	lookahead *Record
	buf      [recordBytes]byte
}

// NewReader reads the maqmap header off r and returns a Reader positioned at
// the first alignment record.
func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "maqmap: opening gzip stream")
	}
	rd := &Reader{src: r, gz: gz}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

// Close releases the underlying gzip reader.
func (r *Reader) Close() error {
	return r.gz.Close()
}

// Header returns the contig table decoded from the stream preamble.
func (r *Reader) Header() *Header { return &r.header }

func (r *Reader) readHeader() error {
	var nRef uint32
	if err := binary.Read(r.gz, binary.LittleEndian, &nRef); err != nil {
		return errors.Wrap(err, "maqmap: reading n_ref")
	}
	names := make([]string, nRef)
	for i := range names {
		var nameLen uint32
		if err := binary.Read(r.gz, binary.LittleEndian, &nameLen); err != nil {
			return errors.Wrapf(err, "maqmap: reading name length for ref %d", i)
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(r.gz, nameBuf); err != nil {
			return errors.Wrapf(err, "maqmap: reading name for ref %d", i)
		}
		names[i] = string(nameBuf)
	}
	// n_mapped_reads is carried in the header for parity with the legacy
	// format, but this reader doesn't need a record count: it relies on
	// io.EOF / a short final read instead (§7 "truncated final record").
	var nMappedReads uint64
	if err := binary.Read(r.gz, binary.LittleEndian, &nMappedReads); err != nil {
		return errors.Wrap(err, "maqmap: reading n_mapped_reads")
	}
	r.header.refNames = names
	return nil
}

func (r *Reader) decodeOne() (*Record, error) {
	if _, err := io.ReadFull(r.gz, r.buf[:]); err != nil {
		// A short read here (including io.EOF and io.ErrUnexpectedEOF) is a
		// truncated final record; spec.md §7 folds MalformedRecord into
		// end-of-stream for this case.
		return nil, io.EOF
	}
	rec := &Record{}
	rec.SeqID = binary.LittleEndian.Uint32(r.buf[0:4])
	rec.Pos = binary.LittleEndian.Uint32(r.buf[4:8])
	rec.Size = r.buf[8]
	rec.MapQual = r.buf[9]
	copy(rec.Seq[:], r.buf[10:10+pileup.MaxReadLen])
	nameBytes := r.buf[10+pileup.MaxReadLen : 10+pileup.MaxReadLen+MaxNameLen]
	nameLen := 0
	for nameLen < len(nameBytes) && nameBytes[nameLen] != 0 {
		nameLen++
	}
	rec.Name = string(nameBytes[:nameLen])
	return rec, nil
}

// Next returns the next alignment record belonging to curSeqID. It returns
// io.EOF once the underlying stream is exhausted, or once a decoded record's
// SeqID differs from curSeqID -- in the latter case the record is retained
// in the reader's lookahead slot and is returned on the next call to Next
// with a matching curSeqID (spec.md §4.1 "Alignment reader").
//
// Records whose MapQual is below qualCutoff have their Pos zeroed before
// being returned, so that they sort to the window's head and are evicted
// almost immediately; this is the documented behaviour preserved from
// original_source/.../ovsrc/ovc_test.c's next_r.
func (r *Reader) Next(curSeqID uint32, qualCutoff uint8) (*Record, error) {
	rec := r.lookahead
	r.lookahead = nil
	if rec == nil {
		var err error
		rec, err = r.decodeOne()
		if err != nil {
			return nil, err
		}
	}
	if rec.SeqID != curSeqID {
		r.lookahead = rec
		return nil, io.EOF
	}
	if rec.MapQual < qualCutoff {
		rec.Pos = 0
	}
	return rec, nil
}
