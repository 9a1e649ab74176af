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

// Writer encodes a maqmap stream. It exists primarily so that tests (in this
// package and in cmd/maqval) can build small synthetic .map
// fixtures without depending on an external tool to produce them.
type Writer struct {
	gz *gzip.Writer
}

// NewWriter creates a Writer that writes a gzip-framed maqmap stream to w,
// starting with a header naming refNames (index == seqid).
func NewWriter(w io.Writer, refNames []string) (*Writer, error) {
	gz := gzip.NewWriter(w)
	if err := binary.Write(gz, binary.LittleEndian, uint32(len(refNames))); err != nil {
		return nil, errors.Wrap(err, "maqmap: writing n_ref")
	}
	for _, name := range refNames {
		if err := binary.Write(gz, binary.LittleEndian, uint32(len(name))); err != nil {
			return nil, errors.Wrap(err, "maqmap: writing name length")
		}
		if _, err := gz.Write([]byte(name)); err != nil {
			return nil, errors.Wrap(err, "maqmap: writing name")
		}
	}
	if err := binary.Write(gz, binary.LittleEndian, uint64(0)); err != nil {
		return nil, errors.Wrap(err, "maqmap: writing n_mapped_reads")
	}
	return &Writer{gz: gz}, nil
}

// WriteRecord appends one alignment record to the stream.
func (w *Writer) WriteRecord(rec *Record) error {
	var buf [recordBytes]byte
	binary.LittleEndian.PutUint32(buf[0:4], rec.SeqID)
	binary.LittleEndian.PutUint32(buf[4:8], rec.Pos)
	buf[8] = rec.Size
	buf[9] = rec.MapQual
	copy(buf[10:10+pileup.MaxReadLen], rec.Seq[:])
	nameBytes := buf[10+pileup.MaxReadLen : 10+pileup.MaxReadLen+MaxNameLen]
	n := copy(nameBytes, rec.Name)
	for i := n; i < len(nameBytes); i++ {
		nameBytes[i] = 0
	}
	_, err := w.gz.Write(buf[:])
	return err
}

// Close flushes and closes the underlying gzip stream.
func (w *Writer) Close() error {
	return w.gz.Close()
}
