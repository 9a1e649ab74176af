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
package variant

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/grailbio/maqval/pileup"
)

// ErrMalformedRecord is returned for a variant line that cannot be parsed
// into "name pos var1 var2" (spec.md §7).
var ErrMalformedRecord = errors.New("variant: malformed record")

// ErrUnknownContig is returned when a variant's contig name is not present
// in the alignment file's contig table (spec.md §7).
var ErrUnknownContig = errors.New("variant: unknown contig")

// Reader parses a location.tsv stream line by line.
type Reader struct {
	br *bufio.Reader

	// lastName/lastSeqID cache the most recently resolved contig name,
	// mirroring original_source/.../ovsrc/snplist.c's get_seqid() static
	// cache (spec.md §4.1).
	lastName  string
	lastSeqID uint32
	haveLast  bool

	// lookaheadLine holds a line already read from br but not yet consumed,
	// used when a seqid boundary forces a rewind (spec.md §4.1 "Variant
	// reader": "rewinds the file pointer by the line's length").
	lookaheadLine string
	haveLookahead bool
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

func (r *Reader) readLine() (string, error) {
	if r.haveLookahead {
		r.haveLookahead = false
		return r.lookaheadLine, nil
	}
	line, err := r.br.ReadString('\n')
	if err != nil && line == "" {
		return "", io.EOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// resolveSeqID maps a contig name to its index in refNames, caching the most
// recent lookup the way snplist.c's get_seqid does.
func (r *Reader) resolveSeqID(name string, refNames []string) (uint32, error) {
	if r.haveLast && r.lastName == name {
		return r.lastSeqID, nil
	}
	for i, n := range refNames {
		if n == name {
			r.lastName = name
			r.lastSeqID = uint32(i)
			r.haveLast = true
			return r.lastSeqID, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownContig, "%q", name)
}

func parseLine(line string) (name string, pos int64, var1, var2 byte, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return "", 0, 0, 0, errors.Wrapf(ErrMalformedRecord, "%q", line)
	}
	pos, err = strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, 0, 0, errors.Wrapf(ErrMalformedRecord, "%q", line)
	}
	if len(fields[2]) != 1 || len(fields[3]) != 1 {
		return "", 0, 0, 0, errors.Wrapf(ErrMalformedRecord, "%q", line)
	}
	return fields[0], pos, fields[2][0], fields[3][0], nil
}

// Next returns the next variant record belonging to curSeqID. Like
// maqmap.Reader.Next, it returns io.EOF once the stream is exhausted or once
// a parsed record's resolved seqid differs from curSeqID; in the latter case
// the line is held back (not the file position -- Go's bufio.Reader doesn't
// expose byte-precise seeks the way the C original's fseek() does, so the
// lookahead is kept in memory instead) so it is returned first on the next
// call with a matching curSeqID.
//
// refNames is the alignment file's contig-name table (index == seqid).
func (r *Reader) Next(curSeqID uint32, refNames []string) (*Record, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if line == "" {
		return r.Next(curSeqID, refNames)
	}
	name, pos, var1, var2, err := parseLine(line)
	if err != nil {
		// Malformed lines are skipped, not fatal (spec.md §7).
		return r.Next(curSeqID, refNames)
	}
	seqID, err := r.resolveSeqID(name, refNames)
	if err != nil {
		// A variant on a contig absent from the alignment file's contig
		// table is skipped, not fatal (spec.md §7 UnknownContig, §8 S6).
		return r.Next(curSeqID, refNames)
	}
	if seqID != curSeqID {
		r.lookaheadLine = line
		r.haveLookahead = true
		return nil, io.EOF
	}
	return &Record{
		SeqID: seqID,
		Name:  name,
		Begin: pileup.PosType(pos - 1),
		End:   pileup.PosType(pos - 1),
		Var1:  var1,
		Var2:  var2,
		Line:  line,
	}, nil
}
