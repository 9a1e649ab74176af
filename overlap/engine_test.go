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
package overlap_test

import (
	"io"
	"testing"

	"github.com/grailbio/testutil/assert"

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/encoding/variant"
	"github.com/grailbio/maqval/overlap"
)

// fakeReads replays a fixed slice of records, honoring the same
// curSeqID/qualCutoff contract maqmap.Reader.Next does.
type fakeReads struct {
	recs []maqmap.Record
	i    int
}

func (f *fakeReads) Next(curSeqID uint32, qualCutoff uint8) (*maqmap.Record, error) {
	if f.i >= len(f.recs) {
		return nil, io.EOF
	}
	r := f.recs[f.i]
	if r.SeqID != curSeqID {
		return nil, io.EOF
	}
	f.i++
	if r.MapQual < qualCutoff {
		r.Pos = 0
	}
	return &r, nil
}

func read(seqID uint32, name string, begin int64, size uint8) maqmap.Record {
	return maqmap.Record{SeqID: seqID, Name: name, Pos: uint32(begin << 1), Size: size, MapQual: 60}
}

type fakeVariants struct {
	recs []variant.Record
	i    int
}

func (f *fakeVariants) Next(curSeqID uint32, refNames []string) (*variant.Record, error) {
	if f.i >= len(f.recs) {
		return nil, io.EOF
	}
	v := f.recs[f.i]
	if v.SeqID != curSeqID {
		return nil, io.EOF
	}
	f.i++
	return &v, nil
}

func site(seqID uint32, begin, end int64) variant.Record {
	return variant.Record{SeqID: seqID, Begin: begin, End: end}
}

func names(w *overlap.Window) []string {
	reads := w.Reads()
	out := make([]string, len(reads))
	for i := range reads {
		out[i] = reads[i].Name
	}
	return out
}

func TestRunSlidesWindowAcrossVariants(t *testing.T) {
	reads := &fakeReads{recs: []maqmap.Record{
		read(0, "A", 10, 6), // begin 10, end 15
		read(0, "B", 20, 6), // begin 20, end 25
		read(0, "C", 30, 6), // begin 30, end 35
	}}
	variants := &fakeVariants{recs: []variant.Record{
		site(0, 12, 12),
		site(0, 22, 22),
		site(0, 40, 40),
	}}

	var windows [][]string
	err := overlap.Run(reads, variants, nil, 0, 0, func(v *variant.Record, w *overlap.Window) error {
		windows = append(windows, names(w))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"B"}, {}}, windows)
}

func TestRunDropsLowMapQualReads(t *testing.T) {
	low := read(0, "low", 10, 6)
	low.MapQual = 0
	reads := &fakeReads{recs: []maqmap.Record{low}}
	variants := &fakeVariants{recs: []variant.Record{site(0, 12, 12)}}

	var got []string
	err := overlap.Run(reads, variants, nil, 0, 10, func(v *variant.Record, w *overlap.Window) error {
		got = names(w)
		return nil
	})
	assert.NoError(t, err)
	// qualCutoff=10 zeroes Pos on the fake reader, same as maqmap.Reader does;
	// begin moves to 0 and end to 5, so the read no longer overlaps v.
	assert.Equal(t, []string{}, got)
}

func TestRunPropagatesCallbackError(t *testing.T) {
	reads := &fakeReads{}
	variants := &fakeVariants{recs: []variant.Record{site(0, 1, 1)}}
	boom := io.ErrClosedPipe
	err := overlap.Run(reads, variants, nil, 0, 0, func(v *variant.Record, w *overlap.Window) error {
		return boom
	})
	assert.Equal(t, boom, err)
}
