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
package maqmap_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/grailbio/testutil/assert"

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/pileup"
)

func writeFixture(t *testing.T, refNames []string, recs []*maqmap.Record) []byte {
	var buf bytes.Buffer
	w, err := maqmap.NewWriter(&buf, refNames)
	assert.NoError(t, err)
	for _, r := range recs {
		assert.NoError(t, w.WriteRecord(r))
	}
	assert.NoError(t, w.Close())
	return buf.Bytes()
}

func TestHeaderRoundTrip(t *testing.T) {
	data := writeFixture(t, []string{"c1", "c2"}, nil)
	r, err := maqmap.NewReader(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Header().NRef())
	assert.Equal(t, []string{"c1", "c2"}, r.Header().RefNames())
}

func TestNextStopsAtSeqIDBoundary(t *testing.T) {
	recs := []*maqmap.Record{
		{SeqID: 0, Pos: 0 << 1, Size: 10, MapQual: 30, Name: "r1"},
		{SeqID: 0, Pos: 5 << 1, Size: 10, MapQual: 30, Name: "r2"},
		{SeqID: 1, Pos: 0 << 1, Size: 10, MapQual: 30, Name: "r3"},
	}
	data := writeFixture(t, []string{"c1", "c2"}, recs)
	r, err := maqmap.NewReader(bytes.NewReader(data))
	assert.NoError(t, err)

	rec, err := r.Next(0, 0)
	assert.NoError(t, err)
	assert.Equal(t, "r1", rec.Name)

	rec, err = r.Next(0, 0)
	assert.NoError(t, err)
	assert.Equal(t, "r2", rec.Name)

	_, err = r.Next(0, 0)
	assert.Equal(t, io.EOF, err)

	rec, err = r.Next(1, 0)
	assert.NoError(t, err)
	assert.Equal(t, "r3", rec.Name)

	_, err = r.Next(1, 0)
	assert.Equal(t, io.EOF, err)
}

func TestLowMapQualZeroesPos(t *testing.T) {
	recs := []*maqmap.Record{
		{SeqID: 0, Pos: 40 << 1, Size: 10, MapQual: 5, Name: "lowq"},
	}
	data := writeFixture(t, []string{"c1"}, recs)
	r, err := maqmap.NewReader(bytes.NewReader(data))
	assert.NoError(t, err)

	rec, err := r.Next(0, 20)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), rec.Pos)
}

func TestBeginEndStrand(t *testing.T) {
	fwd := &maqmap.Record{Pos: 10 << 1, Size: 5}
	assert.Equal(t, int64(10), fwd.Begin())
	assert.Equal(t, int64(14), fwd.End())
	assert.Equal(t, pileup.StrandForward, fwd.Strand())

	rev := &maqmap.Record{Pos: (10 << 1) | 1, Size: 5}
	assert.Equal(t, int64(10), rev.Begin())
	assert.Equal(t, pileup.StrandReverse, rev.Strand())
}
