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
package snp

import (
	"testing"

	"github.com/grailbio/testutil/assert"

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/pileup"
)

func seqByte(base byte, qual byte) byte {
	var code byte
	switch base {
	case 'A':
		code = 0
	case 'C':
		code = 1
	case 'G':
		code = 2
	case 'T':
		code = 3
	}
	return code<<6 | (qual & 0x3f)
}

func fillSeq(r *maqmap.Record, bases string, qual byte) {
	for i := 0; i < len(bases); i++ {
		r.Seq[i] = seqByte(bases[i], qual)
	}
}

func TestDedupCountCollapsesSharedPrefix(t *testing.T) {
	rec1 := maqmap.Record{Pos: 0, Size: 30, MapQual: 60}
	fillSeq(&rec1, "AAAAAAAAAAAAAAAAAAAAAAAAAACCCC", 30)
	rec1.Seq[pileup.MaxReadLen-1] = seqByte('A', 10)

	rec2 := maqmap.Record{Pos: 0, Size: 30, MapQual: 60}
	fillSeq(&rec2, "AAAAAAAAAAAAAAAAAAAAAAAAAAGGGG", 30)
	rec2.Seq[pileup.MaxReadLen-1] = seqByte('A', 40)

	n := dedupCount([]maqmap.Record{rec1, rec2}, 26, false)
	assert.Equal(t, 1, n)
}

func TestDedupCountKeepsDistinctPrefixes(t *testing.T) {
	rec1 := maqmap.Record{Pos: 0, Size: 30, MapQual: 60}
	fillSeq(&rec1, "AAAAAAAAAAAAAAAAAAAAAAAAAACCCC", 30)

	rec2 := maqmap.Record{Pos: 0, Size: 30, MapQual: 60}
	fillSeq(&rec2, "TTTTTTTTTTTTTTTTTTTTTTTTTTGGGG", 30)

	n := dedupCount([]maqmap.Record{rec1, rec2}, 26, false)
	assert.Equal(t, 2, n)
}

func TestDedupCountKeepsDifferentBucketsSeparate(t *testing.T) {
	rec1 := maqmap.Record{Pos: 0, Size: 10, MapQual: 60}
	fillSeq(&rec1, "AAAAAAAAAA", 30)

	rec2 := maqmap.Record{Pos: 40, Size: 10, MapQual: 60}
	fillSeq(&rec2, "AAAAAAAAAA", 30)

	n := dedupCount([]maqmap.Record{rec1, rec2}, 26, false)
	assert.Equal(t, 2, n)
}

func TestDedupCountLegacyModeCollapsesAnyHit(t *testing.T) {
	rec1 := maqmap.Record{Pos: 0, Size: 10, MapQual: 60}
	fillSeq(&rec1, "AAAAAAAAAA", 30)

	rec2 := maqmap.Record{Pos: 0, Size: 10, MapQual: 60}
	fillSeq(&rec2, "TTTTTTTTTT", 30)

	n := dedupCount([]maqmap.Record{rec1, rec2}, 26, true)
	assert.Equal(t, 1, n)
}

func TestDistinctSeqCount(t *testing.T) {
	rec1 := maqmap.Record{Pos: 0, Size: 4, MapQual: 60}
	fillSeq(&rec1, "AAAA", 30)
	rec2 := maqmap.Record{Pos: 0, Size: 4, MapQual: 60}
	fillSeq(&rec2, "AAAA", 30)
	rec3 := maqmap.Record{Pos: 0, Size: 4, MapQual: 60}
	fillSeq(&rec3, "CCCC", 30)

	n := distinctSeqCount([]maqmap.Record{rec1, rec2, rec3})
	assert.Equal(t, 2, n)
}
