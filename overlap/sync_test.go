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
	"testing"

	"github.com/grailbio/testutil/assert"

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/encoding/variant"
	"github.com/grailbio/maqval/overlap"
)

func TestSyncSkipsContigsWithNoVariants(t *testing.T) {
	// contig 0 has reads but no variants; contig 1 has both.
	reads := &fakeReads{recs: []maqmap.Record{
		read(0, "c0-read", 5, 6),
		read(1, "c1-read", 5, 6),
	}}
	variants := &fakeVariants{recs: []variant.Record{
		site(1, 6, 6),
	}}

	var got [][]string
	s := overlap.NewSync([]string{"c0", "c1"})
	err := s.Run(reads, variants, 0, func(v *variant.Record, w *overlap.Window) error {
		got = append(got, names(w))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{"c1-read"}}, got)
	// both reads must have been drained, including contig 0's unused one.
	assert.Equal(t, 2, reads.i)
}

func TestSyncSkipsContigsWithNoReads(t *testing.T) {
	reads := &fakeReads{recs: []maqmap.Record{
		read(1, "c1-read", 5, 6),
	}}
	variants := &fakeVariants{recs: []variant.Record{
		site(0, 1, 1),
		site(1, 6, 6),
	}}

	var got [][]string
	s := overlap.NewSync([]string{"c0", "c1"})
	err := s.Run(reads, variants, 0, func(v *variant.Record, w *overlap.Window) error {
		got = append(got, names(w))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{}, {"c1-read"}}, got)
}
