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
package overlap

import (
	"io"
)

// Sync walks both streams contig by contig, in reference order, keeping
// reads and variants on the same seqID before handing each contig to Run
// (spec.md §4.3 "chromosome synchroniser"). It is grounded in
// original_source/.../ovsrc/ov.c's advance_seqid/init_seqid: both readers
// stop at a seqID boundary and only move on when asked for the next seqID, so
// nothing advances to the next contig automatically when one stream has no
// records there -- the synchroniser has to drain it explicitly.
type Sync struct {
	refNames []string
}

// NewSync creates a Sync over the given reference order. refNames must be
// the same slice (or an equal one) both encoding/maqmap.Header.RefNames and
// the variant file's contig names are resolved against, so that seqID means
// the same contig on both streams.
func NewSync(refNames []string) *Sync {
	return &Sync{refNames: refNames}
}

// Run processes every contig in reference order, invoking callback once per
// variant with the reads overlapping it (via Run). It returns the first
// error encountered from either stream or the callback.
func (s *Sync) Run(reads ReadSource, variants VariantSource, qualCutoff uint8, callback Callback) error {
	for seqID := range s.refNames {
		id := uint32(seqID)
		if err := Run(reads, variants, s.refNames, id, qualCutoff, callback); err != nil {
			return err
		}
		if err := drainReads(reads, id, qualCutoff); err != nil {
			return err
		}
	}
	return nil
}

// drainReads consumes any reads left over on seqID that Run didn't need --
// Run stops reading for a contig as soon as its variant stream is exhausted,
// which can leave trailing reads on that contig unconsumed. Those have to be
// pulled off before the reader will yield the next contig's first record.
func drainReads(reads ReadSource, seqID uint32, qualCutoff uint8) error {
	for {
		_, err := reads.Next(seqID, qualCutoff)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
