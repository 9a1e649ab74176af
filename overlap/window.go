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

// Package overlap implements the two-pointer join between a coordinate-
// sorted stream of reads and a coordinate-sorted stream of candidate variant
// sites (spec.md §4.2), plus the chromosome synchroniser that keeps the two
// streams on the same contig (spec.md §4.3).
//
// This is a direct generalisation of
// original_source/.../ovsrc/ov.c's fire_callback_for_overlaps: the C
// original dispatches through a pair of function-pointer "stream" objects so
// it can share one engine between (at least) reads and variants; since this
// package only ever joins exactly those two concrete types, two named
// interfaces are clearer Go than reconstructing that capability struct
// (spec.md §9).
package overlap

import (
	"github.com/grailbio/maqval/encoding/maqmap"
)

// Window is the ordered set of reads currently overlapping the active
// variant (spec.md §3 "Sliding window"). Order is insertion order, which --
// because the read stream is sorted by Begin -- is non-decreasing by Begin.
//
// Window is backed by a growable slice rather than the fixed-capacity ring
// buffer of the original source; spec.md §9 notes the ring is "an
// optimisation, not a correctness requirement", and a ring sized for the
// deepest expected pile-up degrades badly if a single read ever covers much
// of the chromosome.
type Window struct {
	reads []maqmap.Record
}

// NewWindow builds a Window directly from a slice of reads, in the given
// order. Useful for tests and for callers that already have a window's
// contents materialized outside the engine.
func NewWindow(reads []maqmap.Record) *Window {
	w := &Window{}
	for i := range reads {
		w.push(&reads[i])
	}
	return w
}

// Len returns the number of reads currently in the window.
func (w *Window) Len() int { return len(w.reads) }

// Reads returns the window's contents as a slice. The returned slice aliases
// the window's internal storage and is only valid until the next mutating
// call.
func (w *Window) Reads() []maqmap.Record { return w.reads }

func (w *Window) push(r *maqmap.Record) {
	w.reads = append(w.reads, *r)
}

// evictBefore removes every read from the front of the window whose End is
// strictly less than minBegin (spec.md §4.2 "evict from the front of window
// every read r for which r.end < v.begin").
func (w *Window) evictBefore(minBegin int64) {
	i := 0
	for i < len(w.reads) && w.reads[i].End() < minBegin {
		i++
	}
	if i > 0 {
		w.reads = append(w.reads[:0], w.reads[i:]...)
	}
}

// FilterOverlapping returns the reads that actually belong in W' for a
// variant ending at maxEnd: those meeting qualCutoff, minus any trailing
// entries whose Begin now exceeds maxEnd (possible because only Begin is
// guaranteed sorted, spec.md §4.2 "Tie-break and edge policies"; spec.md
// §4.5 step 1). It does not mutate the window -- a read dropped for this
// variant may still overlap a later one.
func (w *Window) FilterOverlapping(qualCutoff uint8, maxEnd int64) []maqmap.Record {
	end := len(w.reads)
	for end > 0 && w.reads[end-1].Begin() > maxEnd {
		end--
	}
	out := make([]maqmap.Record, 0, end)
	for i := 0; i < end; i++ {
		if w.reads[i].MapQual >= qualCutoff {
			out = append(out, w.reads[i])
		}
	}
	return out
}
