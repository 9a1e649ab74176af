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

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/encoding/variant"
)

// ReadSource produces alignment records for a single contig, in the shape
// maqmap.Reader implements: Next returns io.EOF once curSeqID's records are
// exhausted on this contig (or the file is exhausted).
type ReadSource interface {
	Next(curSeqID uint32, qualCutoff uint8) (*maqmap.Record, error)
}

// VariantSource produces candidate-site records for a single contig, in the
// shape variant.Reader implements.
type VariantSource interface {
	Next(curSeqID uint32, refNames []string) (*variant.Record, error)
}

// Callback is invoked once per variant with the set of reads overlapping it.
// Returning a non-nil error aborts the engine run.
type Callback func(v *variant.Record, w *Window) error

// Run drives the two-pointer join of spec.md §4.2 over a single contig
// (seqID). It returns nil when the variant stream is exhausted for this
// contig, or the first error encountered from either stream or the
// callback.
func Run(reads ReadSource, variants VariantSource, refNames []string, seqID uint32, qualCutoff uint8, callback Callback) error {
	w := &Window{}
	var heldBack *maqmap.Record

	for {
		v, err := variants.Next(seqID, refNames)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		w.evictBefore(v.Begin)

		for {
			var r *maqmap.Record
			if heldBack != nil {
				r = heldBack
				heldBack = nil
			} else {
				r, err = reads.Next(seqID, qualCutoff)
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
			}
			switch {
			case r.End() < v.Begin:
				// Read ends before the variant begins: past, drop it.
			case r.Begin() <= v.End:
				w.push(r)
			default:
				// Read begins past the variant's end: hold it back for the
				// next variant and stop loading.
				heldBack = r
			}
			if heldBack != nil {
				break
			}
		}

		if err := callback(v, w); err != nil {
			return err
		}

		// The held-back read didn't overlap this variant, but the window
		// keeps it around (spec.md §4.2: "if a look-ahead r was held back,
		// append it to window now") since it may overlap the next one.
		if heldBack != nil {
			w.push(heldBack)
			heldBack = nil
		}
	}
}
