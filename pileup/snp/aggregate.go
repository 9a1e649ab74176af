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

// Package snp computes, for each candidate variant site, per-allele
// read-support statistics over the reads the overlap engine places in its
// window (spec.md §4.5). It is named after and grounded in
// grailbio/bio/pileup/snp, the closest available analog, though the
// statistics it computes -- RC/URC/URC26/URSC per {A,C,G,T} -- come from
// this tool's own source, not GRAIL's depth-tier columns.
package snp

import (
	"math"

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/encoding/variant"
	"github.com/grailbio/maqval/overlap"
	"github.com/grailbio/maqval/pileup"
)

// Opts configures the two behaviours spec.md §9 flags as open questions that
// must be preserved, selectable, and explicit rather than guessed.
type Opts struct {
	// QualCutoff is the minimum alignment mapping quality a read must carry
	// to be included in W' (spec.md §4.5 step 1).
	QualCutoff uint8
	// ComplementOnReverse makes base matching complement a reverse-strand
	// read's called base before comparing it to the allele under test,
	// matching an earlier source revision; the latest source (and this
	// aggregator's default) does not complement (spec.md §9).
	ComplementOnReverse bool
	// DedupPrefixLen is the sequence-prefix comparison length the duplicate
	// counter uses (spec.md §4.4); the historical default is 26.
	DedupPrefixLen int
	// LegacyDedup selects the coarse "keep at most one read per bucket"
	// duplicate policy (bl_find) instead of the sequence-prefix comparator
	// (spec.md §4.4 "historical note").
	LegacyDedup bool
}

// calledBase returns the base r calls at the variant position v.Begin, and
// whether it should be considered at all (false for an ambiguous call).
func calledBase(r *maqmap.Record, v *variant.Record, complementOnReverse bool) (pileup.Base, byte, bool) {
	offset := int(v.Begin - r.Begin())
	base, qual, ambiguous := r.BaseAt(offset)
	if ambiguous {
		return pileup.BaseX, 0, false
	}
	if complementOnReverse && r.Strand() == pileup.StrandReverse {
		base = pileup.ComplementBase(base)
	}
	return base, qual, true
}

// urc26Count implements spec.md §4.5's urc26: reads in which the variant
// position lies within 25 bases of their mapped 5' end, i.e. at read offset
// 0-25 (the first 26 bases).
func urc26Count(reads []maqmap.Record, v *variant.Record) uint32 {
	var n uint32
	for i := range reads {
		r := &reads[i]
		if r.Strand() == pileup.StrandReverse {
			if r.End()-25 <= v.Begin {
				n++
			}
		} else {
			if r.Begin()+25 >= v.Begin {
				n++
			}
		}
	}
	return n
}

// qualityStats returns (round(mean quality), max quality) over reads, or
// (0, 0) for an empty set (spec.md §4.5 step 2).
func qualityStats(quals []byte) (mean, max byte) {
	if len(quals) == 0 {
		return 0, 0
	}
	var total float64
	for _, q := range quals {
		total += float64(q)
		if q > max {
			max = q
		}
	}
	return byte(math.Round(total / float64(len(quals)))), max
}

// Aggregate computes one output Row for variant v given the overlap
// engine's window w and the reference allele refBase/refChar resolved by
// the reference oracle (spec.md §4.6).
func Aggregate(v *variant.Record, w *overlap.Window, refBase pileup.Base, refChar byte, opts Opts) (Row, error) {
	filtered := w.FilterOverlapping(opts.QualCutoff, v.End)

	row := Row{
		Line:    v.Line,
		RefBase: refBase,
		RefChar: refChar,
	}

	for b := pileup.Base(0); b < pileup.NBase; b++ {
		var matched []maqmap.Record
		var quals []byte
		for i := range filtered {
			r := &filtered[i]
			called, qual, ok := calledBase(r, v, opts.ComplementOnReverse)
			if !ok || called != b {
				continue
			}
			matched = append(matched, *r)
			quals = append(quals, qual)
		}
		row.RC[b] = uint32(len(matched))
		row.Q[b], row.MQ[b] = qualityStats(quals)
		row.URC[b] = uint32(dedupCount(matched, opts.DedupPrefixLen, opts.LegacyDedup))
		row.URC26[b] = urc26Count(matched, v)
		row.URSC[b] = uint32(distinctSeqCount(matched))
	}

	varBases, err := pileup.IUBBases(v.Var2)
	if err != nil {
		return Row{}, err
	}
	for _, b := range varBases {
		if b == refBase {
			continue
		}
		row.VarBases = append(row.VarBases, b)
	}
	return row, nil
}
