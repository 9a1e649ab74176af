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

import "github.com/grailbio/maqval/pileup"

// AlleleStats is the six-number group spec.md §4.5 step 3 emits per allele:
// read count, deduped count, 5'-proximity count, distinct-sequence count,
// mean and max base quality.
type AlleleStats struct {
	RC, URC, URC26, URSC uint32
	Q, MQ                byte
}

// Row is everything needed to render one output line for one variant.
type Row struct {
	// Line is the verbatim candidate-site input line, passed through unchanged.
	Line string

	// RC, URC, URC26 and URSC are indexed by pileup.Base{A,C,G,T} and form the
	// four whole-window 4-tuples of spec.md §4.5 step 3.
	RC, URC, URC26, URSC [pileup.NBase]uint32
	Q, MQ                [pileup.NBase]byte

	// RefBase is the reference allele resolved by the reference oracle
	// (spec.md §4.6); BaseX means the oracle missed (spec.md §7 ReferenceMiss)
	// and the ref group is emitted as all zeros.
	RefBase pileup.Base
	RefChar byte

	// VarBases are the IUB-expanded alleles of the candidate site's variant
	// code (var2) that differ from RefBase, in §6 table order.
	VarBases []pileup.Base
}

func (r *Row) allele(b pileup.Base) AlleleStats {
	if b == pileup.BaseX {
		return AlleleStats{}
	}
	return AlleleStats{
		RC:    r.RC[b],
		URC:   r.URC[b],
		URC26: r.URC26[b],
		URSC:  r.URSC[b],
		Q:     r.Q[b],
		MQ:    r.MQ[b],
	}
}
