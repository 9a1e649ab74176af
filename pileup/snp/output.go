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
	"github.com/grailbio/base/tsv"

	"github.com/grailbio/maqval/pileup"
)

// writeTuple writes one statistic's per-base values (A,C,G,T) as one
// comma-separated TSV field,
// matching grailbio/bio/pileup/snp/output.go's WriteCsvUint32/EndCsv idiom.
func writeTuple(w *tsv.Writer, vals [pileup.NBase]uint32) {
	for _, v := range vals {
		w.WriteCsvUint32(v)
	}
	w.EndCsv()
}

func writeAlleleGroup(w *tsv.Writer, ch byte, s AlleleStats) {
	w.WriteByte(ch)
	w.WriteCsvUint32(s.RC)
	w.WriteCsvUint32(s.URC)
	w.WriteCsvUint32(s.URC26)
	w.WriteCsvUint32(s.URSC)
	w.WriteCsvUint32(uint32(s.Q))
	w.WriteCsvUint32(uint32(s.MQ))
	w.EndCsv()
}

// WriteTo renders one output line for row: the verbatim input line, the
// four whole-window tuples, the reference allele's group, and one group per
// distinct IUB-expanded variant allele (spec.md §4.5 step 3, §6 "Output").
func (r *Row) WriteTo(w *tsv.Writer) error {
	w.WriteString(r.Line)
	writeTuple(w, r.RC)
	writeTuple(w, r.URC)
	writeTuple(w, r.URC26)
	writeTuple(w, r.URSC)
	writeAlleleGroup(w, r.RefChar, r.allele(r.RefBase))
	for _, b := range r.VarBases {
		writeAlleleGroup(w, pileup.EnumToASCIITable[b], r.allele(b))
	}
	return w.EndLine()
}
