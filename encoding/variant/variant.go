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

// Package variant parses the candidate-SNV-site input ("location.tsv"):
// one whitespace-separated "name pos var1 var2" line per site, as described
// in spec.md §6.
package variant

import "github.com/grailbio/maqval/pileup"

// Record is one candidate variant site, parsed from one input line.
type Record struct {
	// SeqID is the contig index resolved against the alignment file's
	// contig-name table.
	SeqID uint32
	// Name is the contig name as it appeared in the input line.
	Name string
	// Begin and End are zero-based; End == Begin for the SNV case this tool
	// handles (spec.md §3).
	Begin, End pileup.PosType
	// Var1 is the reference IUB code, Var2 the variant IUB code.
	Var1, Var2 byte
	// Line is the verbatim input line (newline stripped), passed through to
	// output unchanged.
	Line string
}
