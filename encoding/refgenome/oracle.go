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
package refgenome

import (
	"github.com/grailbio/base/log"

	"github.com/grailbio/maqval/pileup"
)

// Oracle answers "what base is at (contig, position)", caching the single
// most recently used contig (spec.md §4.6, §5 "the reference cache holds
// exactly one contig").
type Oracle struct {
	src *Source

	cached *Contig
	misses int

	// missedName caches the name of the most recent contig that scan()
	// failed to find, mirroring the C original's get_ref_base (last_bfa1 is
	// set to NULL, and last_seqid to seqid, even on a miss) so repeated
	// lookups for the same absent contig don't re-scan the whole .bfa file.
	missedName string
	haveMissed bool
}

// NewOracle creates an Oracle backed by src.
func NewOracle(src *Source) *Oracle {
	return &Oracle{src: src}
}

// Base returns the reference base at (name, pos), or 'N' if the contig
// cannot be found (spec.md §7 ReferenceMiss) or pos is out of range.
func (o *Oracle) Base(name string, pos pileup.PosType) byte {
	if o.haveMissed && o.missedName == name {
		o.misses++
		return 'N'
	}
	if o.cached == nil || o.cached.Name != name {
		c, err := o.src.scan(name)
		if err != nil {
			log.Error.Printf("refgenome: scanning for contig %q: %v", name, err)
			o.missedName, o.haveMissed = name, true
			o.misses++
			return 'N'
		}
		if c == nil {
			o.missedName, o.haveMissed = name, true
			o.misses++
			return 'N'
		}
		o.cached = c
		o.haveMissed = false
	}
	if pos < 0 || pos >= o.cached.Len {
		o.misses++
		return 'N'
	}
	return o.cached.Base(pos)
}

// Misses returns the number of reference lookups that fell back to 'N'
// because the requested contig (or position) could not be found.
func (o *Oracle) Misses() int { return o.misses }
