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
	"bytes"

	"github.com/spaolacci/murmur3"

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/pileup"
)

// dedupBuckets is the width of the position-indexed ring the duplicate
// counter buckets reads into (spec.md §4.4: "a ring of size 4*MAXREADLEN").
const dedupBuckets = 4 * pileup.MaxReadLen

// lowerCaseSeq renders a record's called bases as the lower-cased ACGT
// string original_source/.../ovsrc/dedup.c's get_read_lc produces: an
// ambiguous (zero) byte becomes 'n'.
func lowerCaseSeq(r *maqmap.Record) []byte {
	out := make([]byte, r.Size)
	for j := range out {
		b := r.Seq[j]
		if b == 0 {
			out[j] = 'n'
		} else {
			out[j] = "acgt"[b>>6&3]
		}
	}
	return out
}

// bucketIndex mirrors process_record's position computation: forward-strand
// reads bucket on pos, reverse-strand reads bucket on pos+2*size-2 (the
// record's packed Pos, not Begin -- the low strand bit is folded in exactly
// as the source does), modulo the ring width.
func bucketIndex(r *maqmap.Record) int {
	pos := int(r.Pos)
	if r.Pos&1 != 0 {
		pos += int(r.Size)*2 - 2
	}
	idx := pos % dedupBuckets
	if idx < 0 {
		idx += dedupBuckets
	}
	return idx
}

// findDup returns the index within bucket of a read judged a duplicate of
// rec, or -1. legacy selects the coarse "any read present is a hit" policy
// (bl_find); otherwise the prefix/suffix sequence comparator (bl_find_seq_comp)
// is used, comparing at most prefixLen bases from the 5' end of a forward
// read, or from the 3' end (the last prefixLen of the string) of a reverse
// read.
func findDup(bucket []maqmap.Record, rec *maqmap.Record, prefixLen int, legacy bool) int {
	if legacy {
		if len(bucket) >= 1 {
			return 0
		}
		return -1
	}
	recStr := lowerCaseSeq(rec)
	for i := range bucket {
		cand := &bucket[i]
		if cand.Size != rec.Size {
			continue
		}
		length := int(rec.Size)
		if prefixLen < length {
			length = prefixLen
		}
		if int(cand.Size) < length {
			length = int(cand.Size)
		}
		cmpStr := lowerCaseSeq(cand)
		offset := 0
		if rec.Pos&1 != 0 {
			offset = int(rec.Size) - length
		}
		if bytes.Equal(recStr[offset:offset+length], cmpStr[offset:offset+length]) {
			return i
		}
	}
	return -1
}

// dedupCount collapses reads believed to be PCR/optical duplicates of one
// another and returns the surviving count (spec.md §4.4). It is grounded in
// dedup_count/process_record: each read is bucketed by position, and on a
// duplicate hit the read with the greater quality byte at offset
// MaxReadLen-1 survives -- "a peculiar tie-breaker preserved from source"
// (spec.md §9), since shorter reads read undefined trailing bytes there.
func dedupCount(reads []maqmap.Record, prefixLen int, legacy bool) int {
	var buckets [dedupBuckets][]maqmap.Record
	for i := range reads {
		rec := &reads[i]
		idx := bucketIndex(rec)
		bucket := buckets[idx]
		if m := findDup(bucket, rec, prefixLen, legacy); m != -1 {
			if rec.Seq[pileup.MaxReadLen-1] > bucket[m].Seq[pileup.MaxReadLen-1] {
				bucket[m] = *rec
			}
		} else {
			buckets[idx] = append(bucket, *rec)
		}
	}
	total := 0
	for i := range buckets {
		total += len(buckets[i])
	}
	return total
}

// distinctSeqCount returns the number of distinct lower-cased sequence
// strings present in reads (spec.md §4.5 "ursc"). Sequences are hashed with
// murmur3 rather than kept as strings, matching firstread.go's use of
// murmur3 for its own read-identity set.
func distinctSeqCount(reads []maqmap.Record) int {
	seen := make(map[uint64]struct{}, len(reads))
	for i := range reads {
		seen[murmur3.Sum64(lowerCaseSeq(&reads[i]))] = struct{}{}
	}
	return len(seen)
}
