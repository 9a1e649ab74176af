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

// Package pileup holds the base/strand vocabulary shared by every other
// package in this module: the encoding readers, the overlap engine, and the
// per-site aggregator all agree on the same Base enum and IUB expansion
// table defined here.
package pileup

import "github.com/pkg/errors"

// PosType is the integer type used to represent genomic positions.
type PosType = int64

// PosTypeMax is the maximum value representable by a PosType.
const PosTypeMax PosType = 1<<63 - 1

// Base enumerates the four regular nucleotide calls plus the ambiguous
// catch-all. The numeric values match the 2-bit packed encoding used on the
// wire by both the alignment and reference-genome readers (A=0, C=1, G=2,
// T=3).
type Base byte

const (
	BaseA Base = iota
	BaseC
	BaseG
	BaseT
	BaseX // ambiguous / N
)

// NBase is the number of regular (non-ambiguous) base types.
const NBase = 4

// NBaseEnum counts BaseX along with the regular base types.
const NBaseEnum = 5

// EnumToASCIITable is the Base -> ASCII mapping, with BaseX rendered as 'N'.
var EnumToASCIITable = [NBaseEnum]byte{'A', 'C', 'G', 'T', 'N'}

// MaxReadLen is the compile-time cap on read length carried over from the
// source format (MAXREADLEN, §3).
const MaxReadLen = 64

// StrandType describes which strand a read is mapped to.
type StrandType int

const (
	// StrandForward is the 5'->3' forward mapped strand.
	StrandForward StrandType = iota
	// StrandReverse is the reverse-complement mapped strand.
	StrandReverse
)

// ComplementBase returns the Watson-Crick complement of b. BaseX complements
// to itself.
func ComplementBase(b Base) Base {
	switch b {
	case BaseA:
		return BaseT
	case BaseC:
		return BaseG
	case BaseG:
		return BaseC
	case BaseT:
		return BaseA
	default:
		return BaseX
	}
}

// ErrUnrecognizedIUBCode is returned by IUBBases when the requested code is
// not one of the 15 recognized IUB ambiguity codes.
var ErrUnrecognizedIUBCode = errors.New("pileup: unrecognized IUB code")

// iubTable is the §6 IUB expansion table, keyed by uppercase ASCII code.
var iubTable = map[byte][]Base{
	'A': {BaseA},
	'C': {BaseC},
	'G': {BaseG},
	'T': {BaseT},
	'M': {BaseA, BaseC},
	'K': {BaseG, BaseT},
	'Y': {BaseC, BaseT},
	'R': {BaseA, BaseG},
	'W': {BaseA, BaseT},
	'S': {BaseC, BaseG},
	'D': {BaseA, BaseG, BaseT},
	'B': {BaseC, BaseG, BaseT},
	'H': {BaseA, BaseC, BaseT},
	'V': {BaseA, BaseC, BaseG},
	'N': {BaseA, BaseC, BaseG, BaseT},
}

// IUBBases expands an IUB ambiguity code (upper or lower case) into the set
// of bases it denotes, in the fixed order given in spec.md §6.
func IUBBases(code byte) ([]Base, error) {
	if code >= 'a' && code <= 'z' {
		code -= 'a' - 'A'
	}
	bases, ok := iubTable[code]
	if !ok {
		return nil, errors.Wrapf(ErrUnrecognizedIUBCode, "code %q", code)
	}
	return bases, nil
}

// BaseFromASCII converts an upper- or lower-case ACGT letter to its Base
// enum value, returning BaseX (and false) for anything else, including N.
func BaseFromASCII(c byte) (Base, bool) {
	switch c {
	case 'A', 'a':
		return BaseA, true
	case 'C', 'c':
		return BaseC, true
	case 'G', 'g':
		return BaseG, true
	case 'T', 't':
		return BaseT, true
	}
	return BaseX, false
}
