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
package main

/*
maqval annotates a list of candidate SNV sites with per-allele read-support
statistics drawn from a packed short-read alignment file, the way the
historical maq "ovsrc" tool did (spec.md §1).
*/

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/maqval/encoding/maqmap"
	"github.com/grailbio/maqval/encoding/refgenome"
	"github.com/grailbio/maqval/encoding/variant"
	"github.com/grailbio/maqval/overlap"
	"github.com/grailbio/maqval/pileup"
	"github.com/grailbio/maqval/pileup/snp"
)

const defaultRefEnv = "MAQVAL_REF"

var (
	refPath        = flag.String("ref", "", "Packed reference genome (.bfa) path; falls back to the "+defaultRefEnv+" environment variable")
	legacyDedup    = flag.Bool("legacy-dedup", false, "Use the coarse bucket-only duplicate policy instead of the sequence-prefix comparator")
	complementRev  = flag.Bool("complement-reverse", false, "Complement a reverse-strand read's called base before matching it against an allele")
	dedupPrefixLen = flag.Int("dedup-prefix-len", 26, "Sequence-prefix length the duplicate counter compares")
	listContigs    = flag.Bool("list-contigs", false, "Print the alignment file's contig table and exit, without running a pileup")
)

func maqvalUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] <in.map> <location.tsv> <quality> [output]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = maqvalUsage
	shutdown := grail.Init()
	defer shutdown()

	allArgs := flag.Args()
	nPositionalArgs := flag.NArg()
	positionalArgs := allArgs[len(allArgs)-nPositionalArgs:]

	if *listContigs {
		if nPositionalArgs != 1 {
			log.Fatalf("-list-contigs takes exactly one positional argument (<in.map>); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		}
		if err := listContigNames(vcontext.Background(), positionalArgs[0]); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if nPositionalArgs < 3 {
		log.Fatalf("Missing positional arguments (<in.map> <location.tsv> <quality> required); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
	}
	if nPositionalArgs > 4 {
		log.Fatalf("Too many positional arguments (only <in.map> <location.tsv> <quality> [output] expected); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
	}

	quality, err := strconv.ParseUint(positionalArgs[2], 10, 8)
	if err != nil {
		log.Fatalf("quality %q is not a valid mapping-quality cutoff: %v", positionalArgs[2], err)
	}

	ref := *refPath
	if ref == "" {
		ref = os.Getenv(defaultRefEnv)
	}
	if ref == "" {
		log.Fatalf("no reference genome given (-ref, or the %s environment variable)", defaultRefEnv)
	}

	outPath := "-"
	if nPositionalArgs == 4 {
		outPath = positionalArgs[3]
	}

	ctx := vcontext.Background()
	opts := snp.Opts{
		QualCutoff:          uint8(quality),
		ComplementOnReverse: *complementRev,
		DedupPrefixLen:      *dedupPrefixLen,
		LegacyDedup:         *legacyDedup,
	}
	if err := run(ctx, positionalArgs[0], positionalArgs[1], ref, outPath, opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}

// readCloserFromFile adapts grailbio/base/file's (Reader(ctx), Close(ctx))
// pair to the plain io.ReadCloser refgenome.NewSource needs to reopen the
// reference genome on every cache miss (spec.md §4.6, §5).
type readCloserFromFile struct {
	ctx context.Context
	f   file.File
}

func (r readCloserFromFile) Read(p []byte) (int, error) { return r.f.Reader(r.ctx).Read(p) }
func (r readCloserFromFile) Close() error               { return r.f.Close(r.ctx) }

// listContigNames prints the alignment file's contig table, one name per
// line, recovered from original_source/.../ovsrc/dedup.c's print_ref_names
// (spec.md's supplemented features).
func listContigNames(ctx context.Context, mapPath string) (err error) {
	mapFile, err := file.Open(ctx, mapPath)
	if err != nil {
		return errors.E(err, "maqval: opening alignment file", mapPath)
	}
	defer file.CloseAndReport(ctx, mapFile, &err)

	reads, err := maqmap.NewReader(mapFile.Reader(ctx))
	if err != nil {
		return errors.E(err, "maqval: reading alignment header", mapPath)
	}
	defer reads.Close()

	for _, name := range reads.Header().RefNames() {
		fmt.Println(name)
	}
	return nil
}

func run(ctx context.Context, mapPath, locPath, refGenomePath, outPath string, opts snp.Opts) (err error) {
	var closeErr errors.Once

	mapFile, err := file.Open(ctx, mapPath)
	if err != nil {
		return errors.E(err, "maqval: opening alignment file", mapPath)
	}
	defer func() { closeErr.Set(mapFile.Close(ctx)) }()

	reads, err := maqmap.NewReader(mapFile.Reader(ctx))
	if err != nil {
		return errors.E(err, "maqval: reading alignment header", mapPath)
	}
	defer func() { closeErr.Set(reads.Close()) }()

	locFile, err := file.Open(ctx, locPath)
	if err != nil {
		return errors.E(err, "maqval: opening candidate site file", locPath)
	}
	defer func() { closeErr.Set(locFile.Close(ctx)) }()
	variants := variant.NewReader(locFile.Reader(ctx))

	src := refgenome.NewSource(func() (io.ReadCloser, error) {
		f, err := file.Open(ctx, refGenomePath)
		if err != nil {
			return nil, err
		}
		return readCloserFromFile{ctx: ctx, f: f}, nil
	})
	oracle := refgenome.NewOracle(src)

	var out file.File
	if outPath == "-" {
		out = nil
	} else {
		out, err = file.Create(ctx, outPath)
		if err != nil {
			return errors.E(err, "maqval: creating output file", outPath)
		}
		defer func() { closeErr.Set(out.Close(ctx)) }()
	}

	var w io.Writer = os.Stdout
	if out != nil {
		w = out.Writer(ctx)
	}
	tsvw := tsv.NewWriter(w)

	refNames := reads.Header().RefNames()
	sync := overlap.NewSync(refNames)
	callback := func(v *variant.Record, win *overlap.Window) error {
		refChar := oracle.Base(v.Name, v.Begin)
		refBase, _ := pileup.BaseFromASCII(refChar)
		row, err := snp.Aggregate(v, win, refBase, refChar, opts)
		if err != nil {
			log.Error.Printf("maqval: skipping %q: %v", v.Line, err)
			return nil
		}
		return row.WriteTo(tsvw)
	}

	if err := sync.Run(reads, variants, opts.QualCutoff, callback); err != nil {
		return errors.E(err, "maqval: processing")
	}
	if err := tsvw.Flush(); err != nil {
		return errors.E(err, "maqval: flushing output")
	}
	if oracle.Misses() > 0 {
		log.Printf("maqval: %d reference lookups fell back to 'N'", oracle.Misses())
	}
	return closeErr.Err()
}
