// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chislab/als"
	"github.com/chislab/als/logger"
	"github.com/chislab/als/metric"
	"github.com/chislab/als/ntk/blif"
)

var (
	circ      = flag.String("i", "", "path to the accurate circuit (blif)")
	outDir    = flag.String("o", "tmp", "directory for approximate circuits")
	metrName  = flag.String("m", "MAXED", "error metric: MAXED or MAXHD")
	bound     = flag.Uint64("e", als.DefaultBound, "upper bound of the maximum error")
	nFrame    = flag.Int("f", als.DefaultNFrame, "simulation patterns for error estimation")
	seed      = flag.Uint64("s", als.DefaultSeed, "seed")
	topK      = flag.Int("k", als.DefaultTopK, "candidates kept per round")
	budget    = flag.Duration("timeout", 0, "per-proof solver budget (default 10s)")
	workers   = flag.Int("workers", runtime.NumCPU(), "parallel estimator workers")
	verbose   = flag.Bool("v", false, "debug logging")
	pprofAddr = flag.String("pprof", "", "address to serve http profile (eg :6060)")
)

const usage = `%s approximates a combinational circuit under a provable error bound.

usage: %s -i circuit.blif [options]

`

func main() {
	flag.Usage = func() {
		p := os.Args[0]
		_, p = filepath.Split(p)
		fmt.Fprintf(os.Stderr, usage, p, p)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}
	flag.Parse()

	log := logger.Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if *pprofAddr != "" {
		go func() {
			log.Error().Err(http.ListenAndServe(*pprofAddr, nil)).Msg("pprof server")
		}()
	}

	if *circ == "" {
		flag.Usage()
		os.Exit(1)
	}
	if !strings.HasSuffix(*circ, ".blif") {
		fmt.Fprintf(os.Stderr, "the accurate circuit must be a .blif file\n")
		os.Exit(1)
	}
	kind, err := metric.ParseKind(*metrName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	f, err := os.Open(*circ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	n, err := blif.Read(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	if n.Name() == "" {
		base := filepath.Base(*circ)
		n.SetName(strings.TrimSuffix(base, ".blif"))
	}

	mg, err := als.New(n, als.Options{
		Metric:    kind,
		Bound:     *bound,
		NFrame:    *nFrame,
		Seed:      *seed,
		TopK:      *topK,
		SatBudget: *budget,
		Workers:   *workers,
		OutDir:    *outDir,
		Log:       &log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	start := time.Now()
	res, err := mg.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	final := filepath.Join(*outDir, fmt.Sprintf("%s_final.blif", n.Name()))
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	out, err := os.Create(final)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	if err := blif.Write(out, res); err != nil {
		out.Close()
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	out.Close()

	fmt.Printf("%s: size %d -> %d, depth %d -> %d, %d rounds in %s\n",
		n.Name(), n.Size(), res.Size(), n.Depth(), res.Depth(),
		len(mg.Stats()), time.Since(start).Round(time.Millisecond))
	fmt.Printf("wrote %s\n", final)
}
