// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package als implements approximate logic synthesis: starting from
// an exact Boolean network it searches for smaller circuits whose
// worst-case deviation, under a chosen error metric, provably stays
// within a user bound.
//
// The search runs local-approximate-change (LAC) rounds: generate
// candidate rewrites, prune them by simulation against the exact
// network, then greedily apply the survivors, proving each one safe
// by SAT on an error miter before committing it.  Counterexamples
// from failed proofs feed back into the simulation patterns, so
// pruning sharpens round over round.
package als

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/chislab/als/est"
	"github.com/chislab/als/lac"
	"github.com/chislab/als/logger"
	"github.com/chislab/als/metric"
	"github.com/chislab/als/ntk"
	"github.com/chislab/als/ntk/blif"
	"github.com/chislab/als/sim"
	"github.com/chislab/als/verify"
)

// Defaults of the driver options.
const (
	DefaultNFrame  = 8192
	DefaultBound   = 64
	DefaultSeed    = 199608224
	DefaultTopK    = 100
	DefaultMaxCand = 100000
)

// Options configures a synthesis run.
type Options struct {
	Metric    metric.Kind
	Bound     uint64 // maximum admissible error under Metric
	NFrame    int    // simulation patterns for estimation
	Seed      uint64
	TopK      int           // candidates kept per round after sorting
	MaxCand   int           // global candidate generation budget
	SatBudget time.Duration // per-proof solver budget
	Workers   int           // parallel estimator workers
	OutDir    string        // per-round BLIF artifacts; empty disables
	Log       *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.NFrame == 0 {
		o.NFrame = DefaultNFrame
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	if o.MaxCand == 0 {
		o.MaxCand = DefaultMaxCand
	}
	return o
}

// Phase is one candidate-generation strategy, run to a local fixed
// point before the next starts.
type Phase int

const (
	PhaseConst Phase = iota
	PhaseSasimi
	PhaseResub
)

func (p Phase) String() string {
	switch p {
	case PhaseConst:
		return "const"
	case PhaseSasimi:
		return "sasimi"
	case PhaseResub:
		return "resub"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// RoundStat records one accepted round.
type RoundStat struct {
	Phase     Phase
	Round     int
	Generated int // candidates before pruning
	Survived  int // candidates after pruning and top-K
	Committed int // candidates proven safe and applied
	CexAdded  int // counterexamples recorded
	Size      int
	Depth     int
}

// Manager drives one synthesis run.
type Manager struct {
	opts   Options
	m      metric.Metric
	log    zerolog.Logger
	acc    *ntk.Ntk
	accSim *sim.S
	app    *ntk.Ntk
	est    *est.Estimator
	ck     *verify.Checker

	blacklist map[string]bool
	// counterexamples overwrite simulation frames through a wrapping
	// cursor, oldest first
	cexCursor int
	cexCount  int
	round     int
	stats     []RoundStat
}

// New validates the configuration and prepares a run over acc.  The
// accurate network is not modified; the working copy starts
// identical to it.
func New(acc *ntk.Ntk, opts Options) (*Manager, error) {
	opts = opts.withDefaults()
	m, err := metric.New(opts.Metric)
	if err != nil {
		return nil, err
	}
	if err := acc.Check(); err != nil {
		return nil, fmt.Errorf("als: accurate network: %w", err)
	}
	if acc.NumPi() == 0 || acc.NumPo() == 0 {
		return nil, fmt.Errorf("als: network has %d inputs, %d outputs", acc.NumPi(), acc.NumPo())
	}
	if opts.NFrame <= 0 {
		return nil, fmt.Errorf("als: frame count %d", opts.NFrame)
	}
	if opts.Metric == metric.MaxHD && opts.Bound >= uint64(acc.NumPo()) {
		return nil, fmt.Errorf("als: MAXHD bound %d must be below the output count %d", opts.Bound, acc.NumPo())
	}
	accSim, err := sim.New(acc, opts.Seed, opts.NFrame, sim.Unif)
	if err != nil {
		return nil, err
	}
	if err := accSim.Simulate(); err != nil {
		return nil, err
	}
	log := logger.Logger()
	if opts.Log != nil {
		log = *opts.Log
	}
	return &Manager{
		opts:      opts,
		m:         m,
		log:       log.With().Str("circ", acc.Name()).Logger(),
		acc:       acc,
		accSim:    accSim,
		app:       acc.Copy(),
		est:       est.New(m, opts.Bound, opts.NFrame, opts.Seed, opts.Workers),
		ck:        verify.NewChecker(m, opts.SatBudget),
		blacklist: make(map[string]bool),
	}, nil
}

// Result returns the current approximate network.
func (mg *Manager) Result() *ntk.Ntk { return mg.app }

// Stats returns the accepted-round records so far.
func (mg *Manager) Stats() []RoundStat { return mg.stats }

// Run executes all phases and returns the final approximate network.
func (mg *Manager) Run() (*ntk.Ntk, error) {
	start := time.Now()
	mg.log.Info().
		Str("metric", mg.m.Name()).
		Uint64("bound", mg.opts.Bound).
		Int("nFrame", mg.opts.NFrame).
		Int("size", mg.app.Size()).
		Int("depth", mg.app.Depth()).
		Msg("starting synthesis")
	for _, ph := range []Phase{PhaseConst, PhaseSasimi, PhaseResub} {
		if err := mg.runPhase(ph); err != nil {
			return nil, err
		}
	}
	mg.log.Info().
		Int("size", mg.app.Size()).
		Int("depth", mg.app.Depth()).
		Dur("took", time.Since(start)).
		Msg("synthesis done")
	return mg.app, nil
}

// runPhase runs one generation strategy to a local fixed point.
func (mg *Manager) runPhase(ph Phase) error {
	for {
		mg.round++
		oldSize, oldDepth := mg.app.Size(), mg.app.Depth()

		cat, err := mg.generate(ph)
		if err != nil {
			return err
		}
		generated := cat.Len()
		cat.RemoveBlacklisted(mg.blacklist)
		if err := mg.est.Prune(mg.accSim, mg.app, cat); err != nil {
			return err
		}
		if cat.Len() == 0 {
			mg.log.Debug().Stringer("phase", ph).Int("round", mg.round).Msg("no surviving candidates")
			return nil
		}
		cat.SortAndKeepTop(mg.opts.TopK)
		mg.est.UpperBound(mg.app, cat)
		if e := mg.log.Debug(); e.Enabled() {
			best := cat.Lacs()[0]
			e.Stringer("phase", ph).Int("round", mg.round).
				Str("bestErr", best.Err.String()).
				Str("bestErr2", best.Err2.String()).
				Int("bestGain", best.SizeGain).
				Msg("candidates ranked")
		}
		survived := cat.Len()

		committed, cexAdded, err := mg.applyMany(cat)
		if err != nil {
			return err
		}
		if committed == 0 {
			mg.log.Debug().Stringer("phase", ph).Int("round", mg.round).Msg("no candidate committed")
			return nil
		}
		if cexAdded > 0 {
			// let the injected counterexamples reach every node
			mg.accSim.Propagate()
		}
		mg.app.Sweep()
		if err := mg.app.Check(); err != nil {
			return fmt.Errorf("als: round %d left an inconsistent network: %w", mg.round, err)
		}

		size, depth := mg.app.Size(), mg.app.Depth()
		if size > oldSize || (size == oldSize && depth > oldDepth) {
			return fmt.Errorf("als: round %d regressed from size %d depth %d to size %d depth %d",
				mg.round, oldSize, oldDepth, size, depth)
		}
		mg.stats = append(mg.stats, RoundStat{
			Phase:     ph,
			Round:     mg.round,
			Generated: generated,
			Survived:  survived,
			Committed: committed,
			CexAdded:  cexAdded,
			Size:      size,
			Depth:     depth,
		})
		mg.log.Info().
			Stringer("phase", ph).
			Int("round", mg.round).
			Int("committed", committed).
			Int("cex", cexAdded).
			Int("size", size).
			Int("depth", depth).
			Msg("round accepted")
		if err := mg.writeRound(); err != nil {
			return err
		}
		if size == oldSize && depth == oldDepth {
			return nil
		}
	}
}

// generate builds the phase's candidate catalog from the current
// approximate network.
func (mg *Manager) generate(ph Phase) (*lac.Catalog, error) {
	cat := lac.NewCatalog()
	switch ph {
	case PhaseConst:
		lac.GenConst(mg.app, cat)
	case PhaseSasimi:
		lac.GenSasimi(mg.app, cat, mg.opts.MaxCand, false)
	case PhaseResub:
		appSim, err := sim.New(mg.app, mg.opts.Seed, mg.opts.NFrame, sim.Unif)
		if err != nil {
			return nil, err
		}
		if err := appSim.Simulate(); err != nil {
			return nil, err
		}
		lac.GenResub(mg.app, appSim, cat, mg.opts.MaxCand)
	}
	return cat, nil
}

// writeRound dumps the committed network when an artifact directory
// is configured.
func (mg *Manager) writeRound() error {
	if mg.opts.OutDir == "" {
		return nil
	}
	if err := os.MkdirAll(mg.opts.OutDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_r%d_%s%d_s%d_d%d.blif",
		mg.acc.Name(), mg.round, mg.m.Name(), mg.opts.Bound, mg.app.Size(), mg.app.Depth())
	f, err := os.Create(filepath.Join(mg.opts.OutDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return blif.Write(f, mg.app)
}

// wordOf packs output values into an unsigned word, output i at bit
// i.
func wordOf(vals []bool) *big.Int {
	w := new(big.Int)
	for i, v := range vals {
		if v {
			w.SetBit(w, i, 1)
		}
	}
	return w
}
