// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package metric defines the error metrics under which an approximate
// circuit is compared against its exact reference.
//
// A metric shows up in two places: frame by frame during simulation,
// where output words are concrete numbers, and inside the verification
// miter, where outputs are literals of a logic.C circuit.  The Metric
// interface carries both capabilities so no caller ever branches on
// the metric kind.
package metric

import (
	"fmt"
	"math/big"
	mbits "math/bits"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Kind enumerates the supported metrics.
type Kind int

const (
	// MaxED is the maximum error distance: |acc - app| over the output
	// words read as unsigned integers.
	MaxED Kind = iota
	// MaxHD is the maximum Hamming distance: popcount(acc ^ app).
	MaxHD
)

func (k Kind) String() string {
	switch k {
	case MaxED:
		return "MAXED"
	case MaxHD:
		return "MAXHD"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses the metric selector of the driver.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "MAXED":
		return MaxED, nil
	case "MAXHD":
		return MaxHD, nil
	}
	return 0, fmt.Errorf("metric: unknown kind %q", s)
}

// Metric computes one error metric over paired accurate/approximate
// output words.
type Metric interface {
	Name() string
	// RefWidth is the bit width of the reference-error word the
	// metric's deviation is compared against, for nPo outputs.
	RefWidth(nPo int) int
	// FrameError writes the deviation between concrete output words
	// acc and app into dst.  dst must not alias acc or app.
	FrameError(dst, acc, app *big.Int)
	// Deviation builds the deviation word over output literals acc and
	// app in c, little-endian, RefWidth(len(acc)) bits wide.
	Deviation(c *logic.C, acc, app []z.Lit) []z.Lit
	// OutWeight is output i's worst-case contribution to the metric
	// when it flips, used for topological upper bounds.
	OutWeight(i int) *big.Int
}

// New returns the metric of the given kind.
func New(k Kind) (Metric, error) {
	switch k {
	case MaxED:
		return maxED{}, nil
	case MaxHD:
		return maxHD{}, nil
	}
	return nil, fmt.Errorf("metric: unknown kind %d", int(k))
}

type maxED struct{}

func (maxED) Name() string { return "MAXED" }

func (maxED) RefWidth(nPo int) int { return nPo }

func (maxED) FrameError(dst, acc, app *big.Int) {
	dst.Sub(acc, app)
	dst.Abs(dst)
}

func (maxED) OutWeight(i int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(i))
}

func (maxED) Deviation(c *logic.C, acc, app []z.Lit) []z.Lit {
	d1, borrow := subtract(c, acc, app)
	d2, _ := subtract(c, app, acc)
	dev := make([]z.Lit, len(d1))
	for i := range dev {
		// borrow set means acc < app
		dev[i] = c.Choice(borrow, d2[i], d1[i])
	}
	return dev
}

type maxHD struct{}

func (maxHD) Name() string { return "MAXHD" }

func (maxHD) RefWidth(nPo int) int {
	w := 1
	for 1<<uint(w) <= nPo {
		w++
	}
	return w
}

func (maxHD) FrameError(dst, acc, app *big.Int) {
	dst.Xor(acc, app)
	n := 0
	for _, w := range dst.Bits() {
		n += mbits.OnesCount(uint(w))
	}
	dst.SetUint64(uint64(n))
}

func (maxHD) OutWeight(int) *big.Int { return big.NewInt(1) }

func (maxHD) Deviation(c *logic.C, acc, app []z.Lit) []z.Lit {
	xs := make([]z.Lit, len(acc))
	for i := range xs {
		xs[i] = c.Xor(acc[i], app[i])
	}
	return popCount(c, xs)
}
