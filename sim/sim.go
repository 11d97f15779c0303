// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package sim provides bit-parallel multi-pattern simulation of
// sum-of-products networks.
//
// A simulator holds one bit vector per network object, one bit per
// simulated input pattern ("frame").  Patterns come from a seeded
// uniform generator, from exhaustive enumeration of the input space,
// or from an external source such as another simulator or recorded
// counterexamples.
package sim

import (
	"fmt"
	"math/big"
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/chislab/als/ntk"
)

// Mode selects how input patterns are generated.
type Mode int

const (
	// Unif draws every input bit independently from a seeded uniform
	// source.
	Unif Mode = iota
	// Enum simulates the full truth table: frame f assigns bit i of f
	// to the i'th primary input.  Requires fewer than 30 inputs.
	Enum
	// Input leaves pattern generation to the caller, via SetPatterns,
	// CopyPatternsFrom, ReplaceInput or AppendInput.
	Input
)

// EnumPiLimit bounds the input count of enumeration mode.
const EnumPiLimit = 30

// S simulates one network.
type S struct {
	n      *ntk.Ntk
	mode   Mode
	seed   uint64
	nFrame int
	dat    []*bitset.BitSet // indexed by object id
	cube   *bitset.BitSet   // scratch
	ones   *bitset.BitSet   // scratch, all ones over nFrame
}

// New creates a simulator for n.  In Enum mode the frame count is
// forced to 2^NumPi and the given one is ignored.
func New(n *ntk.Ntk, seed uint64, nFrame int, mode Mode) (*S, error) {
	if mode == Enum {
		if n.NumPi() >= EnumPiLimit {
			return nil, fmt.Errorf("sim: enumeration over %d inputs, limit %d", n.NumPi(), EnumPiLimit)
		}
		nFrame = 1 << n.NumPi()
	}
	if nFrame <= 0 {
		return nil, fmt.Errorf("sim: frame count %d", nFrame)
	}
	s := &S{n: n, mode: mode, seed: seed, nFrame: nFrame}
	s.dat = make([]*bitset.BitSet, n.NumObjs())
	return s, nil
}

// Net returns the simulated network.
func (s *S) Net() *ntk.Ntk { return s.n }

// NFrame returns the current frame count.
func (s *S) NFrame() int { return s.nFrame }

// Vec returns the simulated bit vector of an object.  The caller must
// not modify it.
func (s *S) Vec(id int) *bitset.BitSet { return s.dat[id] }

// Simulate generates input patterns according to the mode and
// propagates them through the network.  Input mode requires patterns
// to have been supplied already.
func (s *S) Simulate() error {
	switch s.mode {
	case Unif:
		s.genUnif()
	case Enum:
		s.genEnum()
	case Input:
		for _, pi := range s.n.Pis() {
			if s.dat[pi] == nil {
				return fmt.Errorf("sim: input mode without patterns for %s", s.n.NameOf(pi))
			}
		}
	}
	s.Propagate()
	return nil
}

func (s *S) genUnif() {
	rnd := rand.New(rand.NewSource(int64(s.seed)))
	nw := (s.nFrame + 63) / 64
	for _, pi := range s.n.Pis() {
		words := make([]uint64, nw)
		for i := range words {
			words[i] = rnd.Uint64()
		}
		maskTail(words, s.nFrame)
		s.dat[pi] = bitset.FromWithLength(uint(s.nFrame), words)
	}
}

// maskTail zeroes the bits of the last word past nFrame.  FromWithLength
// keeps them, and set bits beyond the frame range would leak into
// Count-based comparisons.
func maskTail(words []uint64, nFrame int) {
	if r := uint(nFrame) & 63; r != 0 {
		words[len(words)-1] &= 1<<r - 1
	}
}

// low-order enumeration word patterns for inputs 0..5; input i >= 6
// toggles whole words
var enumWords = [6]uint64{
	0xaaaaaaaaaaaaaaaa,
	0xcccccccccccccccc,
	0xf0f0f0f0f0f0f0f0,
	0xff00ff00ff00ff00,
	0xffff0000ffff0000,
	0xffffffff00000000,
}

func (s *S) genEnum() {
	nw := (s.nFrame + 63) / 64
	for i, pi := range s.n.Pis() {
		words := make([]uint64, nw)
		for w := range words {
			if i < 6 {
				words[w] = enumWords[i]
			} else if (w>>(i-6))&1 == 1 {
				words[w] = ^uint64(0)
			}
		}
		maskTail(words, s.nFrame)
		s.dat[pi] = bitset.FromWithLength(uint(s.nFrame), words)
	}
}

// SetPatterns supplies one vector per primary input, in input order.
func (s *S) SetPatterns(vecs []*bitset.BitSet) error {
	if len(vecs) != s.n.NumPi() {
		return fmt.Errorf("sim: %d pattern vectors for %d inputs", len(vecs), s.n.NumPi())
	}
	for i := range vecs {
		if int(vecs[i].Len()) < s.nFrame {
			return fmt.Errorf("sim: pattern vector %d shorter than %d frames", i, s.nFrame)
		}
	}
	for i, pi := range s.n.Pis() {
		s.dat[pi] = vecs[i].Clone()
	}
	return nil
}

// CopyPatternsFrom adopts the input patterns of another simulator over
// a network with the same primary inputs, so the two simulations are
// paired frame by frame.
func (s *S) CopyPatternsFrom(o *S) error {
	if o.n.NumPi() != s.n.NumPi() {
		return fmt.Errorf("sim: pattern copy across %d != %d inputs", o.n.NumPi(), s.n.NumPi())
	}
	if o.nFrame != s.nFrame {
		return fmt.Errorf("sim: pattern copy across %d != %d frames", o.nFrame, s.nFrame)
	}
	for i, pi := range s.n.Pis() {
		s.dat[pi] = o.dat[o.n.PiID(i)].Clone()
	}
	return nil
}

// ReplaceInput overwrites the input pattern of one frame, bit i going
// to the i'th primary input.  The caller re-runs Propagate when done
// injecting.
func (s *S) ReplaceInput(frame int, pattern []bool) {
	for i, pi := range s.n.Pis() {
		s.dat[pi].SetTo(uint(frame), pattern[i])
	}
}

// AppendInput adds one frame holding the given pattern.
func (s *S) AppendInput(pattern []bool) {
	s.nFrame++
	for i, pi := range s.n.Pis() {
		v := s.dat[pi]
		if v == nil {
			v = bitset.New(uint(s.nFrame))
			s.dat[pi] = v
		}
		v.SetTo(uint(s.nFrame-1), pattern[i])
	}
}

// Propagate evaluates every reachable node over the current input
// patterns in topological order.  Output objects copy their driver.
func (s *S) Propagate() {
	s.cube = bitset.New(uint(s.nFrame))
	s.ones = bitset.New(uint(s.nFrame))
	s.ones.FlipRange(0, uint(s.nFrame))
	for _, id := range s.n.TopoOrder() {
		if s.dat[id] == nil || int(s.dat[id].Len()) != s.nFrame {
			s.dat[id] = bitset.New(uint(s.nFrame))
		}
		s.evalSop(s.dat[id], s.n.SopOf(id), s.n.FaninIDs(id), func(in int) *bitset.BitSet {
			return s.dat[in]
		})
	}
	for _, po := range s.n.Pos() {
		drv := s.n.FaninIDs(po)[0]
		if s.dat[po] == nil || int(s.dat[po].Len()) != s.nFrame {
			s.dat[po] = bitset.New(uint(s.nFrame))
		}
		s.dat[drv].Copy(s.dat[po])
	}
}

// evalSop evaluates sop over the fanin vectors delivered by vec,
// writing the result to dst.
func (s *S) evalSop(dst *bitset.BitSet, sop string, ins []int, vec func(in int) *bitset.BitSet) {
	cubes, phase := ntk.SopCubes(sop)
	dst.ClearAll()
	for _, cube := range cubes {
		s.ones.Copy(s.cube)
		for i := 0; i < len(cube); i++ {
			switch cube[i] {
			case '1':
				s.cube.InPlaceIntersection(vec(ins[i]))
			case '0':
				s.cube.InPlaceDifference(vec(ins[i]))
			}
		}
		dst.InPlaceUnion(s.cube)
	}
	if phase == '0' {
		dst.FlipRange(0, uint(s.nFrame))
	}
}

// SimSop evaluates a candidate function over divisor vectors without
// touching the network, writing the result to dst.
func (s *S) SimSop(divs []int, sop string, dst *bitset.BitSet) {
	s.evalSop(dst, sop, divs, func(in int) *bitset.BitSet { return s.dat[in] })
}

// OutputWord returns the primary output values of one frame as an
// unsigned word, output i at bit i.
func (s *S) OutputWord(frame int) *big.Int {
	w := new(big.Int)
	s.OutputWordInto(w, frame)
	return w
}

// OutputWordInto is OutputWord without the allocation.
func (s *S) OutputWordInto(dst *big.Int, frame int) {
	dst.SetUint64(0)
	for i, po := range s.n.Pos() {
		if s.dat[po].Test(uint(frame)) {
			dst.SetBit(dst, i, 1)
		}
	}
}

// Pattern returns the input assignment of one frame, per primary
// input in input order.
func (s *S) Pattern(frame int) []bool {
	p := make([]bool, s.n.NumPi())
	for i, pi := range s.n.Pis() {
		p[i] = s.dat[pi].Test(uint(frame))
	}
	return p
}

// InputWord returns inputs lsb..msb of one frame as an unsigned
// integer, input lsb at bit 0.
func (s *S) InputWord(frame, lsb, msb int) uint64 {
	var w uint64
	for i := lsb; i <= msb; i++ {
		if s.dat[s.n.PiID(i)].Test(uint(frame)) {
			w |= 1 << uint(i-lsb)
		}
	}
	return w
}
