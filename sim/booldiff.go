// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package sim

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/chislab/als/ntk"
)

// Scratch holds the private state of one Boolean-difference
// computation, so independent workers can score candidates in
// parallel over the same simulator.
type Scratch struct {
	tmp  []*bitset.BitSet // flipped-cone vectors, indexed by object id
	vis  []bool
	cube *bitset.BitSet
	ones *bitset.BitSet
	outs []*bitset.BitSet // per primary output
}

// NewScratch allocates a scratch sized for the simulator's current
// network and frame count.
func (s *S) NewScratch() *Scratch {
	sc := &Scratch{
		tmp:  make([]*bitset.BitSet, s.n.NumObjs()),
		vis:  make([]bool, s.n.NumObjs()),
		cube: bitset.New(uint(s.nFrame)),
		ones: bitset.New(uint(s.nFrame)),
		outs: make([]*bitset.BitSet, s.n.NumPo()),
	}
	sc.ones.FlipRange(0, uint(s.nFrame))
	for j := range sc.outs {
		sc.outs[j] = bitset.New(uint(s.nFrame))
	}
	return sc
}

// Outs returns the per-output difference vectors of the last BoolDiff
// call on this scratch.
func (sc *Scratch) Outs() []*bitset.BitSet { return sc.outs }

// BoolDiff computes, for every primary output, the frames on which
// flipping the target node's value flips that output.  topo is the
// network's topological node order containing target; only the cone
// reachable from the target is re-evaluated.  Results are left in
// sc.Outs(); a zero vector means the output never sees the flip.
func (s *S) BoolDiff(topo []int, target int, sc *Scratch) {
	for i := range sc.vis {
		sc.vis[i] = false
	}
	pick := func(in int) *bitset.BitSet {
		if sc.vis[in] {
			return sc.tmp[in]
		}
		return s.dat[in]
	}
	at := -1
	for i, id := range topo {
		if id == target {
			at = i
			break
		}
	}
	if at < 0 {
		for j := range sc.outs {
			sc.outs[j].ClearAll()
		}
		return
	}
	sc.vis[target] = true
	sc.grab(target, s.nFrame)
	s.dat[target].Copy(sc.tmp[target])
	sc.tmp[target].FlipRange(0, uint(s.nFrame))
	for _, id := range topo[at+1:] {
		touched := false
		for _, in := range s.n.FaninIDs(id) {
			if sc.vis[in] {
				touched = true
				break
			}
		}
		if !touched {
			continue
		}
		sc.vis[id] = true
		sc.grab(id, s.nFrame)
		s.evalSopScratch(sc, sc.tmp[id], s.n.SopOf(id), s.n.FaninIDs(id), pick)
	}
	for j, po := range s.n.Pos() {
		drv := s.n.FaninIDs(po)[0]
		if !sc.vis[drv] {
			sc.outs[j].ClearAll()
			continue
		}
		sc.tmp[drv].Copy(sc.outs[j])
		sc.outs[j].InPlaceSymmetricDifference(s.dat[drv])
	}
}

func (sc *Scratch) grab(id, nFrame int) {
	if sc.tmp[id] == nil || int(sc.tmp[id].Len()) != nFrame {
		sc.tmp[id] = bitset.New(uint(nFrame))
	}
}

// SimSopScratch is SimSop over a private scratch, safe to call from
// parallel workers sharing the simulator read-only.
func (s *S) SimSopScratch(sc *Scratch, divs []int, sop string, dst *bitset.BitSet) {
	s.evalSopScratch(sc, dst, sop, divs, func(in int) *bitset.BitSet { return s.dat[in] })
}

// evalSopScratch is evalSop using the scratch's own cube buffers.
func (s *S) evalSopScratch(sc *Scratch, dst *bitset.BitSet, sop string, ins []int, vec func(in int) *bitset.BitSet) {
	cubes, phase := ntk.SopCubes(sop)
	dst.ClearAll()
	for _, cube := range cubes {
		sc.ones.Copy(sc.cube)
		for i := 0; i < len(cube); i++ {
			switch cube[i] {
			case '1':
				sc.cube.InPlaceIntersection(vec(ins[i]))
			case '0':
				sc.cube.InPlaceDifference(vec(ins[i]))
			}
		}
		dst.InPlaceUnion(sc.cube)
	}
	if phase == '0' {
		dst.FlipRange(0, uint(s.nFrame))
	}
}
