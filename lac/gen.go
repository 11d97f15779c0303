// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package lac

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/chislab/als/ntk"
	"github.com/chislab/als/sim"
)

// GenConst emits, for every live non-constant internal node, the two
// candidates replacing it with constant 0 and constant 1.
func GenConst(n *ntk.Ntk, cat *Catalog) {
	for id := 0; id < n.NumObjs(); id++ {
		if !n.IsNode(id) || n.IsConst(id) || n.NumFanouts(id) == 0 {
			continue
		}
		gain := n.SizeGain(id, nil)
		cat.Add(&LAC{Target: id, Sop: ntk.SopConst0, SizeGain: gain})
		cat.Add(&LAC{Target: id, Sop: ntk.SopConst1, SizeGain: gain})
	}
}

// GenSasimi emits signal-substitution candidates: for every target
// node with at least two fanins, substitute signals at strictly lower
// logic level, in equal and complemented polarity.  Each target gets a
// candidate quota of the global budget divided by the target count,
// each substitute costing two candidates.  withConst additionally
// emits the constant candidates.
func GenSasimi(n *ntk.Ntk, cat *Catalog, maxCand int, withConst bool) {
	if withConst {
		GenConst(n, cat)
	}
	lev := n.Levels()
	var targets []int
	for id := 0; id < n.NumObjs(); id++ {
		if n.IsNode(id) && !n.IsConst(id) && n.NumFanins(id) >= 2 && n.NumFanouts(id) > 0 {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return
	}
	quota := maxCand / len(targets)
	if quota < 1 {
		quota = 1
	}
	for _, t := range targets {
		used := 0
		for s := 0; s < n.NumObjs() && used < quota; s++ {
			if s == t || n.IsConst(s) || n.IsPo(s) || !n.Valid(s) {
				continue
			}
			if !n.IsNode(s) && !n.IsPi(s) {
				continue
			}
			if lev[s] >= lev[t] {
				continue
			}
			gain := n.SizeGain(t, []int{s})
			cat.Add(&LAC{Target: t, Divs: []int{s}, Sop: ntk.SopBuf, SizeGain: gain})
			cat.Add(&LAC{Target: t, Divs: []int{s}, Sop: ntk.SopInv, SizeGain: gain - 1})
			used += 2
		}
	}
}

// GenResub emits resubstitution candidates for every 2-input target,
// using simulation values from s (which must be freshly propagated
// over n) to test functional matches: 0-divisor constants by majority
// rule, 1-divisor buffers/inverters on exact or complemented matches,
// and 2-divisor rewrites pairing one original fanin with a window
// divisor under all input and output phases.  Generation stops once
// the catalog reaches maxCand.
func GenResub(n *ntk.Ntk, s *sim.S, cat *Catalog, maxCand int) {
	lev := n.Levels()
	nFrame := s.NFrame()
	scratch := bitset.New(uint(nFrame))
	for t := 0; t < n.NumObjs() && cat.Len() < maxCand; t++ {
		if !n.IsNode(t) || n.IsConst(t) || n.NumFanins(t) != 2 || n.NumFanouts(t) == 0 {
			continue
		}
		tv := s.Vec(t)
		if tv == nil {
			continue
		}

		// 0-resubstitution: majority constant
		if gain := n.SizeGain(t, nil); gain >= 1 {
			sop := ntk.SopConst1
			if 2*int(tv.Count()) <= nFrame {
				sop = ntk.SopConst0
			}
			cat.Add(&LAC{Target: t, Sop: sop, SizeGain: gain})
		}

		divs := FindDivisors(n, t, lev)

		// 1-resubstitution: exact or complemented signal match
		for _, d := range divs {
			if n.IsConst(d) || s.Vec(d) == nil {
				continue
			}
			diff := xorCount(tv, s.Vec(d), scratch)
			if diff != 0 && diff != nFrame {
				continue
			}
			sop, extra := ntk.SopBuf, 0
			if diff == nFrame {
				sop, extra = ntk.SopInv, 1
			}
			if gain := n.SizeGain(t, []int{d}) - extra; gain >= 1 {
				cat.Add(&LAC{Target: t, Divs: []int{d}, Sop: sop, SizeGain: gain})
			}
		}

		if cat.Len() >= maxCand {
			break
		}

		// 2-resubstitution: replace one fanin with a divisor
		f0, f1 := n.Fanin(t, 0), n.Fanin(t, 1)
		for slot := 0; slot < 2 && cat.Len() < maxCand; slot++ {
			keep := n.Fanin(t, 1-slot)
			if s.Vec(keep) == nil {
				continue
			}
			for _, d := range divs {
				if d == f0 || d == f1 || d == t || n.IsConst(d) || s.Vec(d) == nil {
					continue
				}
				gain := n.SizeGain(t, []int{keep, d}) - 1
				if gain < 1 {
					continue
				}
				for _, sop := range twoInputSops {
					s.SimSop([]int{keep, d}, sop, scratch)
					if scratch.Equal(tv) {
						cat.Add(&LAC{Target: t, Divs: []int{keep, d}, Sop: sop, SizeGain: gain})
					}
				}
			}
		}
	}
}

// the eight 2-input AND-family functions reachable by phasing the
// inputs and the output
var twoInputSops = []string{
	"11 1\n", "10 1\n", "01 1\n", "00 1\n",
	"11 0\n", "10 0\n", "01 0\n", "00 0\n",
}

// xorCount returns the number of frames on which a and b differ,
// clobbering scratch.
func xorCount(a, b, scratch *bitset.BitSet) int {
	a.Copy(scratch)
	scratch.InPlaceSymmetricDifference(b)
	return int(scratch.Count())
}
