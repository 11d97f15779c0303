// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package lac

import (
	"sort"

	"github.com/chislab/als/ntk"
)

// Divisor window bounds.
const (
	WinMax     = 300 // cap on collected divisors
	FanoutsMax = 30  // skip expansion through very wide signals
)

// FindDivisors collects candidate divisor signals for a target node:
// its bounded transitive fanin window, expanded sideways through
// fanouts whose support lies entirely inside the window and whose
// level stays below the target's.  Nodes in the target's fanout cone
// can never enter the set, so a rewrite reading any divisor cannot
// close a cycle through the target.  The result is sorted by level,
// shallowest first, with the target's own fanins appended at the end.
func FindDivisors(n *ntk.Ntk, target int, lev []int) []int {
	inSet := make(map[int]bool, WinMax)
	var divs []int
	add := func(id int) bool {
		if inSet[id] || len(divs) >= WinMax {
			return false
		}
		inSet[id] = true
		divs = append(divs, id)
		return true
	}

	// transitive fanin, breadth first from the target's fanins
	queue := append([]int(nil), n.FaninIDs(target)...)
	seen := map[int]bool{target: true}
	for len(queue) > 0 && len(divs) < WinMax {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		add(id)
		for _, in := range n.FaninIDs(id) {
			if !seen[in] {
				queue = append(queue, in)
			}
		}
	}

	// sideways expansion: fanouts supported by the window
	for grew := true; grew && len(divs) < WinMax; {
		grew = false
		for _, d := range append([]int(nil), divs...) {
			if n.NumFanouts(d) > FanoutsMax {
				continue
			}
			for _, f := range n.FanoutIDs(d) {
				if !n.IsNode(f) || f == target || inSet[f] {
					continue
				}
				if lev[f] >= lev[target] {
					continue
				}
				ok := true
				for _, in := range n.FaninIDs(f) {
					if !inSet[in] {
						ok = false
						break
					}
				}
				if ok && add(f) {
					grew = true
				}
			}
		}
	}

	sort.SliceStable(divs, func(i, j int) bool { return lev[divs[i]] < lev[divs[j]] })
	// the target's own fanins close the list so 2-resubstitution can
	// pair them with the found divisors
	for _, in := range n.FaninIDs(target) {
		if !inSet[in] {
			divs = append(divs, in)
		}
	}
	return divs
}
