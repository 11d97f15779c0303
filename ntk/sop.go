// Copyright 2026 The ALS Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ntk

import (
	"fmt"
	"strings"
)

// Sum-of-products functions are strings of newline-terminated cubes
// "<bits> <phase>".  Each bit is '0', '1' or '-' (don't care); all
// cubes of one function share the phase character.  Phase '1' means
// the function is the OR of the cubes, phase '0' means its
// complement.  A constant has a single cube with no bits.
const (
	SopConst0 = " 0\n"
	SopConst1 = " 1\n"
	SopBuf    = "1 1\n"
	SopInv    = "0 1\n"
)

// CheckSop verifies that sop is well formed over nIns inputs.
func CheckSop(sop string, nIns int) error {
	if sop == "" {
		return fmt.Errorf("empty sop")
	}
	if !strings.HasSuffix(sop, "\n") {
		return fmt.Errorf("sop %q lacks final newline", sop)
	}
	phase := byte(0)
	for _, line := range strings.Split(strings.TrimSuffix(sop, "\n"), "\n") {
		j := strings.IndexByte(line, ' ')
		if j != nIns || len(line) != nIns+2 {
			return fmt.Errorf("sop cube %q has width %d, want %d", line, j, nIns)
		}
		for i := 0; i < nIns; i++ {
			switch line[i] {
			case '0', '1', '-':
			default:
				return fmt.Errorf("sop cube %q has bad literal %q", line, line[i])
			}
		}
		p := line[nIns+1]
		if p != '0' && p != '1' {
			return fmt.Errorf("sop cube %q has bad phase", line)
		}
		if phase == 0 {
			phase = p
		} else if phase != p {
			return fmt.Errorf("sop %q mixes phases", sop)
		}
	}
	return nil
}

// SopCubes splits sop into its cube bit strings and returns them with
// the shared phase ('0' or '1').
func SopCubes(sop string) (cubes []string, phase byte) {
	lines := strings.Split(strings.TrimSuffix(sop, "\n"), "\n")
	cubes = make([]string, len(lines))
	for i, line := range lines {
		j := strings.IndexByte(line, ' ')
		cubes[i] = line[:j]
		phase = line[len(line)-1]
	}
	return cubes, phase
}

// EvalSop evaluates sop on the given input values.
func EvalSop(sop string, ins []bool) bool {
	cubes, phase := SopCubes(sop)
	v := false
	for _, cube := range cubes {
		all := true
		for i := 0; i < len(cube); i++ {
			switch cube[i] {
			case '1':
				all = all && ins[i]
			case '0':
				all = all && !ins[i]
			}
		}
		if all {
			v = true
			break
		}
	}
	if phase == '0' {
		v = !v
	}
	return v
}
