package solver

import (
	"math"
	"sort"
)

const (
	feasEps  = 1e-6
	roundEps = 1e-9
)

// DefaultMaxNodes bounds the search so a degenerate model terminates with
// NotSolved instead of spinning.
const DefaultMaxNodes = 500000

// Options tunes the branch-and-bound search.
type Options struct {
	MaxNodes int
}

// New returns a depth-first branch-and-bound solver with bounds
// propagation. It maximizes the objective over integer variables.
func New(opts Options) Solver {
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &branchAndBound{maxNodes: maxNodes}
}

type branchAndBound struct {
	maxNodes int
}

type searchState struct {
	problem  *Problem
	objCoeff []float64
	order    []int
	maxNodes int
	nodes    int

	// objBound is the objective with single-use penalty slacks folded
	// into their row's variables; the node bound works on these
	// coefficients plus boundConst.
	objBound   []float64
	boundConst float64
	folded     []bool

	varFamily []int
	families  []gubFamily
	groups    []capGroup
	folds     []penaltyFold
	covers    []coverRow

	famForcedSum   []float64
	famForcedCount []int
	famFreeBest    []float64
	famTaken       []int
	takenStamp     int
	scratch        []float64
	coverVals      []coverVal

	found   bool
	bestObj float64
	bestVal []int
}

// gubFamily is a "pick at most rhs of these binaries" constraint used to
// sharpen the node upper bound: the family contributes at most the sum of
// its rhs largest objective coefficients.
type gubFamily struct {
	rhs     int
	members []int
	inGroup bool
}

// capGroup is an all-ones cap row whose free variables partition into
// complete pick-one families: at most rhs of the member families can have
// a variable set, so the group contributes at most the top-rhs family
// bests instead of the top-rhs raw coefficients.
type capGroup struct {
	rhs      int
	families []int
	inRow    map[int]bool
}

// penaltyFold records a penalized slack replaced in the bound by its
// row-implied value, charged through the row's other variables.
type penaltyFold struct {
	con   int
	slack int
	coeff float64 // slack objective coefficient, negative
	scale float64 // |slack coefficient in the row|
	isGE  bool
}

// coverRow is a hard all-ones ">= rhs" row over singleton-family
// binaries. Satisfying it costs at least the smallest regret of swapping
// a family's best pick for a row member, and disjoint rows cost that much
// each.
type coverRow struct {
	con  int
	rhs  int
	vars []int
	fams []int
}

type coverVal struct {
	idx int
	val float64
}

type rowCandidate struct {
	idx   int
	rhs   int
	ratio float64
}

func (b *branchAndBound) Solve(p *Problem) Solution {
	n := p.NumVariables()
	objCoeff := make([]float64, n)
	for _, t := range p.objective {
		objCoeff[t.Var.id] += t.Coeff
	}

	for _, v := range p.vars {
		if v.hi < NoBound {
			continue
		}
		if objCoeff[v.id] > 0 {
			return Solution{Status: Unbounded}
		}
		// Cannot enumerate an infinite domain that the objective does not
		// reward; the model is malformed for this solver.
		return Solution{Status: NotSolved}
	}

	st := &searchState{
		problem:  p,
		objCoeff: objCoeff,
		maxNodes: b.maxNodes,
	}

	lo := make([]int, n)
	hi := make([]int, n)
	for i, v := range p.vars {
		lo[i], hi[i] = v.lo, v.hi
	}

	if !propagate(p, lo, hi) {
		return Solution{Status: Infeasible}
	}
	st.buildBound(lo, hi)

	// Branch on high-impact variables first; folded slacks carry a zero
	// bound coefficient and fall to the end, where propagation has
	// already pinned their floor.
	st.order = make([]int, n)
	for i := range st.order {
		st.order[i] = i
	}
	sortByImpact(st.order, st.objBound)

	aborted := st.dfs(lo, hi)
	if aborted {
		return Solution{Status: NotSolved, Nodes: st.nodes}
	}
	if !st.found {
		return Solution{Status: Infeasible, Nodes: st.nodes}
	}
	return Solution{Status: Optimal, Objective: st.bestObj, Nodes: st.nodes, values: st.bestVal}
}

// dfs explores one node; returns true when the node budget is exhausted.
func (st *searchState) dfs(lo, hi []int) bool {
	st.nodes++
	if st.nodes > st.maxNodes {
		return true
	}
	if !propagate(st.problem, lo, hi) {
		return false
	}

	if st.found && st.upperBound(lo, hi) <= st.bestObj+roundEps {
		return false
	}

	branch := -1
	for _, id := range st.order {
		if lo[id] < hi[id] {
			branch = id
			break
		}
	}
	if branch == -1 {
		obj := 0.0
		for id, c := range st.objCoeff {
			obj += c * float64(lo[id])
		}
		if !st.found || obj > st.bestObj {
			st.found = true
			st.bestObj = obj
			st.bestVal = append([]int(nil), lo...)
		}
		return false
	}

	nlo := make([]int, len(lo))
	nhi := make([]int, len(hi))
	try := func(v int) bool {
		copy(nlo, lo)
		copy(nhi, hi)
		nlo[branch], nhi[branch] = v, v
		return st.dfs(nlo, nhi)
	}

	// Value order follows the objective so the first dive is greedy.
	dir := st.objBound[branch]
	if dir == 0 {
		dir = st.objCoeff[branch]
	}
	if dir >= 0 {
		for v := hi[branch]; v >= lo[branch]; v-- {
			if try(v) {
				return true
			}
		}
	} else {
		for v := lo[branch]; v <= hi[branch]; v++ {
			if try(v) {
				return true
			}
		}
	}
	return false
}

// buildBound derives the bound structures from the root-propagated
// problem: pick-one families, cap groups layered over them, penalty
// folds, and hard cover rows. Everything is selected deterministically so
// identical problems search identically.
func (st *searchState) buildBound(lo, hi []int) {
	p := st.problem
	n := len(p.vars)

	st.varFamily = make([]int, n)
	for i := range st.varFamily {
		st.varFamily[i] = -1
	}
	st.folded = make([]bool, n)
	st.objBound = append([]float64(nil), st.objCoeff...)

	occ := make([]int, n)
	for ci := range p.cons {
		for _, t := range p.cons[ci].Terms {
			occ[t.Var.id]++
		}
	}

	type rowShape struct {
		allOnes  bool
		rhs      int
		free     int
		possible int
	}
	shapes := make([]rowShape, len(p.cons))
	for ci := range p.cons {
		c := &p.cons[ci]
		rs := rowShape{allOnes: true, rhs: int(math.Floor(c.RHS + feasEps))}
		for _, t := range c.Terms {
			v := t.Var
			if t.Coeff != 1 || v.lo != 0 || v.hi != 1 {
				rs.allOnes = false
				break
			}
			if hi[v.id] == 1 {
				rs.possible++
				if lo[v.id] == 0 {
					rs.free++
				}
			}
		}
		shapes[ci] = rs
	}

	// Pick-one families from "<= 1" rows. Tightest first; constraint
	// order breaks ties so the selection is deterministic.
	var singles []rowCandidate
	for ci := range p.cons {
		rs := shapes[ci]
		if p.cons[ci].Sense != LE || !rs.allOnes || rs.rhs != 1 || rs.free == 0 {
			continue
		}
		singles = append(singles, rowCandidate{idx: ci, rhs: 1, ratio: 1 / float64(rs.free)})
	}
	sortCandidates(singles)
	for _, cand := range singles {
		c := &p.cons[cand.idx]
		taken := false
		for _, t := range c.Terms {
			if st.varFamily[t.Var.id] != -1 {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		f := gubFamily{rhs: 1}
		for _, t := range c.Terms {
			st.varFamily[t.Var.id] = len(st.families)
			f.members = append(f.members, t.Var.id)
		}
		st.families = append(st.families, f)
	}

	freeInFamily := make([]int, len(st.families))
	for id, fi := range st.varFamily {
		if fi >= 0 && lo[id] == 0 && hi[id] == 1 {
			freeInFamily[fi]++
		}
	}

	// Cap groups: all-ones caps whose free variables are exactly the
	// free parts of whole pick-one families (rolling windows, monthly
	// attendance caps).
	type groupCand struct {
		idx   int
		rhs   int
		fams  []int
		inRow map[int]bool
		ratio float64
	}
	var groupCands []groupCand
	for ci := range p.cons {
		rs := shapes[ci]
		if p.cons[ci].Sense != LE || !rs.allOnes || rs.rhs < 1 {
			continue
		}
		c := &p.cons[ci]
		inRow := make(map[int]bool, len(c.Terms))
		var fams []int
		seen := map[int]int{}
		ok := true
		for _, t := range c.Terms {
			id := t.Var.id
			inRow[id] = true
			if lo[id] != 0 || hi[id] != 1 {
				continue
			}
			fi := st.varFamily[id]
			if fi == -1 {
				ok = false
				break
			}
			if _, dup := seen[fi]; !dup {
				seen[fi] = 0
				fams = append(fams, fi)
			}
			seen[fi]++
		}
		if !ok || len(fams) < 2 || rs.rhs >= len(fams) {
			continue
		}
		for _, fi := range fams {
			if seen[fi] != freeInFamily[fi] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		groupCands = append(groupCands, groupCand{
			idx: ci, rhs: rs.rhs, fams: fams, inRow: inRow,
			ratio: float64(rs.rhs) / float64(len(fams)),
		})
	}
	sort.Slice(groupCands, func(i, j int) bool {
		if groupCands[i].ratio != groupCands[j].ratio {
			return groupCands[i].ratio < groupCands[j].ratio
		}
		return groupCands[i].idx < groupCands[j].idx
	})
	for _, gc := range groupCands {
		conflict := false
		for _, fi := range gc.fams {
			if st.families[fi].inGroup {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		for _, fi := range gc.fams {
			st.families[fi].inGroup = true
		}
		st.groups = append(st.groups, capGroup{rhs: gc.rhs, families: gc.fams, inRow: gc.inRow})
	}

	// Flat families for wider caps that do not decompose.
	var flats []rowCandidate
	for ci := range p.cons {
		rs := shapes[ci]
		if p.cons[ci].Sense != LE || !rs.allOnes || rs.rhs < 2 || rs.free == 0 || rs.rhs >= rs.possible {
			continue
		}
		flats = append(flats, rowCandidate{idx: ci, rhs: rs.rhs, ratio: float64(rs.rhs) / float64(rs.free)})
	}
	sortCandidates(flats)
	for _, cand := range flats {
		c := &p.cons[cand.idx]
		taken := false
		for _, t := range c.Terms {
			if st.varFamily[t.Var.id] != -1 {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		f := gubFamily{rhs: cand.rhs}
		for _, t := range c.Terms {
			st.varFamily[t.Var.id] = len(st.families)
			f.members = append(f.members, t.Var.id)
		}
		st.families = append(st.families, f)
	}

	st.famForcedSum = make([]float64, len(st.families))
	st.famForcedCount = make([]int, len(st.families))
	st.famFreeBest = make([]float64, len(st.families))
	st.famTaken = make([]int, len(st.families))
	st.scratch = make([]float64, 0, len(st.families)+8)

	// Penalty folds: a slack appearing in exactly one row, penalized by
	// the objective, is charged through the row's variables instead.
	// Each fold is kept only when it does not loosen the root bound.
	best := st.upperBound(lo, hi)
	for ci := range p.cons {
		c := &p.cons[ci]
		if c.Sense == EQ {
			continue
		}
		slack, scale := -1, 0.0
		for _, t := range c.Terms {
			id := t.Var.id
			if occ[id] != 1 || st.objCoeff[id] >= 0 || st.varFamily[id] != -1 || st.folded[id] {
				continue
			}
			if c.Sense == LE && t.Coeff < 0 {
				slack, scale = id, -t.Coeff
				break
			}
			if c.Sense == GE && t.Coeff > 0 {
				slack, scale = id, t.Coeff
				break
			}
		}
		if slack == -1 {
			continue
		}

		cs := st.objCoeff[slack] / scale
		savedSlack := st.objBound[slack]
		savedConst := st.boundConst
		for _, t := range c.Terms {
			if t.Var.id == slack {
				continue
			}
			if c.Sense == LE {
				st.objBound[t.Var.id] += cs * t.Coeff
			} else {
				st.objBound[t.Var.id] -= cs * t.Coeff
			}
		}
		if c.Sense == LE {
			st.boundConst -= cs * c.RHS
		} else {
			st.boundConst += cs * c.RHS
		}
		st.objBound[slack] = 0
		st.folded[slack] = true
		st.folds = append(st.folds, penaltyFold{
			con: ci, slack: slack, coeff: st.objCoeff[slack], scale: scale, isGE: c.Sense == GE,
		})

		if ub := st.upperBound(lo, hi); ub <= best+roundEps {
			best = ub
			continue
		}
		// Loosened the bound; undo.
		for _, t := range c.Terms {
			if t.Var.id == slack {
				continue
			}
			if c.Sense == LE {
				st.objBound[t.Var.id] -= cs * t.Coeff
			} else {
				st.objBound[t.Var.id] += cs * t.Coeff
			}
		}
		st.objBound[slack] = savedSlack
		st.boundConst = savedConst
		st.folded[slack] = false
		st.folds = st.folds[:len(st.folds)-1]
	}

	// Hard cover rows over singleton families.
	for ci := range p.cons {
		c := &p.cons[ci]
		if c.Sense != GE {
			continue
		}
		rhs := int(math.Ceil(c.RHS - feasEps))
		if rhs < 1 {
			continue
		}
		ok := true
		var vars, fams []int
		seen := map[int]bool{}
		for _, t := range c.Terms {
			id := t.Var.id
			fi := st.varFamily[id]
			if t.Coeff != 1 || fi == -1 || st.families[fi].rhs != 1 || st.folded[id] {
				ok = false
				break
			}
			vars = append(vars, id)
			if !seen[fi] {
				seen[fi] = true
				fams = append(fams, fi)
			}
		}
		if !ok {
			continue
		}
		st.covers = append(st.covers, coverRow{con: ci, rhs: rhs, vars: vars, fams: fams})
	}
	st.coverVals = make([]coverVal, 0, len(st.covers))
}

// upperBound is an admissible bound on the objective under the given
// bounds, over the folded coefficients: families contribute their best
// picks, cap groups their top family bests, folded slacks their implied
// floor, and disjoint cover rows subtract the regret of being satisfied.
func (st *searchState) upperBound(lo, hi []int) float64 {
	ub := st.boundConst

	for id, c := range st.objBound {
		if st.varFamily[id] >= 0 || st.folded[id] {
			continue
		}
		if c > 0 {
			ub += c * float64(hi[id])
		} else {
			ub += c * float64(lo[id])
		}
	}

	for fi := range st.families {
		f := &st.families[fi]
		forcedSum, forcedCount, freeBest := 0.0, 0, 0.0
		for _, id := range f.members {
			if lo[id] == 1 {
				forcedSum += st.objBound[id]
				forcedCount++
			} else if hi[id] == 1 {
				if c := st.objBound[id]; c > freeBest {
					freeBest = c
				}
			}
		}
		st.famForcedSum[fi] = forcedSum
		st.famForcedCount[fi] = forcedCount
		st.famFreeBest[fi] = freeBest

		if f.inGroup {
			continue
		}
		ub += forcedSum
		if f.rhs == 1 {
			if forcedCount == 0 {
				ub += freeBest
			}
			continue
		}
		k := f.rhs - forcedCount
		if k <= 0 {
			continue
		}
		st.scratch = st.scratch[:0]
		for _, id := range f.members {
			if lo[id] == 0 && hi[id] == 1 && st.objBound[id] > 0 {
				st.scratch = append(st.scratch, st.objBound[id])
			}
		}
		ub += sumTop(st.scratch, k)
	}

	for gi := range st.groups {
		g := &st.groups[gi]
		k := g.rhs
		st.scratch = st.scratch[:0]
		for _, fi := range g.families {
			ub += st.famForcedSum[fi]
			if st.famForcedCount[fi] > 0 {
				for _, id := range st.families[fi].members {
					if lo[id] == 1 && g.inRow[id] {
						k--
					}
				}
				continue
			}
			if b := st.famFreeBest[fi]; b > 0 {
				st.scratch = append(st.scratch, b)
			}
		}
		if k > 0 {
			ub += sumTop(st.scratch, k)
		}
	}

	// A slack pinned above the floor its row implies is a real penalty
	// the folds have not charged yet.
	for i := range st.folds {
		fr := &st.folds[i]
		if lo[fr.slack] == 0 {
			continue
		}
		c := &st.problem.cons[fr.con]
		ext := 0.0
		for _, t := range c.Terms {
			if t.Var.id == fr.slack {
				continue
			}
			up := fr.isGE == (t.Coeff < 0)
			if up {
				ext += t.Coeff * float64(hi[t.Var.id])
			} else {
				ext += t.Coeff * float64(lo[t.Var.id])
			}
		}
		var sigmaMax float64
		if fr.isGE {
			sigmaMax = (c.RHS - ext) / fr.scale
		} else {
			sigmaMax = (ext - c.RHS) / fr.scale
		}
		if d := float64(lo[fr.slack]) - sigmaMax; d > 0 {
			ub += fr.coeff * d
		}
	}

	if len(st.covers) == 0 {
		return ub
	}

	st.takenStamp++
	vals := st.coverVals[:0]
	for idx := range st.covers {
		cr := &st.covers[idx]
		satisfied := false
		for _, id := range cr.vars {
			if lo[id] == 1 {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}
		st.scratch = st.scratch[:0]
		for _, fi := range cr.fams {
			minR := math.Inf(1)
			for _, id := range cr.vars {
				if st.varFamily[id] != fi || lo[id] != 0 || hi[id] != 1 {
					continue
				}
				r := st.famFreeBest[fi] - st.objBound[id]
				if r < 0 {
					r = 0
				}
				if r < minR {
					minR = r
				}
			}
			if !math.IsInf(minR, 1) {
				st.scratch = append(st.scratch, minR)
			}
		}
		if len(st.scratch) < cr.rhs {
			// Pick-one exclusivity leaves too few candidates.
			return math.Inf(-1)
		}
		sort.Float64s(st.scratch)
		v := 0.0
		for i := 0; i < cr.rhs; i++ {
			v += st.scratch[i]
		}
		if v > 0 {
			vals = append(vals, coverVal{idx: idx, val: v})
		}
	}
	sort.Slice(vals, func(i, j int) bool {
		if vals[i].val != vals[j].val {
			return vals[i].val > vals[j].val
		}
		return vals[i].idx < vals[j].idx
	})
	for _, cv := range vals {
		cr := &st.covers[cv.idx]
		free := true
		for _, fi := range cr.fams {
			if st.famTaken[fi] == st.takenStamp {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for _, fi := range cr.fams {
			st.famTaken[fi] = st.takenStamp
		}
		ub -= cv.val
	}
	st.coverVals = vals[:0]

	return ub
}

// sumTop adds the k largest values; values may arrive in any order.
func sumTop(values []float64, k int) float64 {
	if k <= 0 || len(values) == 0 {
		return 0
	}
	if k >= len(values) {
		total := 0.0
		for _, v := range values {
			total += v
		}
		return total
	}
	sort.Float64s(values)
	total := 0.0
	for i := len(values) - k; i < len(values); i++ {
		total += values[i]
	}
	return total
}

func sortCandidates(cands []rowCandidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].ratio != cands[j].ratio {
			return cands[i].ratio < cands[j].ratio
		}
		return cands[i].idx < cands[j].idx
	})
}

// propagate runs bounds-consistency over all constraints until fixpoint.
// Returns false when some constraint cannot be satisfied within bounds.
func propagate(p *Problem, lo, hi []int) bool {
	for {
		changed := false
		for ci := range p.cons {
			c := &p.cons[ci]
			minSum, maxSum := 0.0, 0.0
			for _, t := range c.Terms {
				id := t.Var.id
				if t.Coeff > 0 {
					minSum += t.Coeff * float64(lo[id])
					maxSum += t.Coeff * float64(hi[id])
				} else {
					minSum += t.Coeff * float64(hi[id])
					maxSum += t.Coeff * float64(lo[id])
				}
			}

			if c.Sense == LE || c.Sense == EQ {
				if minSum > c.RHS+feasEps {
					return false
				}
				for _, t := range c.Terms {
					id := t.Var.id
					if lo[id] == hi[id] || t.Coeff == 0 {
						continue
					}
					if t.Coeff > 0 {
						rest := minSum - t.Coeff*float64(lo[id])
						bound := int(math.Floor((c.RHS-rest)/t.Coeff + roundEps))
						if bound < hi[id] {
							if bound < lo[id] {
								return false
							}
							hi[id] = bound
							changed = true
						}
					} else {
						rest := minSum - t.Coeff*float64(hi[id])
						bound := int(math.Ceil((c.RHS-rest)/t.Coeff - roundEps))
						if bound > lo[id] {
							if bound > hi[id] {
								return false
							}
							lo[id] = bound
							changed = true
						}
					}
				}
			}

			if c.Sense == GE || c.Sense == EQ {
				// Recompute: the LE pass above may have tightened bounds.
				maxSum = 0.0
				for _, t := range c.Terms {
					id := t.Var.id
					if t.Coeff > 0 {
						maxSum += t.Coeff * float64(hi[id])
					} else {
						maxSum += t.Coeff * float64(lo[id])
					}
				}
				if maxSum < c.RHS-feasEps {
					return false
				}
				for _, t := range c.Terms {
					id := t.Var.id
					if lo[id] == hi[id] || t.Coeff == 0 {
						continue
					}
					if t.Coeff > 0 {
						rest := maxSum - t.Coeff*float64(hi[id])
						bound := int(math.Ceil((c.RHS-rest)/t.Coeff - roundEps))
						if bound > lo[id] {
							if bound > hi[id] {
								return false
							}
							lo[id] = bound
							changed = true
						}
					} else {
						rest := maxSum - t.Coeff*float64(lo[id])
						bound := int(math.Floor((c.RHS-rest)/t.Coeff + roundEps))
						if bound < hi[id] {
							if bound < lo[id] {
								return false
							}
							hi[id] = bound
							changed = true
						}
					}
				}
			}
		}
		if !changed {
			return true
		}
	}
}

func sortByImpact(order []int, objCoeff []float64) {
	// Insertion sort keeps ties in variable order, so runs are deterministic.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			if math.Abs(objCoeff[a]) >= math.Abs(objCoeff[b]) {
				break
			}
			order[j-1], order[j] = b, a
		}
	}
}
