package domain

import (
	"math"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sergi/go-diff/diffmatchpatch"

	m "gollate.dev/pkg/gollate/internal/model"
)

const (
	defaultDistanceCacheSize = 8192
	maxDissimilarity         = 1000
	unreachable              = math.MaxInt32
)

// cost is compared lexicographically: fewest edits, then fewest matched blocks
// (longer contiguous runs), then the least dissimilar substitutions.
type cost struct {
	edits  int32
	blocks int32
	dissim int32
}

var infinite = cost{edits: unreachable}

func (c cost) reachable() bool { return c.edits != unreachable }

func (c cost) less(o cost) bool {
	if c.edits != o.edits {
		return c.edits < o.edits
	}

	if c.blocks != o.blocks {
		return c.blocks < o.blocks
	}

	return c.dissim < o.dissim
}

func (c cost) add(edits, blocks, dissim int32) cost {
	return cost{edits: c.edits + edits, blocks: c.blocks + blocks, dissim: c.dissim + dissim}
}

// Search states: whether the path so far ended with a match.
const (
	afterOther = 0
	afterMatch = 1
)

// editMatcher is a unit-cost edit distance over (columns × tokens). A token
// matches a column when its normalized form equals the normalized form of any
// token already in the column. On full ties the traceback places a token in the
// earliest column it can occupy: it prefers leaving a later column empty over
// aligning, and aligning over opening a new column.
type editMatcher struct {
	distance *keyDistance
}

func newEditMatcher(cacheSize int) *editMatcher {
	return &editMatcher{distance: newKeyDistance(cacheSize)}
}

// NewEditMatcher returns the dynamic-programming PairwiseMatcher.
func NewEditMatcher() PairwiseMatcher {
	return newEditMatcher(defaultDistanceCacheSize)
}

type editGrid struct {
	cols, toks int
	costs      [2][]cost
	matches    []bool
	dissims    []int32
}

func (g *editGrid) at(i, j int) int { return i*(g.toks+1) + j }

func (g *editGrid) pair(i, j int) int { return i*g.toks + j }

func (em *editMatcher) Match(columns []m.Column, witnesses []string, tokens []m.Token) []Step {
	grid := em.fill(columns, witnesses, tokens)
	return grid.traceback()
}

func (em *editMatcher) fill(columns []m.Column, witnesses []string, tokens []m.Token) *editGrid {
	n, t := len(columns), len(tokens)
	size := (n + 1) * (t + 1)

	grid := &editGrid{
		cols:    n,
		toks:    t,
		matches: make([]bool, n*t),
		dissims: make([]int32, n*t),
	}

	for s := range grid.costs {
		grid.costs[s] = make([]cost, size)
		for k := range grid.costs[s] {
			grid.costs[s][k] = infinite
		}
	}

	sets := columnKeySets(columns)
	keys := make([][]string, n)

	for i, c := range columns {
		keys[i] = c.Keys(witnesses)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < t; j++ {
			_, ok := sets[i][tokens[j].Normalized]
			grid.matches[grid.pair(i, j)] = ok

			if !ok {
				grid.dissims[grid.pair(i, j)] = em.distance.toColumn(keys[i], tokens[j].Normalized)
			}
		}
	}

	grid.costs[afterOther][grid.at(0, 0)] = cost{}

	for i := 0; i <= n; i++ {
		for j := 0; j <= t; j++ {
			for s := range grid.costs {
				cur := grid.costs[s][grid.at(i, j)]
				if !cur.reachable() {
					continue
				}

				if i < n {
					grid.relax(afterOther, grid.at(i+1, j), cur.add(1, 0, 0))
				}

				if j < t {
					grid.relax(afterOther, grid.at(i, j+1), cur.add(1, 0, 0))
				}

				if i < n && j < t {
					if grid.matches[grid.pair(i, j)] {
						grid.relax(afterMatch, grid.at(i+1, j+1), cur.add(0, newBlock(s), 0))
					} else {
						grid.relax(afterOther, grid.at(i+1, j+1), cur.add(1, 0, grid.dissims[grid.pair(i, j)]))
					}
				}
			}
		}
	}

	return grid
}

func newBlock(state int) int32 {
	if state == afterMatch {
		return 0
	}

	return 1
}

func (g *editGrid) relax(state, at int, c cost) {
	if c.less(g.costs[state][at]) {
		g.costs[state][at] = c
	}
}

// traceback walks from the end back to the origin. Whenever two predecessors
// are equally good the one ending in a non-match is taken, which together with
// the move order below pushes tokens to the earliest possible column.
func (g *editGrid) traceback() []Step {
	i, j := g.cols, g.toks
	end := g.at(i, j)

	state := afterOther
	if g.costs[afterMatch][end].less(g.costs[afterOther][end]) {
		state = afterMatch
	}

	reversed := make([]Step, 0, i+j)

	for i > 0 || j > 0 {
		cur := g.costs[state][g.at(i, j)]

		if state == afterMatch {
			prev, ok := g.predecessor(i-1, j-1, cur, func(s int) cost { return cost{0, newBlock(s), 0} })
			if !ok {
				break
			}

			reversed = append(reversed, Step{Kind: StepAlign, Column: i - 1, Token: j - 1})
			i, j, state = i-1, j-1, prev

			continue
		}

		if i > 0 {
			if prev, ok := g.predecessor(i-1, j, cur, unitStep); ok {
				reversed = append(reversed, Step{Kind: StepGap, Column: i - 1, Token: -1})
				i, state = i-1, prev

				continue
			}
		}

		if i > 0 && j > 0 && !g.matches[g.pair(i-1, j-1)] {
			d := g.dissims[g.pair(i-1, j-1)]
			if prev, ok := g.predecessor(i-1, j-1, cur, func(int) cost { return cost{1, 0, d} }); ok {
				reversed = append(reversed, Step{Kind: StepAlign, Column: i - 1, Token: j - 1})
				i, j, state = i-1, j-1, prev

				continue
			}
		}

		if j > 0 {
			if prev, ok := g.predecessor(i, j-1, cur, unitStep); ok {
				reversed = append(reversed, Step{Kind: StepInsert, Column: -1, Token: j - 1})
				j, state = j-1, prev

				continue
			}
		}

		break
	}

	steps := make([]Step, len(reversed))
	for k, step := range reversed {
		steps[len(reversed)-1-k] = step
	}

	return steps
}

func unitStep(int) cost { return cost{1, 0, 0} }

// predecessor finds the state at (i, j) from which a move costing delta(state)
// reaches target exactly.
func (g *editGrid) predecessor(i, j int, target cost, delta func(state int) cost) (int, bool) {
	if i < 0 || j < 0 {
		return 0, false
	}

	for _, s := range [...]int{afterOther, afterMatch} {
		prev := g.costs[s][g.at(i, j)]
		if !prev.reachable() {
			continue
		}

		d := delta(s)
		if prev.add(d.edits, d.blocks, d.dissim) == target {
			return s, true
		}
	}

	return 0, false
}

// keyDistance measures how different two normalized forms are, on a scale of 0
// (equal) to maxDissimilarity, from their character Levenshtein distance.
type keyDistance struct {
	dmp   *diffmatchpatch.DiffMatchPatch
	cache *lru.Cache[[2]string, int32]
}

func newKeyDistance(size int) *keyDistance {
	if size <= 0 {
		size = defaultDistanceCacheSize
	}

	cache, err := lru.New[[2]string, int32](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	return &keyDistance{dmp: dmp, cache: cache}
}

func (d *keyDistance) toColumn(columnKeys []string, key string) int32 {
	best := int32(maxDissimilarity)

	for _, ck := range columnKeys {
		if v := d.between(ck, key); v < best {
			best = v
		}
	}

	return best
}

func (d *keyDistance) between(a, b string) int32 {
	if a == b {
		return 0
	}

	if a > b {
		a, b = b, a
	}

	k := [2]string{a, b}
	if v, ok := d.cache.Get(k); ok {
		return v
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	lev := d.dmp.DiffLevenshtein(d.dmp.DiffMain(a, b, false))
	v := int32(min(maxDissimilarity, lev*maxDissimilarity/longest))

	d.cache.Add(k, v)

	return v
}
