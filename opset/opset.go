// Package opset totally orders a stream of timestamped operations and
// replays them into a state value, caching checkpoints along the way so
// that an out-of-order insertion only has to replay forward from the
// nearest usable checkpoint rather than from scratch.
package opset

import "sort"

// Operation applies itself to state in place. Implementations should be
// side-effect-free other than through the state pointer, since the same
// Operation value may be applied more than once across recalculations that
// replay from an earlier checkpoint.
type Operation[State any] interface {
	Apply(state *State)
}

// checkpoint pins a snapshot of State to the number of operations that had
// been applied when it was taken.
type checkpoint[S any] struct {
	applied int
	state   S
}

// Opset is a totally-ordered, checkpoint-cached log of Operations. State
// values are expected to be cheap to copy (e.g. backed by structurally
// shared persistent collections), since a checkpoint is taken by value
// every cacheGap operations.
type Opset[E Operation[S], S any] struct {
	ops      []E
	compare  func(a, b E) int
	states   []checkpoint[S]
	cacheGap int
}

// New creates an Opset seeded with initialState and no operations. compare
// must impose a strict total order on E - two operations that compare
// equal (e.g. a duplicate timestamp) is a caller error, and Edit/EditFromIter
// panic rather than silently picking a tie-break.
func New[E Operation[S], S any](initialState S, cacheGap int, compare func(a, b E) int) *Opset[E, S] {
	return &Opset[E, S]{
		compare:  compare,
		cacheGap: cacheGap,
		states:   []checkpoint[S]{{applied: 0, state: initialState}},
	}
}

// Edit inserts edit at its total-order position, possibly before operations
// already present, and recomputes state from the nearest checkpoint that
// precedes the insertion.
func (o *Opset[E, S]) Edit(edit E) {
	insertPoint := o.search(edit)
	o.ops = insertAt(o.ops, insertPoint, edit)
	o.recalculate(insertPoint)
}

// EditFromIter inserts every operation in edits, recomputing state only
// once afterward from the earliest point any of them landed. This is
// cheaper than calling Edit in a loop when replaying a batch that may
// already be in order.
func (o *Opset[E, S]) EditFromIter(edits []E) {
	leastInsertPoint := -1
	for _, edit := range edits {
		insertPoint := o.search(edit)
		o.ops = insertAt(o.ops, insertPoint, edit)
		if leastInsertPoint == -1 || insertPoint < leastInsertPoint {
			leastInsertPoint = insertPoint
		}
	}
	if leastInsertPoint != -1 {
		o.recalculate(leastInsertPoint)
	}
}

// State returns the current, fully-replayed state.
func (o *Opset[E, S]) State() S {
	return o.states[len(o.states)-1].state
}

// Len reports how many operations have been applied.
func (o *Opset[E, S]) Len() int { return len(o.ops) }

func (o *Opset[E, S]) search(e E) int {
	lo, hi := 0, len(o.ops)
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := o.compare(o.ops[mid], e); {
		case c == 0:
			panic("opset: two operations compared equal")
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo
}

// recalculate truncates the checkpoint cache to whatever remains valid
// after an insertion at insertPoint, then replays forward, refreshing the
// cache every cacheGap operations.
func (o *Opset[E, S]) recalculate(insertPoint int) {
	firstBad := sort.Search(len(o.states), func(i int) bool {
		return o.states[i].applied >= insertPoint
	})
	if firstBad < len(o.states) && o.states[firstBad].applied == insertPoint {
		firstBad++
	}
	o.states = o.states[:firstBad]

	last := o.states[len(o.states)-1]
	o.states = o.states[:len(o.states)-1]
	applied, state := last.applied, last.state

	for applied < len(o.ops) {
		if len(o.states) == 0 || o.states[len(o.states)-1].applied+o.cacheGap <= applied {
			o.states = append(o.states, checkpoint[S]{applied: applied, state: state})
		}
		o.ops[applied].Apply(&state)
		applied++
	}
	o.states = append(o.states, checkpoint[S]{applied: applied, state: state})
}

func insertAt[E any](s []E, at int, v E) []E {
	var zero E
	s = append(s, zero)
	copy(s[at+1:], s[at:])
	s[at] = v
	return s
}
