package opset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testEdit struct {
	timestamp int
	value     int
}

func (e testEdit) Apply(state *[]int) {
	*state = append(*state, e.value)
}

func compareTestEdits(a, b testEdit) int {
	return a.timestamp - b.timestamp
}

func TestVariousOpsWork(t *testing.T) {
	o := New[testEdit](([]int{0}), 2, compareTestEdits)

	o.Edit(testEdit{timestamp: 10, value: 1})
	assert.Equal(t, []int{0, 1}, o.State())
	assert.Len(t, o.states, 2)

	o.Edit(testEdit{timestamp: 5, value: 2})
	assert.Equal(t, []int{0, 2, 1}, o.State())
	assert.Len(t, o.states, 2)

	o.Edit(testEdit{timestamp: 15, value: 3})
	assert.Equal(t, []int{0, 2, 1, 3}, o.State())
	assert.Len(t, o.states, 3)

	o.Edit(testEdit{timestamp: 12, value: 4})
	assert.Equal(t, []int{0, 2, 1, 4, 3}, o.State())
	assert.Len(t, o.states, 3)

	o.Edit(testEdit{timestamp: 11, value: 5})
	assert.Equal(t, []int{0, 2, 1, 5, 4, 3}, o.State())
	assert.Len(t, o.states, 4)
}

func TestVariousOpsWorkWithIter(t *testing.T) {
	o := New[testEdit](([]int{0}), 2, compareTestEdits)

	ops := []testEdit{
		{timestamp: 10, value: 1},
		{timestamp: 5, value: 2},
		{timestamp: 15, value: 3},
		{timestamp: 12, value: 4},
		{timestamp: 11, value: 5},
	}
	o.EditFromIter(ops)
	assert.Equal(t, []int{0, 2, 1, 5, 4, 3}, o.State())
	assert.Len(t, o.states, 4)
}

func TestDuplicateTimestampPanics(t *testing.T) {
	o := New[testEdit](([]int{0}), 2, compareTestEdits)
	o.Edit(testEdit{timestamp: 10, value: 1})
	assert.Panics(t, func() {
		o.Edit(testEdit{timestamp: 10, value: 2})
	})
}
