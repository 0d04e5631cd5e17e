package doctree

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioStringInsertsInterleave(t *testing.T) {
	tree := NewWithStringRoot(0)
	ref := StringRef[int]{ID: 0}

	require.NoError(t, tree.InsertCharacter(0, 1, 'a'))
	text, err := ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "a", text)

	require.NoError(t, tree.InsertCharacter(1, 2, 'b'))
	text, err = ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)

	require.NoError(t, tree.InsertCharacter(1, 3, 'c'))
	text, err = ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "acb", text)

	require.NoError(t, tree.InsertCharacter(0, 4, 'd'))
	text, err = ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "dacb", text)
}

func TestReverseCharactersYieldsTextBackward(t *testing.T) {
	tree := NewWithStringRoot(0)
	ref := StringRef[int]{ID: 0}

	require.NoError(t, tree.InsertCharacter(0, 1, 'a'))
	require.NoError(t, tree.InsertCharacter(1, 2, 'b'))
	require.NoError(t, tree.InsertCharacter(1, 3, 'c'))
	require.NoError(t, tree.InsertCharacter(0, 4, 'd'))

	text, err := ref.Text(&tree)
	require.NoError(t, err)
	require.Equal(t, "dacb", text)

	var reversed []byte
	var ids []int
	err = ref.ReverseCharacters(&tree, func(id int, ch rune) bool {
		reversed = append(reversed, string(ch)...)
		ids = append(ids, id)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, "bcad", string(reversed))
	assert.Equal(t, []int{2, 3, 1, 4}, ids)
}

func TestReverseCharactersStopsEarly(t *testing.T) {
	tree := NewWithStringRoot(0)
	require.NoError(t, tree.InsertCharacter(0, 1, 'a'))
	require.NoError(t, tree.InsertCharacter(1, 2, 'b'))
	require.NoError(t, tree.InsertCharacter(2, 3, 'c'))

	ref := StringRef[int]{ID: 0}
	var seen []rune
	err := ref.ReverseCharacters(&tree, func(_ int, ch rune) bool {
		seen = append(seen, ch)
		return len(seen) < 2
	})
	require.NoError(t, err)
	assert.Equal(t, []rune{'c', 'b'}, seen)
}

func TestReverseCharactersAcrossSplitSegments(t *testing.T) {
	tree := NewWithStringRoot(0)
	ref := StringRef[int]{ID: 0}

	anchor := 0
	for id := 1; id <= 3000; id++ {
		require.NoError(t, tree.InsertCharacter(anchor, id, 'x'))
		anchor = id
	}

	forward, err := ref.Text(&tree)
	require.NoError(t, err)

	var reversed []byte
	err = ref.ReverseCharacters(&tree, func(_ int, ch rune) bool {
		reversed = append(reversed, string(ch)...)
		return true
	})
	require.NoError(t, err)

	runes := []rune(forward)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	assert.Equal(t, string(runes), string(reversed))
}

func TestScenarioLargeInsertThenDeleteReturnsToBaseAndTombstonesAnchorCorrectly(t *testing.T) {
	tree := NewWithStringRoot(0)
	ref := StringRef[int]{ID: 0}

	require.NoError(t, tree.InsertCharacter(0, 1, 'a'))
	require.NoError(t, tree.InsertCharacter(1, 2, 'b'))
	require.NoError(t, tree.InsertCharacter(1, 3, 'c'))
	require.NoError(t, tree.InsertCharacter(0, 4, 'd'))

	const lastID = 10000
	anchor := 4
	for id := 5; id <= lastID; id++ {
		digit := rune('0' + (id % 10))
		require.NoError(t, tree.InsertCharacter(anchor, id, digit))
		anchor = id
	}

	text, err := ref.Text(&tree)
	require.NoError(t, err)
	assert.True(t, len(text) > len("dacb"))
	assert.Regexp(t, `^d[0-9]+acb$`, text)

	for id := 5; id <= lastID; id++ {
		require.NoError(t, tree.DeleteCharacter(id))
	}

	text, err = ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "dacb", text)

	require.NoError(t, tree.InsertCharacter(lastID, 20000, 'X'))
	text, err = ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "dXacb", text)
}

func TestSegmentBoundNeverExceedsSplitLen(t *testing.T) {
	tree := NewWithStringRoot(0)
	anchor := 0
	for id := 1; id <= 5000; id++ {
		require.NoError(t, tree.InsertCharacter(anchor, id, 'x'))
		anchor = id
	}

	rootNid, err := tree.idToNodeID(0)
	require.NoError(t, err)
	root := tree.mustGetNode(rootNid)

	seg := root.start
	visited := 0
	for {
		node := tree.mustGetNode(seg)
		assert.LessOrEqual(t, len(node.ids), splitLen)
		visited++
		if seg == root.end {
			break
		}
		seg = node.next
	}
	assert.Greater(t, visited, 1, "5000 characters must have forced at least one split")
}

func TestStringContentsStayValidUTF8AcrossMultibyteInserts(t *testing.T) {
	tree := NewWithStringRoot(0)
	ref := StringRef[int]{ID: 0}

	require.NoError(t, tree.InsertCharacter(0, 1, '世'))
	require.NoError(t, tree.InsertCharacter(1, 2, '界'))
	require.NoError(t, tree.InsertCharacter(1, 3, 'a'))

	text, err := ref.Text(&tree)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, "世a界", text)

	require.NoError(t, tree.DeleteCharacter(1))
	text, err = ref.Text(&tree)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, "a界", text)
}

func TestArraySequenceInsertAndDeleteMirrorsStringSequence(t *testing.T) {
	tree := NewWithArrayRoot(0)
	ref := ArrayRef[int]{ID: 0}

	require.NoError(t, tree.InsertListItem(0, 1, Int[int](1)))
	require.NoError(t, tree.InsertListItem(1, 2, Int[int](2)))
	require.NoError(t, tree.InsertListItem(1, 3, Int[int](3)))

	var got []int64
	collect := func(_ int, v Value[int]) bool { got = append(got, v.Int()); return true }
	require.NoError(t, ref.Values(&tree, collect))
	assert.Equal(t, []int64{1, 3, 2}, got)

	removed, err := tree.DeleteListItem(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed.Int())

	got = nil
	require.NoError(t, ref.Values(&tree, collect))
	assert.Equal(t, []int64{1, 2}, got)
}

func TestDeletedCharacterTombstoneRemainsValidInsertionAnchor(t *testing.T) {
	tree := NewWithStringRoot(0)
	ref := StringRef[int]{ID: 0}

	require.NoError(t, tree.InsertCharacter(0, 1, 'a'))
	require.NoError(t, tree.InsertCharacter(1, 2, 'b'))
	require.NoError(t, tree.DeleteCharacter(1))

	text, err := ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "b", text)

	require.NoError(t, tree.InsertCharacter(1, 3, 'x'))
	text, err = ref.Text(&tree)
	require.NoError(t, err)
	assert.Equal(t, "xb", text)
}
