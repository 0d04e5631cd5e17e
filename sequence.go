package doctree

import "unicode/utf8"

// splitLen is the hard upper bound on a segment's ids list. Once exceeded,
// considerSplit divides the segment in two. This is an implementation
// constant, not part of the public contract - peers comparing segment
// structure directly (rather than just converged values) must agree on it.
const splitLen = 1024

// insertContentFn inserts a new entry into node's contents at the given
// content index (a byte offset for strings, an entry index for arrays) and
// returns the updated node along with the encoded width of what was
// inserted (UTF-8 byte length for a character, 1 for an array entry).
type insertContentFn[Id comparable] func(node treeNode[Id], at int) (treeNode[Id], int)

// deleteContentFn removes the entry at the given content index and returns
// the updated node along with the encoded width of what was removed.
type deleteContentFn[Id comparable] func(node treeNode[Id], at int) (treeNode[Id], int)

// sequenceInsert is the shared insertion logic behind InsertCharacter and
// InsertListItem: locate where appendID's successor lives, splice the new
// identity into that segment's ids list (shifting later live positions by
// the inserted width), and consider splitting the segment afterward.
func (t *Tree[Id]) sequenceInsert(appendID, newID Id, doInsert insertContentFn[Id]) error {
	if t.idToNode.Has(newID) {
		return ErrDuplicateID
	}
	nid, at, idListIdx, err := t.lookupInsertionPoint(appendID)
	if err != nil {
		return err
	}
	node := t.mustGetNode(nid)
	node, insertedLen := doInsert(node, at)

	ids := make([]idSlot[Id], len(node.ids))
	copy(ids, node.ids)
	for i := idListIdx; i < len(ids); i++ {
		if ids[i].live {
			ids[i].pos += insertedLen
		}
	}
	newIDs := make([]idSlot[Id], len(ids)+1)
	copy(newIDs, ids[:idListIdx])
	newIDs[idListIdx] = idSlot[Id]{id: newID, pos: at, live: true}
	copy(newIDs[idListIdx+1:], ids[idListIdx:])
	node.ids = newIDs
	t.nodes = t.nodes.Set(nid, node)
	t.idToNode = t.idToNode.Set(newID, nid)

	t.considerSplit(nid)
	return nil
}

// sequenceDelete is the shared deletion logic behind DeleteCharacter and
// DeleteListItem: locate id's slot, and if it isn't already a tombstone,
// clear its contents and shift later live positions down by its width.
// Deleting an already-tombstoned id is a no-op, which is what makes replayed
// deletes idempotent.
func (t *Tree[Id]) sequenceDelete(id Id, doDelete deleteContentFn[Id]) error {
	nid, idListIdx, err := t.lookupIDIndex(id)
	if err != nil {
		return err
	}
	node := t.mustGetNode(nid)
	slot := node.ids[idListIdx]
	if !slot.live {
		return nil
	}
	node, deletedLen := doDelete(node, slot.pos)

	ids := make([]idSlot[Id], len(node.ids))
	copy(ids, node.ids)
	ids[idListIdx] = idSlot[Id]{id: id, live: false}
	for i := idListIdx + 1; i < len(ids); i++ {
		if ids[i].live {
			ids[i].pos -= deletedLen
		}
	}
	node.ids = ids
	t.nodes = t.nodes.Set(nid, node)
	return nil
}

// lookupIDIndex finds the (segment, ids-list index) holding lookupID. It
// rejects containers and non-sequence nodes, matching the Rust original's
// segment_ids() erroring for anything but a String/Array segment.
func (t *Tree[Id]) lookupIDIndex(lookupID Id) (nodeID, int, error) {
	nid, err := t.idToNodeID(lookupID)
	if err != nil {
		return 0, 0, err
	}
	node := t.mustGetNode(nid)
	if !node.isSequence() || node.isContainer() {
		return 0, 0, ErrUnexpectedNodeType
	}
	for i, slot := range node.ids {
		if slot.id == lookupID {
			return nid, i, nil
		}
	}
	panic("doctree: id not found in its own segment's ids list")
}

// lookupInsertionPoint finds the (segment, content index, ids-list index)
// that a character/entry inserted immediately after lookupID must land at.
// If lookupID names the sequence container itself, the insertion point is
// the very front of the first segment.
func (t *Tree[Id]) lookupInsertionPoint(lookupID Id) (nodeID, int, int, error) {
	nid, err := t.idToNodeID(lookupID)
	if err != nil {
		return 0, 0, 0, err
	}
	node := t.mustGetNode(nid)
	if !node.isSequence() {
		return 0, 0, 0, ErrUnexpectedNodeType
	}
	if node.isContainer() {
		_, start := node.adjacencies()
		return start, 0, 0, nil
	}
	idListIdxOpt := -1
	for i, slot := range node.ids {
		if idListIdxOpt != -1 && slot.live {
			return nid, slot.pos, idListIdxOpt, nil
		}
		if slot.id == lookupID {
			idListIdxOpt = i + 1
		}
	}
	if idListIdxOpt != -1 {
		return nid, node.contentsLen(), idListIdxOpt, nil
	}
	panic("doctree: id not found in its own segment's ids list")
}

// considerSplit splits segment in two if its ids list exceeds splitLen,
// recursing until every resulting piece is within bounds. Returns the
// leftmost and rightmost resulting segment (both equal to segment if no
// split occurred).
func (t *Tree[Id]) considerSplit(segment nodeID) (nodeID, nodeID) {
	node := t.mustGetNode(segment)
	if node.isContainer() {
		return segment, segment
	}
	if len(node.ids) <= splitLen {
		return segment, segment
	}
	splitAt := len(node.ids) / 2
	newSeg := t.insertSegment(segment, splitAt)
	left, _ := t.considerSplit(segment)
	_, right := t.considerSplit(newSeg)
	return left, right
}

// insertSegment splits toSplit's ids list at idSplitIndex, moving the tail
// (and the corresponding slice of contents) into a freshly spliced-in
// segment immediately after toSplit in the ring. Tombstones travel with
// whichever half their identity order puts them in.
func (t *Tree[Id]) insertSegment(toSplit nodeID, idSplitIndex int) nodeID {
	newID := t.nextID()
	oldNode := t.mustGetNode(toSplit)

	splitStartContents := oldNode.contentsLen()
	for _, slot := range oldNode.ids[idSplitIndex:] {
		if slot.live {
			splitStartContents = slot.pos
			break
		}
	}

	keptIDs := make([]idSlot[Id], idSplitIndex)
	copy(keptIDs, oldNode.ids[:idSplitIndex])
	movedRaw := oldNode.ids[idSplitIndex:]
	movedIDs := make([]idSlot[Id], len(movedRaw))
	for i, slot := range movedRaw {
		if slot.live {
			slot.pos -= splitStartContents
		}
		movedIDs[i] = slot
	}

	newSeg := oldNode.emptyLikeSegment()
	leftNode, rightNode := splitContentsInto[Id](oldNode, newSeg, splitStartContents)
	leftNode.ids = keptIDs
	rightNode.ids = movedIDs

	for _, slot := range movedIDs {
		t.idToNode = t.idToNode.Set(slot.id, newID)
	}

	prevOfSplit, oldNext := leftNode.adjacencies()
	leftNode = leftNode.withAdjacencies(prevOfSplit, newID)
	rightNode = rightNode.withAdjacencies(toSplit, oldNext)
	t.nodes = t.nodes.Set(toSplit, leftNode)
	t.nodes = t.nodes.Set(newID, rightNode)

	afterNode := t.mustGetNode(oldNext)
	_, afterNext := afterNode.adjacencies()
	afterNode = afterNode.withAdjacencies(newID, afterNext)
	t.nodes = t.nodes.Set(oldNext, afterNode)

	return newID
}

// InsertCharacter creates character with identity characterID and inserts
// it immediately after appendID, which may be the string itself (front
// insertion) or any live-or-tombstoned character id in it.
func (t *Tree[Id]) InsertCharacter(appendID, characterID Id, character rune) error {
	return t.insertCharacter(appendID, characterID, character)
}

func (t *Tree[Id]) insertCharacter(appendID, characterID Id, character rune) error {
	if nid, err := t.idToNodeID(appendID); err == nil {
		if k := t.mustGetNode(nid).kind; k == kindArray || k == kindArraySegment {
			return ErrUnexpectedNodeType
		}
	}
	return t.sequenceInsert(appendID, characterID, func(node treeNode[Id], at int) (treeNode[Id], int) {
		if node.kind != kindStringSegment {
			panic("doctree: insertCharacter resolved to a non-string segment")
		}
		encoded := string(character)
		node.text = node.text[:at] + encoded + node.text[at:]
		return node, len(encoded)
	})
}

// DeleteCharacter tombstones the character named charID. A tombstone is
// left behind so later inserts may still anchor on it. Deleting an already
// deleted character is a no-op.
func (t *Tree[Id]) DeleteCharacter(charID Id) error { return t.deleteCharacter(charID) }

func (t *Tree[Id]) deleteCharacter(charID Id) error {
	if nid, err := t.idToNodeID(charID); err == nil && t.mustGetNode(nid).kind == kindArraySegment {
		return ErrUnexpectedNodeType
	}
	return t.sequenceDelete(charID, func(node treeNode[Id], at int) (treeNode[Id], int) {
		if node.kind != kindStringSegment {
			panic("doctree: deleteCharacter resolved to a non-string segment")
		}
		_, size := utf8.DecodeRuneInString(node.text[at:])
		node.text = node.text[:at] + node.text[at+size:]
		return node, size
	})
}

// InsertListItem creates item with identity id and inserts it immediately
// after appendID, which may be the array itself (front insertion) or any
// live-or-tombstoned entry id in it. If item is Unset, this silently
// succeeds without inserting anything - the original implementation's
// behavior, preserved here deliberately (see SPEC_FULL.md's Open Questions).
func (t *Tree[Id]) InsertListItem(appendID, id Id, item Value[Id]) error {
	return t.insertListItem(appendID, id, item)
}

func (t *Tree[Id]) insertListItem(appendID, id Id, item Value[Id]) error {
	c, err := t.valueToChild(item)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	if nid, err := t.idToNodeID(appendID); err == nil {
		if k := t.mustGetNode(nid).kind; k == kindString || k == kindStringSegment {
			return ErrUnexpectedNodeType
		}
	}
	if c.kind == childCollection {
		appendNodeID, err := t.idToNodeID(appendID)
		if err != nil {
			return err
		}
		appendNode := t.mustGetNode(appendNodeID)
		switch appendNode.kind {
		case kindArraySegment:
			if !appendNode.hasParent {
				panic("doctree: array segment had no parent")
			}
			if err := t.reparent(c.node, appendNode.parent); err != nil {
				return err
			}
		case kindArray:
			if err := t.reparent(c.node, appendNodeID); err != nil {
				return err
			}
		default:
			return ErrUnexpectedNodeType
		}
	}
	return t.sequenceInsert(appendID, id, func(node treeNode[Id], at int) (treeNode[Id], int) {
		if node.kind != kindArraySegment {
			panic("doctree: insertListItem resolved to a non-array segment")
		}
		entries := make([]child, len(node.entries)+1)
		copy(entries, node.entries[:at])
		entries[at] = *c
		copy(entries[at+1:], node.entries[at:])
		node.entries = entries
		return node, 1
	})
}

// DeleteListItem tombstones the array entry named itemID, returning the
// value that occupied it (Unset if already deleted). If the removed value
// was a collection, it is moved to the orphan set - its subtree is left
// intact, merely detached.
func (t *Tree[Id]) DeleteListItem(itemID Id) (Value[Id], error) {
	return t.deleteListItem(itemID)
}

func (t *Tree[Id]) deleteListItem(itemID Id) (Value[Id], error) {
	if nid, err := t.idToNodeID(itemID); err == nil && t.mustGetNode(nid).kind == kindStringSegment {
		return Value[Id]{}, ErrUnexpectedNodeType
	}
	var removed *child
	err := t.sequenceDelete(itemID, func(node treeNode[Id], at int) (treeNode[Id], int) {
		if node.kind != kindArraySegment {
			panic("doctree: deleteListItem resolved to a non-array segment")
		}
		removedVal := node.entries[at]
		removed = &removedVal
		entries := make([]child, len(node.entries)-1)
		copy(entries, node.entries[:at])
		copy(entries[at:], node.entries[at+1:])
		node.entries = entries
		return node, 1
	})
	if err != nil {
		return Value[Id]{}, err
	}
	if removed != nil && removed.kind == childCollection {
		t.moveToOrphan(removed.node)
	}
	return t.childToValue(removed), nil
}
