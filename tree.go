package doctree

import "github.com/go-crdt/doctree/internal/persist"

// Tree is an identity-addressed, JSON-shaped document. Every character,
// array entry, map and primitive has a unique caller-supplied Id; deletions
// in arrays and strings leave tombstones so that later inserts can still
// anchor on them, and reparenting a collection (map assignment, array
// insertion) is checked for cycles before it is allowed.
//
// Tree is a plain value: all its storage is held in persist.Maps, so copying
// a Tree (as the opset package's checkpoint cache does on every recompute)
// is an O(1) struct copy that shares every untouched node with the original.
// All methods on Tree take a pointer receiver purely so they can assign back
// to the receiver's fields; no method retains a pointer into a Tree's
// innards past its return.
type Tree[Id comparable] struct {
	nextNode nodeID
	root     Id

	orphans   persist.Set[nodeID]
	idToNode  persist.Map[Id, nodeID]
	nodes     persist.Map[nodeID, treeNode[Id]]
}

func newTree[Id comparable](rootID Id) Tree[Id] {
	return Tree[Id]{
		root:     rootID,
		orphans:  persist.NewSet[nodeID](),
		idToNode: persist.New[Id, nodeID](),
		nodes:    persist.New[nodeID, treeNode[Id]](),
	}
}

// NewWithStringRoot creates a Tree whose root is an empty string.
func NewWithStringRoot[Id comparable](rootID Id) Tree[Id] {
	t := newTree(rootID)
	if err := t.constructString(rootID); err != nil {
		panic(err)
	}
	t.orphans = persist.NewSet[nodeID]()
	return t
}

// NewWithObjectRoot creates a Tree whose root is an empty object.
func NewWithObjectRoot[Id comparable](rootID Id) Tree[Id] {
	t := newTree(rootID)
	if err := t.constructObject(rootID); err != nil {
		panic(err)
	}
	t.orphans = persist.NewSet[nodeID]()
	return t
}

// NewWithArrayRoot creates a Tree whose root is an empty array.
func NewWithArrayRoot[Id comparable](rootID Id) Tree[Id] {
	t := newTree(rootID)
	if err := t.constructArray(rootID); err != nil {
		panic(err)
	}
	t.orphans = persist.NewSet[nodeID]()
	return t
}

func (t *Tree[Id]) nextID() nodeID {
	id := t.nextNode
	t.nextNode++
	return id
}

func (t *Tree[Id]) constructSimple(id Id, data treeNode[Id]) (nodeID, error) {
	if t.idToNode.Has(id) {
		return 0, ErrDuplicateID
	}
	nid := t.nextID()
	t.idToNode = t.idToNode.Set(id, nid)
	t.orphans = t.orphans.Add(nid)
	t.nodes = t.nodes.Set(nid, data)
	return nid, nil
}

// ConstructObject allocates a new, parentless object node with identity id.
func (t *Tree[Id]) ConstructObject(id Id) error { return t.constructObject(id) }

func (t *Tree[Id]) constructObject(id Id) error {
	_, err := t.constructSimple(id, treeNode[Id]{
		kind:  kindObject,
		extID: id,
		items: map[string]child{},
	})
	return err
}

// ConstructString allocates a new, parentless string node (with one empty
// segment) with identity id.
func (t *Tree[Id]) ConstructString(id Id) error { return t.constructString(id) }

func (t *Tree[Id]) constructString(id Id) error {
	segID := t.nextID()
	stringID, err := t.constructSimple(id, treeNode[Id]{
		kind:  kindString,
		extID: id,
		start: segID,
		end:   segID,
	})
	if err != nil {
		return err
	}
	t.nodes = t.nodes.Set(segID, treeNode[Id]{
		kind:      kindStringSegment,
		prev:      stringID,
		next:      stringID,
		hasParent: true,
		parent:    stringID,
	})
	return nil
}

// ConstructArray allocates a new, parentless array node (with one empty
// segment) with identity id.
func (t *Tree[Id]) ConstructArray(id Id) error { return t.constructArray(id) }

func (t *Tree[Id]) constructArray(id Id) error {
	segID := t.nextID()
	arrayID, err := t.constructSimple(id, treeNode[Id]{
		kind:  kindArray,
		extID: id,
		start: segID,
		end:   segID,
	})
	if err != nil {
		return err
	}
	t.nodes = t.nodes.Set(segID, treeNode[Id]{
		kind:      kindArraySegment,
		prev:      arrayID,
		next:      arrayID,
		hasParent: true,
		parent:    arrayID,
	})
	return nil
}

func (t *Tree[Id]) idToNodeID(id Id) (nodeID, error) {
	nid, ok := t.idToNode.Get(id)
	if !ok {
		return 0, ErrUnknownID
	}
	return nid, nil
}

func (t *Tree[Id]) mustGetNode(nid nodeID) treeNode[Id] {
	n, ok := t.nodes.Get(nid)
	if !ok {
		panic("doctree: node id present in idToNode but missing from arena")
	}
	return n
}

// GetType reports the NodeType of id.
func (t *Tree[Id]) GetType(id Id) (NodeType, error) {
	nid, err := t.idToNodeID(id)
	if err != nil {
		return 0, err
	}
	return t.mustGetNode(nid).nodeType(), nil
}

// GetParent reports the identity id is currently held by: for a character
// or array entry, the string/array containing it; for an Object/String/
// Array, the collection it is assigned into. Reports ok=false if id is the
// root, an orphan, or otherwise currently unreachable through anything.
func (t *Tree[Id]) GetParent(id Id) (parent Id, ok bool, err error) {
	nid, err := t.idToNodeID(id)
	if err != nil {
		var zero Id
		return zero, false, err
	}
	n := t.mustGetNode(nid)
	if !n.hasParent {
		var zero Id
		return zero, false, nil
	}
	parentNode := t.mustGetNode(n.parent)
	parentID, has := parentNode.id()
	if !has {
		panic("doctree: parent of node was a segment, not a container")
	}
	return parentID, true, nil
}

// StillExists reports whether id currently names a live node in the tree
// (as opposed to one that was never used, or was removed by DeleteOrphans).
func (t *Tree[Id]) StillExists(id Id) bool {
	return t.idToNode.Has(id)
}

func (t *Tree[Id]) valueToChild(v Value[Id]) (*child, error) {
	switch v.Kind() {
	case KindTrue:
		c := childTrueVal()
		return &c, nil
	case KindFalse:
		c := childFalseVal()
		return &c, nil
	case KindNull:
		c := childNullVal()
		return &c, nil
	case KindInt:
		c := childIntVal(v.Int())
		return &c, nil
	case KindString, KindArray, KindObject:
		nid, err := t.idToNodeID(v.ID())
		if err != nil {
			return nil, err
		}
		c := childCollectionVal(nid)
		return &c, nil
	case KindUnset:
		return nil, nil
	default:
		panic("doctree: unknown value kind")
	}
}

func (t *Tree[Id]) childToValue(c *child) Value[Id] {
	if c == nil {
		return Unset[Id]()
	}
	switch c.kind {
	case childTrue:
		return True[Id]()
	case childFalse:
		return False[Id]()
	case childNull:
		return Null[Id]()
	case childInt:
		return Int[Id](c.i)
	case childCollection:
		node := t.mustGetNode(c.node)
		id, ok := node.id()
		if !ok {
			panic("doctree: collection child pointed at a segment")
		}
		switch node.kind {
		case kindString:
			return StringValue[Id](id)
		case kindObject:
			return ObjectValue[Id](id)
		case kindArray:
			return ArrayValue[Id](id)
		default:
			panic("doctree: collection child had non-collection kind")
		}
	default:
		panic("doctree: unknown child kind")
	}
}

func (t *Tree[Id]) moveToOrphan(nid nodeID) {
	n := t.mustGetNode(nid)
	n.hasParent = false
	t.nodes = t.nodes.Set(nid, n)
	t.orphans = t.orphans.Add(nid)
}

// reparent gives item a new parent, failing if item already has one or if
// doing so would create a cycle. It walks parent pointers from the proposed
// parent up to the root (or an orphan), failing if that walk ever reaches
// item itself - this is the tree's only source of new parent edges, so this
// check is what keeps the whole graph acyclic.
func (t *Tree[Id]) reparent(item, parent nodeID) error {
	if t.mustGetNode(item).hasParent {
		return ErrNodeAlreadyHadParent
	}
	cur := parent
	for {
		if cur == item {
			return ErrEditWouldCauseCycle
		}
		n := t.mustGetNode(cur)
		if !n.hasParent {
			break
		}
		cur = n.parent
	}
	t.orphans = t.orphans.Remove(item)
	n := t.mustGetNode(item)
	n.hasParent = true
	n.parent = parent
	t.nodes = t.nodes.Set(item, n)
	return nil
}

// ObjectAssign moves value to object[key], returning whatever value
// previously occupied that slot (Unset if the key was absent). value of
// KindUnset deletes the key. If value names a collection, that collection
// is reparented under object; if the previously occupying value was a
// collection, it is moved to the orphan set (its subtree is left intact,
// merely detached).
func (t *Tree[Id]) ObjectAssign(object Id, key string, value Value[Id]) (Value[Id], error) {
	return t.objectAssign(object, key, value)
}

func (t *Tree[Id]) objectAssign(object Id, key string, value Value[Id]) (Value[Id], error) {
	c, err := t.valueToChild(value)
	if err != nil {
		return Value[Id]{}, err
	}
	objectNodeID, err := t.idToNodeID(object)
	if err != nil {
		return Value[Id]{}, err
	}
	if c != nil && c.kind == childCollection {
		if err := t.reparent(c.node, objectNodeID); err != nil {
			return Value[Id]{}, err
		}
	}
	objNode := t.mustGetNode(objectNodeID)
	if objNode.kind != kindObject {
		return Value[Id]{}, ErrUnexpectedNodeType
	}
	items := make(map[string]child, len(objNode.items)+1)
	for k, v := range objNode.items {
		items[k] = v
	}
	old, hadOld := items[key]
	if c != nil {
		items[key] = *c
	} else {
		delete(items, key)
	}
	objNode.items = items
	t.nodes = t.nodes.Set(objectNodeID, objNode)

	var oldPtr *child
	if hadOld {
		oldPtr = &old
	}
	if hadOld && old.kind == childCollection {
		t.moveToOrphan(old.node)
	}
	return t.childToValue(oldPtr), nil
}

// ObjectGet returns the current value of object[key], or Unset if absent.
func (t *Tree[Id]) ObjectGet(object Id, key string) (Value[Id], error) {
	nid, err := t.idToNodeID(object)
	if err != nil {
		return Value[Id]{}, err
	}
	n := t.mustGetNode(nid)
	if n.kind != kindObject {
		return Value[Id]{}, ErrUnexpectedNodeType
	}
	c, ok := n.items[key]
	if !ok {
		return Unset[Id](), nil
	}
	return t.childToValue(&c), nil
}

// Update dispatches a single declarative Edit to the matching primitive.
// Per the edit-application contract, failures from individual edits are
// returned here. The batch boundary where such failures are swallowed for
// replay commutativity is a host's opset.Operation, whose Apply method has
// no error result.
func (t *Tree[Id]) Update(edit Edit[Id]) error {
	switch edit.Kind() {
	case EditArrayCreate:
		return t.constructArray(edit.ID)
	case EditArrayInsert:
		return t.insertListItem(edit.Anchor, edit.ID, edit.Item)
	case EditArrayDelete:
		_, err := t.deleteListItem(edit.ID)
		return err
	case EditMapCreate:
		return t.constructObject(edit.ID)
	case EditMapInsert:
		_, err := t.objectAssign(edit.Anchor, edit.Key, edit.Item)
		return err
	case EditTextCreate:
		return t.constructString(edit.ID)
	case EditTextInsert:
		return t.insertCharacter(edit.Anchor, edit.ID, edit.Character)
	case EditTextDelete:
		return t.deleteCharacter(edit.ID)
	default:
		panic("doctree: unknown edit kind")
	}
}

// DeleteOrphans recursively deletes every node currently in the orphan set,
// along with all of its descendants, releasing both their nodeIDs and their
// caller-supplied identities. This is the only path that permanently frees
// a subtree; ordinary reassignment/deletion only detaches it into the
// orphan set.
func (t *Tree[Id]) DeleteOrphans() {
	var toDelete []nodeID
	t.orphans.Range(func(nid nodeID) bool {
		toDelete = append(toDelete, nid)
		return true
	})
	for _, nid := range toDelete {
		t.deleteRecursive(nid)
	}
	t.orphans = persist.NewSet[nodeID]()
}

func (t *Tree[Id]) deleteRecursive(start nodeID) {
	queue := []nodeID{start}
	for len(queue) > 0 {
		nid := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		n, ok := t.nodes.Get(nid)
		if !ok {
			continue
		}
		t.nodes = t.nodes.Delete(nid)
		switch n.kind {
		case kindObject:
			t.idToNode = t.idToNode.Delete(n.extID)
			for _, v := range n.items {
				if v.kind == childCollection {
					queue = append(queue, v.node)
				}
			}
		case kindString:
			t.idToNode = t.idToNode.Delete(n.extID)
			queue = append(queue, n.start)
		case kindArray:
			t.idToNode = t.idToNode.Delete(n.extID)
			queue = append(queue, n.start)
		case kindStringSegment:
			queue = append(queue, n.next)
			for _, slot := range n.ids {
				t.idToNode = t.idToNode.Delete(slot.id)
			}
		case kindArraySegment:
			queue = append(queue, n.next)
			for _, slot := range n.ids {
				t.idToNode = t.idToNode.Delete(slot.id)
			}
			for _, v := range n.entries {
				if v.kind == childCollection {
					queue = append(queue, v.node)
				}
			}
		}
	}
}
