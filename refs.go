package doctree

// StringRef, ArrayRef and ObjectRef are typed wrappers around a collection's
// identity, letting callers that already know a value's kind skip the
// Value.Kind() switch and call straight through to the tree. They carry no
// state beyond the identity itself - constructing one never touches the
// tree, so they stay valid (or become stale) exactly as long as the
// underlying identity does.
type StringRef[Id comparable] struct{ ID Id }
type ArrayRef[Id comparable] struct{ ID Id }
type ObjectRef[Id comparable] struct{ ID Id }

// AsStringRef, AsArrayRef and AsObjectRef narrow a Value into the
// corresponding ref type, failing if its kind doesn't match.
func AsStringRef[Id comparable](v Value[Id]) (StringRef[Id], error) {
	if v.Kind() != KindString {
		return StringRef[Id]{}, ErrUnexpectedNodeType
	}
	return StringRef[Id]{ID: v.ID()}, nil
}

func AsArrayRef[Id comparable](v Value[Id]) (ArrayRef[Id], error) {
	if v.Kind() != KindArray {
		return ArrayRef[Id]{}, ErrUnexpectedNodeType
	}
	return ArrayRef[Id]{ID: v.ID()}, nil
}

func AsObjectRef[Id comparable](v Value[Id]) (ObjectRef[Id], error) {
	if v.Kind() != KindObject {
		return ObjectRef[Id]{}, ErrUnexpectedNodeType
	}
	return ObjectRef[Id]{ID: v.ID()}, nil
}

// Parent reports the referenced collection's current Parent.
func (r StringRef[Id]) Parent(t *Tree[Id]) (Parent[Id], error) { return parentOf(t, r.ID) }
func (r ArrayRef[Id]) Parent(t *Tree[Id]) (Parent[Id], error)  { return parentOf(t, r.ID) }
func (r ObjectRef[Id]) Parent(t *Tree[Id]) (Parent[Id], error) { return parentOf(t, r.ID) }

// parentOf resolves id's collection-level Parent: a collection can only
// ever be reparented into an Array or Object (see Tree.reparent's call
// sites), so a raw parent that resolves to anything else means this was
// called on a character or array entry instead of a collection - a caller
// error, hence the panic rather than a returned error.
func parentOf[Id comparable](t *Tree[Id], id Id) (Parent[Id], error) {
	parentID, ok, err := t.GetParent(id)
	if err != nil {
		return Parent[Id]{}, err
	}
	if !ok {
		return noParent[Id](), nil
	}
	typ, err := t.GetType(parentID)
	if err != nil {
		return Parent[Id]{}, err
	}
	switch typ {
	case NodeArray:
		return arrayParent[Id](parentID), nil
	case NodeObject:
		return objectParent[Id](parentID), nil
	default:
		panic("doctree: parent was of unexpected type")
	}
}

// StringIndex and ArrayIndex wrap the identity of a character or array
// entry (or, degenerately, the container itself) and resolve to the
// enclosing StringRef/ArrayRef.
type StringIndex[Id comparable] struct{ ID Id }
type ArrayIndex[Id comparable] struct{ ID Id }

func (s StringIndex[Id]) Parent(t *Tree[Id]) (StringRef[Id], error) {
	typ, err := t.GetType(s.ID)
	if err != nil {
		return StringRef[Id]{}, err
	}
	switch typ {
	case NodeString:
		return StringRef[Id]{ID: s.ID}, nil
	case NodeCharacter:
		parentID, ok, err := t.GetParent(s.ID)
		if err != nil {
			return StringRef[Id]{}, err
		}
		if !ok {
			panic("doctree: character had no parent string")
		}
		return StringRef[Id]{ID: parentID}, nil
	default:
		return StringRef[Id]{}, ErrUnexpectedNodeType
	}
}

func (a ArrayIndex[Id]) Parent(t *Tree[Id]) (ArrayRef[Id], error) {
	typ, err := t.GetType(a.ID)
	if err != nil {
		return ArrayRef[Id]{}, err
	}
	switch typ {
	case NodeArray:
		return ArrayRef[Id]{ID: a.ID}, nil
	case NodeArrayEntry:
		parentID, ok, err := t.GetParent(a.ID)
		if err != nil {
			return ArrayRef[Id]{}, err
		}
		if !ok {
			panic("doctree: array entry had no parent array")
		}
		return ArrayRef[Id]{ID: parentID}, nil
	default:
		return ArrayRef[Id]{}, ErrUnexpectedNodeType
	}
}

// Text walks the referenced string's live characters in order and returns
// their concatenation. It allocates a fresh string on every call; callers
// walking character-by-character (e.g. to build a cursor) should use
// StringIndex/Characters instead.
func (r StringRef[Id]) Text(t *Tree[Id]) (string, error) {
	var b []byte
	err := r.Characters(t, func(_ Id, ch rune) bool {
		b = append(b, string(ch)...)
		return true
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Characters walks the referenced string's live characters from front to
// back, calling fn with each character's identity and rune value. Walking
// stops early if fn returns false.
func (r StringRef[Id]) Characters(t *Tree[Id], fn func(id Id, ch rune) bool) error {
	return t.walkString(r.ID, fn)
}

// ReverseCharacters walks the referenced string's live characters from back
// to front, calling fn with each character's identity and rune value.
// Walking stops early if fn returns false.
func (r StringRef[Id]) ReverseCharacters(t *Tree[Id], fn func(id Id, ch rune) bool) error {
	return t.walkStringReverse(r.ID, fn)
}

// Values walks the referenced array's live entries from front to back,
// calling fn with each entry's identity and current Value. Walking stops
// early if fn returns false.
func (r ArrayRef[Id]) Values(t *Tree[Id], fn func(id Id, v Value[Id]) bool) error {
	return t.walkArray(r.ID, fn)
}

// Get returns the current value of key in the referenced object, or Unset
// if absent.
func (r ObjectRef[Id]) Get(t *Tree[Id], key string) (Value[Id], error) {
	return t.ObjectGet(r.ID, key)
}

// walkString is the adjacency iterator backing StringRef.Characters: it
// follows the segment ring from the container's start, skipping tombstones,
// decoding each segment's text as it goes.
func (t *Tree[Id]) walkString(id Id, fn func(id Id, ch rune) bool) error {
	nid, err := t.idToNodeID(id)
	if err != nil {
		return err
	}
	container := t.mustGetNode(nid)
	if container.kind != kindString {
		return ErrUnexpectedNodeType
	}
	seg := container.start
	for {
		node := t.mustGetNode(seg)
		for _, slot := range node.ids {
			if !slot.live {
				continue
			}
			r, _ := decodeRuneAt(node.text, slot.pos)
			if !fn(slot.id, r) {
				return nil
			}
		}
		if node.next == nid {
			break
		}
		seg = node.next
	}
	return nil
}

// walkStringReverse is the adjacency iterator backing
// StringRef.ReverseCharacters: it follows the segment ring from the
// container's end segment backward via prev, walking each segment's ids
// back to front.
func (t *Tree[Id]) walkStringReverse(id Id, fn func(id Id, ch rune) bool) error {
	nid, err := t.idToNodeID(id)
	if err != nil {
		return err
	}
	container := t.mustGetNode(nid)
	if container.kind != kindString {
		return ErrUnexpectedNodeType
	}
	seg := container.end
	for {
		node := t.mustGetNode(seg)
		for i := len(node.ids) - 1; i >= 0; i-- {
			slot := node.ids[i]
			if !slot.live {
				continue
			}
			r, _ := decodeRuneAt(node.text, slot.pos)
			if !fn(slot.id, r) {
				return nil
			}
		}
		if node.prev == nid {
			break
		}
		seg = node.prev
	}
	return nil
}

// walkArray is the adjacency iterator backing ArrayRef.Values.
func (t *Tree[Id]) walkArray(id Id, fn func(id Id, v Value[Id]) bool) error {
	nid, err := t.idToNodeID(id)
	if err != nil {
		return err
	}
	container := t.mustGetNode(nid)
	if container.kind != kindArray {
		return ErrUnexpectedNodeType
	}
	seg := container.start
	for {
		node := t.mustGetNode(seg)
		for _, slot := range node.ids {
			if !slot.live {
				continue
			}
			c := node.entries[slot.pos]
			if !fn(slot.id, t.childToValue(&c)) {
				return nil
			}
		}
		if node.next == nid {
			break
		}
		seg = node.next
	}
	return nil
}

// decodeRuneAt decodes the single rune stored at byte offset pos in text.
func decodeRuneAt(text string, pos int) (rune, int) {
	for _, r := range text[pos:] {
		return r, len(string(r))
	}
	return 0, 0
}
