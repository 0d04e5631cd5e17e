package doctree

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindTrue ValueKind = iota
	KindFalse
	KindNull
	KindInt
	KindString
	KindArray
	KindObject
	// KindUnset is a sentinel used only at the API boundary to mean "no
	// value" (deleting a map key, or declining to insert an array item).
	// It never appears as a stored Child inside the tree.
	KindUnset
)

// Value is a tagged union of everything that can be assigned into an object
// key or inserted into an array: the JSON primitives, a reference to another
// collection (by identity), and the Unset sentinel.
type Value[Id comparable] struct {
	kind ValueKind
	i    int64
	id   Id
}

// True, False and Null construct the corresponding JSON primitive values.
func True[Id comparable]() Value[Id]  { return Value[Id]{kind: KindTrue} }
func False[Id comparable]() Value[Id] { return Value[Id]{kind: KindFalse} }
func Null[Id comparable]() Value[Id]  { return Value[Id]{kind: KindNull} }

// Int constructs an integer Value.
func Int[Id comparable](v int64) Value[Id] { return Value[Id]{kind: KindInt, i: v} }

// Unset constructs the delete-this-key / insert-nothing sentinel.
func Unset[Id comparable]() Value[Id] { return Value[Id]{kind: KindUnset} }

// StringValue, ArrayValue and ObjectValue reference an existing collection by
// its identity.
func StringValue[Id comparable](id Id) Value[Id] { return Value[Id]{kind: KindString, id: id} }
func ArrayValue[Id comparable](id Id) Value[Id]   { return Value[Id]{kind: KindArray, id: id} }
func ObjectValue[Id comparable](id Id) Value[Id]  { return Value[Id]{kind: KindObject, id: id} }

// Kind reports which variant v holds.
func (v Value[Id]) Kind() ValueKind { return v.kind }

// Int returns the integer payload. Only meaningful when Kind() == KindInt.
func (v Value[Id]) Int() int64 { return v.i }

// ID returns the referenced collection's identity. Only meaningful when
// Kind() is KindString, KindArray or KindObject.
func (v Value[Id]) ID() Id { return v.id }

func (k ValueKind) String() string {
	switch k {
	case KindTrue:
		return "True"
	case KindFalse:
		return "False"
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindUnset:
		return "Unset"
	default:
		return "Unknown"
	}
}

// NodeType is the externally visible kind of a node, as reported by
// Tree.GetType.
type NodeType int

const (
	NodeString NodeType = iota
	NodeCharacter
	NodeObject
	NodeArray
	NodeArrayEntry
)

func (t NodeType) String() string {
	switch t {
	case NodeString:
		return "String"
	case NodeCharacter:
		return "Character"
	case NodeObject:
		return "Object"
	case NodeArray:
		return "Array"
	case NodeArrayEntry:
		return "ArrayEntry"
	default:
		return "Unknown"
	}
}

// ParentKind tags the variant held by a Parent.
type ParentKind int

const (
	ParentNone ParentKind = iota
	ParentArray
	ParentObject
)

// Parent is a tagged union describing what, if anything, a node is currently
// reachable through: an array, an object, or nothing (root or orphan).
type Parent[Id comparable] struct {
	kind ParentKind
	id   Id
}

func noParent[Id comparable]() Parent[Id] { return Parent[Id]{kind: ParentNone} }
func arrayParent[Id comparable](id Id) Parent[Id] {
	return Parent[Id]{kind: ParentArray, id: id}
}
func objectParent[Id comparable](id Id) Parent[Id] {
	return Parent[Id]{kind: ParentObject, id: id}
}

// Kind reports which variant p holds.
func (p Parent[Id]) Kind() ParentKind { return p.kind }

// ID returns the parent collection's identity. Only meaningful when Kind()
// is ParentArray or ParentObject.
func (p Parent[Id]) ID() Id { return p.id }
