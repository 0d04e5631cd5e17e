// Package doctree implements a conflict-free replicated document tree: a
// JSON-shaped value graph in which every character of every string, every
// entry of every array, and every map and primitive carries a caller-supplied
// identity that survives reordering, deletion, and concurrent insertion.
//
// A Tree owns the identity-addressed node graph (objects, strings, arrays,
// and their segments), the orphan set for detached collections, and the
// acyclicity check that guards every reparenting edit. Strings and arrays are
// stored as a doubly linked ring of bounded segments (see sequence.go); the
// opset subpackage totally orders timestamped batches of Edits on top of a
// Tree and caches checkpoints so out-of-order arrivals only replay a suffix.
//
// Two replicas that apply the same set of edits converge to identical state
// regardless of arrival order: insertion sorts batches by timestamp, and
// sibling inserts at the same anchor resolve deterministically (the insert
// applied later lands nearer the anchor, see sequence.go's insertion-point
// lookup). There is no
// scheduling inside the package; Tree and Opset are single-owner, single-
// threaded, and callers must serialize their own mutations.
package doctree
