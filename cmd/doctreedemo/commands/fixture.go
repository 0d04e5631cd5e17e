// Package commands implements doctreedemo's subcommands.
package commands

import (
	"github.com/google/uuid"

	"github.com/go-crdt/doctree"
)

// buildFixture constructs a small, deterministic document: an object root
// holding a title string and a tags array, so build and inspect always have
// something to show. A real host would build its document from whatever
// its own edit log decodes to; doctreedemo's only job is to illustrate the
// engine, so it fabricates one inline rather than reading a file.
func buildFixture() (*doctree.Tree[uuid.UUID], uuid.UUID) {
	rootID := uuid.New()
	tree := doctree.NewWithObjectRoot(rootID)

	titleID := uuid.New()
	mustUpdate(&tree, doctree.TextCreate(titleID))
	prev := titleID
	for _, ch := range "hello, doctree" {
		charID := uuid.New()
		mustUpdate(&tree, doctree.TextInsert(prev, charID, ch))
		prev = charID
	}
	mustUpdate(&tree, doctree.MapInsert(rootID, "title", doctree.StringValue[uuid.UUID](titleID)))

	tagsID := uuid.New()
	mustUpdate(&tree, doctree.ArrayCreate(tagsID))
	anchor := tagsID
	for _, tag := range []string{"alpha", "beta", "gamma"} {
		entryTextID := uuid.New()
		mustUpdate(&tree, doctree.TextCreate(entryTextID))
		tprev := entryTextID
		for _, ch := range tag {
			charID := uuid.New()
			mustUpdate(&tree, doctree.TextInsert(tprev, charID, ch))
			tprev = charID
		}
		entryID := uuid.New()
		mustUpdate(&tree, doctree.ArrayInsert(anchor, entryID, doctree.StringValue[uuid.UUID](entryTextID)))
		anchor = entryID
	}
	mustUpdate(&tree, doctree.MapInsert(rootID, "tags", doctree.ArrayValue[uuid.UUID](tagsID)))

	return &tree, rootID
}

func mustUpdate(tree *doctree.Tree[uuid.UUID], edit doctree.Edit[uuid.UUID]) {
	if err := tree.Update(edit); err != nil {
		panic("doctreedemo: fixture construction failed: " + err.Error())
	}
}
