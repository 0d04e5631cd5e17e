package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/go-crdt/doctree"
)

// NewBuildCommand creates the build subcommand, which constructs
// doctreedemo's fixture document and prints a colorized, indented dump of
// its tree.
func NewBuildCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the demo document and print its tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}
			tree, rootID := buildFixture()
			dumpNode(cmd, tree, rootID, 0)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

var (
	typeColor  = color.New(color.FgCyan)
	valueColor = color.New(color.FgGreen)
	keyColor   = color.New(color.FgYellow, color.Bold)
)

func dumpNode(cmd *cobra.Command, tree *doctree.Tree[uuid.UUID], id uuid.UUID, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	nodeType, err := tree.GetType(id)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s<error: %v>\n", indent, err)
		return
	}

	switch nodeType {
	case doctree.NodeObject:
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s {\n", indent, typeColor.Sprint("object"))
		for _, key := range objectKeys(tree, id) {
			v, _ := tree.ObjectGet(id, key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: ", indent, keyColor.Sprint(key))
			dumpValue(cmd, tree, v, depth+1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s}\n", indent)
	case doctree.NodeString:
		ref := doctree.StringRef[uuid.UUID]{ID: id}
		text, _ := ref.Text(tree)
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s %q\n", indent, typeColor.Sprint("string"), valueColor.Sprint(text))
	case doctree.NodeArray:
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s [\n", indent, typeColor.Sprint("array"))
		ref := doctree.ArrayRef[uuid.UUID]{ID: id}
		_ = ref.Values(tree, func(_ uuid.UUID, v doctree.Value[uuid.UUID]) bool {
			dumpValue(cmd, tree, v, depth+1)
			return true
		})
		fmt.Fprintf(cmd.OutOrStdout(), "%s]\n", indent)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%s<unexpected node type %s>\n", indent, nodeType)
	}
}

func dumpValue(cmd *cobra.Command, tree *doctree.Tree[uuid.UUID], v doctree.Value[uuid.UUID], depth int) {
	switch v.Kind() {
	case doctree.KindString, doctree.KindArray, doctree.KindObject:
		fmt.Fprintln(cmd.OutOrStdout())
		dumpNode(cmd, tree, v.ID(), depth)
	case doctree.KindInt:
		fmt.Fprintln(cmd.OutOrStdout(), valueColor.Sprint(v.Int()))
	case doctree.KindTrue:
		fmt.Fprintln(cmd.OutOrStdout(), valueColor.Sprint("true"))
	case doctree.KindFalse:
		fmt.Fprintln(cmd.OutOrStdout(), valueColor.Sprint("false"))
	case doctree.KindNull:
		fmt.Fprintln(cmd.OutOrStdout(), valueColor.Sprint("null"))
	default:
		fmt.Fprintln(cmd.OutOrStdout(), valueColor.Sprint("<unset>"))
	}
}

// objectKeys is a convenience for the demo only: the engine itself never
// exposes key enumeration, since the spec's Object type models assignment,
// not iteration. Callers that need an object's keys must track them
// themselves (doctreedemo does, via the fixture it just built).
func objectKeys(tree *doctree.Tree[uuid.UUID], id uuid.UUID) []string {
	keys := []string{"title", "tags"}
	var present []string
	for _, k := range keys {
		if v, err := tree.ObjectGet(id, k); err == nil && v.Kind() != doctree.KindUnset {
			present = append(present, k)
		}
	}
	return present
}
