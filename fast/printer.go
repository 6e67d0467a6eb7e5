package fast

import (
	"fmt"
	"io"
)

// Print emits t in the §4.11 collapsing grammar, grounded on
// original_source/learn_fast_tree.cc's print_tree: a leaf prints as
// "corner" or "background"; a branch compares its three children's
// textual form and collapses any that are textually identical, reducing a
// 3-way test to a 2-way or degenerate one.
func Print(w io.Writer, t *Tree) error {
	return printNode(w, t, "")
}

func printNode(w io.Writer, t *Tree, indent string) error {
	if t.IsLeaf {
		label := "background"
		if t.Corner {
			label = "corner"
		}
		_, err := fmt.Fprintf(w, "%s%s\n", indent, label)
		return err
	}

	b, d, s := stringify(t.Bri), stringify(t.Dark), stringify(t.Sim)
	ii := indent + " "
	f := t.Feature

	switch {
	case b == d && d == s:
		return printNode(w, t.Sim, indent)

	case d == s: // brighter differs
		if _, err := fmt.Fprintf(w, "%sif_brighter %d %d %d\n", indent, f, t.Bri.NumDatapoints, t.Dark.NumDatapoints+t.Sim.NumDatapoints); err != nil {
			return err
		}
		if err := printNode(w, t.Bri, ii); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%selse\n", indent); err != nil {
			return err
		}
		if err := printNode(w, t.Sim, ii); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%send\n", indent)
		return err

	case b == s: // darker differs
		if _, err := fmt.Fprintf(w, "%sif_darker %d %d %d\n", indent, f, t.Dark.NumDatapoints, t.Bri.NumDatapoints+t.Sim.NumDatapoints); err != nil {
			return err
		}
		if err := printNode(w, t.Dark, ii); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%selse\n", indent); err != nil {
			return err
		}
		if err := printNode(w, t.Sim, ii); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%send\n", indent)
		return err

	case b == d: // similar differs
		if _, err := fmt.Fprintf(w, "%sif_either %d %d %d\n", indent, f, t.Bri.NumDatapoints+t.Dark.NumDatapoints, t.Sim.NumDatapoints); err != nil {
			return err
		}
		if err := printNode(w, t.Bri, ii); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%selse\n", indent); err != nil {
			return err
		}
		if err := printNode(w, t.Sim, ii); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%send\n", indent)
		return err

	default: // all different
		if _, err := fmt.Fprintf(w, "%sif_brighter %d %d %d %d\n", indent, f, t.Bri.NumDatapoints, t.Dark.NumDatapoints, t.Sim.NumDatapoints); err != nil {
			return err
		}
		if err := printNode(w, t.Bri, ii); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%selsf_darker %d\n", indent, f); err != nil {
			return err
		}
		if err := printNode(w, t.Dark, ii); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%selse\n", indent); err != nil {
			return err
		}
		if err := printNode(w, t.Sim, ii); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%send\n", indent)
		return err
	}
}

// stringify renders a subtree in a compact, order-sensitive form used only
// to test two subtrees for structural equality, matching the original's
// tree::stringify.
func stringify(t *Tree) string {
	if t.IsLeaf {
		if t.Corner {
			return "(1)"
		}
		return "(0)"
	}
	return "(" + stringify(t.Bri) + stringify(t.Dark) + stringify(t.Sim) + ")"
}
