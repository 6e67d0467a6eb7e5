package fast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrint_LeafOnly(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Print(&buf, leaf(true, 4)))
	assert.Equal(t, "corner\n", buf.String())

	buf.Reset()
	assert.NoError(t, Print(&buf, leaf(false, 4)))
	assert.Equal(t, "background\n", buf.String())
}

func TestPrint_AllThreeIdentical_Collapses(t *testing.T) {
	tree := &Tree{
		Feature:       2,
		Bri:           leaf(false, 3),
		Dark:          leaf(false, 5),
		Sim:           leaf(false, 7),
		NumDatapoints: 15,
	}
	var buf bytes.Buffer
	assert.NoError(t, Print(&buf, tree))
	assert.Equal(t, "background\n", buf.String())
}

func TestPrint_DarkerDiffers_CollapsesToIfDarker(t *testing.T) {
	tree := &Tree{
		Feature:       1,
		Bri:           leaf(false, 3),
		Dark:          leaf(true, 5),
		Sim:           leaf(false, 3),
		NumDatapoints: 11,
	}
	var buf bytes.Buffer
	assert.NoError(t, Print(&buf, tree))
	assert.Equal(t, "if_darker 1 5 6\n corner\nelse\n background\nend\n", buf.String())
}

func TestPrint_SimilarDiffers_CollapsesToIfEither(t *testing.T) {
	tree := &Tree{
		Feature:       0,
		Bri:           leaf(true, 4),
		Dark:          leaf(true, 4),
		Sim:           leaf(false, 2),
		NumDatapoints: 10,
	}
	var buf bytes.Buffer
	assert.NoError(t, Print(&buf, tree))
	assert.Equal(t, "if_either 0 8 2\n corner\nelse\n background\nend\n", buf.String())
}

func TestPrint_AllDifferent_FullThreeWay(t *testing.T) {
	tree := &Tree{
		Feature:       3,
		Bri:           leaf(true, 1),
		Dark:          leaf(false, 2),
		Sim:           &Tree{Feature: 0, Bri: leaf(true, 1), Dark: leaf(false, 1), Sim: leaf(false, 1), NumDatapoints: 3},
		NumDatapoints: 6,
	}
	var buf bytes.Buffer
	assert.NoError(t, Print(&buf, tree))
	assert.Equal(t, "if_brighter 3 1 2 3\n corner\nelsf_darker 3\n background\nelse\n if_brighter 0 1 2\n  corner\n else\n  background\n end\nend\n", buf.String())
}

// TestPrint_ScenarioOneDatapoint reproduces the canonical two-row training
// example: feature 0, a "brighter" row (count 10, corner) and a "similar"
// row (count 10, background), no "darker" row at all. The dark branch
// collapses to an empty background leaf, making dark and similar
// stringify identically ("(0)"), which the grammar's case order resolves
// to "brighter differs", not "similar differs": build_tree assigns the
// empty dark branch a background leaf of count 0 exactly like the
// genuinely-background similar branch, so it is the brighter branch that
// stands out.
func TestPrint_ScenarioOneDatapoint(t *testing.T) {
	data := []LabeledDescriptor{
		{Features: Descriptor{2}, Count: 10, Corner: true},  // Brighter
		{Features: Descriptor{1}, Count: 10, Corner: false}, // Similar
	}
	tree, err := Build(data, nil, 1)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, Print(&buf, tree))
	assert.Equal(t, "if_brighter 0 10 10\n corner\nelse\n background\nend\n", buf.String())
}

func TestStringify_LeafAndBranch(t *testing.T) {
	assert.Equal(t, "(1)", stringify(leaf(true, 1)))
	assert.Equal(t, "(0)", stringify(leaf(false, 1)))
	tree := &Tree{Bri: leaf(true, 1), Dark: leaf(false, 1), Sim: leaf(false, 1)}
	assert.Equal(t, "((1)(0)(0))", stringify(tree))
}
