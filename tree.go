package faster

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Class is the boolean classification a leaf carries.
type Class bool

const (
	NonCorner Class = false
	Corner    Class = true
)

func (c Class) String() string {
	if c {
		return "corner"
	}
	return "background"
}

// Node is a ternary decision tree node (C2, §3). A Leaf has IsLeaf set and
// nil LT/EQ/GT; a Branch node owns all three children, never fewer. The OffsetIndex on a
// branch selects which of the OffsetTable's offsets is compared.
//
// I1: a Corner leaf may never be the direct EQ child of its parent branch.
// I2: Branch owns exactly three children, Leaf owns none.
type Node struct {
	IsLeaf bool

	// Leaf fields.
	Class Class
	Count uint64

	// Branch fields.
	OffsetIndex int
	LT, EQ, GT  *Node
}

// NewLeaf builds a leaf node.
func NewLeaf(class Class, count uint64) *Node {
	return &Node{IsLeaf: true, Class: class, Count: count}
}

// NewBranch builds a branch node, enforcing I1 by coercing a Corner EQ
// leaf to NonCorner immediately -- callers that already guarantee I1 (e.g.
// deserialization after validation) may skip this by constructing the
// struct literal directly, but every mutation path in this module goes
// through NewBranch or repairEQ.
func NewBranch(offsetIndex int, lt, eq, gt *Node) *Node {
	repairEQ(eq)
	return &Node{OffsetIndex: offsetIndex, LT: lt, EQ: eq, GT: gt}
}

// repairEQ forces an EQ-reachable Corner leaf to NonCorner, restoring I1.
// This is the repair step §4.8's "Known quirk" mandates be applied
// immediately after any mutation that could place a Corner leaf under an
// EQ edge, rather than deferred to the bytecode compiler as the historical
// implementation did.
func repairEQ(n *Node) {
	if n != nil && n.IsLeaf && n.Class == Corner {
		n.Class = NonCorner
	}
}

// DeepCopy returns an independent tree with identical structure (I3: trees
// are owned exclusively by their parent pointer, so copies must be deep).
func (n *Node) DeepCopy() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{IsLeaf: n.IsLeaf, Class: n.Class, Count: n.Count, OffsetIndex: n.OffsetIndex}
	if !n.IsLeaf {
		cp.LT = n.LT.DeepCopy()
		cp.EQ = n.EQ.DeepCopy()
		cp.GT = n.GT.DeepCopy()
	}
	return cp
}

// NodeCount returns the total number of nodes (branches + leaves).
func (n *Node) NodeCount() int {
	if n == nil {
		return 0
	}
	if n.IsLeaf {
		return 1
	}
	return 1 + n.LT.NodeCount() + n.EQ.NodeCount() + n.GT.NodeCount()
}

// NthElement performs a pre-order (self, lt, eq, gt) walk and returns the
// k-th node along with whether it was reached via an EQ edge -- the
// learner uses the EQ flag to decide which mutations would violate I1.
func (n *Node) NthElement(k int) (node *Node, viaEQ bool, ok bool) {
	return n.nthElement(k, false)
}

func (n *Node) nthElement(k int, viaEQ bool) (*Node, bool, bool) {
	if n == nil {
		return nil, false, false
	}
	if k == 0 {
		return n, viaEQ, true
	}
	k--
	if n.IsLeaf {
		return nil, false, false
	}
	if node, eq, ok := n.LT.nthElement(k, false); ok {
		return node, eq, true
	}
	k -= n.LT.NodeCount()
	if node, eq, ok := n.EQ.nthElement(k, true); ok {
		return node, eq, true
	}
	k -= n.EQ.NodeCount()
	return n.GT.nthElement(k, false)
}

// Serialize writes the tree in the §6 textual grammar: one line per node,
// indented by depth. Pointer columns exist for debugging only; this
// implementation assigns them a stable pre-order id but Deserialize
// ignores them and reconstructs structure purely from indentation and the
// lt/eq/gt line order.
func (n *Node) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)
	id := 0
	if err := serializeNode(bw, n, 0, &id); err != nil {
		return err
	}
	return bw.Flush()
}

func serializeNode(w *bufio.Writer, n *Node, depth int, id *int) error {
	indent := strings.Repeat(" ", depth)
	this := *id
	*id++
	if n.IsLeaf {
		_, err := fmt.Fprintf(w, "%sIs corner: %d %d 0 0 0\n", indent, boolToInt(bool(n.Class)), this)
		return err
	}
	// Reserve ids for the three children before recursing so the printed
	// pointer columns at least look like forward references, matching the
	// debug-only intent of the column.
	ltID, eqID, gtID := *id, *id+n.LT.NodeCount(), *id+n.LT.NodeCount()+n.EQ.NodeCount()
	if _, err := fmt.Fprintf(w, "%s%d %d %d %d %d\n", indent, n.OffsetIndex, this, ltID, eqID, gtID); err != nil {
		return err
	}
	if err := serializeNode(w, n.LT, depth+1, id); err != nil {
		return err
	}
	if err := serializeNode(w, n.EQ, depth+1, id); err != nil {
		return err
	}
	return serializeNode(w, n.GT, depth+1, id)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Deserialize parses the §6 textual tree grammar. On detecting an I1
// violation (a Corner leaf directly under an EQ edge) it silently repairs
// the leaf to NonCorner and logs a warning, per §7's recovery policy.
func Deserialize(r io.Reader, source string) (*Node, error) {
	sc := bufio.NewScanner(r)
	p := &treeParser{sc: sc, source: source}
	if !p.advance() {
		return nil, &ParseError{Source: source, Msg: "empty tree file"}
	}
	root, err := p.parseNode(0, false)
	if err != nil {
		return nil, err
	}
	return root, nil
}

type treeParser struct {
	sc      *bufio.Scanner
	source  string
	line    int
	cur     string
	haveCur bool
}

func (p *treeParser) advance() bool {
	if p.sc.Scan() {
		p.cur = p.sc.Text()
		p.line++
		p.haveCur = true
		return true
	}
	p.haveCur = false
	return false
}

func (p *treeParser) parseNode(depth int, viaEQ bool) (*Node, error) {
	if !p.haveCur {
		return nil, &ParseError{Source: p.source, Line: p.line, Msg: "unexpected end of input"}
	}
	raw := p.cur
	trimmed := strings.TrimLeft(raw, " ")
	gotDepth := len(raw) - len(trimmed)
	if gotDepth != depth {
		return nil, &ParseError{Source: p.source, Line: p.line, Msg: fmt.Sprintf("expected indent %d, got %d", depth, gotDepth)}
	}
	fields := strings.Fields(trimmed)

	if strings.HasPrefix(trimmed, "Is corner:") {
		if len(fields) != 7 {
			return nil, &ParseError{Source: p.source, Line: p.line, Msg: "malformed leaf line"}
		}
		v, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, &ParseError{Source: p.source, Line: p.line, Msg: "malformed leaf class"}
		}
		class := Class(v != 0)
		if viaEQ && class == Corner {
			log.Printf("warning: %s:%d: corner leaf under eq edge, coercing to non-corner", p.source, p.line)
			class = NonCorner
		}
		p.advance()
		return &Node{IsLeaf: true, Class: class}, nil
	}

	if len(fields) != 5 {
		return nil, &ParseError{Source: p.source, Line: p.line, Msg: "malformed branch line"}
	}
	offsetIndex, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, &ParseError{Source: p.source, Line: p.line, Msg: "malformed offset index"}
	}
	p.advance()

	lt, err := p.parseNode(depth+1, false)
	if err != nil {
		return nil, err
	}
	eq, err := p.parseNode(depth+1, true)
	if err != nil {
		return nil, err
	}
	gt, err := p.parseNode(depth+1, false)
	if err != nil {
		return nil, err
	}
	return &Node{OffsetIndex: offsetIndex, LT: lt, EQ: eq, GT: gt}, nil
}

// Destroy recursively and deterministically detaches every child pointer.
// Go's garbage collector reclaims memory on its own, but the core's
// ownership model (I3) is that a discarded candidate tree is destroyed
// before the next iteration begins (§5), so this makes that discarding
// explicit and observable rather than relying on the tree simply falling
// out of scope.
func (n *Node) Destroy() {
	if n == nil || n.IsLeaf {
		return
	}
	n.LT.Destroy()
	n.EQ.Destroy()
	n.GT.Destroy()
	n.LT, n.EQ, n.GT = nil, nil, nil
}
