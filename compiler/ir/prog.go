package ir

import (
	"slices"

	"tlog.app/go/loc"
)

func New(name string) *Prog {
	return &Prog{Name: name}
}

func (p *Prog) NewBlock() *Block {
	b := &Block{ID: BlockID(len(p.Blocks))}
	p.Blocks = append(p.Blocks, b)

	return b
}

func (p *Prog) Node(id NodeID) *Node { return p.Nodes[id] }
func (p *Prog) Reg(id RegID) *Reg    { return p.Regs[id] }

func (p *Prog) Block(id BlockID) *Block { return p.Blocks[id] }

// NewNode allocates a node owned by block b.
// The node is not part of the block sequence until inserted.
func (p *Prog) NewNode(b *Block, op Op) (*Node, error) {
	if p.MaxNodes != 0 && len(p.Nodes) >= p.MaxNodes {
		return nil, ErrAlloc
	}

	n := &Node{
		ID:      NodeID(len(p.Nodes)),
		Op:      op,
		Kind:    op.Kind(),
		Block:   b.ID,
		HasDest: op.HasDest(),
		Target:  NoBlock,
		From:    loc.Caller(1),
	}

	p.Nodes = append(p.Nodes, n)

	return n, nil
}

// NewReg allocates a register with liveness not observed yet.
func (p *Prog) NewReg(comps int) (*Reg, error) {
	if p.MaxRegs != 0 && len(p.Regs) >= p.MaxRegs {
		return nil, ErrAlloc
	}

	r := &Reg{
		ID:            RegID(len(p.Regs)),
		NumComponents: comps,
		LiveIn:        NewSSA(comps).LiveIn,
		LiveOut:       0,
	}

	p.Regs = append(p.Regs, r)

	return r, nil
}

func (p *Prog) Append(b *Block, ns ...*Node) {
	for _, n := range ns {
		b.Code = append(b.Code, n.ID)
	}
}

// InsertBefore places ns in order immediately before ref.
func (p *Prog) InsertBefore(ref *Node, ns ...*Node) {
	b := p.Blocks[ref.Block]
	i := b.Index(ref.ID)
	if i < 0 {
		panic(ref.ID)
	}

	b.Code = slices.Insert(b.Code, i, ids(ns)...)
}

// InsertAfter places ns in order immediately after ref.
func (p *Prog) InsertAfter(ref *Node, ns ...*Node) {
	b := p.Blocks[ref.Block]
	i := b.Index(ref.ID)
	if i < 0 {
		panic(ref.ID)
	}

	b.Code = slices.Insert(b.Code, i+1, ids(ns)...)
}

// Index returns the position of id in the block sequence or -1.
func (b *Block) Index(id NodeID) int {
	return slices.Index(b.Code, id)
}

func (p *Prog) AddDep(succ, pred *Node) {
	if succ.Block != pred.Block {
		return
	}

	if slices.Contains(succ.Preds, pred.ID) {
		return
	}

	if succ.ID == pred.ID {
		panic(succ.ID)
	}

	succ.Preds = append(succ.Preds, pred.ID)
	pred.Succs = append(pred.Succs, succ.ID)
}

// InsertDep adds the pred->succ edge placing pred right after the
// existing pred after in succ.Preds.
func (p *Prog) InsertDep(succ, pred, after *Node) {
	if succ.Block != pred.Block || slices.Contains(succ.Preds, pred.ID) {
		return
	}

	i := slices.Index(succ.Preds, after.ID)
	if i < 0 || succ.ID == pred.ID {
		panic(pred.ID)
	}

	succ.Preds = slices.Insert(succ.Preds, i+1, pred.ID)
	pred.Succs = append(pred.Succs, succ.ID)
}

func (p *Prog) RemoveDep(succ, pred *Node) {
	succ.Preds = remove(succ.Preds, pred.ID)
	pred.Succs = remove(pred.Succs, succ.ID)
}

// ReplacePred moves the old->succ edge to start at nw.
// The edge keeps its position in succ.Preds.
func (p *Prog) ReplacePred(succ, old, nw *Node) {
	i := slices.Index(succ.Preds, old.ID)
	if i < 0 {
		panic(old.ID)
	}

	old.Succs = remove(old.Succs, succ.ID)

	if slices.Contains(succ.Preds, nw.ID) {
		succ.Preds = slices.Delete(succ.Preds, i, i+1)
		return
	}

	succ.Preds[i] = nw.ID
	nw.Succs = append(nw.Succs, succ.ID)
}

// ReplaceChild retargets every source of succ reading old to read nw.
func (p *Prog) ReplaceChild(succ, old, nw *Node) {
	for i := range succ.Src {
		if succ.Src[i].Reads(old) {
			succ.Src[i].Retarget(nw)
		}
	}
}

// DeleteNode drops all edges of n, removes it from its block and tombstones it.
func (p *Prog) DeleteNode(n *Node) {
	for _, id := range n.Preds {
		pred := p.Nodes[id]
		pred.Succs = remove(pred.Succs, n.ID)
	}

	for _, id := range n.Succs {
		succ := p.Nodes[id]
		succ.Preds = remove(succ.Preds, n.ID)
	}

	n.Preds = nil
	n.Succs = nil

	b := p.Blocks[n.Block]
	if i := b.Index(n.ID); i >= 0 {
		b.Code = slices.Delete(b.Code, i, i+1)
	}

	n.Deleted = true
}

func (p *Prog) FirstPred(n *Node) *Node {
	if len(n.Preds) == 0 {
		return nil
	}

	return p.Nodes[n.Preds[0]]
}

// IsRoot reports whether nothing depends on n.
func (n *Node) IsRoot() bool {
	return len(n.Succs) == 0
}

// Walk iterates over nodes of all blocks in program order.
func (p *Prog) Walk(f func(b *Block, n *Node) bool) {
	for _, b := range p.Blocks {
		for _, id := range b.Code {
			if !f(b, p.Nodes[id]) {
				return
			}
		}
	}
}

// Components returns the number of components the target of s holds.
func (p *Prog) Components(s Src) int {
	switch s.Type {
	case TargetSSA:
		return p.Nodes[s.Node].Dest.SSA.NumComponents
	case TargetRegister:
		return p.Regs[s.Reg].NumComponents
	default:
		return 1
	}
}

func ids(ns []*Node) []NodeID {
	r := make([]NodeID, len(ns))

	for i, n := range ns {
		r[i] = n.ID
	}

	return r
}

func remove(s []NodeID, id NodeID) []NodeID {
	i := slices.Index(s, id)
	if i < 0 {
		return s
	}

	return slices.Delete(s, i, i+1)
}
