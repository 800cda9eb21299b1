package ir

import (
	"fmt"
	"strings"

	"nikand.dev/go/heap"

	"github.com/nanu-c/mesa/compiler/set"
)

type (
	// VerifyError lists every structural violation found in a program.
	VerifyError struct {
		Prog string
		Errs []string
	}

	ready struct {
		id  NodeID
		pos int
	}
)

func (e *VerifyError) Error() string {
	return fmt.Sprintf("prog %s: %d violations: %s", e.Prog, len(e.Errs), strings.Join(e.Errs, "; "))
}

// Verify checks structural integrity of p and reports all violations at once.
func Verify(p *Prog) error {
	var errs []string

	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	seen := set.MakeBitmap(len(p.Nodes))
	pos := make(map[NodeID]int, len(p.Nodes))

	for _, b := range p.Blocks {
		for i, id := range b.Code {
			if id < 0 || int(id) >= len(p.Nodes) {
				add("block %d: node %d out of range", b.ID, id)
				continue
			}

			n := p.Nodes[id]

			switch {
			case seen.IsSet(int(id)):
				add("block %d: node %d listed twice", b.ID, id)
			case n.Deleted:
				add("block %d: node %d is deleted", b.ID, id)
			case n.Block != b.ID:
				add("block %d: node %d belongs to block %d", b.ID, id, n.Block)
			}

			seen.Set(int(id))
			pos[id] = i
		}
	}

	for _, n := range p.Nodes {
		if n.Deleted || !seen.IsSet(int(n.ID)) {
			continue
		}

		for _, id := range n.Preds {
			pred, ok := live(p, seen, id)
			if !ok {
				add("node %d: pred %d is not live", n.ID, id)
				continue
			}

			if !contains(pred.Succs, n.ID) {
				add("node %d: pred %d does not list it as succ", n.ID, id)
			}

			if pred.Block != n.Block {
				add("node %d: pred %d is in block %d", n.ID, id, pred.Block)
			} else if pos[id] >= pos[n.ID] {
				add("node %d: pred %d placed after it", n.ID, id)
			}
		}

		for _, id := range n.Succs {
			succ, ok := live(p, seen, id)
			if !ok {
				add("node %d: succ %d is not live", n.ID, id)
				continue
			}

			if !contains(succ.Preds, n.ID) {
				add("node %d: succ %d does not list it as pred", n.ID, id)
			}
		}

		for i, s := range n.Src {
			switch s.Type {
			case TargetSSA:
				x, ok := live(p, seen, s.Node)
				if !ok {
					add("node %d: src %d reads dead node %d", n.ID, i, s.Node)
				} else if !x.HasDest || x.Dest.Type != TargetSSA {
					add("node %d: src %d reads node %d without ssa dest", n.ID, i, s.Node)
				} else if x.Block != n.Block {
					add("node %d: src %d reads ssa of block %d", n.ID, i, x.Block)
				}
			case TargetRegister:
				if s.Reg < 0 || int(s.Reg) >= len(p.Regs) {
					add("node %d: src %d reads unknown reg %d", n.ID, i, s.Reg)
				}
			}
		}

		if n.HasDest && (n.Dest.Mask == 0 || n.Dest.Mask > 0xf) {
			add("node %d: bad write mask %#x", n.ID, n.Dest.Mask)
		}
	}

	var lost set.Bitmap

	for _, n := range p.Nodes {
		if !n.Deleted && !seen.IsSet(int(n.ID)) {
			lost.Set(int(n.ID))
		}
	}

	lost.Range(func(id int) bool {
		add("node %d is in no block", id)
		return true
	})

	for _, b := range p.Blocks {
		if left := topo(p, b, pos); left != 0 {
			add("block %d: dependency cycle through %d nodes", b.ID, left)
		}
	}

	if len(errs) != 0 {
		return &VerifyError{Prog: p.Name, Errs: errs}
	}

	return nil
}

// topo runs Kahn's algorithm over the block, always taking the earliest
// ready node, and returns the number of nodes never reached.
func topo(p *Prog, b *Block, pos map[NodeID]int) int {
	indeg := make(map[NodeID]int, len(b.Code))

	q := heap.Heap[ready]{Less: readyLess}

	for _, id := range b.Code {
		n := p.Nodes[id]

		for _, pid := range n.Preds {
			if p.Nodes[pid].Block == b.ID {
				indeg[id]++
			}
		}

		if indeg[id] == 0 {
			q.Push(ready{id: id, pos: pos[id]})
		}
	}

	done := 0

	for q.Len() != 0 {
		r := q.Pop()
		done++

		for _, sid := range p.Nodes[r.id].Succs {
			if _, ok := indeg[sid]; !ok {
				continue
			}

			indeg[sid]--

			if indeg[sid] == 0 {
				q.Push(ready{id: sid, pos: pos[sid]})
			}
		}
	}

	return len(b.Code) - done
}

func readyLess(d []ready, i, j int) bool {
	return d[i].pos < d[j].pos
}

func live(p *Prog, seen set.Bitmap, id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(p.Nodes) {
		return nil, false
	}

	n := p.Nodes[id]

	return n, !n.Deleted && seen.IsSet(int(id))
}

func contains(s []NodeID, id NodeID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}

	return false
}
