// This file is part of armjit.
//
// armjit is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// armjit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with armjit.  If not, see <https://www.gnu.org/licenses/>.

package passes

import (
	"github.com/jetsetilly/armjit/jit/ir"
)

// Options selects the passes to run.
type Options struct {
	ConstantPropagation bool
	DeadCodeElimination bool
}

// Result of running the passes.
type Result struct {
	// number of instructions replaced by a constant
	Folded int

	// successor guard was replaced by an unconditional successor
	FoldedSuccessor bool

	// number of instructions removed
	Removed int
}

// Run the selected passes on the block. Constant propagation runs before
// dead code elimination because folding leaves unused constants behind.
func Run(blk *ir.Block, opts Options) (Result, error) {
	var res Result
	var err error

	if opts.ConstantPropagation {
		res.Folded, res.FoldedSuccessor, err = ConstantPropagation(blk)
		if err != nil {
			return res, err
		}
	}

	if opts.DeadCodeElimination {
		res.Removed, err = DeadCodeElimination(blk)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// ConstantPropagation replaces Unary and Binary instructions whose operands
// are all constants with a LoadConstant instruction. A conditional successor
// with a constant guard is replaced with an unconditional successor.
//
// Returns the number of instructions folded and whether the successor was
// folded.
func ConstantPropagation(blk *ir.Block) (int, bool, error) {
	folded := 0

	it := blk.Iterate()
	for it.Next() {
		idx := it.Index()
		ins := it.Instruction()

		switch ins.Kind {
		case ir.UnaryKind:
			src := &blk.IR[ins.Operand[0]]
			if src.Kind == ir.LoadConstantKind {
				blk.Replace(idx, ir.LoadConstant(ins.Unary.Eval(src.Constant)))
				folded++
			}
		case ir.BinaryKind:
			lhs := &blk.IR[ins.Operand[0]]
			rhs := &blk.IR[ins.Operand[1]]
			if lhs.Kind == ir.LoadConstantKind && rhs.Kind == ir.LoadConstantKind {
				blk.Replace(idx, ir.LoadConstant(ins.Binary.Eval(lhs.Constant, rhs.Constant)))
				folded++
			}
		}
	}
	if err := it.Err(); err != nil {
		return folded, false, err
	}

	s := blk.Successor
	if s.Kind != ir.SuccessorNone && s.Cond != ir.InvalidIndex {
		if c := &blk.IR[s.Cond]; c.Kind == ir.LoadConstantKind {
			blk.SetSuccessor(ir.Unconditional(s.Kind, s.Resolve(c.Constant)))
			return folded, true, nil
		}
	}

	return folded, false, nil
}

// DeadCodeElimination removes instructions that have no side effects and
// whose result is never used. Memory loads are never removed because they
// might fault.
//
// Returns the number of instructions removed.
func DeadCodeElimination(blk *ir.Block) (int, error) {
	var uses [ir.MaxInstructions]int
	order := make([]ir.Index, 0, blk.Len())

	it := blk.Iterate()
	for it.Next() {
		order = append(order, it.Index())
		for _, o := range it.Instruction().Operands() {
			uses[o]++
		}
	}
	if err := it.Err(); err != nil {
		return 0, err
	}
	if blk.Successor.Cond != ir.InvalidIndex {
		uses[blk.Successor.Cond]++
	}

	// operands always precede their users so a single pass in reverse order
	// is enough to remove chains of unused instructions
	removed := 0
	for i := len(order) - 1; i >= 0; i-- {
		idx := order[i]
		ins := &blk.IR[idx]
		if uses[idx] > 0 || !ins.HasResult() || ins.HasSideEffects() {
			continue
		}
		for _, o := range ins.Operands() {
			uses[o]--
		}
		blk.Remove(idx)
		removed++
	}

	return removed, nil
}
