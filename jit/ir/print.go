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

package ir

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Tree returns the block as a treeprint.Tree. Instructions are listed in
// execution order and the successor is the final node.
func (blk *Block) Tree() treeprint.Tree {
	tree := treeprint.NewWithRoot(fmt.Sprintf("block %#08x (%d bytes, %d instructions)", blk.Address, blk.Span, blk.count))

	it := blk.Iterate()
	for it.Next() {
		tree.AddNode(fmt.Sprintf("%%%-3d %s", it.Index(), it.Instruction()))
	}
	if err := it.Err(); err != nil {
		tree.AddNode(err.Error())
	}

	succ := tree.AddBranch(blk.Successor.String())
	if blk.Successor.Cond != InvalidIndex {
		succ.AddNode(fmt.Sprintf("zero: %#08x", blk.Successor.Case0))
		succ.AddNode(fmt.Sprintf("non-zero: %#08x", blk.Successor.Case1))
	}

	return tree
}

func (blk *Block) String() string {
	return blk.Tree().String()
}
