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

import "github.com/jetsetilly/armjit/curated"

// Iterator walks the instructions of a block in execution order. Links are
// checked as the iterator advances. Iteration stops on the first bad link and
// the error is available from Err().
//
//	it := blk.Iterate()
//	for it.Next() {
//		ins := &blk.IR[it.Index()]
//	}
//	if it.Err() != nil {
//	}
type Iterator struct {
	blk   *Block
	cur   Index
	steps int
	err   error
	done  bool
}

// Iterate returns a new Iterator for the block.
func (blk *Block) Iterate() Iterator {
	return Iterator{blk: blk, cur: InvalidIndex}
}

// Next advances the iterator. Returns false when there are no more
// instructions or if an error has been encountered.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	var next Index
	if it.steps == 0 {
		next = it.blk.Head
	} else {
		next = it.blk.IR[it.cur].Next
	}

	if next == InvalidIndex {
		it.done = true
		return false
	}

	if !it.blk.populated(next) {
		it.err = curated.Errorf(BadLink, it.cur, next)
		it.done = true
		return false
	}

	// the number of steps can never be more than the number of live
	// instructions unless there is a cycle
	it.steps++
	if it.steps > it.blk.count {
		it.err = curated.Errorf(CycleDetected, next)
		it.done = true
		return false
	}

	it.cur = next
	return true
}

// Index returns the index of the current instruction.
func (it *Iterator) Index() Index {
	return it.cur
}

// Instruction returns the current instruction.
func (it *Iterator) Instruction() *Instruction {
	return &it.blk.IR[it.cur]
}

// Err returns the error that stopped the iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}
