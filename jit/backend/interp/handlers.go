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

package interp

import (
	"github.com/jetsetilly/armjit/curated"
	"github.com/jetsetilly/armjit/jit/backend"
	"github.com/jetsetilly/armjit/jit/ir"
)

func handleLoadConstant(_ *handlerArg) error {
	return nil
}

func handleLoadMemory(arg *handlerArg) error {
	if arg.st.state == nil {
		return curated.Errorf(NoState, arg.ins.Kind)
	}
	v, err := arg.st.state.Read(arg.ins.Width, arg.st.values[arg.ins.Operand[0]])
	if err != nil {
		return err
	}
	arg.st.values[arg.index] = v
	return nil
}

func handleStoreMemory(arg *handlerArg) error {
	if arg.st.state == nil {
		return curated.Errorf(NoState, arg.ins.Kind)
	}
	return arg.st.state.Write(arg.ins.Width, arg.st.values[arg.ins.Operand[0]], arg.st.values[arg.ins.Operand[1]])
}

func handleLoadRegister(arg *handlerArg) error {
	if arg.st.state == nil {
		return curated.Errorf(NoState, arg.ins.Kind)
	}
	arg.st.values[arg.index] = arg.st.state.Register(arg.ins.Register)
	return nil
}

func handleStoreRegister(arg *handlerArg) error {
	if arg.st.state == nil {
		return curated.Errorf(NoState, arg.ins.Kind)
	}
	arg.st.state.SetRegister(arg.ins.Register, arg.st.values[arg.ins.Operand[0]])
	return nil
}

func handleUnary(arg *handlerArg) error {
	arg.st.values[arg.index] = arg.ins.Unary.Eval(arg.st.values[arg.ins.Operand[0]])
	return nil
}

func handleBinary(arg *handlerArg) error {
	arg.st.values[arg.index] = arg.ins.Binary.Eval(arg.st.values[arg.ins.Operand[0]], arg.st.values[arg.ins.Operand[1]])
	return nil
}

// the successor handler resolves the exit of the block. it never runs another
// block itself. that is the job of the engine's dispatch loop
func handleSuccessor(arg *handlerArg) error {
	s := arg.st.successor
	var cond ir.Value
	if s.Cond != ir.InvalidIndex {
		cond = arg.st.values[s.Cond]
	}
	arg.st.exit = backend.Exit{Kind: s.Kind, Next: s.Resolve(cond)}
	return nil
}
