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

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/bradleyjkemp/memviz"
	"github.com/fatih/color"
	"github.com/jetsetilly/armjit/environment"
	"github.com/jetsetilly/armjit/jit"
	"github.com/jetsetilly/armjit/jit/frontend"
	"github.com/jetsetilly/armjit/jit/guest"
	"github.com/jetsetilly/armjit/jit/ir"
	"github.com/jetsetilly/armjit/jit/irfile"
	"github.com/jetsetilly/armjit/logger"
	"github.com/jetsetilly/armjit/modalflag"
	"github.com/jetsetilly/armjit/performance"
	"github.com/jetsetilly/armjit/prefs"
	"github.com/jetsetilly/armjit/statsview"
	"github.com/jetsetilly/armjit/version"
)

func main() {
	// ctrl-c ends the program immediately
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	go func() {
		<-intChan
		fmt.Println("\r")
		os.Exit(0)
	}()

	os.Exit(launch(os.Stdout, os.Args[1:]))
}

// launch the mode specified by the command line arguments. returns the exit
// value for the program.
func launch(output io.Writer, args []string) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.AddSubModes("RUN", "DISASM", "PERFORMANCE", "VERSION")

	echo := md.AddBool("log", false, "echo log to stdout")
	cmdlinePrefs := md.AddString("prefs", "", "preferences for this run only: \"key::value; key::value\"")
	md.AdditionalHelp("preferences are stored in the preferences.toml file and can be overridden with -prefs")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return 10
	}

	if *echo {
		logger.SetEcho(logger.NewColorizer(output), false)
	}

	if *cmdlinePrefs != "" {
		prefs.PushCommandLineStack(*cmdlinePrefs)
		defer func() {
			if unused := prefs.PopCommandLineStack(); unused != "" {
				fmt.Fprintf(output, "* unused preferences: %s\n", unused)
			}
		}()
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "DISASM":
		err = disasm(md)
	case "PERFORMANCE":
		err = perform(md)
	case "VERSION":
		fmt.Fprint(output, version.Version().String())
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md.String(), err)
		return 20
	}

	return 0
}

// workload returns the default workload or the program named by the only
// remaining argument.
func workload(md *modalflag.Modes) (performance.Workload, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return performance.DefaultWorkload(), nil
	case 1:
		return performance.LoadWorkload(md.GetArg(0))
	}
	return performance.Workload{}, fmt.Errorf("too many arguments for %s mode", md)
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	entry := md.AddAddress("entry", 0, "address to start execution")
	maxRuns := md.AddInt("max", 1000, "maximum number of calls to the JIT engine")
	tree := md.AddBool("tree", false, "print the IR of the cached blocks when execution ends")
	save := md.AddString("save", "", "save snapshots of the cached blocks to file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	wl, err := workload(md)
	if err != nil {
		return err
	}
	wl.Entry = *entry

	env, err := environment.NewEnvironment(environment.MainEngine, nil)
	if err != nil {
		return err
	}

	ram, err := wl.Memory()
	if err != nil {
		return err
	}
	st := guest.NewState(ram)

	eng, err := jit.NewEngine(env, frontend.NewTranslator(env, ram), st, nil)
	if err != nil {
		return err
	}

	addr := wl.Entry
	for i := 0; i < *maxRuns; i++ {
		exit, err := eng.Run(addr)
		if err != nil {
			return err
		}
		addr = exit.Next
		if exit.Kind != ir.SuccessorJump {
			fmt.Fprintf(md.Output, "stopped: %s\n", exit)
			break // for loop
		}
	}

	writeRegisters(md.Output, st)

	stats := eng.Stats()
	fmt.Fprintf(md.Output, "compiles: %d  runs: %d  chained: %d  hits: %d  misses: %d\n",
		stats.Compiles, stats.Runs, stats.Chained, stats.Hits, stats.Misses)

	if *tree {
		for _, blk := range eng.CachedBlocks() {
			fmt.Fprintln(md.Output, blk.String())
		}
	}

	if *save != "" {
		var snaps []irfile.Block
		for _, blk := range eng.CachedBlocks() {
			snap, err := irfile.Snapshot(blk)
			if err != nil {
				return err
			}
			snaps = append(snaps, snap)
		}
		if err := saveSnapshots(*save, snaps); err != nil {
			return err
		}
	}

	return nil
}

func writeRegisters(output io.Writer, st *guest.State) {
	reg := color.New(color.FgCyan)
	for r := range ir.NumHostRegisters {
		reg.Fprintf(output, "%-4s", r.String())
		fmt.Fprintf(output, "%08x", uint32(st.Register(r)))
		if r%4 == 3 {
			fmt.Fprintln(output)
		} else {
			fmt.Fprint(output, "  ")
		}
	}
}

func saveSnapshots(filename string, snaps []irfile.Block) (rerr error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()
	return irfile.Save(f, snaps)
}

func disasm(md *modalflag.Modes) error {
	md.NewMode()

	addr := md.AddAddress("addr", 0, "address to start disassembly")
	count := md.AddInt("count", 16, "number of instructions to disassemble")
	showIR := md.AddBool("ir", false, "show the IR for the block starting at the address")
	viz := md.AddString("memviz", "", "write a graphviz file of the IR snapshot for the block")
	save := md.AddString("save", "", "save a snapshot of the IR for the block to file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	wl, err := workload(md)
	if err != nil {
		return err
	}

	env, err := environment.NewEnvironment(environment.MainEngine, nil)
	if err != nil {
		return err
	}

	ram, err := wl.Memory()
	if err != nil {
		return err
	}
	tr := frontend.NewTranslator(env, ram)

	entries, err := tr.Disassemble(*addr, *count)
	if err != nil {
		return err
	}

	unsupported := color.New(color.FgRed)
	for _, e := range entries {
		if e.Supported {
			fmt.Fprintln(md.Output, e.String())
		} else {
			unsupported.Fprintln(md.Output, e.String())
		}
	}

	if !*showIR && *viz == "" && *save == "" {
		return nil
	}

	blk := ir.NewBlock(*addr)
	if err := tr.Translate(blk); err != nil {
		return err
	}

	if *showIR {
		fmt.Fprintln(md.Output)
		fmt.Fprintln(md.Output, blk.String())
	}

	snap, err := irfile.Snapshot(blk)
	if err != nil {
		return err
	}

	if *viz != "" {
		f, err := os.Create(*viz)
		if err != nil {
			return err
		}
		memviz.Map(f, &snap)
		if err := f.Close(); err != nil {
			return err
		}
	}

	if *save != "" {
		return saveSnapshots(*save, []irfile.Block{snap})
	}

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	engines := md.AddInt("engines", 1, "number of engines to run concurrently")
	duration := md.AddString("duration", "5s", "run duration")
	profile := md.AddString("profile", "none", "run performance check with profiling: comma separated CPU, MEM, TRACE or ALL")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	wl, err := workload(md)
	if err != nil {
		return err
	}

	env, err := environment.NewEnvironment(environment.MainEngine, nil)
	if err != nil {
		return err
	}

	if *stats {
		statsview.Launch(md.Output)
	}

	return performance.Check(md.Output, prf, env.Prefs, wl, *engines, *duration)
}
