// Command clrxasm is a thin driver proving internal/gcn/asm's entry
// points are callable end to end: read a line-oriented GCN assembly
// source, encode it into a single code section, and write the raw
// machine words.
//
// Grounded on the teacher's cmd/bfcc subcommand structure
// (_examples/lcox74-bfcc/cmd/bfcc/main.go), generalized from stdlib
// flag.FlagSet subcommands to a cobra.Command tree per the retrieval
// pack's other cobra-using example
// (_examples/ajroetker-goat/main.go's single-command PersistentFlags
// pattern).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/clrx-go/clrx/internal/expr"
	"github.com/clrx-go/clrx/internal/gcn/asm"
	"github.com/clrx-go/clrx/internal/gcn/isa"
	"github.com/clrx-go/clrx/internal/section"
	"github.com/clrx-go/clrx/pkg/srcpos"
)

var genNames = map[string]isa.Generation{
	"gcn1.0": isa.Gen1_0, "gcn1.1": isa.Gen1_1, "gcn1.2": isa.Gen1_2,
	"gcn1.4": isa.Gen1_4, "gcn1.4.1": isa.Gen1_4_1,
	"gcn1.5": isa.Gen1_5, "gcn1.5.1": isa.Gen1_5_1, "gcn1.5wave32": isa.Gen1_5Wave32,
}

func main() {
	var gen string
	var output string

	cmd := &cobra.Command{
		Use:  "clrxasm [-a generation] [-o output] <file>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			generation, ok := genNames[strings.ToLower(gen)]
			if !ok {
				return fmt.Errorf("unknown GPU generation %q", gen)
			}
			return assembleFile(args[0], output, generation)
		},
	}
	cmd.Flags().StringVarP(&gen, "arch", "a", "gcn1.2", "target GCN generation (gcn1.0 .. gcn1.5wave32)")
	cmd.Flags().StringVarP(&output, "output", "o", "a.bin", "output file for the assembled code section")

	if err := cmd.Execute(); err != nil {
		glog.Errorf("clrxasm: %v", err)
		os.Exit(1)
	}
}

func assembleFile(path, output string, gen isa.Generation) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sec := section.New(".text", section.TypeProgBits, section.FlagExecutable, 4, true)
	scope := expr.NewScope(nil)
	resolver := expr.NewResolver()
	ctx := &asm.Context{Section: sec, SectionID: 0, Scope: scope, Gen: gen, File: path}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		pos := srcpos.Position{File: path, Line: lineNo, Column: 1}
		if label, ok := strings.CutSuffix(line, ":"); ok {
			sym := scope.DefineLabel(label)
			if err := resolver.Define(sym, pos, ctx.SectionID, uint64(sec.Size())); err != nil {
				return err
			}
			continue
		}
		ctx.Pos = pos
		if _, err := asm.EncodeLine(ctx, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := asm.FinalizeRelocations(ctx); err != nil {
		return err
	}

	glog.V(1).Infof("assembled %d bytes from %s (%d symbols defined)", sec.Size(), path, resolver.Defined())
	return os.WriteFile(output, sec.Content(), 0o644)
}
