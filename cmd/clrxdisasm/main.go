// Command clrxdisasm is a thin driver proving internal/gcn/disasm's entry
// points are callable end to end: read a raw GCN code blob and print its
// reconstructed assembly text.
//
// Grounded on the teacher's cmd/bfcc subcommand structure
// (_examples/lcox74-bfcc/cmd/bfcc/main.go), generalized to a
// cobra.Command per _examples/ajroetker-goat/main.go's usage pattern.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/clrx-go/clrx/internal/gcn/disasm"
	"github.com/clrx-go/clrx/internal/gcn/isa"
)

var genNames = map[string]isa.Generation{
	"gcn1.0": isa.Gen1_0, "gcn1.1": isa.Gen1_1, "gcn1.2": isa.Gen1_2,
	"gcn1.4": isa.Gen1_4, "gcn1.4.1": isa.Gen1_4_1,
	"gcn1.5": isa.Gen1_5, "gcn1.5.1": isa.Gen1_5_1, "gcn1.5wave32": isa.Gen1_5Wave32,
}

func main() {
	var gen string

	cmd := &cobra.Command{
		Use:  "clrxdisasm [-a generation] <file>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			generation, ok := genNames[strings.ToLower(gen)]
			if !ok {
				return fmt.Errorf("unknown GPU generation %q", gen)
			}
			return disassembleFile(args[0], generation)
		},
	}
	cmd.Flags().StringVarP(&gen, "arch", "a", "gcn1.2", "target GCN generation (gcn1.0 .. gcn1.5wave32)")

	if err := cmd.Execute(); err != nil {
		glog.Errorf("clrxdisasm: %v", err)
		os.Exit(1)
	}
}

func disassembleFile(path string, gen isa.Generation) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	d := disasm.New(data, gen, 0)
	fmt.Print(d.Decode())
	return nil
}
