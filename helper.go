package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/davecgh/go-spew/spew"

	dwarfhelper "dwarf2layout/dwarf"
	"dwarf2layout/layout"
	"dwarf2layout/report"
	"dwarf2layout/symtab"
	"dwarf2layout/utils"
)

// DumpOptions configures one run. StaticBase is the load bias added to every
// variable address.
type DumpOptions struct {
	Exclude    []string
	MaxDepth   int
	Symbols    bool
	StaticBase uint64
	Quiet      bool
	Spew       bool
	Memviz     string
}

// DumpHelper prints the layout report of one ELF file to out. Warnings go to
// the log.
func DumpHelper(ipath string, opts DumpOptions, out io.Writer) error {
	info, err := dwarfhelper.NewDwarfInfo(ipath)
	if err != nil {
		return err
	}
	defer info.Close()

	decoder := dwarfhelper.NewDecoder(info.GetData())
	decoder.StaticBase = opts.StaticBase
	entries, err := decoder.Decode()
	if err != nil {
		return fmt.Errorf("%s: %w", ipath, err)
	}

	var diag layout.Diagnostics
	for _, w := range decoder.Warnings {
		diag.Warn(layout.CodeLocationEvaluation, "", "%s", w)
	}

	if opts.Symbols {
		table, err := symtab.ReadObjectSymbols(info.GetElfFile())
		if err != nil {
			return fmt.Errorf("%s: %w", ipath, err)
		}
		table.FillLocations(entries, opts.StaticBase)
	}

	views, layoutDiag := Layout(entries, opts)
	diag.Merge(layoutDiag)

	if !opts.Quiet {
		for _, w := range diag.Warnings {
			log.Printf("%s: warning: %s", ipath, w)
		}
	}

	if opts.Spew {
		spew.Fdump(os.Stderr, views)
	}

	if opts.Memviz != "" {
		err = writeMemviz(opts.Memviz, views)
		if err != nil {
			return err
		}
	}

	return report.Write(out, views)
}

// Layout extracts the type graph from entries and projects every global
// variable that passes the exclude filter.
func Layout(entries []*dwarfhelper.Entry, opts DumpOptions) ([]layout.GlobalVariableView, layout.Diagnostics) {
	types := layout.NewTypeEntryRepository()
	declarations := layout.NewVariableDeclarationEntryRepository()

	variables, diag := layout.NewExtractor(types, declarations).Extract(entries)

	factory := layout.NewViewFactory(types, declarations, layout.Options{MaxDepth: opts.MaxDepth})
	views, viewDiag := factory.FromGlobalVariables(variables)
	diag.Merge(viewDiag)

	filter := utils.NewNameFilter(opts.Exclude)
	kept := views[:0]
	for _, v := range views {
		if filter.Excluded(v.Name) {
			continue
		}
		kept = append(kept, v)
	}
	return kept, diag
}

func writeMemviz(opath string, views []layout.GlobalVariableView) error {
	create, err := os.Create(opath)
	if err != nil {
		return err
	}
	memviz.Map(create, &views)
	return create.Close()
}
