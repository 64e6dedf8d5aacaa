package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"dwarf2layout/layout"
)

func main() {
	app := &cli.App{
		Name:  "dwarf2layout",
		Usage: "dump the memory layout of global variables from DWARF debug info",
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Aliases:   []string{"d"},
				Usage:     "print address, size, name and type of every global variable",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "exclude",
						Aliases: []string{"e"},
						Usage:   "skip variables by exact name or prefix*",
						EnvVars: []string{"DWARF2LAYOUT_EXCLUDE"},
					},
					&cli.IntFlag{
						Name:        "max-depth",
						Usage:       "maximum type nesting depth",
						Value:       layout.DefaultMaxDepth,
						DefaultText: fmt.Sprint(layout.DefaultMaxDepth),
						EnvVars:     []string{"DWARF2LAYOUT_MAX_DEPTH"},
					},
					&cli.BoolFlag{
						Name:    "symbols",
						Aliases: []string{"s"},
						Usage:   "take missing addresses from the ELF symbol table",
					},
					&cli.Uint64Flag{
						Name:    "static-base",
						Usage:   "add `BIAS` to every variable address, the load address of a position independent executable",
						EnvVars: []string{"DWARF2LAYOUT_STATIC_BASE"},
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "do not log warnings",
					},
					&cli.BoolFlag{
						Name:  "spew",
						Usage: "dump the view trees to stderr",
					},
					&cli.StringFlag{
						Name:  "memviz",
						Usage: "write a graphviz rendering of the view trees to `FILE`",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("no input file", 2)
					}
					opts := DumpOptions{
						Exclude:    c.StringSlice("exclude"),
						MaxDepth:   c.Int("max-depth"),
						Symbols:    c.Bool("symbols"),
						StaticBase: c.Uint64("static-base"),
						Quiet:      c.Bool("quiet"),
						Spew:       c.Bool("spew"),
					}
					failed := 0
					for i, ipath := range c.Args().Slice() {
						opts.Memviz = c.String("memviz")
						if opts.Memviz != "" && c.NArg() > 1 {
							opts.Memviz = fmt.Sprintf("%s.%d", opts.Memviz, i)
						}
						err := dumpFile(ipath, opts)
						if err != nil {
							failed++
						}
					}
					if failed > 0 {
						return fmt.Errorf("%d of %d files failed", failed, c.NArg())
					}
					return nil
				},
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// dumpFile dumps one file to stdout and logs its error, so one bad
// file does not stop the others.
func dumpFile(ipath string, opts DumpOptions) error {
	err := DumpHelper(ipath, opts, os.Stdout)
	if err != nil {
		log.Println(err)
	}
	return err
}
