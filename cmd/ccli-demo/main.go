// ccli-demo is a small interactive shell showcasing the ccli library:
// a couple of flat commands, a hierarchical "config" command table, an
// alias, and history persisted across runs.
package main

import (
	"fmt"
	"os"

	"github.com/rostedt/ccli"
	"github.com/rostedt/ccli/config"
	"github.com/rostedt/ccli/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ccli-demo: loading config:", err)
		cfg = config.Default()
	}

	ed, err := ccli.New(cfg.Prompt, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ccli-demo:", err)
		os.Exit(1)
	}
	defer ed.Close()
	ed.SetHistoryMax(cfg.HistoryMax)

	if err := ed.LoadHistory(""); err != nil {
		fmt.Fprintln(os.Stderr, "ccli-demo: loading history:", err)
	}
	defer ed.SaveHistory("")

	ed.RegisterCommand("echo", func(name, line string, data any, argv []string) (int, error) {
		for _, a := range argv[1:] {
			ed.Printf("%s ", a)
		}
		ed.Printf("\n")
		return 0, nil
	}, nil)

	ed.RegisterCommand("hello", func(name, line string, data any, argv []string) (int, error) {
		ed.Printf("hello, world\n")
		return 0, nil
	}, nil)

	configCmds := &registry.CommandNode{
		Subcommands: []*registry.CommandNode{
			{
				Name: "config",
				Subcommands: []*registry.CommandNode{
					{
						Name: "set",
						Run: func(name, line string, data any, argv []string) (int, error) {
							if len(argv) < 3 {
								return 0, fmt.Errorf("usage: config set <key> <value>\n")
							}
							ed.Printf("%s = %s\n", argv[1], argv[2])
							return 0, nil
						},
					},
					{
						Name: "get",
						Run: func(name, line string, data any, argv []string) (int, error) {
							if len(argv) < 2 {
								return 0, fmt.Errorf("usage: config get <key>\n")
							}
							ed.Printf("(unset)\n")
							return 0, nil
						},
					},
				},
			},
		},
	}
	if err := ed.RegisterCommandTable(configCmds); err != nil {
		fmt.Fprintln(os.Stderr, "ccli-demo:", err)
		os.Exit(1)
	}

	ed.SetAlias("hi", "hello")
	delim := cfg.ChainDelim
	if delim == "" {
		delim = ";"
	}
	ed.SetChainDelimiter(delim)

	if err := ed.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "ccli-demo:", err)
		os.Exit(1)
	}
}
