package main

import (
	"fmt"
	"strings"

	"github.com/sourceplane/jobconf/internal/compiler"
	"github.com/sourceplane/jobconf/internal/render"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view [jobs|nodes|services|job=NAME]",
	Short: "Show a compiled configuration as a tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "jobs"
		if len(args) == 1 {
			what = args[0]
		}
		return viewConfig(what)
	},
}

func registerViewCommand(root *cobra.Command) {
	root.AddCommand(viewCmd)
}

func viewConfig(what string) error {
	cfg, err := compiler.CompileFile(configFile)
	if err != nil {
		return err
	}

	viewer := render.NewConfigViewer(cfg)
	var out string
	switch {
	case what == "jobs":
		out = viewer.ViewJobs()
	case what == "nodes":
		out = viewer.ViewNodes()
	case what == "services":
		out = viewer.ViewServices()
	case strings.HasPrefix(what, "job="):
		out = viewer.ViewJob(strings.TrimPrefix(what, "job="))
	default:
		return fmt.Errorf("unknown view %q (expected jobs, nodes, services or job=NAME)", what)
	}
	fmt.Println(strings.TrimRight(out, "\n"))
	return nil
}
