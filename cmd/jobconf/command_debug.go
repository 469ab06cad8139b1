package main

import (
	"fmt"

	"github.com/sourceplane/jobconf/internal/builder"
	"github.com/sourceplane/jobconf/internal/loader"
	"github.com/sourceplane/jobconf/internal/normalize"
	"github.com/sourceplane/jobconf/internal/schema"
	"github.com/sourceplane/jobconf/internal/validate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showCanonical bool

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show each compilation stage of a configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return debugConfig()
	},
}

func registerDebugCommand(root *cobra.Command) {
	root.AddCommand(debugCmd)

	debugCmd.Flags().BoolVar(&showCanonical, "canonical", false, "Print the normalized document")
}

func debugConfig() error {
	fmt.Println("□ Loading configuration...")
	root, err := loader.LoadFile(configFile)
	if err != nil {
		return err
	}

	fmt.Println("□ Normalizing...")
	res, err := normalize.Normalize(root)
	if err != nil {
		return err
	}
	fmt.Printf("  Dialect: %s\n", res.Dialect)
	if showCanonical {
		out, err := yaml.Marshal(map[string]any(res.Document))
		if err != nil {
			return fmt.Errorf("failed to render canonical document: %w", err)
		}
		fmt.Printf("\n%s\n", out)
	}

	fmt.Println("□ Checking schema...")
	if err := schema.Validate(res.Document); err != nil {
		return err
	}

	fmt.Println("□ Building entities...")
	sections, err := builder.Build(res.Document)
	if err != nil {
		return err
	}
	fmt.Printf("  Nodes: %d\n", len(sections.Nodes))
	fmt.Printf("  Node pools: %d\n", len(sections.NodePools))
	fmt.Printf("  Jobs: %d\n", len(sections.Jobs))
	for _, name := range sections.JobOrder {
		job := sections.Jobs[name]
		_, cleanup := job.CleanupAction()
		fmt.Printf("    - %s: node=%s, schedule=%q, actions=%d, cleanup=%t\n",
			name, job.Node(), job.Schedule(), job.Actions().Len(), cleanup)
	}
	fmt.Printf("  Services: %d\n", len(sections.Services))
	for _, name := range sections.ServiceOrder {
		svc := sections.Services[name]
		fmt.Printf("    - %s: node=%s, count=%d\n", name, svc.Node, svc.Count)
	}

	fmt.Println("□ Checking references...")
	if err := validate.Validate(sections); err != nil {
		return err
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}
