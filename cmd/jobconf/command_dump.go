package main

import (
	"fmt"
	"os"

	"github.com/sourceplane/jobconf/internal/compiler"
	"github.com/sourceplane/jobconf/internal/render"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Compile a configuration and print it as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpConfig()
	},
}

func registerDumpCommand(root *cobra.Command) {
	root.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write to file instead of stdout (format from extension)")
	dumpCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for stdout (json/yaml)")
}

func dumpConfig() error {
	cfg, err := compiler.CompileFile(configFile)
	if err != nil {
		return err
	}

	r := render.NewRenderer()
	summary, err := r.Summarize(cfg)
	if err != nil {
		return err
	}

	if outputFile == "" {
		return r.Encode(os.Stdout, summary, outputFormat)
	}
	if err := r.WriteSummary(summary, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Configuration written to %s\n", outputFile)
	return nil
}
