package main

import (
	"context"
	"fmt"

	"github.com/sourceplane/jobconf/internal/compiler"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var validateJobs int

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate one or more configuration files",
	Long:  "Compile every given file (or --config when none is given) and report the first error of each. Files are compiled concurrently.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{configFile}
		}
		return validateFiles(cmd.Context(), args)
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)

	validateCmd.Flags().IntVarP(&validateJobs, "jobs", "j", 4, "Number of files compiled at once")
}

func validateFiles(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if validateJobs > 0 {
		g.SetLimit(validateJobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, errs[i] = compiler.CompileFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, path := range paths {
		if errs[i] != nil {
			failed++
			fmt.Printf("✗ %s: %v\n", path, errs[i])
			logger.Debug().Str("path", path).Err(errs[i]).Msg("validation failed")
			continue
		}
		fmt.Printf("✓ %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d configuration files are invalid", failed, len(paths))
	}
	return nil
}
