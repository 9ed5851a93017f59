package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/grpc-mediator-go/internal/codegen/adaptergen"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		root       string
		check      bool
	)

	cmd := &cobra.Command{
		Use:   "mediator-gen",
		Short: "Generate gRPC adapters that dispatch through the mediator",
		Long: `mediator-gen reads a manifest naming a gRPC service contract and the feature
packages holding the internal requests, and writes an adapter whose methods
forward every RPC to the mediator.

Examples:
  mediator-gen --config configs/mediator-gen.yaml
  mediator-gen --config configs/mediator-gen.yaml --check`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := adaptergen.LoadManifest(configPath)
			if err != nil {
				return err
			}

			gen := adaptergen.NewGenerator(manifest, root)

			if check {
				return checkUpToDate(gen, root, manifest.Output.File)
			}

			out, err := gen.Run()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "configs/mediator-gen.yaml", "Path to the generator manifest")
	cmd.Flags().StringVar(&root, "root", ".", "Module root that manifest paths are relative to")
	cmd.Flags().BoolVar(&check, "check", false, "Fail if the committed adapter differs from the generated one")

	return cmd
}

func checkUpToDate(gen *adaptergen.Generator, root, file string) error {
	src, err := gen.Generate()
	if err != nil {
		return err
	}

	path := file
	if !filepath.IsAbs(file) {
		path = filepath.Join(root, file)
	}

	committed, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if string(committed) != string(src) {
		return fmt.Errorf("%s is out of date: run go generate", file)
	}
	return nil
}
