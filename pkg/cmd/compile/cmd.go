// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package compile

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"carvel.dev/hbsmod/pkg/cmd/ui"
	"carvel.dev/hbsmod/pkg/compiler"
	"carvel.dev/hbsmod/pkg/config"
	"carvel.dev/hbsmod/pkg/files"
	"github.com/spf13/cobra"
)

type CompileOptions struct {
	Files     []string
	Recursive bool
	Output    string

	CompileFlags CompileFlags
}

type CompileInput struct {
	Files []*files.File
}

type CompileOutput struct {
	Files []files.OutputModule
	Err   error
}

func NewOptions() *CompileOptions {
	return &CompileOptions{}
}

func NewCmd(o *CompileOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compile",
		Aliases: []string{"c"},
		Short:   "Compile Handlebars templates into Starlark modules",
		RunE:    func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringArrayVarP(&o.Files, "file", "f", nil, "Template file (ie local path, -) (can be specified multiple times)")
	cmd.Flags().BoolVarP(&o.Recursive, "recursive", "R", false, "Interpret file as directory")
	cmd.Flags().StringVarP(&o.Output, "output", "o", "", "Output directory, or a .star file when compiling one template")
	o.CompileFlags.Set(cmd.Flags())
	return cmd
}

func (o *CompileOptions) Run() error {
	ui := ui.NewTTY(o.CompileFlags.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if len(o.Files) == 0 {
		return fmt.Errorf("Expected at least one file to be specified (via --file)")
	}

	opts, err := o.CompileFlags.Options()
	if err != nil {
		return err
	}

	filesToCompile, err := files.NewFiles(o.Files, o.Recursive, opts.Extensions)
	if err != nil {
		return err
	}

	out := o.RunWithFiles(CompileInput{Files: filesToCompile}, opts, ui)
	if out.Err != nil {
		return out.Err
	}

	return o.writeOutput(out, ui)
}

// RunWithFiles compiles every template file in the input. Compilation
// stops at the first failure.
func (o *CompileOptions) RunWithFiles(in CompileInput, opts config.Options, ui ui.UI) CompileOutput {
	cfg, err := config.Resolve(opts, nil)
	if err != nil {
		return CompileOutput{Err: compiler.NewConfigError(err)}
	}

	comp := compiler.NewCompiler(cfg, nil, ui)

	var outputFiles []files.OutputModule

	for _, file := range in.Files {
		if file.Type(cfg.Extensions()) != files.TypeTemplate {
			ui.Debugf("skipping non-template file: %s\n", file.RelativePath())
			continue
		}

		source, err := file.Bytes()
		if err != nil {
			return CompileOutput{Err: fmt.Errorf("Reading %s: %s", file.Description(), err)}
		}

		module, err := comp.Compile(file.RelativePath(), string(source))
		if err != nil {
			return CompileOutput{Err: err}
		}

		outputFiles = append(outputFiles, files.NewOutputModule(file.RelativePath(), file.ModulePath(cfg.Extensions()), []byte(module)))
	}

	return CompileOutput{Files: outputFiles}
}

func (o *CompileOptions) writeOutput(out CompileOutput, ui ui.UI) error {
	switch {
	case len(o.Output) == 0:
		for i, file := range out.Files {
			if i > 0 {
				ui.Printf("\n")
			}
			ui.Printf("%s", file.Bytes())
		}
		return nil

	case strings.HasSuffix(o.Output, ".star"):
		if len(out.Files) != 1 {
			return fmt.Errorf("Expected exactly one template when output is a file, but got %d", len(out.Files))
		}
		_, err := files.WriteFile(filepath.Clean(o.Output), out.Files[0].Bytes())
		return err

	default:
		return files.NewOutputDirectory(o.Output, out.Files, ui).Write()
	}
}
