// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package compile

import (
	"fmt"

	"carvel.dev/hbsmod/pkg/cmd/ui"
	"carvel.dev/hbsmod/pkg/files"
	"carvel.dev/hbsmod/pkg/workspace"
	"github.com/k14s/starlark-go/starlark"
	"github.com/spf13/cobra"
)

type RenderOptions struct {
	File       string
	DataFiles  []string
	DataValues []string
	ModuleDirs []string
	Output     string

	CompileFlags CompileFlags
}

func NewRenderOptions() *RenderOptions {
	return &RenderOptions{}
}

func NewRenderCmd(o *RenderOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "render",
		Aliases: []string{"r"},
		Short:   "Compile a template and render it with data",
		RunE:    func(_ *cobra.Command, _ []string) error { return o.Run(ui.NewTTY(o.CompileFlags.Debug)) },
	}
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "Template file")
	cmd.Flags().StringArrayVar(&o.DataFiles, "data-file", nil, "YAML or JSON data file (can be specified multiple times; later files override top level keys)")
	cmd.Flags().StringArrayVarP(&o.DataValues, "data-value", "v", nil, "Set data value (format: key.sub=value) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&o.ModuleDirs, "module-dir", nil, "Directory searched for bare module specifiers (can be specified multiple times)")
	cmd.Flags().StringVarP(&o.Output, "output", "o", "", "Output file (defaults to stdout)")
	o.CompileFlags.Set(cmd.Flags())
	return cmd
}

func (o *RenderOptions) Run(ui ui.UI) error {
	if len(o.File) == 0 {
		return fmt.Errorf("Expected template file to be specified (via --file)")
	}

	opts, err := o.CompileFlags.Options()
	if err != nil {
		return err
	}

	data, err := o.data()
	if err != nil {
		return err
	}

	loader, err := workspace.NewModuleLoader(workspace.ModuleLoaderOpts{
		Options:    opts,
		ModuleDirs: o.ModuleDirs,
		UI:         ui,
	})
	if err != nil {
		return err
	}

	result, err := loader.RenderFile(o.File, data, nil)
	if err != nil {
		return err
	}

	for _, module := range loader.Loaded() {
		ui.Debugf("loaded: %s\n", module)
	}

	if len(o.Output) > 0 {
		_, err := files.WriteFile(o.Output, []byte(result))
		return err
	}

	ui.Printf("%s", result)
	return nil
}

func (o *RenderOptions) data() (*starlark.Dict, error) {
	result := starlark.NewDict(0)

	for _, path := range o.DataFiles {
		val, err := workspace.DecodeDataFile(path)
		if err != nil {
			return nil, err
		}
		if val == starlark.None {
			continue
		}

		dict, ok := val.(*starlark.Dict)
		if !ok {
			return nil, fmt.Errorf("Expected data file '%s' to contain a map, but was %s", path, val.Type())
		}

		for _, item := range dict.Items() {
			err := result.SetKey(item[0], item[1])
			if err != nil {
				return nil, err
			}
		}
	}

	for _, kv := range o.DataValues {
		err := workspace.SetDataValue(result, kv)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
