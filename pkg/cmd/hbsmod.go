// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	cmdcompile "carvel.dev/hbsmod/pkg/cmd/compile"
	"carvel.dev/hbsmod/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

type HbsmodOptions struct{}

func NewDefaultHbsmodOptions() *HbsmodOptions {
	return &HbsmodOptions{}
}

func NewDefaultHbsmodCmd() *cobra.Command {
	return NewHbsmodCmd(NewDefaultHbsmodOptions())
}

func NewHbsmodCmd(o *HbsmodOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hbsmod",
		Version: version.Version,
		Short:   "hbsmod compiles Handlebars templates into Starlark modules",
		Long: `hbsmod compiles Handlebars templates into Starlark modules.

Helpers and partials referenced by a template become load statements
of the generated module; render(data, options) produces the output.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(cmdcompile.NewCmd(cmdcompile.NewOptions()))
	cmd.AddCommand(cmdcompile.NewRenderCmd(cmdcompile.NewRenderOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
