// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package compile

import (
	"os"

	"carvel.dev/hbsmod/pkg/config"
)

const (
	inlineRequiresFlag = "inline-requires"
	ignoreHelpersFlag  = "ignore-helpers"
	ignorePartialsFlag = "ignore-partials"
	runtimeFlag        = "runtime"
)

type CompileFlags struct {
	HelperDirs     []string
	PartialDirs    []string
	KnownHelpers   []string
	Extensions     []string
	Runtime        string
	InlineRequires bool
	IgnoreHelpers  bool
	IgnorePartials bool
	Query          string
	OptionsFile    string
	Debug          bool

	flags CmdFlags
}

func (s *CompileFlags) Set(cmdFlags CmdFlags) {
	cmdFlags.StringArrayVar(&s.HelperDirs, "helper-dir", nil, "Directory searched for helper modules (can be specified multiple times)")
	cmdFlags.StringArrayVar(&s.PartialDirs, "partial-dir", nil, "Directory searched for partial templates (can be specified multiple times)")
	cmdFlags.StringArrayVar(&s.KnownHelpers, "known-helper", nil, "Helper provided at render time; never loaded (can be specified multiple times)")
	cmdFlags.StringArrayVar(&s.Extensions, "extension", nil, "Template file extension (can be specified multiple times)")
	cmdFlags.StringVar(&s.Runtime, runtimeFlag, config.DefaultRuntime, "Module specifier of the runtime loaded by generated modules")
	cmdFlags.BoolVar(&s.InlineRequires, inlineRequiresFlag, true, "Embed the parsed template instead of its source")
	cmdFlags.BoolVar(&s.IgnoreHelpers, ignoreHelpersFlag, false, "Do not turn helper calls into loads")
	cmdFlags.BoolVar(&s.IgnorePartials, ignorePartialsFlag, false, "Do not turn partials into loads")
	cmdFlags.StringVar(&s.Query, "query", "", "Options in loader query form (e.g. 'helperDirs[]=helpers&inlineRequires=false')")
	cmdFlags.StringVar(&s.OptionsFile, "options-file", "", "TOML options file (defaults to ./"+config.DefaultOptionsFile+" when present)")
	cmdFlags.BoolVar(&s.Debug, "debug", false, "Enable debug output")
	s.flags = cmdFlags
}

// Options combines the options file, query and flags. Relative
// directories are anchored where they were specified.
func (s *CompileFlags) Options() (config.Options, error) {
	var result config.Options

	optionsFile := s.OptionsFile
	if len(optionsFile) == 0 {
		if _, err := os.Stat(config.DefaultOptionsFile); err == nil {
			optionsFile = config.DefaultOptionsFile
		}
	}

	if len(optionsFile) > 0 {
		fileOpts, err := config.NewOptionsFromTOMLFile(optionsFile)
		if err != nil {
			return config.Options{}, err
		}
		result, err = mergeAbs(result, fileOpts)
		if err != nil {
			return config.Options{}, err
		}
	}

	if len(s.Query) > 0 {
		queryOpts, err := config.NewOptionsFromQuery(s.Query)
		if err != nil {
			return config.Options{}, err
		}
		result, err = mergeAbs(result, queryOpts)
		if err != nil {
			return config.Options{}, err
		}
	}

	flagOpts := config.Options{
		HelperDirs:   s.HelperDirs,
		PartialDirs:  s.PartialDirs,
		KnownHelpers: s.KnownHelpers,
		Extensions:   s.Extensions,
	}
	if s.changed(runtimeFlag) {
		flagOpts.Runtime = &s.Runtime
	}
	if s.changed(inlineRequiresFlag) {
		flagOpts.InlineRequires = &s.InlineRequires
	}
	if s.changed(ignoreHelpersFlag) {
		flagOpts.IgnoreHelpers = &s.IgnoreHelpers
	}
	if s.changed(ignorePartialsFlag) {
		flagOpts.IgnorePartials = &s.IgnorePartials
	}
	if s.Debug {
		flagOpts.Debug = &s.Debug
	}

	return mergeAbs(result, flagOpts)
}

func (s *CompileFlags) changed(name string) bool {
	return s.flags != nil && s.flags.Changed(name)
}

func mergeAbs(base, other config.Options) (config.Options, error) {
	other, err := other.WithAbsDirs()
	if err != nil {
		return config.Options{}, err
	}
	return base.Merge(other), nil
}
