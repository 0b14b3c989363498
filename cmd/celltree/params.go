package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/celltree"
)

// loadParams reads the optional YAML parameter file on top of the library
// defaults. An empty path yields the defaults.
func loadParams(path string) (celltree.Config, error) {
	cfg := celltree.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// overrideParams copies every flag the user set explicitly into cfg, so
// command-line values win over the file.
func overrideParams(cfg *celltree.Config, flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "min-sep":
			cfg.MinSep, err = flags.GetFloat64(f.Name)
		case "max-sep":
			cfg.MaxSep, err = flags.GetFloat64(f.Name)
		case "bin-slop":
			cfg.BinSlop, err = flags.GetFloat64(f.Name)
		case "max-top":
			cfg.MaxTop, err = flags.GetInt(f.Name)
		case "workers":
			cfg.Workers, err = flags.GetInt(f.Name)
		case "split":
			var s string
			if s, err = flags.GetString(f.Name); err == nil {
				cfg.SplitMethod, err = celltree.ParseSplitMethod(s)
			}
		}
	})
	return err
}
