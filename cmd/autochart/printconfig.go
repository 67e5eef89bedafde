package main

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"gopkg.in/yaml.v3"
)

// printConfig writes the effective configuration as YAML, highlighted for
// a 256-color terminal when color is set.
func printConfig(w io.Writer, opts *Options, color bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if !color {
		_, err = w.Write(data)
		return err
	}
	return quick.Highlight(w, string(data), "yaml", "terminal256", "monokai")
}
