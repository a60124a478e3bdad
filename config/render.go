package config

import "time"

// RenderCfg describes an external render command. The command is executed
// once per page with token substitution applied to Args and must write a
// compressed image to stdout.
type RenderCfg struct {
	// Command is the renderer binary, e.g. "mutool" or a wrapper script.
	Command string `yaml:"command"`

	// Args are passed to Command after substituting the tokens
	// %file, %page and %resolution.
	Args []string `yaml:"args"`

	// File is the document path substituted for the %file token.
	File string `yaml:"file"`

	// Timeout bounds a single render invocation. Zero means no deadline
	// beyond the cache lifecycle context.
	Timeout time.Duration `yaml:"timeout"`
}

func (cfg *RenderCfg) Enabled() bool {
	return cfg != nil && cfg.Command != ""
}
