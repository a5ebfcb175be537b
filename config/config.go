// Package config loads the HCL settings file of the label renderer.
//
// Every block is optional:
//
//	canvas { width = 812  height = 1218 }
//	font   { path = "fonts/mono.ttf"  family = "Courier Sans MS" }
//	substitutions = { "<ID>" = "000001", "<USER>" = upper(env.USER) }
//	labels_dir = "labels"
//	log_level  = "info"
//	log_format = "text"
//	server { port = 8080  compression = "zstd" }
//
// Expressions may read the process environment through env.NAME and call
// upper, lower, format, join and concat.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Config - resolved settings.
type Config struct {
	Canvas        Canvas
	Font          Font
	Substitutions map[string]string
	LabelsDir     string
	LogLevel      string
	LogFormat     string
	Server        Server
}

// Canvas - output size in printer dots.
type Canvas struct {
	Width  int `hcl:"width,optional"`
	Height int `hcl:"height,optional"`
}

// Font - TTF used for text; the built-in mono face when Path is empty.
type Font struct {
	Path   string `hcl:"path,optional"`
	Family string `hcl:"family,optional"`
}

// Server - HTTP mode settings.
type Server struct {
	Port        int    `hcl:"port,optional"`
	Compression string `hcl:"compression,optional"` // "zstd", "gzip" or "none"
}

// file mirrors the HCL layout; blocks are pointers so absence keeps defaults.
type file struct {
	Canvas        *Canvas           `hcl:"canvas,block"`
	Font          *Font             `hcl:"font,block"`
	Server        *Server           `hcl:"server,block"`
	Substitutions map[string]string `hcl:"substitutions,optional"`
	LabelsDir     string            `hcl:"labels_dir,optional"`
	LogLevel      string            `hcl:"log_level,optional"`
	LogFormat     string            `hcl:"log_format,optional"`
}

// Default - 4x6 inch label at 203 dpi, text logs at info.
func Default() Config {
	return Config{
		Canvas:    Canvas{Width: 812, Height: 1218},
		Font:      Font{Family: "Courier Sans MS"},
		LabelsDir: ".",
		LogLevel:  "info",
		LogFormat: "text",
		Server:    Server{Port: 8080, Compression: "zstd"},
	}
}

// Load - reads and decodes an HCL file over the defaults.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, path)
}

// Parse - decodes HCL source; filename is only used in diagnostics.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("parse config %s: %w", filename, diags)
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, evalContext(), &raw); diags.HasErrors() {
		return Config{}, fmt.Errorf("decode config %s: %w", filename, diags)
	}

	cfg := Default()
	if raw.Canvas != nil {
		if raw.Canvas.Width > 0 {
			cfg.Canvas.Width = raw.Canvas.Width
		}
		if raw.Canvas.Height > 0 {
			cfg.Canvas.Height = raw.Canvas.Height
		}
	}
	if raw.Font != nil {
		cfg.Font.Path = raw.Font.Path
		if raw.Font.Family != "" {
			cfg.Font.Family = raw.Font.Family
		}
	}
	if raw.Server != nil {
		if raw.Server.Port > 0 {
			cfg.Server.Port = raw.Server.Port
		}
		if raw.Server.Compression != "" {
			cfg.Server.Compression = strings.ToLower(raw.Server.Compression)
		}
	}
	if raw.LabelsDir != "" {
		cfg.LabelsDir = raw.LabelsDir
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.LogFormat != "" {
		cfg.LogFormat = raw.LogFormat
	}
	cfg.Substitutions = raw.Substitutions

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate - checks values HCL typing cannot.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	switch c.Server.Compression {
	case "zstd", "gzip", "none":
	default:
		return fmt.Errorf("unknown compression %q", c.Server.Compression)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
			"concat": stdlib.ConcatFunc,
		},
	}
}

// envObject exposes the process environment as an HCL object.
func envObject() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
