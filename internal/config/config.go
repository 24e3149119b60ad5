// Package config defines the Claude Code configuration model and its
// file-level read/write and validation rules.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/peguesj/ccem/internal/atomicwrite"
)

// Configuration is one configuration document: a permissions list, a map of
// MCP server definitions, a free-form settings map, and any unrecognized
// top-level fields preserved opaquely.
type Configuration struct {
	Permissions []string
	MCPServers  map[string]ServerConfig
	Settings    map[string]any
	Extra       map[string]any
}

// ServerConfig describes a single MCP server entry. Fields beyond the known
// ones are kept in Extra and round-trip through JSON unchanged.
type ServerConfig struct {
	Enabled bool
	Command string
	Args    []string
	Env     map[string]string
	Extra   map[string]any
}

// New returns an empty Configuration with allocated maps.
func New() Configuration {
	return Configuration{
		MCPServers: map[string]ServerConfig{},
		Settings:   map[string]any{},
		Extra:      map[string]any{},
	}
}

// UnmarshalJSON decodes a configuration, splitting top-level fields into the
// known sections and Extra.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = New()
	for key, val := range raw {
		switch key {
		case "permissions":
			if err := json.Unmarshal(val, &c.Permissions); err != nil {
				return fmt.Errorf("field permissions: %w", err)
			}
		case "mcpServers":
			if err := json.Unmarshal(val, &c.MCPServers); err != nil {
				return fmt.Errorf("field mcpServers: %w", err)
			}
		case "settings":
			if err := json.Unmarshal(val, &c.Settings); err != nil {
				return fmt.Errorf("field settings: %w", err)
			}
		default:
			var v any
			if err := json.Unmarshal(val, &v); err != nil {
				return fmt.Errorf("field %s: %w", key, err)
			}
			c.Extra[key] = v
		}
	}
	return nil
}

// MarshalJSON encodes the configuration back into a single flat object.
func (c Configuration) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3+len(c.Extra))
	if c.Permissions != nil {
		out["permissions"] = c.Permissions
	}
	if c.MCPServers != nil {
		out["mcpServers"] = c.MCPServers
	}
	if c.Settings != nil {
		out["settings"] = c.Settings
	}
	for k, v := range c.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a server entry, keeping unknown fields in Extra.
func (s *ServerConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = ServerConfig{}
	for key, val := range raw {
		switch key {
		case "enabled":
			if err := json.Unmarshal(val, &s.Enabled); err != nil {
				return fmt.Errorf("field enabled: %w", err)
			}
		case "command":
			if err := json.Unmarshal(val, &s.Command); err != nil {
				return fmt.Errorf("field command: %w", err)
			}
		case "args":
			if err := json.Unmarshal(val, &s.Args); err != nil {
				return fmt.Errorf("field args: %w", err)
			}
		case "env":
			if err := json.Unmarshal(val, &s.Env); err != nil {
				return fmt.Errorf("field env: %w", err)
			}
		default:
			if s.Extra == nil {
				s.Extra = map[string]any{}
			}
			var v any
			if err := json.Unmarshal(val, &v); err != nil {
				return fmt.Errorf("field %s: %w", key, err)
			}
			s.Extra[key] = v
		}
	}
	return nil
}

// MarshalJSON encodes a server entry with its extra fields folded back in.
func (s ServerConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}

// Fields returns the server entry as a flat field map, used for one-level
// structural comparison.
func (s ServerConfig) Fields() map[string]any {
	out := make(map[string]any, 4+len(s.Extra))
	out["enabled"] = s.Enabled
	if s.Command != "" {
		out["command"] = s.Command
	}
	if s.Args != nil {
		out["args"] = s.Args
	}
	if s.Env != nil {
		out["env"] = s.Env
	}
	for k, v := range s.Extra {
		out[k] = v
	}
	return out
}

// Equal reports structural equality of the serialized forms. Map key order
// is irrelevant; array element order matters.
func Equal(a, b any) bool {
	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)
	return string(aJSON) == string(bJSON)
}

// Read loads a configuration file. A missing file yields ErrNotFound,
// malformed JSON a *ParseError.
func Read(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Configuration{}, fmt.Errorf("reading config %s: %w", path, ErrNotFound)
		}
		return Configuration{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// ReadOptional loads a configuration file, returning an empty configuration
// when the file is absent. Malformed JSON is still surfaced.
func ReadOptional(path string) (Configuration, error) {
	cfg, err := Read(path)
	if IsNotFound(err) {
		return New(), nil
	}
	return cfg, err
}

// WriteOptions controls Write behavior.
type WriteOptions struct {
	// Backup copies an existing destination aside before writing.
	Backup bool
	// Validate aborts the write before any filesystem mutation when the
	// configuration fails structural validation.
	Validate bool
	// CreateDirs creates missing parent directories.
	CreateDirs bool
	// Indent is the indentation string, defaulting to two spaces.
	Indent string
}

// Write persists a configuration as human-diffable JSON via an atomic
// temp-file-and-rename replacement.
func Write(path string, cfg Configuration, opts WriteOptions) error {
	if opts.Validate {
		if result := Validate(cfg.Document()); !result.Valid {
			return &ValidationError{Path: path, Errors: result.Errors}
		}
	}

	indent := opts.Indent
	if indent == "" {
		indent = "  "
	}
	data, err := json.MarshalIndent(cfg, "", indent)
	if err != nil {
		return fmt.Errorf("marshaling config for %s: %w", path, err)
	}

	return atomicwrite.WriteFile(path, append(data, '\n'), atomicwrite.Options{
		Backup:     opts.Backup,
		CreateDirs: opts.CreateDirs,
	})
}

// Document returns the configuration as a decoded JSON document, the shape
// the validator operates on.
func (c Configuration) Document() any {
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc
}
