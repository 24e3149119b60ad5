package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// FieldError is a single structural violation, keyed by field path.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of validating a configuration document. Warnings
// never affect validity.
type Result struct {
	Valid    bool
	Errors   []FieldError
	Warnings []string
}

// Validate checks a decoded JSON document against the configuration schema.
// A non-object root fails immediately with a single root error.
func Validate(doc any) Result {
	root, ok := doc.(map[string]any)
	if !ok {
		return Result{
			Errors: []FieldError{{Field: "$", Message: "configuration must be a JSON object"}},
		}
	}

	var r Result
	if perms, ok := root["permissions"]; ok {
		validatePermissions(perms, &r)
	}
	if servers, ok := root["mcpServers"]; ok {
		validateServers(servers, &r)
	}
	if settings, ok := root["settings"]; ok {
		if _, isMap := settings.(map[string]any); !isMap {
			r.Errors = append(r.Errors, FieldError{Field: "settings", Message: "must be an object"})
		}
	}

	var unknown []string
	for key := range root {
		switch key {
		case "permissions", "mcpServers", "settings":
		default:
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unknown top-level field %q", key))
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// ValidateFile reads and validates a configuration file on disk.
func ValidateFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("validating %s: %w", path, ErrNotFound)
		}
		return Result{}, fmt.Errorf("validating %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, &ParseError{Path: path, Err: err}
	}
	return Validate(doc), nil
}

func validatePermissions(v any, r *Result) {
	items, ok := v.([]any)
	if !ok {
		r.Errors = append(r.Errors, FieldError{Field: "permissions", Message: "must be an array of strings"})
		return
	}
	for i, item := range items {
		s, isStr := item.(string)
		if !isStr {
			r.Errors = append(r.Errors, FieldError{
				Field:   fmt.Sprintf("permissions[%d]", i),
				Message: "must be a string",
			})
			continue
		}
		if s == "" {
			r.Errors = append(r.Errors, FieldError{
				Field:   fmt.Sprintf("permissions[%d]", i),
				Message: "must not be empty",
			})
		}
	}
}

func validateServers(v any, r *Result) {
	servers, ok := v.(map[string]any)
	if !ok {
		r.Errors = append(r.Errors, FieldError{Field: "mcpServers", Message: "must be an object"})
		return
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry, isMap := servers[name].(map[string]any)
		path := "mcpServers." + name
		if !isMap {
			r.Errors = append(r.Errors, FieldError{Field: path, Message: "must be an object"})
			continue
		}

		enabled, present := entry["enabled"]
		if !present {
			r.Errors = append(r.Errors, FieldError{Field: path + ".enabled", Message: "required boolean field is missing"})
		} else if _, isBool := enabled.(bool); !isBool {
			r.Errors = append(r.Errors, FieldError{Field: path + ".enabled", Message: "must be a boolean"})
		}

		if cmd, present := entry["command"]; present {
			if _, isStr := cmd.(string); !isStr {
				r.Errors = append(r.Errors, FieldError{Field: path + ".command", Message: "must be a string"})
			}
		}
		if args, present := entry["args"]; present {
			validateStringArray(args, path+".args", r)
		}
		if env, present := entry["env"]; present {
			validateStringMap(env, path+".env", r)
		}
	}
}

func validateStringArray(v any, path string, r *Result) {
	items, ok := v.([]any)
	if !ok {
		r.Errors = append(r.Errors, FieldError{Field: path, Message: "must be an array of strings"})
		return
	}
	for i, item := range items {
		if _, isStr := item.(string); !isStr {
			r.Errors = append(r.Errors, FieldError{
				Field:   fmt.Sprintf("%s[%d]", path, i),
				Message: "must be a string",
			})
		}
	}
}

func validateStringMap(v any, path string, r *Result) {
	entries, ok := v.(map[string]any)
	if !ok {
		r.Errors = append(r.Errors, FieldError{Field: path, Message: "must be an object of string values"})
		return
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, isStr := entries[k].(string); !isStr {
			r.Errors = append(r.Errors, FieldError{Field: path + "." + k, Message: "must be a string"})
		}
	}
}
