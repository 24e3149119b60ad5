package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func fieldErrors(r Result) []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Field
	}
	return out
}

func TestValidate_NonObjectRootFailsImmediately(t *testing.T) {
	r := Validate(doc(t, `[1, 2, 3]`))
	assert.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "$", r.Errors[0].Field)
	assert.Empty(t, r.Warnings)
}

func TestValidate_EmptyObjectIsValid(t *testing.T) {
	r := Validate(doc(t, `{}`))
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidate_PermissionsViolationsAreKeyedPerIndex(t *testing.T) {
	r := Validate(doc(t, `{"permissions": ["Read", "", 42]}`))
	assert.False(t, r.Valid)
	assert.ElementsMatch(t, []string{"permissions[1]", "permissions[2]"}, fieldErrors(r))
}

func TestValidate_PermissionsMustBeArray(t *testing.T) {
	r := Validate(doc(t, `{"permissions": {"Read": true}}`))
	assert.False(t, r.Valid)
	assert.Equal(t, []string{"permissions"}, fieldErrors(r))
}

func TestValidate_ServerViolationsIndependentlyReported(t *testing.T) {
	r := Validate(doc(t, `{
		"mcpServers": {
			"good": {"enabled": true, "command": "run"},
			"noEnabled": {"command": "run"},
			"badEnabled": {"enabled": "yes"},
			"badArgs": {"enabled": true, "args": ["ok", 1]},
			"badEnv": {"enabled": true, "env": {"A": "x", "B": 2}},
			"notObject": []
		}
	}`))
	assert.False(t, r.Valid)
	assert.ElementsMatch(t, []string{
		"mcpServers.noEnabled.enabled",
		"mcpServers.badEnabled.enabled",
		"mcpServers.badArgs.args[1]",
		"mcpServers.badEnv.env.B",
		"mcpServers.notObject",
	}, fieldErrors(r))
}

func TestValidate_ServersMustBeObjectNotArray(t *testing.T) {
	r := Validate(doc(t, `{"mcpServers": [{"enabled": true}]}`))
	assert.False(t, r.Valid)
	assert.Equal(t, []string{"mcpServers"}, fieldErrors(r))
}

func TestValidate_SettingsMustBeObject(t *testing.T) {
	r := Validate(doc(t, `{"settings": "dark"}`))
	assert.False(t, r.Valid)
	assert.Equal(t, []string{"settings"}, fieldErrors(r))
}

func TestValidate_UnknownTopLevelKeyIsWarningOnly(t *testing.T) {
	r := Validate(doc(t, `{"foo": 1}`))
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "foo")
}

func TestValidate_WarningsDoNotAffectValidity(t *testing.T) {
	r := Validate(doc(t, `{"permissions": [""], "foo": 1}`))
	assert.False(t, r.Valid)
	assert.Len(t, r.Warnings, 1)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"permissions": ["Read"]}`), 0o644))

	r, err := ValidateFile(path)
	require.NoError(t, err)
	assert.True(t, r.Valid)

	_, err = ValidateFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, IsNotFound(err))
}
