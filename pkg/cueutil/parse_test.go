// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const optionalSchema = `
#Settings: {
	name?:  string
	count?: int & >=0
}
`

const testSchema = `
#Settings: {
	name:   string
	count:  int & >=0
	flags?: [...string]
}
`

type testSettings struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Flags []string `json:"flags,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document decodes into struct", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "panel"
count: 3
flags: ["a", "b"]
`)
		result, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings")
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if result.Value.Name != "panel" || result.Value.Count != 3 || len(result.Value.Flags) != 2 {
			t.Errorf("unexpected value: %+v", *result.Value)
		}
	})

	t.Run("non-concrete document decodes into map", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "login"`)
		result, err := ParseAndDecode[map[string]any]([]byte(optionalSchema), data, "#Settings", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if got := (*result.Value)["name"]; got != "login" {
			t.Errorf("name = %v, want login", got)
		}
	})

	t.Run("constraint violation reports field path", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "error"
count: -1
`)
		_, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings", WithFilename("settings.cue"))
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "settings.cue") {
			t.Errorf("error should name the file, got: %v", err)
		}
		if !strings.Contains(err.Error(), "count") {
			t.Errorf("error should name the field, got: %v", err)
		}
	})

	t.Run("syntax error is reported", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`name: "x`), "#Settings")
		if err == nil {
			t.Fatal("expected syntax error")
		}
	})

	t.Run("size limit is enforced", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "secrets"`)
		_, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings", WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("expected size error, got %v", err)
		}
	})

	t.Run("unknown definition is an internal error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`name: "x"`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Errorf("expected missing definition error, got %v", err)
		}
	})
}
