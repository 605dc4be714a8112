// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"encoding/base64"
	"encoding/json"
	"slices"
	"testing"
)

var defaultTable = []PageConstant{
	{Page: "panel", Constant: "__PANEL_HTML_CONTENT__"},
	{Page: "login", Constant: "__LOGIN_HTML_CONTENT__"},
	{Page: "error", Constant: "__ERROR_HTML_CONTENT__"},
	{Page: "secrets", Constant: "__SECRETS_HTML_CONTENT__"},
}

func TestDefines_MissingPageFallsBackToEmptyLiteral(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"panel": `"<p>panel</p>"`,
		"login": `"<p>login</p>"`,
		"error": `"<p>error</p>"`,
	}
	icon := []byte{0x00, 0x00, 0x01, 0x00, 0xff}

	set := Defines(pages, defaultTable, "__ICON__", icon)

	if len(set.Defines) != 5 {
		t.Fatalf("expected 5 constants, got %d: %v", len(set.Defines), set.Defines)
	}
	for _, c := range []string{"__PANEL_HTML_CONTENT__", "__LOGIN_HTML_CONTENT__", "__ERROR_HTML_CONTENT__"} {
		if v := set.Defines[c]; v == EmptyLiteral || v == "" {
			t.Errorf("%s should carry page content, got %q", c, v)
		}
	}
	if got := set.Defines["__SECRETS_HTML_CONTENT__"]; got != `""` {
		t.Errorf("__SECRETS_HTML_CONTENT__ = %q, want %q", got, `""`)
	}
	if !slices.Equal(set.Defaulted, []string{"__SECRETS_HTML_CONTENT__"}) {
		t.Errorf("Defaulted = %v", set.Defaulted)
	}
	if len(set.Dropped) != 0 {
		t.Errorf("Dropped = %v, want none", set.Dropped)
	}

	var iconB64 string
	if err := json.Unmarshal([]byte(set.Defines["__ICON__"]), &iconB64); err != nil {
		t.Fatalf("icon constant is not a JSON string: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(iconB64)
	if err != nil {
		t.Fatalf("icon constant is not base64: %v", err)
	}
	if !slices.Equal(decoded, icon) {
		t.Errorf("icon round trip = %v, want %v", decoded, icon)
	}
}

func TestDefines_UnmappedPageIsDropped(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"panel":  `"a"`,
		"extras": `"b"`,
		"about":  `"c"`,
	}

	set := Defines(pages, defaultTable[:1], "__ICON__", nil)

	if len(set.Defines) != 2 {
		t.Errorf("expected panel and icon constants only, got %v", set.Defines)
	}
	for _, v := range set.Defines {
		if v == `"b"` || v == `"c"` {
			t.Errorf("unmapped page leaked into defines: %v", set.Defines)
		}
	}
	if !slices.Equal(set.Dropped, []string{"about", "extras"}) {
		t.Errorf("Dropped = %v, want [about extras]", set.Dropped)
	}
	if set.Defines["__ICON__"] != `""` {
		t.Errorf("empty icon should encode to an empty literal, got %q", set.Defines["__ICON__"])
	}
}

func TestDefines_EmptyTable(t *testing.T) {
	t.Parallel()

	set := Defines(nil, nil, "__ICON__", []byte("x"))
	if len(set.Defines) != 1 {
		t.Errorf("expected only the icon constant, got %v", set.Defines)
	}
	if set.Defines["__ICON__"] != `"eA=="` {
		t.Errorf("icon = %s, want \"eA==\"", set.Defines["__ICON__"])
	}
}
