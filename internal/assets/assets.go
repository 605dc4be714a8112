// SPDX-License-Identifier: MPL-2.0

package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// TemplateFile is the file that marks a page directory.
	TemplateFile = "index.html"
	// StyleFile is the stylesheet inlined at StylePlaceholder.
	StyleFile = "style.css"
	// ScriptFile is the script inlined at ScriptPlaceholder.
	ScriptFile = "script.js"

	// StylePlaceholder is replaced by the page stylesheet wrapped in a style tag.
	StylePlaceholder = "__STYLE__"
	// ScriptPlaceholder is replaced by the raw page script.
	ScriptPlaceholder = "__SCRIPT__"

	// RootPage names a page whose index.html sits directly in the asset root.
	RootPage = "."

	pagePattern = "**/" + TemplateFile
)

// ErrFileAccess is the sentinel wrapped by FileAccessError.
var ErrFileAccess = errors.New("asset file not accessible")

type (
	// FileAccessError is returned when a page file or the icon is missing or
	// unreadable. It wraps the underlying cause, so errors.Is(err,
	// fs.ErrNotExist) reports a missing file.
	FileAccessError struct {
		// Page is the page name, empty for the icon.
		Page string
		Path string
		Err  error
	}

	// MergedPage is one page with both placeholders substituted.
	MergedPage struct {
		Name string
		HTML string
		// Encoded is HTML as a JSON string literal, ready for injection as a
		// compile-time constant.
		Encoded string
	}

	// Result holds every merged page, ordered by name.
	Result struct {
		Pages []MergedPage
	}
)

// Error implements the error interface for FileAccessError.
func (e *FileAccessError) Error() string {
	if e.Page == "" {
		return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("page %q: cannot read %s: %v", e.Page, e.Path, e.Err)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *FileAccessError) Unwrap() []error { return []error{ErrFileAccess, e.Err} }

// Names returns the merged page names in order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		names = append(names, p.Name)
	}
	return names
}

// Encoded returns the page name to JSON literal mapping.
func (r *Result) Encoded() map[string]string {
	out := make(map[string]string, len(r.Pages))
	for _, p := range r.Pages {
		out[p.Name] = p.Encoded
	}
	return out
}

// Lookup returns the merged page with the given name.
func (r *Result) Lookup(name string) (MergedPage, bool) {
	i := slices.IndexFunc(r.Pages, func(p MergedPage) bool { return p.Name == name })
	if i < 0 {
		return MergedPage{}, false
	}
	return r.Pages[i], true
}

// Discover returns the names of all page directories under root, sorted.
// Names use forward slashes relative to root. Directories whose name starts
// with a dot are skipped.
func Discover(root string) ([]string, error) {
	// Glob does not report a missing root.
	if _, err := os.Stat(root); err != nil {
		return nil, &FileAccessError{Path: root, Err: err}
	}

	matches, err := doublestar.Glob(os.DirFS(root), pagePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if isHidden(m) {
			continue
		}
		names = append(names, path.Dir(m))
	}
	slices.Sort(names)
	return names, nil
}

// Merge discovers every page under root and merges its template, stylesheet
// and script. Pages are processed one at a time; the first unreadable file
// aborts the merge and no partial result is returned.
func Merge(ctx context.Context, root string) (*Result, error) {
	names, err := Discover(root)
	if err != nil {
		return nil, err
	}

	result := &Result{Pages: make([]MergedPage, 0, len(names))}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := mergePage(root, name)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page)
	}
	return result, nil
}

// isHidden reports whether any segment of the slash path starts with a dot.
func isHidden(p string) bool {
	for seg := range strings.SplitSeq(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func mergePage(root, name string) (MergedPage, error) {
	dir := filepath.Join(root, filepath.FromSlash(name))

	read := func(file string) (string, error) {
		p := filepath.Join(dir, file)
		data, err := os.ReadFile(p)
		if err != nil {
			return "", &FileAccessError{Page: name, Path: p, Err: err}
		}
		return string(data), nil
	}

	tmpl, err := read(TemplateFile)
	if err != nil {
		return MergedPage{}, err
	}
	style, err := read(StyleFile)
	if err != nil {
		return MergedPage{}, err
	}
	script, err := read(ScriptFile)
	if err != nil {
		return MergedPage{}, err
	}

	html := Substitute(tmpl, style, script)
	encoded, err := EncodeString(html)
	if err != nil {
		return MergedPage{}, fmt.Errorf("page %q: %w", name, err)
	}

	return MergedPage{Name: name, HTML: html, Encoded: encoded}, nil
}

// Substitute replaces every StylePlaceholder with the stylesheet in a style
// tag, then every ScriptPlaceholder with the script. Both are inserted
// verbatim.
func Substitute(tmpl, style, script string) string {
	html := strings.ReplaceAll(tmpl, StylePlaceholder, "<style>"+style+"</style>")
	return strings.ReplaceAll(html, ScriptPlaceholder, script)
}

// EncodeString returns s as a JSON string literal without HTML escaping,
// so the literal is byte-for-byte what JavaScript's JSON.stringify produces.
func EncodeString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("encode string: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ReadIcon reads the icon file.
func ReadIcon(iconPath string) ([]byte, error) {
	data, err := os.ReadFile(iconPath)
	if err != nil {
		return nil, &FileAccessError{Path: iconPath, Err: err}
	}
	return data, nil
}

// IsNotExist reports whether err is a FileAccessError for a missing file.
func IsNotExist(err error) bool {
	var fae *FileAccessError
	return errors.As(err, &fae) && errors.Is(fae.Err, fs.ErrNotExist)
}
