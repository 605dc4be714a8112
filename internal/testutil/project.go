// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

type (
	// Page is the source triple of one page directory.
	Page struct {
		HTML   string
		Style  string
		Script string
	}

	// Project describes a throwaway worker project laid out the conventional
	// way: pages under src/assets, the entry at src/worker.js.
	Project struct {
		Pages map[string]Page
		// Entry is the worker module source. Empty writes DefaultEntry.
		Entry string
		// Icon is written to src/assets/favicon.ico unless NoIcon is set.
		Icon   []byte
		NoIcon bool
	}
)

// DefaultEntry is a minimal worker module that references every default page
// constant and the icon constant.
const DefaultEntry = `import { connect } from 'cloudflare:sockets';

const pages = {
	panel: __PANEL_HTML_CONTENT__,
	login: __LOGIN_HTML_CONTENT__,
	error: __ERROR_HTML_CONTENT__,
	secrets: __SECRETS_HTML_CONTENT__,
};

export default {
	async fetch(request) {
		const url = new URL(request.url);
		if (url.pathname === '/favicon.ico') {
			return new Response(__ICON__);
		}
		if (url.pathname === '/socket') {
			connect('example.com:443');
		}
		const html = pages[url.pathname.slice(1)] ?? pages.error;
		return new Response(html, { headers: { 'content-type': 'text/html' } });
	},
};
`

// SimplePage returns a page whose template carries both placeholders.
func SimplePage(title string) Page {
	return Page{
		HTML:   "<html><head>__STYLE__</head><body><h1>" + title + "</h1>__SCRIPT__</body></html>",
		Style:  "h1{color:red}",
		Script: "<script>console.log(\"" + title + "\")</script>",
	}
}

// WriteProject materializes p under root and returns root.
func WriteProject(t testing.TB, root string, p Project) string {
	t.Helper()

	assets := filepath.Join(root, "src", "assets")
	MustMkdirAll(t, assets, 0o755)

	for name, page := range p.Pages {
		dir := filepath.Join(assets, filepath.FromSlash(name))
		MustWriteFile(t, filepath.Join(dir, "index.html"), page.HTML)
		MustWriteFile(t, filepath.Join(dir, "style.css"), page.Style)
		MustWriteFile(t, filepath.Join(dir, "script.js"), page.Script)
	}

	entry := p.Entry
	if entry == "" {
		entry = DefaultEntry
	}
	MustWriteFile(t, filepath.Join(root, "src", "worker.js"), entry)

	if !p.NoIcon {
		icon := p.Icon
		if icon == nil {
			icon = []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00}
		}
		MustWriteFile(t, filepath.Join(assets, "favicon.ico"), string(icon))
	}

	return root
}
