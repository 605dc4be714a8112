// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	AssetMissingId Id = iota + 1
	IconMissingId
	BundleFailedId
	ArtifactWriteFailedId
	ConfigLoadFailedId
	ArchiveMismatchId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the issue text with its reference links appended.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

// Render renders the issue as terminal markdown using the named glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	assetMissingIssue = &Issue{
		id: AssetMissingId,
		mdMsg: `
# A page is missing one of its assets

Every directory under the asset root that contains an ` + "`index.html`" + ` is a page,
and every page must also contain ` + "`style.css`" + ` and ` + "`script.js`" + `.

## Things you can try
- Add the missing file (an empty file is fine)
- Remove the stray ` + "`index.html`" + ` if the directory is not meant to be a page
- List what workerpack discovered:
~~~
$ workerpack pages
~~~`,
	}

	iconMissingIssue = &Issue{
		id: IconMissingId,
		mdMsg: `
# The favicon could not be read

The worker embeds ` + "`favicon.ico`" + ` from the asset root as a base64 constant.

## Things you can try
- Place a ` + "`favicon.ico`" + ` next to your page directories
- Or point ` + "`icon`" + ` in ` + "`workerpack.cue`" + ` at the file you want to embed`,
	}

	bundleFailedIssue = &Issue{
		id: BundleFailedId,
		mdMsg: `
# esbuild could not bundle the worker

The entry module or one of its imports failed to resolve or parse.

## Things you can try
- Check that ` + "`entry`" + ` in ` + "`workerpack.cue`" + ` points at the worker source
- Runtime-provided modules must be listed in ` + "`bundle.externals`" + `
- Fix the syntax error reported above and run the build again`,
		extLinks: []HttpLink{"https://esbuild.github.io/api/#build"},
	}

	artifactWriteFailedIssue = &Issue{
		id: ArtifactWriteFailedId,
		mdMsg: `
# The build output could not be written

## Things you can try
- Check that the distribution directory is writable
- Make sure no other process holds ` + "`worker.js`" + ` or ` + "`worker.zip`" + ` open`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

## Things you can try
- Check the CUE syntax of ` + "`workerpack.cue`" + `
- Print the effective defaults:
~~~
$ workerpack config dump
~~~
- Regenerate a fresh file with ` + "`workerpack config init --force`",
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	archiveMismatchIssue = &Issue{
		id: ArchiveMismatchId,
		mdMsg: `
# The archive does not match the raw worker

` + "`worker.zip`" + ` must hold exactly one entry whose bytes equal ` + "`worker.js`" + `.
This usually means one of the files was edited or copied by hand.

## Things you can try
- Rebuild both artifacts:
~~~
$ workerpack build
~~~`,
	}

	issues = map[Id]*Issue{
		assetMissingIssue.Id():        assetMissingIssue,
		iconMissingIssue.Id():         iconMissingIssue,
		bundleFailedIssue.Id():        bundleFailedIssue,
		artifactWriteFailedIssue.Id(): artifactWriteFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		archiveMismatchIssue.Id():     archiveMismatchIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	ids := make([]Id, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
