// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"encoding/base64"
	"slices"
	"strconv"
)

// EmptyLiteral is injected for a configured page that was not merged.
const EmptyLiteral = `""`

// PageConstant binds a page name to the constant that receives its HTML.
type PageConstant struct {
	Page     string
	Constant string
}

// DefineSet is the constant table for one build plus what was left out.
type DefineSet struct {
	Defines map[string]string
	// Dropped lists merged pages that have no constant.
	Dropped []string
	// Defaulted lists constants whose page was not merged.
	Defaulted []string
}

// Defines builds the constant table from merged pages (name to JSON literal).
// Every constant in table is present: pages that were not merged fall back to
// EmptyLiteral and pages without a constant are dropped. The icon is
// base64-encoded and injected as a string literal under iconConstant.
func Defines(pages map[string]string, table []PageConstant, iconConstant string, icon []byte) DefineSet {
	set := DefineSet{Defines: make(map[string]string, len(table)+1)}

	mapped := make(map[string]bool, len(table))
	for _, pc := range table {
		mapped[pc.Page] = true
		if literal, ok := pages[pc.Page]; ok {
			set.Defines[pc.Constant] = literal
			continue
		}
		set.Defines[pc.Constant] = EmptyLiteral
		set.Defaulted = append(set.Defaulted, pc.Constant)
	}

	for name := range pages {
		if !mapped[name] {
			set.Dropped = append(set.Dropped, name)
		}
	}
	slices.Sort(set.Dropped)

	// Base64 output needs no escaping, so quoting yields the JSON literal.
	set.Defines[iconConstant] = strconv.Quote(base64.StdEncoding.EncodeToString(icon))
	return set
}
