// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var (
	targets = map[string]api.Target{
		"esnext": api.ESNext,
		"es2015": api.ES2015,
		"es2016": api.ES2016,
		"es2017": api.ES2017,
		"es2018": api.ES2018,
		"es2019": api.ES2019,
		"es2020": api.ES2020,
		"es2021": api.ES2021,
		"es2022": api.ES2022,
	}

	platforms = map[string]api.Platform{
		"browser": api.PlatformBrowser,
		"node":    api.PlatformNode,
		"neutral": api.PlatformNeutral,
	}
)

// ParseTarget maps a target name such as "es2020" to its esbuild value.
func ParseTarget(name string) (api.Target, error) {
	t, ok := targets[strings.ToLower(name)]
	if !ok {
		return api.DefaultTarget, fmt.Errorf("unknown target %q", name)
	}
	return t, nil
}

// ParsePlatform maps "browser", "node" or "neutral" to its esbuild value.
func ParsePlatform(name string) (api.Platform, error) {
	p, ok := platforms[strings.ToLower(name)]
	if !ok {
		return api.PlatformDefault, fmt.Errorf("unknown platform %q", name)
	}
	return p, nil
}
