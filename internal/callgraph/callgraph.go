// Package callgraph restricts raw call references to the set of public
// symbols defined inside the scanned tree.
//
// Resolution happens in two passes over every file of a scan: the first
// collects the public-symbol universe, the second filters each symbol's
// calls against it. The second pass must not start before the first has
// seen every file.
package callgraph

import (
	"sort"

	"github.com/phobologic/ccb/internal/model"
)

// MaxRawCalls bounds how many raw call references are considered per symbol.
// The cap applies before filtering, so a symbol with many external calls may
// lose internal ones.
const MaxRawCalls = 15

// Universe returns the names of all public symbols across files.
func Universe(files []*model.FileContext) map[string]struct{} {
	universe := make(map[string]struct{})
	for _, fc := range files {
		for i := range fc.Symbols {
			if fc.Symbols[i].IsPublic {
				universe[fc.Symbols[i].Name] = struct{}{}
			}
		}
	}
	return universe
}

// Resolve replaces every symbol's raw calls with the finalized list.
func Resolve(files []*model.FileContext, universe map[string]struct{}) {
	for _, fc := range files {
		for i := range fc.Symbols {
			sym := &fc.Symbols[i]
			sym.Calls = Filter(sym.Name, sym.Calls, universe)
		}
	}
}

// Finalize runs both passes over files.
func Finalize(files []*model.FileContext) {
	Resolve(files, Universe(files))
}

// Filter takes at most MaxRawCalls entries of raw, keeps those in universe
// other than self, and returns them deduplicated and sorted.
func Filter(self string, raw []string, universe map[string]struct{}) []string {
	if len(raw) > MaxRawCalls {
		raw = raw[:MaxRawCalls]
	}
	seen := make(map[string]struct{}, len(raw))
	var calls []string
	for _, name := range raw {
		if name == self {
			continue
		}
		if _, ok := universe[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		calls = append(calls, name)
	}
	sort.Strings(calls)
	return calls
}
