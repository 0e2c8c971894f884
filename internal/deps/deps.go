// Package deps finds import and include references by scanning raw source
// text. It is deliberately syntax-unaware: matches inside comments or
// strings are accepted.
package deps

import (
	"regexp"
	"sort"
)

// MaxDisplayed caps how many dependencies a directory document lists.
const MaxDisplayed = 15

// patterns are tried in order; each captures the dependency in group 1.
var patterns = []*regexp.Regexp{
	// import os / import java.util.List;
	regexp.MustCompile(`(?m)^import\s+([\w\.]+)`),
	// from pkg import name
	regexp.MustCompile(`(?m)^from\s+([\w\.]+)\s+import`),
	// #include <vector> / #include "util.h"
	regexp.MustCompile(`(?m)^#include\s*[<"]([\w\./]+)[>"]`),
	// import { x } from './mod'
	regexp.MustCompile(`(?m)^import\s+.*from\s+['"]([\w\./@\-]+)['"]`),
	// import "fmt" / import alias "path/to/pkg"
	regexp.MustCompile(`(?m)^import\s+(?:[\w\.]+\s+)?"([\w\./\-]+)"`),
}

var (
	goImportBlock = regexp.MustCompile(`(?ms)^import\s*\((.*?)^\)`)
	goImportSpec  = regexp.MustCompile(`(?m)^\s*(?:[\w\.]+\s+)?"([\w\./\-]+)"`)
)

// Extract adds every dependency referenced in content to into.
func Extract(content []byte, into map[string]struct{}) {
	for _, re := range patterns {
		for _, m := range re.FindAllSubmatch(content, -1) {
			into[string(m[1])] = struct{}{}
		}
	}
	for _, block := range goImportBlock.FindAllSubmatch(content, -1) {
		for _, m := range goImportSpec.FindAllSubmatch(block[1], -1) {
			into[string(m[1])] = struct{}{}
		}
	}
}

// Display returns the dependencies sorted and capped to MaxDisplayed.
func Display(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	if len(out) > MaxDisplayed {
		out = out[:MaxDisplayed]
	}
	return out
}
