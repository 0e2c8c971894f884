// Package model defines core data structures for ccb.
package model

import "strings"

// Kind indicates the syntactic kind of a symbol.
type Kind string

const (
	Class    Kind = "class"
	Function Kind = "function"
	Method   Kind = "method"
)

// BreadcrumbSep joins the scopes of a breadcrumb.
const BreadcrumbSep = " > "

// ScopeSep separates an explicit scope qualifier from a declared name,
// as in C++ out-of-line definitions ("Widget::draw").
const ScopeSep = "::"

// Symbol is one extracted public declaration.
type Symbol struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"type"`
	Signature  string   `json:"signature"`
	Breadcrumb string   `json:"breadcrumb"`
	LineStart  int      `json:"line_start"`
	LineEnd    int      `json:"line_end"`
	IsPublic   bool     `json:"is_public"`
	Code       string   `json:"code"`
	Summary    string   `json:"summary,omitempty"`
	Bases      []string `json:"bases,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	Calls      []string `json:"calls,omitempty"`
}

// FileEntry is the cache unit for one source file.
type FileEntry struct {
	Hash    string   `json:"hash"`
	Symbols []Symbol `json:"symbols"`
}

// FileContext holds the symbols of one scanned file.
// Path is slash-separated and relative to the scan root.
type FileContext struct {
	Path    string
	Symbols []Symbol
}

// Directory groups the scanned files of one directory together with the
// dependency identifiers found in them. It is rebuilt on every scan.
type Directory struct {
	Path  string // "." for the scan root
	Files []*FileContext
	Deps  map[string]struct{}
}

// NewDirectory returns an empty Directory for path.
func NewDirectory(path string) *Directory {
	return &Directory{Path: path, Deps: make(map[string]struct{})}
}

// JoinBreadcrumb appends segments to an existing breadcrumb, skipping empties.
func JoinBreadcrumb(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	if base != "" {
		parts = append(parts, base)
	}
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, BreadcrumbSep)
}

// CloneSymbols returns a deep copy of syms.
func CloneSymbols(syms []Symbol) []Symbol {
	if syms == nil {
		return nil
	}
	out := make([]Symbol, len(syms))
	for i, s := range syms {
		s.Bases = cloneStrings(s.Bases)
		s.Fields = cloneStrings(s.Fields)
		s.Calls = cloneStrings(s.Calls)
		out[i] = s
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
