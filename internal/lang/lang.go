// Package lang provides the per-language adapters that tell the generic
// syntax-tree walker which nodes declare symbols, how to name them and
// which of them are public.
package lang

import (
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/ccb/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Adapter exposes the language-specific decision points of symbol extraction.
// Tree traversal and call extraction are language-independent and live in
// package parse.
type Adapter interface {
	// Name is the canonical language name ("python", "cpp", ...).
	Name() string
	// Extensions lists the lower-case file extensions handled by the adapter.
	Extensions() []string
	// Grammar returns the tree-sitter grammar.
	Grammar() *sitter.Language
	// Classify reports the symbol kind declared by node, or "" when the
	// node should be traversed transparently. Function-like nodes are
	// reported as model.Function; the walker decides between function and
	// method from the enclosing scope.
	Classify(node *sitter.Node) model.Kind
	// ExtractName returns the declared name. A name qualified with
	// model.ScopeSep carries the scope it is declared in.
	ExtractName(node *sitter.Node, source []byte) string
	// IsPublic applies the language's visibility rule to a declaration.
	IsPublic(node *sitter.Node, name string, source []byte) bool
	// Bases returns superclass/interface names of a class-like node.
	Bases(node *sitter.Node, source []byte) []string
	// Fields returns the immediate member names of a class-like node.
	Fields(node *sitter.Node, source []byte) []string
	// DocComment returns the documentation attached to a declaration.
	DocComment(node *sitter.Node, source []byte) string
}

// Languages maps language names to their adapters.
// Populated by init() functions in per-language files.
var Languages = map[string]Adapter{}

func register(a Adapter) {
	Languages[a.Name()] = a
}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, a := range Languages {
			for _, ext := range a.Extensions() {
				extensionMap[ext] = a.Name()
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[strings.ToLower(ext)]
}

// ForPath returns the adapter responsible for path, or nil.
func ForPath(path string) Adapter {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return nil
	}
	name := ForExtension(path[i:])
	if name == "" {
		return nil
	}
	return Languages[name]
}

// NewParser creates a fresh tree-sitter parser for a.
// Parsers are not safe for concurrent use.
func NewParser(a Adapter) *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(a.Grammar())
	return p
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// childOfType returns the first direct child whose type is one of types.
func childOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

// firstIdentifier returns the text of the first identifier-shaped child.
func firstIdentifier(node *sitter.Node, source []byte) string {
	if c := childOfType(node, "identifier", "type_identifier", "field_identifier", "property_identifier"); c != nil {
		return NodeText(c, source)
	}
	return ""
}

// nameField is the default name lookup: the "name" field, then the first
// identifier-shaped child.
func nameField(node *sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return NodeText(n, source)
	}
	return firstIdentifier(node, source)
}

// headerText returns the declaration text preceding its body, or the whole
// text for body-less declarations.
func headerText(node *sitter.Node, source []byte) string {
	if body := node.ChildByFieldName("body"); body != nil {
		return string(source[node.StartByte():body.StartByte()])
	}
	text := NodeText(node, source)
	if i := strings.IndexByte(text, '{'); i >= 0 {
		return text[:i]
	}
	return text
}

var wordRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// hasToken reports whether text contains word as a whole token.
func hasToken(text, word string) bool {
	for _, tok := range wordRe.FindAllString(text, -1) {
		if tok == word {
			return true
		}
	}
	return false
}

// collectNames walks node's subtree and collects the text of nodes whose
// type is in keep. Subtrees of keep nodes and of nodes in skip are not
// descended into.
func collectNames(node *sitter.Node, source []byte, keep, skip map[string]bool) []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch {
			case keep[child.Type()]:
				out = append(out, NodeText(child, source))
			case skip[child.Type()]:
			default:
				walk(child)
			}
		}
	}
	walk(node)
	return out
}

var commentTypes = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

// precedingComments joins the comment siblings directly preceding anchor,
// in source order, with comment delimiters stripped.
func precedingComments(anchor *sitter.Node, source []byte) string {
	var parts []string
	for cur := anchor.PrevSibling(); cur != nil && commentTypes[cur.Type()]; cur = cur.PrevSibling() {
		if text := stripComment(NodeText(cur, source)); text != "" {
			parts = append([]string{text}, parts...)
		}
	}
	return strings.Join(parts, " ")
}

// stripComment removes comment delimiters from every line of a comment.
func stripComment(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "/#* ")
		line = strings.TrimRight(line, "/#* ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
