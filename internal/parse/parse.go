// Package parse extracts public symbols from source files using tree-sitter.
//
// The walk is language-independent: a lang.Adapter is consulted only to
// classify nodes, name them, decide visibility and read class metadata and
// documentation.
package parse

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/ccb/internal/lang"
	"github.com/phobologic/ccb/internal/model"
)

// ErrNoTree is returned when the parser produced no syntax tree.
var ErrNoTree = errors.New("parser returned no tree")

var callTypes = map[string]bool{
	"call":              true,
	"call_expression":   true,
	"method_invocation": true,
}

// calleeFallback lists node types that can name a callee when the call node
// has no function/name/declarator field.
var calleeFallback = map[string]bool{
	"identifier":           true,
	"attribute":            true,
	"field_expression":     true,
	"member_expression":    true,
	"selector_expression":  true,
	"scoped_identifier":    true,
	"qualified_identifier": true,
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Extract parses source and returns its public symbols in declaration order
// (depth-first). The parser must be created for the adapter's grammar.
func Extract(ctx context.Context, a lang.Adapter, parser *sitter.Parser, source []byte) ([]model.Symbol, error) {
	if len(source) == 0 {
		return nil, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", a.Name(), err)
	}
	if tree == nil {
		return nil, ErrNoTree
	}
	defer tree.Close()

	w := &walker{adapter: a, source: source}
	w.visit(tree.RootNode(), "")
	return w.symbols, nil
}

type walker struct {
	adapter lang.Adapter
	source  []byte
	symbols []model.Symbol
}

// visit records node if it declares a public symbol, then descends.
// Classes open a breadcrumb scope for their children; functions do not.
func (w *walker) visit(node *sitter.Node, breadcrumb string) {
	childCrumb := breadcrumb
	if kind := w.adapter.Classify(node); kind != "" {
		if sym, ok := w.symbol(node, kind, breadcrumb); ok {
			w.symbols = append(w.symbols, sym)
			if sym.Kind == model.Class {
				childCrumb = sym.Breadcrumb
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.visit(node.NamedChild(i), childCrumb)
	}
}

func (w *walker) symbol(node *sitter.Node, kind model.Kind, breadcrumb string) (model.Symbol, bool) {
	scope, name := splitScope(w.adapter.ExtractName(node, w.source))
	if name == "" || !w.adapter.IsPublic(node, name, w.source) {
		return model.Symbol{}, false
	}

	if kind == model.Function && (breadcrumb != "" || scope != "") {
		kind = model.Method
	}
	scopeCrumb := strings.ReplaceAll(scope, model.ScopeSep, model.BreadcrumbSep)

	code := lang.NodeText(node, w.source)
	sym := model.Symbol{
		Name:       name,
		Kind:       kind,
		Signature:  firstLine(code),
		Breadcrumb: model.JoinBreadcrumb(breadcrumb, scopeCrumb, name),
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
		IsPublic:   true,
		Code:       code,
		Summary:    w.adapter.DocComment(node, w.source),
		Calls:      Calls(node, w.source),
	}
	if kind == model.Class {
		sym.Bases = w.adapter.Bases(node, w.source)
		sym.Fields = w.adapter.Fields(node, w.source)
	}
	return sym, true
}

// splitScope splits "Outer::Inner::leaf" into ("Outer::Inner", "leaf").
func splitScope(name string) (scope, leaf string) {
	name = strings.TrimSpace(name)
	i := strings.LastIndex(name, model.ScopeSep)
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+len(model.ScopeSep):]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Calls returns the distinct callee names referenced by call expressions in
// node's subtree, sorted. Qualifiers are stripped, keeping the rightmost
// segment of member accesses and scoped names.
func Calls(node *sitter.Node, source []byte) []string {
	seen := make(map[string]struct{})
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if callTypes[n.Type()] {
			if callee := calleeNode(n); callee != nil {
				if name := cleanCallee(lang.NodeText(callee, source)); name != "" {
					seen[name] = struct{}{}
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)

	if len(seen) == 0 {
		return nil
	}
	calls := make([]string, 0, len(seen))
	for name := range seen {
		calls = append(calls, name)
	}
	sort.Strings(calls)
	return calls
}

func calleeNode(call *sitter.Node) *sitter.Node {
	for _, field := range []string{"function", "name", "declarator"} {
		if n := call.ChildByFieldName(field); n != nil {
			return n
		}
	}
	for i := 0; i < int(call.NamedChildCount()); i++ {
		if child := call.NamedChild(i); calleeFallback[child.Type()] {
			return child
		}
	}
	return nil
}

func cleanCallee(text string) string {
	if i := strings.IndexAny(text, "<["); i >= 0 {
		text = text[:i]
	}
	for _, sep := range []string{".", "->", model.ScopeSep} {
		if i := strings.LastIndex(text, sep); i >= 0 {
			text = text[i+len(sep):]
		}
	}
	text = strings.TrimSpace(text)
	if !identRe.MatchString(text) {
		return ""
	}
	return text
}
