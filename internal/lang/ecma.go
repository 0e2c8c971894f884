package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/phobologic/ccb/internal/model"
)

func init() {
	register(ecmaAdapter{name: "typescript", exts: []string{".ts", ".mts", ".cts"}, grammar: typescript.GetLanguage})
	register(ecmaAdapter{name: "tsx", exts: []string{".tsx"}, grammar: tsx.GetLanguage})
	register(ecmaAdapter{name: "javascript", exts: []string{".js", ".jsx", ".mjs", ".cjs"}, grammar: javascript.GetLanguage})
}

// ecmaAdapter serves TypeScript, TSX and JavaScript, whose grammars share
// declaration node shapes.
type ecmaAdapter struct {
	name    string
	exts    []string
	grammar func() *sitter.Language
}

func (a ecmaAdapter) Name() string              { return a.name }
func (a ecmaAdapter) Extensions() []string      { return a.exts }
func (a ecmaAdapter) Grammar() *sitter.Language { return a.grammar() }

func (ecmaAdapter) Classify(node *sitter.Node) model.Kind {
	switch node.Type() {
	case "class_declaration", "abstract_class_declaration", "interface_declaration":
		return model.Class
	case "function_declaration", "generator_function_declaration", "method_definition":
		return model.Function
	case "variable_declarator":
		// const handler = () => {...}, at module scope only
		if !moduleLevel(node) {
			return ""
		}
		if v := node.ChildByFieldName("value"); v != nil {
			switch v.Type() {
			case "arrow_function", "function_expression", "function":
				return model.Function
			}
		}
	}
	return ""
}

// moduleLevel reports whether a variable declarator belongs to a declaration
// at program scope, exported or not.
func moduleLevel(node *sitter.Node) bool {
	decl := node.Parent()
	if decl == nil {
		return false
	}
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
	default:
		return false
	}
	scope := decl.Parent()
	if scope != nil && scope.Type() == "export_statement" {
		scope = scope.Parent()
	}
	return scope != nil && scope.Type() == "program"
}

func (ecmaAdapter) ExtractName(node *sitter.Node, source []byte) string {
	return nameField(node, source)
}

// IsPublic rejects declarations carrying a private marker: a private or
// protected accessibility modifier, or an ECMAScript #private name.
func (ecmaAdapter) IsPublic(node *sitter.Node, name string, source []byte) bool {
	if strings.HasPrefix(name, "#") {
		return false
	}
	if mod := childOfType(node, "accessibility_modifier"); mod != nil {
		switch NodeText(mod, source) {
		case "private", "protected":
			return false
		}
	}
	return true
}

var (
	ecmaBaseNames = map[string]bool{
		"identifier":             true,
		"type_identifier":        true,
		"nested_type_identifier": true,
		"member_expression":      true,
	}
	ecmaBaseSkip = map[string]bool{"type_arguments": true, "arguments": true}
)

func (ecmaAdapter) Bases(node *sitter.Node, source []byte) []string {
	clause := childOfType(node, "class_heritage", "extends_type_clause")
	if clause == nil {
		return nil
	}
	return collectNames(clause, source, ecmaBaseNames, ecmaBaseSkip)
}

func (ecmaAdapter) Fields(node *sitter.Node, source []byte) []string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		var name *sitter.Node
		switch member.Type() {
		case "public_field_definition", "property_signature":
			name = member.ChildByFieldName("name")
		case "field_definition":
			name = member.ChildByFieldName("property")
		}
		if name != nil {
			fields = append(fields, NodeText(name, source))
		}
	}
	return fields
}

// DocComment reads comments above the declaration, looking through
// export statements and variable declarations that wrap it.
func (ecmaAdapter) DocComment(node *sitter.Node, source []byte) string {
	anchor := node
	if anchor.Type() == "variable_declarator" {
		if p := anchor.Parent(); p != nil {
			anchor = p
		}
	}
	if p := anchor.Parent(); p != nil && p.Type() == "export_statement" {
		anchor = p
	}
	return precedingComments(anchor, source)
}
