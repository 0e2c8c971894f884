package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/phobologic/ccb/internal/model"
)

func init() {
	register(cFamilyAdapter{name: "c", exts: []string{".c", ".h"}, grammar: c.GetLanguage})
	register(cFamilyAdapter{
		name:    "cpp",
		exts:    []string{".cpp", ".hpp", ".cc", ".cxx", ".hh", ".hxx", ".cu", ".cuh"},
		grammar: cpp.GetLanguage,
		cpp:     true,
	})
}

// cFamilyAdapter serves C, C++ and CUDA sources.
type cFamilyAdapter struct {
	name    string
	exts    []string
	grammar func() *sitter.Language
	cpp     bool
}

func (a cFamilyAdapter) Name() string              { return a.name }
func (a cFamilyAdapter) Extensions() []string      { return a.exts }
func (a cFamilyAdapter) Grammar() *sitter.Language { return a.grammar() }

// Classify reports aggregate definitions (with a body) as classes, and
// function definitions and prototypes as functions. Inside C++ classes,
// member function declarations are functions too.
func (a cFamilyAdapter) Classify(node *sitter.Node) model.Kind {
	switch node.Type() {
	case "struct_specifier", "union_specifier", "class_specifier":
		if node.ChildByFieldName("body") != nil {
			return model.Class
		}
	case "function_definition":
		return model.Function
	case "declaration":
		if !inBlock(node) && declaresFunction(node) {
			return model.Function
		}
	case "field_declaration":
		if a.cpp && declaresFunction(node) {
			return model.Function
		}
	}
	return ""
}

// declaresFunction reports whether node's declarator chain contains a
// function declarator, which separates prototypes from variables. A function
// declarator wrapping a parenthesized declarator, as in int (*fp)(int),
// declares a function pointer variable.
func declaresFunction(node *sitter.Node) bool {
	for d := nextDeclarator(node); d != nil; d = nextDeclarator(d) {
		if d.Type() != "function_declarator" {
			continue
		}
		for inner := nextDeclarator(d); inner != nil; inner = nextDeclarator(inner) {
			if inner.Type() == "parenthesized_declarator" {
				return false
			}
		}
		return true
	}
	return false
}

// inBlock reports whether node sits inside a function body.
func inBlock(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "compound_statement":
			return true
		case "translation_unit", "field_declaration_list":
			return false
		}
	}
	return false
}

var declaratorLeaves = map[string]bool{
	"identifier":           true,
	"field_identifier":     true,
	"qualified_identifier": true,
	"destructor_name":      true,
	"operator_name":        true,
	"type_identifier":      true,
}

// nextDeclarator follows the "declarator" field, falling back to the first
// declarator-shaped named child for grammars that leave it unnamed.
func nextDeclarator(node *sitter.Node) *sitter.Node {
	if d := node.ChildByFieldName("declarator"); d != nil {
		return d
	}
	if !strings.HasSuffix(node.Type(), "_declarator") {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if declaratorLeaves[child.Type()] || strings.HasSuffix(child.Type(), "_declarator") {
			return child
		}
	}
	return nil
}

// declaratorName descends the declarator chain until a leaf identifier.
func declaratorName(node *sitter.Node, source []byte) string {
	for d := node; d != nil; d = nextDeclarator(d) {
		if declaratorLeaves[d.Type()] {
			return NodeText(d, source)
		}
	}
	return ""
}

func (a cFamilyAdapter) ExtractName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "struct_specifier", "union_specifier", "class_specifier":
		if n := node.ChildByFieldName("name"); n != nil {
			return NodeText(n, source)
		}
		// typedef struct { ... } Point;
		if p := node.Parent(); p != nil && p.Type() == "type_definition" {
			return declaratorName(p, source)
		}
		return ""
	}
	if d := nextDeclarator(node); d != nil {
		if name := declaratorName(d, source); name != "" {
			return name
		}
	}
	return firstIdentifier(node, source)
}

// IsPublic rejects declarations with a static storage class.
func (cFamilyAdapter) IsPublic(node *sitter.Node, _ string, source []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "storage_class_specifier" && NodeText(child, source) == "static" {
			return false
		}
	}
	return true
}

var (
	cppBaseNames = map[string]bool{"type_identifier": true, "qualified_identifier": true}
	cppBaseSkip  = map[string]bool{"template_argument_list": true, "access_specifier": true}
)

func (a cFamilyAdapter) Bases(node *sitter.Node, source []byte) []string {
	clause := childOfType(node, "base_class_clause")
	if clause == nil {
		return nil
	}
	return collectNames(clause, source, cppBaseNames, cppBaseSkip)
}

func (cFamilyAdapter) Fields(node *sitter.Node, source []byte) []string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "field_declaration" || declaresFunction(member) {
			continue
		}
		for j := 0; j < int(member.NamedChildCount()); j++ {
			d := member.NamedChild(j)
			if d.Type() == "field_identifier" || strings.HasSuffix(d.Type(), "_declarator") {
				if name := declaratorName(d, source); name != "" {
					fields = append(fields, name)
				}
			}
		}
	}
	return fields
}

func (cFamilyAdapter) DocComment(node *sitter.Node, source []byte) string {
	anchor := node
	if p := anchor.Parent(); p != nil {
		switch p.Type() {
		case "template_declaration", "type_definition":
			anchor = p
		case "declaration":
			// struct Foo {...} foo;
			if node.Type() != "declaration" {
				anchor = p
			}
		}
	}
	return precedingComments(anchor, source)
}
