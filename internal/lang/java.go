package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/phobologic/ccb/internal/model"
)

func init() {
	register(javaAdapter{})
}

type javaAdapter struct{}

func (javaAdapter) Name() string              { return "java" }
func (javaAdapter) Extensions() []string      { return []string{".java"} }
func (javaAdapter) Grammar() *sitter.Language { return java.GetLanguage() }

func (javaAdapter) Classify(node *sitter.Node) model.Kind {
	switch node.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		return model.Class
	case "method_declaration", "constructor_declaration":
		return model.Function
	}
	return ""
}

func (javaAdapter) ExtractName(node *sitter.Node, source []byte) string {
	return nameField(node, source)
}

// IsPublic requires an explicit public modifier ahead of the body.
func (javaAdapter) IsPublic(node *sitter.Node, _ string, source []byte) bool {
	return hasToken(headerText(node, source), "public")
}

var (
	javaTypeNames = map[string]bool{"type_identifier": true, "scoped_type_identifier": true}
	javaTypeSkip  = map[string]bool{"type_arguments": true}
)

func (javaAdapter) Bases(node *sitter.Node, source []byte) []string {
	var bases []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "superclass", "super_interfaces", "extends_interfaces":
			bases = append(bases, collectNames(child, source, javaTypeNames, javaTypeSkip)...)
		}
	}
	return bases
}

func (javaAdapter) Fields(node *sitter.Node, source []byte) []string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "field_declaration", "constant_declaration":
			for j := 0; j < int(member.NamedChildCount()); j++ {
				decl := member.NamedChild(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				if name := nameField(decl, source); name != "" {
					fields = append(fields, name)
				}
			}
		case "enum_constant":
			if name := nameField(member, source); name != "" {
				fields = append(fields, name)
			}
		}
	}
	return fields
}

func (javaAdapter) DocComment(node *sitter.Node, source []byte) string {
	return precedingComments(node, source)
}
