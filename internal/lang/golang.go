package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/phobologic/ccb/internal/model"
)

func init() {
	register(goAdapter{})
}

type goAdapter struct{}

func (goAdapter) Name() string              { return "go" }
func (goAdapter) Extensions() []string      { return []string{".go"} }
func (goAdapter) Grammar() *sitter.Language { return golang.GetLanguage() }

// Classify treats struct and interface type specs as classes. Methods are
// reported as functions; their receiver becomes the scope qualifier.
func (goAdapter) Classify(node *sitter.Node) model.Kind {
	switch node.Type() {
	case "type_spec":
		if t := node.ChildByFieldName("type"); t != nil {
			switch t.Type() {
			case "struct_type", "interface_type":
				return model.Class
			}
		}
	case "function_declaration", "method_declaration":
		return model.Function
	}
	return ""
}

func (goAdapter) ExtractName(node *sitter.Node, source []byte) string {
	name := nameField(node, source)
	if node.Type() != "method_declaration" || name == "" {
		return name
	}
	if recv := goFindReceiverType(node, source); recv != "" {
		return recv + model.ScopeSep + name
	}
	return name
}

// IsPublic follows Go's export rule: capitalized identifiers are exported.
func (goAdapter) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// Bases returns embedded types of a struct or interface.
func (goAdapter) Bases(node *sitter.Node, source []byte) []string {
	t := node.ChildByFieldName("type")
	if t == nil {
		return nil
	}
	var bases []string
	switch t.Type() {
	case "struct_type":
		list := childOfType(t, "field_declaration_list")
		if list == nil {
			return nil
		}
		for i := 0; i < int(list.NamedChildCount()); i++ {
			field := list.NamedChild(i)
			if field.Type() != "field_declaration" || field.ChildByFieldName("name") != nil {
				continue
			}
			if typ := field.ChildByFieldName("type"); typ != nil {
				bases = append(bases, strings.TrimPrefix(NodeText(typ, source), "*"))
			}
		}
	case "interface_type":
		for i := 0; i < int(t.NamedChildCount()); i++ {
			child := t.NamedChild(i)
			switch child.Type() {
			case "type_elem", "constraint_elem", "type_identifier", "qualified_type":
				bases = append(bases, NodeText(child, source))
			}
		}
	}
	return bases
}

// Fields returns struct field names or interface method names.
func (goAdapter) Fields(node *sitter.Node, source []byte) []string {
	t := node.ChildByFieldName("type")
	if t == nil {
		return nil
	}
	var fields []string
	switch t.Type() {
	case "struct_type":
		list := childOfType(t, "field_declaration_list")
		if list == nil {
			return nil
		}
		for i := 0; i < int(list.NamedChildCount()); i++ {
			field := list.NamedChild(i)
			if field.Type() != "field_declaration" {
				continue
			}
			for j := 0; j < int(field.NamedChildCount()); j++ {
				if id := field.NamedChild(j); id.Type() == "field_identifier" {
					fields = append(fields, NodeText(id, source))
				}
			}
		}
	case "interface_type":
		for i := 0; i < int(t.NamedChildCount()); i++ {
			child := t.NamedChild(i)
			switch child.Type() {
			case "method_elem", "method_spec":
				if name := nameField(child, source); name != "" {
					fields = append(fields, name)
				}
			}
		}
	}
	return fields
}

// DocComment reads the comment block above the declaration. For type specs
// the comment sits above the enclosing type declaration.
func (goAdapter) DocComment(node *sitter.Node, source []byte) string {
	anchor := node
	if node.Type() == "type_spec" {
		if p := node.Parent(); p != nil && p.Type() == "type_declaration" {
			anchor = p
		}
	}
	return precedingComments(anchor, source)
}

// goFindReceiverType extracts the receiver type name from a method_declaration node.
// Navigates: method_declaration → parameter_list (receiver) → parameter_declaration → type.
func goFindReceiverType(node *sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for j := 0; j < int(recv.NamedChildCount()); j++ {
		param := recv.NamedChild(j)
		if param.Type() == "parameter_declaration" {
			return goExtractTypeName(param.ChildByFieldName("type"), source)
		}
	}
	return ""
}

// goExtractTypeName extracts the type name from a receiver type,
// unwrapping pointer and generic types.
func goExtractTypeName(typ *sitter.Node, source []byte) string {
	if typ == nil {
		return ""
	}
	switch typ.Type() {
	case "type_identifier":
		return NodeText(typ, source)
	case "pointer_type", "generic_type":
		if inner := childOfType(typ, "type_identifier", "generic_type"); inner != nil {
			return goExtractTypeName(inner, source)
		}
	}
	return ""
}
