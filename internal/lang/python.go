package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/phobologic/ccb/internal/model"
)

func init() {
	register(pythonAdapter{})
}

type pythonAdapter struct{}

func (pythonAdapter) Name() string              { return "python" }
func (pythonAdapter) Extensions() []string      { return []string{".py"} }
func (pythonAdapter) Grammar() *sitter.Language { return python.GetLanguage() }

func (pythonAdapter) Classify(node *sitter.Node) model.Kind {
	switch node.Type() {
	case "class_definition":
		return model.Class
	case "function_definition":
		return model.Function
	}
	return ""
}

func (pythonAdapter) ExtractName(node *sitter.Node, source []byte) string {
	return nameField(node, source)
}

// IsPublic hides single-underscore names; dunder names stay public.
func (pythonAdapter) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	return !strings.HasPrefix(name, "_") || strings.HasPrefix(name, "__")
}

func (pythonAdapter) Bases(node *sitter.Node, source []byte) []string {
	args := node.ChildByFieldName("superclasses")
	if args == nil {
		return nil
	}
	var bases []string
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		switch child.Type() {
		case "identifier", "attribute":
			bases = append(bases, NodeText(child, source))
		}
	}
	return bases
}

// Fields lists class-level assignments (x = 1, x: int = 1).
func (pythonAdapter) Fields(node *sitter.Node, source []byte) []string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var fields []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign.Type() != "assignment" {
			continue
		}
		if left := assign.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			fields = append(fields, NodeText(left, source))
		}
	}
	return fields
}

// DocComment prefers the docstring, then comments preceding the definition
// (or its decorators).
func (pythonAdapter) DocComment(node *sitter.Node, source []byte) string {
	if doc := pythonDocstring(node, source); doc != "" {
		return doc
	}
	anchor := node
	if p := node.Parent(); p != nil && p.Type() == "decorated_definition" {
		anchor = p
	}
	return precedingComments(anchor, source)
}

func pythonDocstring(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	text := strings.Trim(NodeText(str, source), `"'`)
	return CollapseWhitespace(text)
}
