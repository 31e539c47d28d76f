// Package admin implements the role and permission administration
// workflows. All state lives behind the upstream backend; this package adds
// the client-side rules (templates, tree handling, system-role and
// self-protection guards) and a cached view of the permission catalog.
package admin

import (
	"sort"

	"github.com/interviewhub/gateway/internal/backend"
)

// Template declares, per permission kind, either full coverage or an
// explicit code list. Applying a template replaces the current selection; it
// never merges.
type Template struct {
	Name        string
	Description string

	MenuAll   bool
	MenuCodes []string

	ButtonAll   bool
	ButtonCodes []string

	APIAll   bool
	APICodes []string
}

// Builtin templates mirroring the platform presets.
var (
	AdminTemplate = Template{
		Name:        "admin",
		Description: "full coverage of menu, button and API permissions",
		MenuAll:     true,
		ButtonAll:   true,
		APIAll:      true,
	}
	UserTemplate = Template{
		Name:        "user",
		Description: "baseline permissions for ordinary accounts",
		MenuCodes:   []string{"system:user:page", "system:dashboard:page"},
		ButtonCodes: []string{"system:user:view:button", "system:user:export:button"},
		APICodes:    []string{"system:user:list:api", "system:dashboard:stats:api"},
	}
)

// TemplateByName resolves a preset template.
func TemplateByName(name string) (Template, bool) {
	switch name {
	case AdminTemplate.Name:
		return AdminTemplate, true
	case UserTemplate.Name:
		return UserTemplate, true
	default:
		return Template{}, false
	}
}

// Matches reports whether the template covers the given permission node.
func (t Template) Matches(def backend.PermissionDefinition) bool {
	switch def.PermType {
	case backend.PermTypeMenu:
		return t.MenuAll || containsCode(t.MenuCodes, def.PermCode)
	case backend.PermTypeButton:
		return t.ButtonAll || containsCode(t.ButtonCodes, def.PermCode)
	case backend.PermTypeAPI:
		return t.APIAll || containsCode(t.APICodes, def.PermCode)
	default:
		return false
	}
}

// Apply computes the node-id selection the template yields over the catalog.
// The result replaces any prior selection. IDs come back sorted for stable
// request bodies.
func (t Template) Apply(defs []backend.PermissionDefinition) []int64 {
	ids := make([]int64, 0, len(defs))
	for _, def := range defs {
		if t.Matches(def) {
			ids = append(ids, def.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// TreeNode is a permission node with its resolved children.
type TreeNode struct {
	backend.PermissionDefinition
	Children []*TreeNode `json:"children,omitempty"`
}

// BuildTree links the flat catalog into a forest via ParentID. Nodes whose
// parent is absent are treated as roots, so orphans stay addressable.
func BuildTree(defs []backend.PermissionDefinition) []*TreeNode {
	byID := make(map[int64]*TreeNode, len(defs))
	for _, def := range defs {
		byID[def.ID] = &TreeNode{PermissionDefinition: def}
	}
	var roots []*TreeNode
	for _, def := range defs {
		node := byID[def.ID]
		if def.ParentID == 0 {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[def.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// HasChildren reports whether any catalog node points at id as its parent.
func HasChildren(defs []backend.PermissionDefinition, id int64) bool {
	for _, def := range defs {
		if def.ParentID == id {
			return true
		}
	}
	return false
}
