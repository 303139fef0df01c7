// Package permission turns a role's menu grants into the navigation forest and flat permission
// list that the API serves. It performs no I/O; callers load menus and grants with two flat queries.
package permission

import (
	"sort"

	"backoffice/internal/model"
)

// Flags is the set of rights a role holds on one menu.
type Flags struct {
	CanView    bool `json:"can_view"`
	CanCreate  bool `json:"can_create"`
	CanUpdate  bool `json:"can_update"`
	CanDelete  bool `json:"can_delete"`
	CanConfirm bool `json:"can_confirm"`
}

// FlagsOf copies the flags of a grant row.
func FlagsOf(g model.RoleMenuPermission) Flags {
	return Flags{
		CanView:    g.CanView,
		CanCreate:  g.CanCreate,
		CanUpdate:  g.CanUpdate,
		CanDelete:  g.CanDelete,
		CanConfirm: g.CanConfirm,
	}
}

// Allows reports the flag for kind. Unknown kinds are denied.
func (f Flags) Allows(kind model.PermissionKind) bool {
	switch kind {
	case model.PermView:
		return f.CanView
	case model.PermCreate:
		return f.CanCreate
	case model.PermUpdate:
		return f.CanUpdate
	case model.PermDelete:
		return f.CanDelete
	case model.PermConfirm:
		return f.CanConfirm
	default:
		return false
	}
}

// Node is one entry of the resolved navigation forest.
type Node struct {
	ID       uint   `json:"id"`
	ParentID *uint  `json:"parent_id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	Order    int    `json:"order"`
	Flags
	// Synthesized is set on ancestors that carried no grant row of their own.
	Synthesized bool   `json:"synthesized"`
	Children    []Node `json:"children"`
}

// Permission is the flat, non-hierarchical form of a node.
type Permission struct {
	MenuID uint `json:"menu_id"`
	Flags
}

type entry struct {
	menu        model.Menu
	flags       Flags
	synthesized bool
	parent      int
	children    []int
}

// arena holds candidate nodes in a flat slice; links are slice indexes.
type arena struct {
	nodes []entry
	index map[uint]int
}

func (a *arena) add(m model.Menu, f Flags, synthesized bool) {
	a.index[m.ID] = len(a.nodes)
	a.nodes = append(a.nodes, entry{menu: m, flags: f, synthesized: synthesized, parent: -1})
}

// Resolve builds the accessible menu forest for one role.
//
// menus should contain every menu (inactive ones are ignored); grants are the role's rows.
// Menus granted can_view form the initial set. Their parent chains are then walked to the top:
// an ancestor keeps the flags of its own grant row when it has one, otherwise it is added as
// view-only. A missing or inactive ancestor ends the walk and its child becomes a root.
// Nodes without can_view and synthesized ancestors survive only while they have a surviving child;
// after a cycle is broken a synthesized node may be left with none. Siblings are ordered by
// (order, id).
func Resolve(menus []model.Menu, grants []model.RoleMenuPermission) []Node {
	active := make(map[uint]model.Menu, len(menus))
	for _, m := range menus {
		if m.IsActive {
			active[m.ID] = m
		}
	}
	byMenu := make(map[uint]model.RoleMenuPermission, len(grants))
	for _, g := range grants {
		byMenu[g.MenuID] = g
	}

	a := &arena{index: make(map[uint]int)}
	for _, g := range sortedGrants(grants) {
		if !g.CanView {
			continue
		}
		m, ok := active[g.MenuID]
		if !ok {
			continue
		}
		if _, dup := a.index[m.ID]; dup {
			continue
		}
		a.add(m, FlagsOf(g), false)
	}
	if len(a.nodes) == 0 {
		return []Node{}
	}

	// a.nodes grows while iterating, so ancestors added here get their own parents resolved too.
	for i := 0; i < len(a.nodes); i++ {
		pid := a.nodes[i].menu.ParentID
		if pid == nil {
			continue
		}
		if _, ok := a.index[*pid]; ok {
			continue
		}
		parent, ok := active[*pid]
		if !ok {
			continue
		}
		if g, ok := byMenu[parent.ID]; ok {
			a.add(parent, FlagsOf(g), false)
		} else {
			a.add(parent, Flags{CanView: true}, true)
		}
	}

	roots := a.link()
	return a.build(roots)
}

// link wires parent/child indexes and returns root indexes. Nodes caught in a parent cycle are
// unreachable from any root; the lowest-ID such node is promoted to a root until none remain.
func (a *arena) link() []int {
	var roots []int
	for i := range a.nodes {
		pid := a.nodes[i].menu.ParentID
		if pid == nil {
			roots = append(roots, i)
			continue
		}
		p, ok := a.index[*pid]
		if !ok || p == i {
			roots = append(roots, i)
			continue
		}
		a.nodes[i].parent = p
		a.nodes[p].children = append(a.nodes[p].children, i)
	}

	seen := make([]bool, len(a.nodes))
	var mark func(i int)
	mark = func(i int) {
		if seen[i] {
			return
		}
		seen[i] = true
		for _, c := range a.nodes[i].children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	for {
		lowest := -1
		for i := range a.nodes {
			if !seen[i] && (lowest < 0 || a.nodes[i].menu.ID < a.nodes[lowest].menu.ID) {
				lowest = i
			}
		}
		if lowest < 0 {
			break
		}
		a.detach(lowest)
		roots = append(roots, lowest)
		mark(lowest)
	}
	return roots
}

func (a *arena) detach(i int) {
	p := a.nodes[i].parent
	if p < 0 {
		return
	}
	siblings := a.nodes[p].children
	for k, c := range siblings {
		if c == i {
			a.nodes[p].children = append(siblings[:k:k], siblings[k+1:]...)
			break
		}
	}
	a.nodes[i].parent = -1
}

// build sorts, prunes and materializes the subtree rooted at each index.
func (a *arena) build(idxs []int) []Node {
	sorted := append([]int(nil), idxs...)
	sort.SliceStable(sorted, func(x, y int) bool {
		mx, my := a.nodes[sorted[x]].menu, a.nodes[sorted[y]].menu
		if mx.SortOrder != my.SortOrder {
			return mx.SortOrder < my.SortOrder
		}
		return mx.ID < my.ID
	})

	out := make([]Node, 0, len(sorted))
	for _, i := range sorted {
		e := a.nodes[i]
		children := a.build(e.children)
		if len(children) == 0 && (!e.flags.CanView || e.synthesized) {
			continue
		}
		out = append(out, Node{
			ID:          e.menu.ID,
			ParentID:    e.menu.ParentID,
			Title:       e.menu.Title,
			URL:         e.menu.URL,
			Icon:        e.menu.Icon,
			Order:       e.menu.SortOrder,
			Flags:       e.flags,
			Synthesized: e.synthesized,
			Children:    children,
		})
	}
	return out
}

func sortedGrants(grants []model.RoleMenuPermission) []model.RoleMenuPermission {
	out := append([]model.RoleMenuPermission(nil), grants...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MenuID < out[j].MenuID })
	return out
}

// Flatten lists the forest in depth-first order.
func Flatten(forest []Node) []Permission {
	var out []Permission
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			out = append(out, Permission{MenuID: n.ID, Flags: n.Flags})
			walk(n.Children)
		}
	}
	walk(forest)
	if out == nil {
		out = []Permission{}
	}
	return out
}
