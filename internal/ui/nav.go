package ui

// NavNode is a navigation group or item. Groups have children, items a path.
type NavNode struct {
	Name     string
	Label    string
	Path     string
	Children []*NavNode

	parent   *NavNode
	active   bool
	keepOpen bool
	expanded bool
}

// Group builds a group node.
func Group(name, label string, children ...*NavNode) *NavNode {
	return &NavNode{Name: name, Label: label, Children: children}
}

// Item builds a leaf node pointing at path.
func Item(name, label, path string) *NavNode {
	return &NavNode{Name: name, Label: label, Path: path}
}

func (n *NavNode) IsGroup() bool  { return len(n.Children) > 0 }
func (n *NavNode) Active() bool   { return n.active }
func (n *NavNode) KeepOpen() bool { return n.keepOpen }
func (n *NavNode) Expanded() bool { return n.expanded }

// VisibleNode is a node as drawn, with its nesting depth.
type VisibleNode struct {
	Node  *NavNode
	Depth int
}

// NavMenu is a tree of groups and items with a cursor over the visible nodes.
type NavMenu struct {
	roots  []*NavNode
	index  map[string]*NavNode
	cursor int
}

// NewNavMenu indexes the tree by node name. Names must be unique.
func NewNavMenu(roots ...*NavNode) *NavMenu {
	m := &NavMenu{roots: roots, index: make(map[string]*NavNode)}
	var walk func(parent *NavNode, nodes []*NavNode)
	walk = func(parent *NavNode, nodes []*NavNode) {
		for _, n := range nodes {
			n.parent = parent
			m.index[n.Name] = n
			walk(n, n.Children)
		}
	}
	walk(nil, roots)
	return m
}

// Find returns the node called name.
func (m *NavMenu) Find(name string) (*NavNode, bool) {
	n, ok := m.index[name]
	return n, ok
}

// Activate highlights item name and pins every group above it open.
// The previous active item and its pins are released.
func (m *NavMenu) Activate(name string) bool {
	n, ok := m.index[name]
	if !ok {
		return false
	}
	for _, other := range m.index {
		other.active = false
		other.keepOpen = false
	}
	n.active = true
	for g := n.parent; g != nil; g = g.parent {
		g.keepOpen = true
		g.expanded = true
	}
	m.moveCursorTo(n)
	return true
}

// ActiveItem returns the highlighted item, if any.
func (m *NavMenu) ActiveItem() (*NavNode, bool) {
	for _, n := range m.index {
		if n.active {
			return n, true
		}
	}
	return nil, false
}

// Open expands group name.
func (m *NavMenu) Open(name string) bool {
	n, ok := m.index[name]
	if !ok || !n.IsGroup() {
		return false
	}
	n.expanded = true
	return true
}

// Close collapses group name unless it is pinned open.
func (m *NavMenu) Close(name string) bool {
	n, ok := m.index[name]
	if !ok || !n.IsGroup() || n.keepOpen {
		return false
	}
	cur := m.current()
	n.expanded = false
	if cur != nil && !m.moveCursorTo(cur) {
		m.moveCursorTo(n)
	}
	return true
}

// Toggle opens a collapsed group or closes an expanded one.
func (m *NavMenu) Toggle(name string) bool {
	n, ok := m.index[name]
	if !ok {
		return false
	}
	if n.expanded {
		return m.Close(name)
	}
	return m.Open(name)
}

// Visible flattens the tree into the nodes currently drawn, in order.
func (m *NavMenu) Visible() []VisibleNode {
	var out []VisibleNode
	var walk func(nodes []*NavNode, depth int)
	walk = func(nodes []*NavNode, depth int) {
		for _, n := range nodes {
			out = append(out, VisibleNode{Node: n, Depth: depth})
			if n.IsGroup() && n.expanded {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(m.roots, 0)
	return out
}

// Cursor is the index into Visible of the selected node.
func (m *NavMenu) Cursor() int { return m.cursor }

// Up moves the cursor one visible node up.
func (m *NavMenu) Up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// Down moves the cursor one visible node down.
func (m *NavMenu) Down() {
	if m.cursor < len(m.Visible())-1 {
		m.cursor++
	}
}

// Select acts on the node under the cursor: groups toggle, items return
// their path.
func (m *NavMenu) Select() (string, bool) {
	n := m.current()
	if n == nil {
		return "", false
	}
	if n.IsGroup() {
		m.Toggle(n.Name)
		return "", false
	}
	return n.Path, true
}

// current is the node under the cursor.
func (m *NavMenu) current() *NavNode {
	vis := m.Visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return nil
	}
	return vis[m.cursor].Node
}

func (m *NavMenu) moveCursorTo(target *NavNode) bool {
	for i, v := range m.Visible() {
		if v.Node == target {
			m.cursor = i
			return true
		}
	}
	return false
}
