package analytics

import (
	"strings"

	"finpulse/internal/core"
)

// CategoryTree indexes the user-defined category forest: an arena of nodes
// by id with a precomputed child index, so ancestry queries never rescan
// the whole collection. Parent links that form a cycle are tolerated; walks
// are bounded by the node count.
type CategoryTree struct {
	nodes    map[string]core.Category
	children map[string][]string
	byName   map[string]string
}

func NewCategoryTree(categories []core.Category) *CategoryTree {
	t := &CategoryTree{
		nodes:    make(map[string]core.Category, len(categories)),
		children: make(map[string][]string),
		byName:   make(map[string]string, len(categories)),
	}
	for _, c := range categories {
		t.nodes[c.ID] = c
		if c.ParentID != "" {
			t.children[c.ParentID] = append(t.children[c.ParentID], c.ID)
		}
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, taken := t.byName[key]; !taken && key != "" {
			t.byName[key] = c.ID
		}
	}
	return t
}

// IDByName resolves a category name case-insensitively. The first category
// registered under a name wins when names collide.
func (t *CategoryTree) IDByName(name string) (string, bool) {
	id, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// AncestryChain returns the ids from the given category up to its root,
// starting with the category itself. Unknown ids yield nil.
func (t *CategoryTree) AncestryChain(id string) []string {
	node, ok := t.nodes[id]
	if !ok {
		return nil
	}
	chain := []string{id}
	for steps := 0; node.ParentID != "" && steps < len(t.nodes); steps++ {
		parent, ok := t.nodes[node.ParentID]
		if !ok {
			break
		}
		chain = append(chain, parent.ID)
		node = parent
	}
	return chain
}

// IsDescendantOf reports whether child sits strictly below ancestor in the
// forest. A category is not its own descendant.
func (t *CategoryTree) IsDescendantOf(childID, ancestorID string) bool {
	if childID == ancestorID {
		return false
	}
	for _, id := range t.AncestryChain(childID) {
		if id == ancestorID && id != childID {
			return true
		}
	}
	return false
}

// Children returns the direct child ids of a category.
func (t *CategoryTree) Children(id string) []string {
	return t.children[id]
}

// Matches reports whether a transaction category falls under a budget
// category: equal names (case-insensitive, empty mapping to the fallback
// bucket) or a strict descendant in the forest. Unknown names only match
// by equality.
func (t *CategoryTree) Matches(txCategory, budgetCategory string) bool {
	txName := txCategory
	if strings.TrimSpace(txName) == "" {
		txName = core.FallbackCategory
	}
	if strings.EqualFold(strings.TrimSpace(txName), strings.TrimSpace(budgetCategory)) {
		return true
	}
	childID, ok := t.IDByName(txName)
	if !ok {
		return false
	}
	ancestorID, ok := t.IDByName(budgetCategory)
	if !ok {
		return false
	}
	return t.IsDescendantOf(childID, ancestorID)
}
