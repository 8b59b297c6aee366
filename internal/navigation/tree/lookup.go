package tree

import "github.com/fekuna/omnipos-storefront-service/internal/model"

// RootCategories returns the records without a parent, in input order.
func RootCategories(records []model.Category) []model.Category {
	roots := make([]model.Category, 0)
	for _, c := range records {
		if c.IsRoot() {
			roots = append(roots, c)
		}
	}
	return roots
}

// SubcategoriesByParentID returns the records directly parented to parentID, in input order.
func SubcategoriesByParentID(records []model.Category, parentID string) []model.Category {
	subs := make([]model.Category, 0)
	for _, c := range records {
		if c.Parent != nil && c.Parent.ID == parentID {
			subs = append(subs, c)
		}
	}
	return subs
}

func CategoryByID(records []model.Category, id string) (model.Category, bool) {
	for _, c := range records {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// CategoryByName matches the name exactly; the first match wins since names are not unique.
func CategoryByName(records []model.Category, name string) (model.Category, bool) {
	for _, c := range records {
		if c.Name == name {
			return c, true
		}
	}
	return model.Category{}, false
}

// FindNode walks the forest depth-first in display order.
func FindNode(roots []model.CategoryNode, match func(*model.CategoryNode) bool) (*model.CategoryNode, bool) {
	for i := range roots {
		if match(&roots[i]) {
			return &roots[i], true
		}
		if n, ok := FindNode(roots[i].Subcategories, match); ok {
			return n, true
		}
	}
	return nil, false
}

// CountNodes returns the number of nodes reachable in the forest.
func CountNodes(roots []model.CategoryNode) int {
	n := len(roots)
	for i := range roots {
		n += CountNodes(roots[i].Subcategories)
	}
	return n
}
