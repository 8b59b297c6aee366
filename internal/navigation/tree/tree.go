// Package tree builds the navigation forest out of the flat category list.
//
// The forest is at most three levels deep: root, child and grandchild. Every level is
// sorted by name with a locale-aware collator, and nodes carry an icon resolved from
// their name. Records that cannot be placed (orphans, or records hanging below a
// grandchild) are left out and counted in Result.Dropped.
package tree

import (
	"sort"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Result struct {
	Roots []model.CategoryNode
	// Dropped counts the non-root records that were not placed anywhere in Roots.
	Dropped int
}

type Builder struct {
	icons *IconResolver
	lang  language.Tag
}

type Option func(*Builder)

// WithoutIcons leaves every node's Icon empty.
func WithoutIcons() Option {
	return func(b *Builder) {
		b.icons = nil
	}
}

func WithIconResolver(r *IconResolver) Option {
	return func(b *Builder) {
		b.icons = r
	}
}

// WithLanguage selects the collation used for sorting names. Defaults to English.
func WithLanguage(tag language.Tag) Option {
	return func(b *Builder) {
		b.lang = tag
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		icons: DefaultIconResolver(),
		lang:  language.English,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// BuildCategoryTree builds the forest with the default builder and discards the diagnostics.
func BuildCategoryTree(records []model.Category) []model.CategoryNode {
	return defaultBuilder.Build(records).Roots
}

// Build is pure: it never mutates records and two calls on equal input give equal output.
func (b *Builder) Build(records []model.Category) Result {
	roots := make([]model.CategoryNode, 0)
	if len(records) == 0 {
		return Result{Roots: roots}
	}

	// byParent keeps input order per parent id; sorting happens once the levels are attached.
	byParent := make(map[string][]int)
	nonRoots := 0
	for i := range records {
		rec := &records[i]
		if rec.IsRoot() {
			roots = append(roots, b.node(rec))
			continue
		}
		byParent[rec.Parent.ID] = append(byParent[rec.Parent.ID], i)
		nonRoots++
	}

	placed := make(map[int]struct{}, nonRoots)
	attach := func(parentID string) []model.CategoryNode {
		idx := byParent[parentID]
		nodes := make([]model.CategoryNode, 0, len(idx))
		for _, i := range idx {
			placed[i] = struct{}{}
			nodes = append(nodes, b.node(&records[i]))
		}
		return nodes
	}

	for r := range roots {
		children := attach(roots[r].ID)
		for c := range children {
			// Grandchildren are leaves; anything parented to them is never resolved.
			children[c].Subcategories = attach(children[c].ID)
		}
		roots[r].Subcategories = children
	}

	col := collate.New(b.lang)
	sortByName(col, roots)
	for r := range roots {
		sortByName(col, roots[r].Subcategories)
		for c := range roots[r].Subcategories {
			sortByName(col, roots[r].Subcategories[c].Subcategories)
		}
	}

	return Result{
		Roots:   roots,
		Dropped: nonRoots - len(placed),
	}
}

func (b *Builder) node(rec *model.Category) model.CategoryNode {
	n := model.CategoryNode{
		Category:      *rec,
		Subcategories: []model.CategoryNode{},
	}
	if rec.Parent != nil {
		parent := *rec.Parent
		n.Parent = &parent
	}
	if rec.Image != nil {
		image := *rec.Image
		n.Image = &image
	}
	if b.icons != nil {
		n.Icon = b.icons.Resolve(rec.Name)
	}
	return n
}

func sortByName(col *collate.Collator, nodes []model.CategoryNode) {
	if len(nodes) < 2 {
		return
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return col.CompareString(nodes[i].Name, nodes[j].Name) < 0
	})
}
