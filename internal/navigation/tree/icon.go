package tree

import "strings"

const DefaultIcon = "📦"

// IconRule maps a case-insensitive substring of a category name to a glyph.
type IconRule struct {
	Keyword string
	Glyph   string
}

// IconResolver resolves an exact name first, then the first matching rule in order,
// then the fallback glyph. It is read-only after construction.
type IconResolver struct {
	exact    map[string]string
	rules    []IconRule
	fallback string
}

func NewIconResolver(exact map[string]string, rules []IconRule, fallback string) *IconResolver {
	r := &IconResolver{
		exact:    make(map[string]string, len(exact)),
		rules:    make([]IconRule, 0, len(rules)),
		fallback: fallback,
	}
	for name, glyph := range exact {
		r.exact[name] = glyph
	}
	for _, rule := range rules {
		if rule.Keyword == "" {
			continue
		}
		r.rules = append(r.rules, IconRule{Keyword: strings.ToLower(rule.Keyword), Glyph: rule.Glyph})
	}
	return r
}

var defaultExactIcons = map[string]string{
	"Gaming PCs":    "🎮",
	"Laptops":       "💻",
	"Smartphones":   "📱",
	"Cameras":       "📷",
	"Audio":         "🎧",
	"Wearables":     "⌚",
	"Drones":        "🚁",
	"Accessories":   "🔌",
	"Electronics":   "💻",
	"Fashion":       "👕",
	"Home & Living": "🏠",
	"Sports":        "⚽",
	"Books":         "📚",
	"Toys":          "🧸",
	"Beauty":        "💄",
	"Automotive":    "🚗",
}

// Order matters: "Console Games" resolves through "game" before "console".
var defaultIconRules = []IconRule{
	{Keyword: "game", Glyph: "🎮"},
	{Keyword: "console", Glyph: "🕹️"},
	{Keyword: "toy", Glyph: "🧸"},
	{Keyword: "accessory", Glyph: "🎧"},
	{Keyword: "collect", Glyph: "🏆"},
	{Keyword: "card", Glyph: "🃏"},
	{Keyword: "board", Glyph: "♟️"},
	{Keyword: "action", Glyph: "🦸"},
	{Keyword: "remote", Glyph: "🚗"},
	{Keyword: "educational", Glyph: "📚"},
}

func DefaultIconResolver() *IconResolver {
	return NewIconResolver(defaultExactIcons, defaultIconRules, DefaultIcon)
}

func (r *IconResolver) Resolve(name string) string {
	if glyph, ok := r.exact[name]; ok {
		return glyph
	}
	lower := strings.ToLower(name)
	for _, rule := range r.rules {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Glyph
		}
	}
	return r.fallback
}
