package dto

import "github.com/fekuna/omnipos-storefront-service/internal/model"

// FetchResult is what one fetch cycle against the catalog origin produced.
type FetchResult struct {
	Categories []model.Category
	Attempts   int
	// Err is the last attempt's error. It is nil when an attempt succeeded.
	Err error
	// Degraded is set when every attempt failed and Categories is the empty fallback.
	Degraded bool
}

type CategoryTree struct {
	Roots    []model.CategoryNode
	Dropped  int
	Degraded bool
}

// NodeResponse is the subset of a node the storefront menus render.
type NodeResponse struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description,omitempty"`
	Icon        string         `json:"icon" yaml:"icon,omitempty"`
	Children    []NodeResponse `json:"children" yaml:"children,omitempty"`
}

func ToNodeResponses(nodes []model.CategoryNode) []NodeResponse {
	out := make([]NodeResponse, len(nodes))
	for i := range nodes {
		out[i] = ToNodeResponse(&nodes[i])
	}
	return out
}

func ToNodeResponse(n *model.CategoryNode) NodeResponse {
	return NodeResponse{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
		Icon:        n.Icon,
		Children:    ToNodeResponses(n.Subcategories),
	}
}
