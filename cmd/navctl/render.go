package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/navigation/dto"
	"gopkg.in/yaml.v3"
)

func render(w io.Writer, format string, nodes []dto.NodeResponse) error {
	switch format {
	case "text":
		if len(nodes) == 0 {
			_, err := fmt.Fprintln(w, "(no categories)")
			return err
		}
		return writeText(w, nodes, 0)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nodes); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, nodes []dto.NodeResponse, level int) error {
	indent := strings.Repeat("  ", level)
	for _, n := range nodes {
		line := n.Name
		if n.Icon != "" {
			line = n.Icon + " " + line
		}
		if _, err := fmt.Fprintf(w, "%s%s (%s)\n", indent, line, n.ID); err != nil {
			return err
		}
		if err := writeText(w, n.Children, level+1); err != nil {
			return err
		}
	}
	return nil
}

// truncate keeps the first depth levels of the forest.
func truncate(nodes []dto.NodeResponse, depth int) []dto.NodeResponse {
	out := make([]dto.NodeResponse, len(nodes))
	for i, n := range nodes {
		out[i] = n
		if depth <= 1 {
			out[i].Children = []dto.NodeResponse{}
			continue
		}
		out[i].Children = truncate(n.Children, depth-1)
	}
	return out
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
