package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/client"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/tree"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	baseURL  string
	path     string
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "navctl",
		Short:         "Inspect the storefront navigation tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", envOr("UPSTREAM_BASE_URL", "http://localhost:8080"), "catalog origin base URL")
	flags.StringVar(&opts.path, "path", envOr("UPSTREAM_CATEGORIES_PATH", client.DefaultPath), "categories path on the origin")
	flags.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "per-attempt timeout")
	flags.IntVar(&opts.attempts, "attempts", client.DefaultMaxAttempts, "maximum fetch attempts")
	flags.DurationVar(&opts.backoff, "backoff", client.DefaultBackoffStep, "backoff step, multiplied by the attempt number")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log fetch attempts to stderr")

	cmd.AddCommand(newTreeCmd(opts), newLookupCmd(opts))
	return cmd
}

func (o *rootOptions) fetch(cmd *cobra.Command) (dto.FetchResult, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	log := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     true,
		Encoding:          "console",
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
	})
	defer log.Sync()

	c, err := client.NewClient(client.Config{
		BaseURL:     o.baseURL,
		Path:        o.path,
		Timeout:     o.timeout,
		MaxAttempts: o.attempts,
		BackoffStep: o.backoff,
	}, &http.Client{}, log)
	if err != nil {
		return dto.FetchResult{}, err
	}
	return c.Fetch(cmd.Context()), nil
}

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		depth  int
		icons  bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Fetch categories and print the navigation tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 1 || depth > 3 {
				return fmt.Errorf("depth must be between 1 and 3, got %d", depth)
			}
			res, err := opts.fetch(cmd)
			if err != nil {
				return err
			}
			if res.Degraded {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: upstream unavailable after %d attempts: %v\n", res.Attempts, res.Err)
			}

			var builderOpts []tree.Option
			if !icons {
				builderOpts = append(builderOpts, tree.WithoutIcons())
			}
			built := tree.NewBuilder(builderOpts...).Build(res.Categories)
			if built.Dropped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: %d categories could not be placed in the tree\n", built.Dropped)
			}

			return render(cmd.OutOrStdout(), output, truncate(dto.ToNodeResponses(built.Roots), depth))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	cmd.Flags().IntVar(&depth, "depth", 3, "levels to print (1-3)")
	cmd.Flags().BoolVar(&icons, "icons", true, "annotate nodes with icons")
	return cmd
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var (
		id     string
		name   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find one category in the navigation tree by id or name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (id == "") == (name == "") {
				return errors.New("exactly one of --id or --name is required")
			}
			res, err := opts.fetch(cmd)
			if err != nil {
				return err
			}

			roots := tree.BuildCategoryTree(res.Categories)
			node, ok := tree.FindNode(roots, func(n *model.CategoryNode) bool {
				if id != "" {
					return n.ID == id
				}
				return n.Name == name
			})
			if !ok {
				return errors.New("category not found in navigation tree")
			}
			return render(cmd.OutOrStdout(), output, []dto.NodeResponse{dto.ToNodeResponse(node)})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "category id")
	cmd.Flags().StringVar(&name, "name", "", "exact category name")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: text, json or yaml")
	return cmd
}
