package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/pagination"
)

type pagesOptions struct {
	total   int
	perPage int
	page    int
	delta   int
	output  string
}

type pageWindow struct {
	Page       int                `json:"page" yaml:"page"`
	TotalPages int                `json:"total_pages" yaml:"total_pages"`
	Pages      []pagination.Token `json:"pages" yaml:"pages"`
}

func newPagesCmd() *cobra.Command {
	opts := &pagesOptions{}

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Render the page bar for a result set",
		Long: `Render the page bar for a result set.

--delta moves from --page and stops at the first or last page.

Example:
  fleetctl pages --total 200 --per-page 10 --page 10
  1 ... 9 [10] 11 ... 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := computePageWindow(opts)
			if err != nil {
				return err
			}
			return writePageWindow(cmd.OutOrStdout(), window, opts.output)
		},
	}

	cmd.Flags().IntVar(&opts.total, "total", 0, "Total number of items")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 10, "Items per page")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Current page")
	cmd.Flags().IntVar(&opts.delta, "delta", 0, "Pages to move from the current page")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}

func computePageWindow(opts *pagesOptions) (pageWindow, error) {
	window, err := pagination.New(opts.total, opts.perPage)
	if err != nil {
		return pageWindow{}, services.ErrInvalidPagination.WithInternal(err)
	}

	page := window.Clamp(opts.page)
	if opts.delta != 0 && window.TotalPages() > 0 {
		page = pagination.ClampNavigate(opts.page, opts.delta, window.TotalPages())
	}

	return pageWindow{
		Page:       page,
		TotalPages: window.TotalPages(),
		Pages:      window.Tokens(page),
	}, nil
}

func writePageWindow(w io.Writer, window pageWindow, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		parts := make([]string, 0, len(window.Pages))
		for _, token := range window.Pages {
			if !token.IsEllipsis() && token.Number() == window.Page {
				parts = append(parts, "["+token.String()+"]")
				continue
			}
			parts = append(parts, token.String())
		}
		_, err := fmt.Fprintln(w, strings.Join(parts, " "))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(window)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(window); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
