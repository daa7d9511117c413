package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/pager"
	"github.com/maxviazov/tracker-dashboard/internal/render"
)

type pageOptions struct {
	page    int
	limit   int
	columns []string
}

func newPageCmd(root *rootOptions) *cobra.Command {
	opts := &pageOptions{}
	cmd := &cobra.Command{
		Use:   "page <tracker>",
		Short: "Print one page of a tracker's rows",
		Long: `Print one page of a tracker's rows the way the dashboard shows them.
A page past the end shows the last page that has rows. Logs in with
api.email and api.password from the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if opts.limit < 1 {
				opts.limit = cfg.View.PageLimit
			}
			log, err := cliLogger(cfg)
			if err != nil {
				return err
			}
			client, err := api.New(cfg.API.BaseURL, cfg.API.Timeout, log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if cfg.API.Email != "" {
				resp, err := client.Login(ctx, model.Credentials{Email: cfg.API.Email, Password: cfg.API.Password})
				if err != nil {
					return err
				}
				if !resp.OK() {
					return fmt.Errorf("login as %s rejected", cfg.API.Email)
				}
			}
			return printPage(ctx, cmd.OutOrStdout(), client, args[0], opts)
		},
	}
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "1-based page number")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "rows per page, defaults to view.page_limit")
	cmd.Flags().StringSliceVarP(&opts.columns, "columns", "c", nil, "columns to show, defaults to all")
	return cmd
}

// pageSource is what printPage needs from the backend.
type pageSource interface {
	Columns(ctx context.Context, object string) ([]model.Column, error)
	Select(ctx context.Context, q api.SelectQuery) ([]model.Row, error)
	Trackers(ctx context.Context) ([]model.TrackerInfo, error)
}

// lastPage is the 1-based last page of object from the trackers listing.
// ok is false when the listing does not name object.
func lastPage(ctx context.Context, src pageSource, object string, limit int) (int, bool, error) {
	list, err := src.Trackers(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("trackers: %w", err)
	}
	slug := model.Slug(object)
	for _, t := range list {
		if t.Name == object || t.API == slug {
			if t.Count == 0 {
				return 1, true, nil
			}
			return (t.Count-1)/limit + 1, true, nil
		}
	}
	return 0, false, nil
}

func printPage(ctx context.Context, w io.Writer, src pageSource, object string, opts *pageOptions) error {
	columns := opts.columns
	if len(columns) == 0 {
		cols, err := src.Columns(ctx, object)
		if err != nil {
			return fmt.Errorf("columns of %s: %w", object, err)
		}
		for _, c := range cols {
			columns = append(columns, c.Name)
		}
	}
	if len(columns) == 0 {
		return fmt.Errorf("tracker %s has no columns", object)
	}

	// Jumping past the end would step back one fetch at a time, so start
	// from the last page the row count allows. Rows removed since the count
	// was taken are still handled by stepping back.
	page := opts.page
	last, known, err := lastPage(ctx, src, object, opts.limit)
	if err != nil {
		return err
	}
	if known && page > last {
		page = last
	}

	tbl := render.NewTable(render.Renderer{Columns: columns}, opts.limit)
	ctl := pager.New(opts.limit, tbl)
	req := ctl.Refetch()
	for i := 1; i < page; i++ {
		if next, ok := ctl.Next(); ok {
			req = next
		}
	}
	fetch := pager.FetcherFunc(func(ctx context.Context, offset, limit int) ([]model.Row, error) {
		return src.Select(ctx, api.SelectQuery{Object: object, Columns: columns, Limit: limit, Offset: offset})
	})
	if err := ctl.Do(ctx, fetch, req); err != nil {
		return err
	}

	fmt.Fprintln(w, renderPlain(tbl))
	st := ctl.State()
	var more []string
	if st.PrevEnabled {
		more = append(more, "previous")
	}
	if st.NextEnabled {
		more = append(more, "next")
	}
	footer := fmt.Sprintf("page %d of %s", ctl.Page(), object)
	if len(more) > 0 {
		footer += " (" + strings.Join(more, ", ") + " available)"
	}
	_, err = fmt.Fprintln(w, footer)
	return err
}

// renderPlain draws every slot, blank ones included, without colors.
func renderPlain(t *render.Table) string {
	rows := make([][]string, t.Len())
	for i := range rows {
		row := make([]string, len(t.Columns()))
		for j, c := range t.Slot(i) {
			row[j] = c.Text
		}
		rows[i] = row
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Columns()...).
		Rows(rows...).
		StyleFunc(func(_, _ int) lipgloss.Style { return lipgloss.NewStyle().Padding(0, 1) }).
		String()
}
