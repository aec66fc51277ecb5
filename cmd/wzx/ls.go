package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

var lsCmd = &cobra.Command{
	Use:   "ls [folder-id]",
	Short: "List a folder (the root when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLs,
}

var lsAll bool

func init() {
	lsCmd.Flags().BoolVarP(&lsAll, "all", "a", false, "Fetch every page, not just the first")
}

func runLs(cmd *cobra.Command, args []string) error {
	gw, cfg, err := setup()
	if err != nil {
		return err
	}
	ctx := context.Background()
	userID := effectiveUser(cfg)

	var folderID string
	var items []protocol.Entry
	var page protocol.Pagination

	if len(args) == 0 {
		root, err := gw.Root(ctx, userID)
		if err != nil {
			return err
		}
		folderID, items, page = root.FolderID, root.Items, root.Pagination
	} else {
		folderID = args[0]
		resp, err := gw.ListFolder(ctx, folderID, cfg.PageLimit, 0, userID)
		if err != nil {
			return err
		}
		items, page = resp.Items, resp.Pagination
	}

	total := page.TotalFolders + page.TotalFiles
	for lsAll && len(items) < total {
		resp, err := gw.ListFolder(ctx, folderID, cfg.PageLimit, len(items), userID)
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			break
		}
		items = append(items, resp.Items...)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, e := range items {
		if e.IsFolder() {
			fmt.Fprintf(w, "%s\t%s/\t-\n", e.ID, e.Name)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, humanize.Bytes(uint64(e.SizeBytes)))
		}
	}
	w.Flush()

	if !lsAll && len(items) < total {
		fmt.Printf("… %d of %d entries (use --all)\n", len(items), total)
	}
	return nil
}
