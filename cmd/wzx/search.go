package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search filenames across the account",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (0 = configured default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	gw, cfg, err := setup()
	if err != nil {
		return err
	}
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.SearchLimit
	}

	resp, err := gw.Search(context.Background(), args[0], limit, effectiveUser(cfg))
	if err != nil {
		return err
	}
	if len(resp.Items) == 0 {
		fmt.Println("no matches")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range resp.Items {
		where := make([]string, len(r.FolderPath))
		for i, seg := range r.FolderPath {
			where[i] = seg.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.FileID, r.Filename, humanize.Bytes(uint64(r.Size)), strings.Join(where, "/"))
	}
	return w.Flush()
}
