package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/webszilla/work-zilla-explorer/internal/explorer"
	"github.com/webszilla/work-zilla-explorer/internal/protocol"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <folder-id> <file>...",
	Short: "Upload files into a folder",
	Long: `Upload one or more local files into a remote folder. Files go
through the sequential upload queue in the order given; a quota rejection
of one file does not stop the remaining ones.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	gw, cfg, err := setup()
	if err != nil {
		return err
	}
	ctx := context.Background()
	folderID := args[0]

	session := explorer.NewSession(gw, explorer.Scope{UserID: effectiveUser(cfg)}, explorer.Options{
		PageLimit:   cfg.PageLimit,
		SearchLimit: cfg.SearchLimit,
	})
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("load root: %w", err)
	}
	if folderID != session.RootID() {
		target := protocol.Entry{ID: folderID, Name: folderID, Kind: protocol.KindFolder}
		if err := session.Open(ctx, target); err != nil {
			return fmt.Errorf("open folder %s: %w", folderID, err)
		}
	}

	files := make([]explorer.UploadFile, 0, len(args)-1)
	handles := make([]*os.File, 0, len(args)-1)
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()
	sizes := make(map[string]int64)
	for _, path := range args[1:] {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		handles = append(handles, f)
		name := filepath.Base(path)
		sizes[name] = info.Size()
		files = append(files, explorer.UploadFile{Name: name, Size: info.Size(), Content: f})
	}

	if err := session.EnqueueUploads(files); err != nil {
		return err
	}
	for !uploadsDone(session) {
		time.Sleep(50 * time.Millisecond)
	}

	failed := 0
	tasks := session.Uploads()
	// The queue snapshot is newest first; report in submission order.
	for i := len(tasks) - 1; i >= 0; i-- {
		task := tasks[i]
		if task.Status == explorer.UploadStatusDone {
			fmt.Printf("✓ %s (%s)\n", task.Name, humanize.Bytes(uint64(sizes[task.Name])))
		} else {
			fmt.Printf("✗ %s: %s\n", task.Name, task.Err)
			failed++
		}
	}
	if session.LimitBanner() {
		fmt.Println("storage limit exceeded — the remaining quota is exhausted")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(files))
	}
	return nil
}

func uploadsDone(s *explorer.Session) bool {
	for _, task := range s.Uploads() {
		if task.Status == explorer.UploadStatusUploading {
			return false
		}
	}
	return true
}
