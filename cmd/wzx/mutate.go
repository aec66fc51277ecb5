package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// The mutation commands act on files by default; --folder switches the
// target type. The server distinguishes the two on separate endpoints.
var mutateFolder bool

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <parent-id> <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, cfg, err := setup()
		if err != nil {
			return err
		}
		if err := gw.CreateFolder(context.Background(), args[1], args[0], effectiveUser(cfg)); err != nil {
			return err
		}
		fmt.Printf("created %q under %s\n", args[1], args[0])
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a file (or a folder with --folder)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, cfg, err := setup()
		if err != nil {
			return err
		}
		ctx := context.Background()
		userID := effectiveUser(cfg)
		if mutateFolder {
			err = gw.DeleteFolder(ctx, args[0], userID)
		} else {
			err = gw.DeleteFile(ctx, args[0], userID)
		}
		if err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <id> <target-folder-id>",
	Short: "Move a file (or a folder with --folder) into another folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, cfg, err := setup()
		if err != nil {
			return err
		}
		ctx := context.Background()
		userID := effectiveUser(cfg)
		if mutateFolder {
			err = gw.MoveFolder(ctx, args[0], args[1], userID)
		} else {
			err = gw.MoveFile(ctx, args[0], args[1], userID)
		}
		if err != nil {
			return err
		}
		fmt.Printf("moved %s → %s\n", args[0], args[1])
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename a file (or a folder with --folder)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, cfg, err := setup()
		if err != nil {
			return err
		}
		ctx := context.Background()
		userID := effectiveUser(cfg)
		if mutateFolder {
			err = gw.RenameFolder(ctx, args[0], args[1], userID)
		} else {
			err = gw.RenameFile(ctx, args[0], args[1], userID)
		}
		if err != nil {
			return err
		}
		fmt.Printf("renamed %s → %q\n", args[0], args[1])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{rmCmd, mvCmd, renameCmd} {
		c.Flags().BoolVar(&mutateFolder, "folder", false, "Target is a folder, not a file")
	}
}
