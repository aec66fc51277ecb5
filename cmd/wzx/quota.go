package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show storage and bandwidth usage",
	Args:  cobra.NoArgs,
	RunE:  runQuota,
}

func runQuota(cmd *cobra.Command, args []string) error {
	gw, cfg, err := setup()
	if err != nil {
		return err
	}

	st, err := gw.Status(context.Background(), effectiveUser(cfg))
	if err != nil {
		return err
	}

	gb := func(v float64) string { return humanize.CommafWithDigits(v, 1) + " GB" }
	allowed := func(total float64) string {
		if total == 0 {
			return "unlimited"
		}
		return gb(total)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "storage\t%s / %s\n", gb(st.UsedStorageGB), allowed(st.TotalAllowedStorageGB))
	fmt.Fprintf(w, "bandwidth\t%s / %s\n", gb(st.UsedBandwidthGB), allowed(st.TotalAllowedBandwidthGB))
	if st.IsBandwidthLimited {
		fmt.Fprintf(w, "\tbandwidth limit reached\n")
	}
	if st.AddonSlots > 0 {
		fmt.Fprintf(w, "addon slots\t%d\n", st.AddonSlots)
	}
	if st.TotalAllowedStorageGB > 0 && st.UsedStorageGB >= st.TotalAllowedStorageGB {
		fmt.Fprintf(w, "\tstorage limit reached — uploads will be rejected\n")
	}
	return w.Flush()
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List organization members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, _, err := setup()
		if err != nil {
			return err
		}
		users, err := gw.OrgUsers(context.Background())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Username, u.Email)
		}
		return w.Flush()
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List registered devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, cfg, err := setup()
		if err != nil {
			return err
		}
		devices, err := gw.OrgDevices(context.Background(), effectiveUser(cfg))
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, d := range devices {
			fmt.Fprintf(w, "%s\t%s\n", d.ID, d.Hostname)
		}
		return w.Flush()
	},
}
