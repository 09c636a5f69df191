package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"backup-lens/backups"
)

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	var search string
	var sortKey string
	var order string
	var group string
	var kind string
	var category string
	var verified string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Unify the backup feeds and print the filtered list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			feeds, err := backups.LoadFeeds(feedsFromFlags(cmd, cfg))
			if err != nil {
				return err
			}
			records := backups.Unify(feeds)
			records = backups.Filter(records, backups.Query{
				Search:   search,
				Kind:     kind,
				Category: category,
				Verified: verified,
			})
			desc := order != "asc"
			backups.Sort(records, sortKey, desc)

			var groups []backups.Group
			switch group {
			case "day":
				groups = backups.GroupByDay(records, sortKey, desc, time.Now())
			case "guest":
				groups = backups.GroupByGuest(records)
			case "none", "":
				groups = []backups.Group{{Records: records}}
			default:
				return fmt.Errorf("unsupported --group: %s", group)
			}

			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				if group == "none" || group == "" {
					return enc.Encode(records)
				}
				return enc.Encode(groups)
			case "table", "":
				return renderGroups(stdout, groups)
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}

	addFeedFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text (pbs:<instance>:<datastore>:<namespace>, field:value, size>10GB, free text)")
	cmd.Flags().StringVar(&sortKey, "sort", backups.SortByTime, "Sort key: time|size|vmid|name|node|storage|datastore|namespace|category|kind|verified")
	cmd.Flags().StringVar(&order, "order", "desc", "Sort order: asc|desc")
	cmd.Flags().StringVar(&group, "group", "none", "Grouping: none|day|guest")
	cmd.Flags().StringVar(&kind, "kind", "all", "Entity kind filter: all|VM|Container|Host")
	cmd.Flags().StringVar(&category, "category", "all", "Category filter: all|snapshot|local|remote")
	cmd.Flags().StringVar(&verified, "verified", "all", "Verification filter: all|verified|unverified|unknown")
	return cmd
}

func renderGroups(w io.Writer, groups []backups.Group) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range groups {
		if g.Label != "" {
			fmt.Fprintf(tw, "%s\n", g.Label)
		}
		fmt.Fprintln(tw, "CATEGORY\tKIND\tVMID\tNAME\tNODE\tINSTANCE\tTIME\tSIZE\tLOCATION\tVERIFIED")
		for _, r := range g.Records {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Category, r.Kind, r.VMID, r.Name,
				orDash(r.Node), r.Instance,
				formatTime(r.Time), formatSize(r.Size),
				formatLocation(r), formatVerified(r.Verified))
		}
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

func formatSize(n *int64) string {
	if n == nil {
		return "-"
	}
	return humanize.IBytes(uint64(*n))
}

func formatLocation(r backups.UnifiedBackup) string {
	if r.Datastore != "" {
		return r.Datastore + "/" + r.Namespace
	}
	return orDash(r.Storage)
}

func formatVerified(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "yes"
	default:
		return "no"
	}
}
