package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/gigscope/gigscope/pkg/filter"
	"github.com/gigscope/gigscope/pkg/rank"
	"github.com/spf13/cobra"
)

// browseCmd implements: gigscope browse
//
//	--search string     Free-text match on title, description, venue, city, artists
//	--category string   Category tag or "all"
//	--city string       City or "all"
//	--status string     Comma-separated statuses or "all" (default: published)
//	--sort string       Sort key
//	--from string       Date cutoff (YYYY-MM-DD), defaults to today
//	--include-past      Disable the date cutoff
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Fetch, filter and list events and competitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown command: '%s'. See 'gigscope browse --help'", args[0])
		}

		outputFlags, _ := rootCmd.PersistentFlags().GetString("output")
		delimiter, _ := rootCmd.PersistentFlags().GetString("delimiter")
		search, _ := cmd.Flags().GetString("search")
		category, _ := cmd.Flags().GetString("category")
		city, _ := cmd.Flags().GetString("city")
		statuses, _ := cmd.Flags().GetString("status")
		sortKey, _ := cmd.Flags().GetString("sort")
		from, _ := cmd.Flags().GetString("from")
		includePast, _ := cmd.Flags().GetBool("include-past")

		if !rank.Supported(sortKey) {
			return fmt.Errorf("unknown sort key %q, available: %s", sortKey, strings.Join(rank.Keys(), ", "))
		}

		criteria := filter.Criteria{
			SearchText:  search,
			Category:    category,
			City:        city,
			Statuses:    utils.SplitList(statuses),
			IncludePast: includePast,
		}
		if from != "" {
			cutoff, err := time.ParseInLocation("2006-01-02", from, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --from date %q: %w", from, err)
			}
			criteria.Cutoff = cutoff
		}

		c, err := buildCatalog(cmd, buildNotifier(), nil)
		if err != nil {
			return err
		}
		if out := c.Refresh(cmd.Context()); out.Err != nil {
			return out.Err
		}

		for _, it := range c.View(criteria, sortKey, time.Now()) {
			line, err := catalog.FormatLine(it, outputFlags, delimiter)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().String("search", "", "Free-text search")
	browseCmd.Flags().String("category", filter.All, "Category to show, or \"all\"")
	browseCmd.Flags().String("city", filter.All, "City to show, or \"all\"")
	browseCmd.Flags().String("status", "", "Comma-separated statuses to show, or \"all\" (default published)")
	browseCmd.Flags().String("sort", rank.Recency, "Sort key. Available: "+strings.Join(rank.Keys(), ", "))
	browseCmd.Flags().String("from", "", "Only show items on or after this date (YYYY-MM-DD, default today)")
	browseCmd.Flags().Bool("include-past", false, "Include items scheduled before the cutoff")
}
