package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var libraryOpts struct {
	field string
	stats bool
	limit int
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List the library the panel browses",
	Long: `List the distinct values of a tag in the MPD database, as shown on the
panel's library screen.

Examples:
  # Album artists (the default)
  nowplaying library

  # Genres, with database totals
  nowplaying library --field genre --stats`,
	RunE: runLibrary,
}

func init() {
	rootCmd.AddCommand(libraryCmd)

	libraryCmd.Flags().StringVar(&libraryOpts.field, "field", "",
		"Tag to list (default from the daemon config, usually albumartist)")
	libraryCmd.Flags().BoolVar(&libraryOpts.stats, "stats", false,
		"Print database totals before the list")
	libraryCmd.Flags().IntVarP(&libraryOpts.limit, "limit", "n", 0,
		"Maximum number of values to print (0 = all)")
}

func runLibrary(cmd *cobra.Command, args []string) error {
	field := libraryOpts.field
	if field == "" {
		dcfg, err := loadDaemonConfig()
		if err != nil {
			return err
		}
		field = dcfg.Library.Field
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if libraryOpts.stats {
		stats, err := svc.Stats()
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		printStats(stats)
	}

	type listResult struct {
		values []string
		err    error
	}
	done := make(chan listResult, 1)
	svc.List(field, func(values []string, err error) {
		done <- listResult{values, err}
	})
	res := <-done
	if res.err != nil {
		return res.err
	}

	values := res.values
	if libraryOpts.limit > 0 && len(values) > libraryOpts.limit {
		values = values[:libraryOpts.limit]
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		fmt.Println(v)
	}
	if len(values) < len(res.values) {
		fmt.Printf("... and %s more\n", humanize.Comma(int64(len(res.values)-len(values))))
	}
	return nil
}

// printStats writes the database totals from a "stats" response.
func printStats(stats map[string]string) {
	count := func(key string) string {
		n, err := strconv.ParseInt(stats[key], 10, 64)
		if err != nil {
			return "?"
		}
		return humanize.Comma(n)
	}

	fmt.Printf("%s artists, %s albums, %s songs\n", count("artists"), count("albums"), count("songs"))
	if secs, err := strconv.ParseInt(stats["db_playtime"], 10, 64); err == nil {
		fmt.Printf("total playtime: %s\n", time.Duration(secs)*time.Second)
	}
	if ts, err := strconv.ParseInt(stats["db_update"], 10, 64); err == nil {
		fmt.Printf("database updated %s\n", humanize.Time(time.Unix(ts, 0)))
	}
	fmt.Println()
}
