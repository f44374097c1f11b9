package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyellow/programme-matcher/internal/majorname"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Keyword search across module catalogs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

var (
	searchInstitution string
	searchLimit       int
)

func init() {
	searchCmd.Flags().StringVarP(&searchInstitution, "institution", "i", "", "Restrict to one institution (NUS, NTU, SMU)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	var inst majorname.Institution
	if searchInstitution != "" {
		var ok bool
		if inst, ok = majorname.ParseInstitution(searchInstitution); !ok {
			return fmt.Errorf("unknown institution %q", searchInstitution)
		}
	}
	var query string
	if len(args) == 1 {
		query = args[0]
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	idx, err := store.SearchIndex(ctx)
	if err != nil {
		return fmt.Errorf("load search index: %w", err)
	}
	results, err := idx.Search(query, inst, searchLimit)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), results)
}
