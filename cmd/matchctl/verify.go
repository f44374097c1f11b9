package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/refdata"
	"github.com/garyellow/programme-matcher/internal/sliceutil"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check reference data consistency",
	Long: `Loads every reference document and cross-checks them: each major named in
the occupation mappings should carry a known institution, map to at least
one course prefix, and have a question bank.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

type verifyResult struct {
	name    string
	passed  bool
	message string
}

func runVerify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	results := verifyReference(ctx, store)
	if failed := printVerifyResults(cmd.OutOrStdout(), results); failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	return nil
}

func printVerifyResults(w io.Writer, results []verifyResult) int {
	passed, failed := 0, 0
	for _, r := range results {
		status := "FAIL"
		if r.passed {
			status = "ok"
			passed++
		} else {
			failed++
		}
		_, _ = fmt.Fprintf(w, "%-4s %s: %s\n", status, r.name, r.message)
	}
	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d failed\n", passed, failed)
	return failed
}

// verifyReference runs every consistency check. A document that fails to
// load short-circuits the checks that depend on it.
func verifyReference(ctx context.Context, store *refdata.Store) []verifyResult {
	var results []verifyResult

	records, err := store.Occupations(ctx)
	if err != nil {
		return append(results, verifyResult{name: "occupations", message: err.Error()})
	}
	results = append(results, verifyResult{name: "occupations", passed: true, message: fmt.Sprintf("%d records", len(records))})

	prefixes, err := store.PrefixMaps(ctx)
	if err != nil {
		return append(results, verifyResult{name: "prefix maps", message: err.Error()})
	}
	results = append(results, verifyResult{name: "prefix maps", passed: true, message: "loaded"})

	for _, inst := range majorname.Institutions {
		modules, err := store.Catalog(ctx, inst)
		if err != nil {
			results = append(results, verifyResult{name: "catalog " + string(inst), message: err.Error()})
			continue
		}
		results = append(results, verifyResult{name: "catalog " + string(inst), passed: true, message: fmt.Sprintf("%d modules", len(modules))})
	}

	var majors []string
	for _, r := range records {
		majors = append(majors, r.Majors...)
	}
	majors = sliceutil.Unique(majors)
	slices.Sort(majors)

	for _, major := range majors {
		inst, ok := majorname.InstitutionSuffix(major)
		if !ok {
			results = append(results, verifyResult{name: major, message: "no recognised institution suffix"})
			continue
		}
		if len(prefixes.PrefixesForMajor(inst, majorname.StripInstitution(major))) == 0 {
			results = append(results, verifyResult{name: major, message: "no course prefixes in " + string(inst) + " table"})
			continue
		}
		filename := majorname.SanitizeToFilename(major)
		if _, err := store.QuestionBank(ctx, filename); err != nil {
			msg := err.Error()
			if apperrors.IsNotFound(err) {
				msg = "missing question bank " + filename
			}
			results = append(results, verifyResult{name: major, message: msg})
			continue
		}
		results = append(results, verifyResult{name: major, passed: true, message: filename})
	}
	return results
}
