package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garyellow/programme-matcher/internal/traitcode"
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Compute RIASEC and work-value codes from scores",
	Long: `Computes the three-letter codes from component scores given as
comma-separated name=score pairs, e.g.

  matchctl code --riasec Investigative=9,Realistic=8,Conventional=7 \
                --work-values Achievement=9,Independence=8,Relationships=7`,
	RunE: runCode,
}

var (
	codeRIASEC     string
	codeWorkValues string
)

func init() {
	codeCmd.Flags().StringVar(&codeRIASEC, "riasec", "", "RIASEC scores as name=score pairs")
	codeCmd.Flags().StringVar(&codeWorkValues, "work-values", "", "Work-value scores as name=score pairs")
	rootCmd.AddCommand(codeCmd)
}

func runCode(cmd *cobra.Command, _ []string) error {
	riasec, err := parseScores(codeRIASEC)
	if err != nil {
		return fmt.Errorf("--riasec: %w", err)
	}
	workValues, err := parseScores(codeWorkValues)
	if err != nil {
		return fmt.Errorf("--work-values: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), map[string]string{
		"riasecCode":    traitcode.NormalizeCode(riasec, traitcode.RIASECToken),
		"workValueCode": traitcode.NormalizeCode(workValues, traitcode.WorkValueToken),
	})
}

// parseScores parses "name=score,name=score". A name without "=score"
// is kept with a missing score.
func parseScores(input string) ([]traitcode.ScoredComponent, error) {
	var out []traitcode.ScoredComponent
	for part := range strings.SplitSeq(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, raw, hasScore := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty component name in %q", part)
		}
		c := traitcode.ScoredComponent{Component: name}
		if hasScore {
			score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("score for %s: %w", name, err)
			}
			c.Score = &score
		}
		out = append(out, c)
	}
	return out, nil
}
