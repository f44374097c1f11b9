package main

import (
	"github.com/spf13/cobra"

	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/matcher"
	"github.com/garyellow/programme-matcher/internal/recommend"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match majors for a pair of trait codes",
	RunE:  runMatch,
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Recommend modules for a pair of trait codes",
	RunE:  runModules,
}

var filenameCmd = &cobra.Command{
	Use:   "filename MAJOR...",
	Short: "Print the question-bank filename of each major",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilename,
}

var (
	matchRIASEC     string
	matchWorkValue  string
	modulesPerMajor int
	modulesMajorCap int
)

func init() {
	for _, c := range []*cobra.Command{matchCmd, modulesCmd} {
		c.Flags().StringVarP(&matchRIASEC, "riasec-code", "r", "", "RIASEC code, e.g. IRC")
		c.Flags().StringVarP(&matchWorkValue, "work-value-code", "w", "", "Work-value code, e.g. AIR")
	}
	modulesCmd.Flags().IntVar(&modulesPerMajor, "per-major", recommend.DefaultModulesPerMajor, "Modules per major")
	modulesCmd.Flags().IntVar(&modulesMajorCap, "major-cap", recommend.DefaultMajorCap, "Maximum distinct majors considered")

	rootCmd.AddCommand(matchCmd, modulesCmd, filenameCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), matcher.New(store, nil).GetMatchingMajors(ctx, matchRIASEC, matchWorkValue))
}

func runModules(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	majors := matcher.New(store, nil).GetMatchingMajors(ctx, matchRIASEC, matchWorkValue)
	modules := recommend.New(store, nil, 0).FetchModuleRecommendations(ctx, majors,
		recommend.WithMajorCap(modulesMajorCap),
		recommend.WithModulesPerMajor(modulesPerMajor))

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"majors":  majors,
		"modules": modules,
	})
}

type filenameEntry struct {
	Major       string `json:"major"`
	Filename    string `json:"filename"`
	DisplayName string `json:"displayName"`
	Institution string `json:"institution,omitempty"`
}

func runFilename(cmd *cobra.Command, args []string) error {
	out := make([]filenameEntry, len(args))
	for i, major := range args {
		inst, _ := majorname.InstitutionSuffix(major)
		out[i] = filenameEntry{
			Major:       major,
			Filename:    majorname.SanitizeToFilename(major),
			DisplayName: majorname.DisplayName(major),
			Institution: string(inst),
		}
	}
	return printJSON(cmd.OutOrStdout(), out)
}
