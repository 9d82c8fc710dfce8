package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/risk-cli/internal/model"
	"github.com/sells-group/risk-cli/internal/registry"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the reference registries",
}

var searchNatureCmd = &cobra.Command{
	Use:   "nature <text>",
	Short: "Search the legal-entity registry and keyword table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matcher := registry.NewMatcher(ref)
		query := strings.Join(args, " ")

		results := matcher.SearchNature(query)
		if len(results) == 0 {
			cmd.Println("no match: select a manual category")
			return nil
		}
		for _, s := range results {
			if s.IsClientRegistry {
				cmd.Printf("%s [client registry, select level manually]\n", s.Name)
				continue
			}
			cmd.Printf("%s [level %d] %s\n", s.Name, int(s.Level), s.Descriptor)
		}

		if lvl, ok := matcher.DetectNatureLevel(query); ok {
			cmd.Printf("auto-detected level: %d (%s)\n", int(lvl), lvl)
		}
		return nil
	},
}

var searchLocationCmd = &cobra.Command{
	Use:   "location <text>",
	Short: "Search the province and country risk tables",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matcher := registry.NewMatcher(ref)
		query := strings.Join(args, " ")

		results := matcher.SearchLocation(query)
		if len(results) == 0 {
			cmd.Println("no match: enter the level manually (1-4)")
			return nil
		}
		for _, s := range results {
			cmd.Printf("%s [level %d - %s]\n", s.Name, int(s.Level), s.Level)
		}

		if lvl := matcher.LevelOf(query); lvl != model.LevelUnset {
			cmd.Printf("exact level: %d\n", int(lvl))
		}
		return nil
	},
}

func init() {
	searchCmd.AddCommand(searchNatureCmd)
	searchCmd.AddCommand(searchLocationCmd)
	rootCmd.AddCommand(searchCmd)
}
