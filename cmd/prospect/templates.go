package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/FranksOps/prospect/internal/templates"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available search templates",
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	byCategory := templates.Categories()
	descriptions := templates.List()

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, category := range categories {
		fmt.Fprintf(w, "%s\n", category)
		for _, name := range byCategory[category] {
			fmt.Fprintf(w, "  %s\t%s\n", name, descriptions[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
