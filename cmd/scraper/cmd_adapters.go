package main

import (
	"github.com/aluiziolira/go-scrape-products/extractor"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "Print the site adapters in routing order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		names := extractor.DefaultRegistry().Names()

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Priority", "Adapter"})
		for i, name := range names {
			priority := i + 1
			if i == len(names)-1 {
				t.AppendRow(table.Row{"fallback", name})
				continue
			}
			t.AppendRow(table.Row{priority, name})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
