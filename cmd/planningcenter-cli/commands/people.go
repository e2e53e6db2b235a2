package commands

import (
	"os"

	"github.com/bpdavis86/planning-center-backend/lib/util/serviceutil"
	"github.com/bpdavis86/planning-center-backend/people"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(peopleCmd)
}

var peopleCmd = &cobra.Command{
	Use:   "people <name>",
	Short: "Searches the people directory by name.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client, _ := loginClient(ctx)
		provider := people.NewProvider(client)

		matches, err := provider.Search(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to search people", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name", "Status", "Membership"})

		for _, p := range matches {
			membership := ""
			if p.Attributes.Membership != nil {
				membership = *p.Attributes.Membership
			}
			t.AppendRow(table.Row{p.ID, p.Attributes.Name, p.Attributes.Status, membership})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
