package commands

import (
	"os"
	"strconv"

	"github.com/bpdavis86/planning-center-backend/groups"
	"github.com/bpdavis86/planning-center-backend/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Lists and manages groups.",
}

var groupsListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "Lists groups, optionally filtered by name.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client, _ := loginClient(ctx)
		provider := groups.NewProvider(client)

		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		matches, err := provider.Query(ctx, name)
		if err != nil {
			serviceutil.Fatal("failed to query groups", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name", "Members", "Enrollment"})

		for _, g := range matches {
			attrs, err := g.Attributes(ctx)
			if err != nil {
				serviceutil.Fatal("failed to load group attributes", err)
			}
			if attrs == nil {
				continue
			}
			t.AppendRow(table.Row{g.ID, attrs.Name, attrs.MembershipsCount, attrs.EnrollmentStrategy})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Creates a small group with the given name.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client, _ := loginClient(ctx)
		provider := groups.NewProvider(client)

		group, err := provider.Create(ctx, args[0], groups.GroupTypeSmallGroup)
		if err != nil {
			serviceutil.Fatal("failed to create group", err)
		}
		cmd.Printf("created group %d at %s\n", group.ID, group.FrontendURL())
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Deletes the group with the given id.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid group id", err)
		}

		client, _ := loginClient(ctx)
		provider := groups.NewProvider(client)

		group, err := provider.Get(ctx, id)
		if err != nil {
			serviceutil.Fatal("failed to fetch group", err)
		}
		if err := group.Delete(ctx); err != nil {
			serviceutil.Fatal("failed to delete group", err)
		}
		cmd.Printf("deleted group %d\n", id)
	},
}
