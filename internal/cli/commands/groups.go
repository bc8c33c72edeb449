package commands

import (
	"fmt"
	"strings"

	"github.com/kamy/api/internal/cli/output"
	"github.com/spf13/cobra"
)

func (a *app) groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "List, create and manage groups",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your groups, most recently active first",
			Args:  cobra.NoArgs,
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				groups, err := a.client.Groups()
				if err != nil {
					return fmt.Errorf("listing groups: %w", err)
				}
				a.print(groups, func() { output.GroupTable(groups) })
				return nil
			}),
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a group you own",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				group, err := a.client.CreateGroup(strings.Join(args, " "))
				if err != nil {
					return fmt.Errorf("creating group: %w", err)
				}
				a.print(group, func() {
					output.Printf("Created group %q (%s)\n", group.Name, group.ID)
				})
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <group-id>",
			Short: "Show a group's details",
			Args:  cobra.ExactArgs(1),
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				group, err := a.client.Group(args[0])
				if err != nil {
					return fmt.Errorf("fetching group: %w", err)
				}
				a.print(group, func() { output.GroupDetail(*group) })
				return nil
			}),
		},
		&cobra.Command{
			Use:   "members <group-id>",
			Short: "List a group's members",
			Args:  cobra.ExactArgs(1),
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				members, err := a.client.Members(args[0])
				if err != nil {
					return fmt.Errorf("listing members: %w", err)
				}
				a.print(members, func() { output.MemberTable(members) })
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add-member <group-id> <email>",
			Short: "Add a registered user to a group you own",
			Args:  cobra.ExactArgs(2),
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				member, err := a.client.AddMember(args[0], args[1])
				if err != nil {
					return fmt.Errorf("adding member: %w", err)
				}
				a.print(member, func() {
					output.Printf("Added %s (%s)\n", member.Name, member.Email)
				})
				return nil
			}),
		},
	)
	return cmd
}
