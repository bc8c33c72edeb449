package commands

import (
	"fmt"

	"github.com/kamy/api/internal/cli/output"
	"github.com/spf13/cobra"
)

func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Read your notifications",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your 50 most recent notifications; * marks unread",
			Args:  cobra.NoArgs,
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				notifications, err := a.client.Notifications()
				if err != nil {
					return fmt.Errorf("listing notifications: %w", err)
				}
				a.print(notifications, func() { output.NotificationTable(notifications) })
				return nil
			}),
		},
		&cobra.Command{
			Use:   "count",
			Short: "Show the number of unread notifications",
			Args:  cobra.NoArgs,
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				count, err := a.client.UnreadCount()
				if err != nil {
					return fmt.Errorf("counting notifications: %w", err)
				}
				a.print(map[string]int64{"count": count}, func() {
					output.Printf("%d unread\n", count)
				})
				return nil
			}),
		},
		&cobra.Command{
			Use:   "read <notification-id>",
			Short: "Mark one notification as read",
			Args:  cobra.ExactArgs(1),
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				if err := a.client.MarkNotificationRead(args[0]); err != nil {
					return fmt.Errorf("marking notification read: %w", err)
				}
				output.Println("Marked as read.")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark all notifications as read",
			Args:  cobra.NoArgs,
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				if err := a.client.MarkAllNotificationsRead(); err != nil {
					return fmt.Errorf("marking notifications read: %w", err)
				}
				output.Println("All notifications marked as read.")
				return nil
			}),
		},
	)
	return cmd
}
