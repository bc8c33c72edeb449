package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/kamy/api/internal/cli/api"
	"github.com/kamy/api/internal/cli/output"
	"github.com/spf13/cobra"
)

// readPassword returns flagValue, or the first line of stdin when empty.
func (a *app) readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	output.Printf("Password: ")
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func (a *app) saveSession(resp *api.AuthResponse) error {
	a.cfg.Token = resp.Token
	a.cfg.Email = resp.User.Email
	if err := a.store.Save(a.cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readPassword(password)
			if err != nil {
				return err
			}

			resp, err := a.client.Register(name, email, pw)
			if err != nil {
				return fmt.Errorf("registering: %w", err)
			}
			if err := a.saveSession(resp); err != nil {
				return err
			}

			a.print(resp.User, func() {
				output.Printf("Registered and logged in as %s (%s)\n", resp.User.Name, resp.User.Email)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with your Kamy server",
		Long: `Authenticate with email and password. The token is stored in the CLI
config file and sent as a bearer token on later commands.

  kamy login --email ada@example.com
  echo "$PASSWORD" | kamy login --email ada@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.cfg.Email
			}
			if email == "" {
				return errors.New("--email is required")
			}

			pw, err := a.readPassword(password)
			if err != nil {
				return err
			}

			resp, err := a.client.Login(email, pw)
			if err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) && apiErr.Status == 401 {
					return errors.New("invalid email or password")
				}
				return fmt.Errorf("logging in: %w", err)
			}
			if err := a.saveSession(resp); err != nil {
				return err
			}

			a.print(resp.User, func() {
				output.Printf("Logged in as %s (%s)\n", resp.User.Name, resp.User.Email)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (default: last used)")
	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return fmt.Errorf("clearing config: %w", err)
			}
			output.Println("Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current authenticated user",
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Me()
			if err != nil {
				return fmt.Errorf("fetching user: %w", err)
			}
			a.print(user, func() { output.UserInfo(*user) })
			return nil
		}),
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI and server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, serverErr := a.client.Version()

			if a.jsonOutput {
				type jsonOut struct {
					CLIVersion    string `json:"cliVersion"`
					ServerVersion string `json:"serverVersion,omitempty"`
					APIVersion    string `json:"apiVersion,omitempty"`
					ServerError   string `json:"serverError,omitempty"`
				}
				out := jsonOut{CLIVersion: Version}
				if server != nil {
					out.ServerVersion = server.Version
					out.APIVersion = server.APIVersion
				} else {
					out.ServerError = serverErr.Error()
				}
				output.JSON(out)
				return nil
			}

			output.VersionInfo(Version, server, serverErr)
			return nil
		},
	}
}
