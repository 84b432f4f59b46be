package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sentinelops/sentinel/internal/api"
	"github.com/sentinelops/sentinel/internal/session"
)

// usersCmd groups admin user management
func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User administration (admin only)",
	}

	cmd.AddCommand(
		usersListCmd(),
		usersCreateCmd(),
		usersSuspendCmd(),
		usersActivateCmd(),
		usersLogsCmd(),
		usersDashboardCmd(),
	)
	return cmd
}

// requireAdmin gates the admin surface client-side before any call
func requireAdmin(a *app) error {
	if err := a.controller.RequireRole(session.RoleAdmin); err != nil {
		return err
	}
	return nil
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := requireAdmin(a); err != nil {
				return err
			}

			users, err := a.client.ListUsers(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			for _, u := range users {
				marker := "✓"
				if u.Status != "active" {
					marker = "○"
				}
				fmt.Printf("%s %-10s %-25s %s (score %d)\n", marker, u.Role, u.Email, u.FullName, u.Score)
				fmt.Printf("  ID: %s\n", u.ID)
			}
			return nil
		},
	}
}

func usersCreateCmd() *cobra.Command {
	var (
		name string
		role string
	)

	cmd := &cobra.Command{
		Use:   "create [email]",
		Short: "Onboard a new user",
		Long: `Creates a user and prints the one-time QR badge token.

The token is shown exactly once; print the badge before closing the
terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := requireAdmin(a); err != nil {
				return err
			}

			fmt.Print("Password for the new user: ")
			password, err := term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			fmt.Println()

			created, err := a.client.CreateUser(cmd.Context(), api.UserCreate{
				FullName: name,
				Email:    args[0],
				Password: string(password),
				Role:     role,
			})
			if err != nil {
				return friendly(err)
			}

			fmt.Println("✅ User created")
			fmt.Printf("   ID:    %s\n", created.UserID)
			fmt.Printf("   Email: %s\n", created.Email)
			fmt.Printf("   Role:  %s\n", created.Role)
			fmt.Println()
			fmt.Println("🎫 Badge token (shown once):")
			fmt.Printf("   %s\n", created.QRToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", string(session.RoleAgent), "role: admin, agent, technician, ranger")
	return cmd
}

func usersSuspendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suspend [id]",
		Short: "Suspend a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := requireAdmin(a); err != nil {
				return err
			}

			if err := a.client.SuspendUser(cmd.Context(), args[0]); err != nil {
				return friendly(err)
			}
			fmt.Println("✅ User suspended")
			return nil
		},
	}
}

func usersActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate [id]",
		Short: "Reactivate a suspended user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := requireAdmin(a); err != nil {
				return err
			}

			if err := a.client.ActivateUser(cmd.Context(), args[0]); err != nil {
				return friendly(err)
			}
			fmt.Println("✅ User activated")
			return nil
		},
	}
}

func usersLogsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent identity verification logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := requireAdmin(a); err != nil {
				return err
			}

			logs, err := a.client.IdentityLogs(cmd.Context(), limit)
			if err != nil {
				return friendly(err)
			}

			for _, entry := range logs {
				line := fmt.Sprintf("%s  %-8s %s", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Status, entry.Email)
				if entry.Reason != "" {
					line += "  (" + entry.Reason + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "max entries")
	return cmd
}

func usersDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show admin dashboard counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := requireAdmin(a); err != nil {
				return err
			}

			stats, err := a.client.DashboardStats(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			fmt.Println("📊 Dashboard")
			for key, value := range stats {
				fmt.Printf("   %s: %v\n", key, value)
			}
			return nil
		},
	}
}
