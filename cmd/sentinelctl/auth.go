package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sentinelops/sentinel/internal/auth"
)

// loginCmd authenticates against the backend and persists the session
func loginCmd() *cobra.Command {
	var (
		adminFlow bool
		qrToken   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Sentinel Ops",
		Long: `Authenticates against the backend and stores the session locally.

By default this uses the ranger login flow. Pass --admin for the admin
flow, or --qr with a badge token to log in by scanned badge. Whichever
flow you pick, the role the server returns is the one that counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			var user *auth.User
			if qrToken != "" {
				user, err = a.controller.LoginWithQRToken(ctx, strings.TrimSpace(qrToken))
			} else {
				email, password, promptErr := promptCredentials()
				if promptErr != nil {
					return promptErr
				}
				user, err = a.controller.LoginWithPassword(ctx, email, password, adminFlow)
			}
			if err != nil {
				return friendly(err)
			}

			fmt.Println("✅ Logged in")
			fmt.Printf("   Email: %s\n", user.Email)
			if user.FullName != "" {
				fmt.Printf("   Name:  %s\n", user.FullName)
			}
			fmt.Printf("   Role:  %s\n", user.Role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&adminFlow, "admin", false, "use the admin login flow")
	cmd.Flags().StringVar(&qrToken, "qr", "", "log in with a scanned badge token")
	return cmd
}

// promptCredentials reads email and password from the terminal
func promptCredentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read email: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	fmt.Println()

	return email, string(password), nil
}

// logoutCmd clears the local session
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.controller.Logout(); err != nil {
				return err
			}
			fmt.Println("✅ Logged out")
			return nil
		},
	}
}

// whoamiCmd shows the current identity
func whoamiCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			var user *auth.User
			if refresh {
				user, err = a.controller.RefreshCurrentUser(cmd.Context())
				if errors.Is(err, auth.ErrNotLoggedIn) {
					fmt.Println("Not logged in. Run 'sentinelctl login'.")
					return nil
				}
				if err != nil {
					return friendly(err)
				}
			} else {
				var ok bool
				user, ok = a.controller.CurrentUser()
				if !ok {
					fmt.Println("Not logged in. Run 'sentinelctl login'.")
					return nil
				}
			}

			fmt.Printf("Email: %s\n", user.Email)
			if user.FullName != "" {
				fmt.Printf("Name:  %s\n", user.FullName)
			}
			fmt.Printf("Role:  %s\n", user.Role)
			fmt.Printf("ID:    %s\n", user.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "revalidate the session against the server")
	return cmd
}

// statusCmd shows client and session state
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show client status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			fmt.Println("📊 Sentinel Ops Status")
			fmt.Println()
			fmt.Printf("   Backend:  %s\n", a.cfg.Server.BaseURL)
			fmt.Printf("   Realtime: %s\n", a.cfg.RealtimeURL())
			fmt.Printf("   Data:     %s\n", a.cfg.DataDir)
			fmt.Printf("   Device:   %s\n", a.cfg.DeviceID)
			fmt.Println()

			sess, ok := a.store.Load()
			if !ok {
				fmt.Println("   🔒 Session: none (run 'sentinelctl login')")
				return nil
			}
			fmt.Printf("   🔓 Session: %s (%s)\n", sess.Email, sess.Role)

			// Reachability probe; a dead backend is not an error here
			validation, err := a.client.ValidateToken(context.Background())
			if err != nil {
				fmt.Printf("   ⚠️  Backend check failed: %v\n", friendly(err))
				return nil
			}
			if validation.Valid {
				fmt.Println("   ✓ Token accepted by backend")
			} else {
				fmt.Println("   ✗ Token rejected by backend, log in again")
			}
			return nil
		},
	}
}
