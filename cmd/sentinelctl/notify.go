package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sentinelops/sentinel/internal/api"
	"github.com/sentinelops/sentinel/internal/inbox"
	"github.com/sentinelops/sentinel/internal/logging"
	"github.com/sentinelops/sentinel/internal/realtime"
)

// notifyCmd groups notification center operations
func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification center",
	}

	cmd.AddCommand(
		notifyListCmd(),
		notifyWatchCmd(),
		notifyReadCmd(),
		notifyReadAllCmd(),
		notifyDeleteCmd(),
		notifyStatsCmd(),
	)
	return cmd
}

func notifyListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			box := inbox.New()
			cache, cacheErr := inbox.OpenCache(cachePath(a))
			if cacheErr == nil {
				defer cache.Close()
			}

			list, err := a.client.ListNotifications(cmd.Context(), limit, 0)
			switch {
			case err == nil:
				box.Reset(list.Notifications)
				if cacheErr == nil {
					cache.Save(cmd.Context(), box.List())
				}
			case cacheErr == nil:
				// Backend unreachable; fall back to the last synced copy
				cached, loadErr := cache.Load(cmd.Context())
				if loadErr != nil {
					return friendly(err)
				}
				box.Reset(cached)
				fmt.Println("⚠️  Backend unreachable, showing cached notifications")
			default:
				return friendly(err)
			}

			if box.Len() == 0 {
				fmt.Println("No notifications.")
				return nil
			}

			fmt.Printf("🔔 %d notifications, %d unread\n\n", box.Len(), box.UnreadCount())
			for _, n := range box.List() {
				printNotification(n)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "max notifications to fetch")
	return cmd
}

func notifyWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications live",
		Long: `Connects to the realtime channel and prints notifications as they
arrive. If the connection drops, one reconnect is attempted after the
configured delay. Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			box := inbox.New()
			cache, cacheErr := inbox.OpenCache(cachePath(a))
			if cacheErr == nil {
				defer cache.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Seed the inbox so the unread counter starts from truth
			if list, err := a.client.ListNotifications(ctx, 100, 0); err == nil {
				box.Reset(list.Notifications)
				fmt.Printf("🔔 %d unread. Watching for new notifications...\n\n", box.UnreadCount())
			} else {
				fmt.Printf("⚠️  Could not fetch existing notifications: %v\n", friendly(err))
				fmt.Println("   Watching for new ones anyway...")
			}

			channel := realtime.NewChannel(realtime.Config{
				URL:            a.cfg.RealtimeURL(),
				ReconnectDelay: a.cfg.ReconnectDelay(),
				Store:          a.store,
				Logger:         logging.Component(a.logger, "realtime"),
			})

			err = channel.Connect(
				func(n api.Notification) {
					if box.Add(n) {
						printNotification(n)
						fmt.Printf("  (%d unread)\n", box.UnreadCount())
					}
				},
				func(err error) {
					fmt.Fprintf(os.Stderr, "⚠️  channel: %v\n", err)
				},
			)
			if err != nil {
				return err
			}

			<-ctx.Done()
			channel.Disconnect()

			if cacheErr == nil {
				cache.Save(context.Background(), box.List())
			}
			fmt.Println("\nStopped.")
			return nil
		},
	}
}

func notifyReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [id]",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.client.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
				return friendly(err)
			}
			fmt.Println("✅ Marked read")
			return nil
		},
	}
}

func notifyReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.client.MarkAllNotificationsRead(cmd.Context()); err != nil {
				return friendly(err)
			}
			fmt.Println("✅ All notifications marked read")
			return nil
		},
	}
}

func notifyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.client.DeleteNotification(cmd.Context(), args[0]); err != nil {
				return friendly(err)
			}
			fmt.Println("✅ Notification deleted")
			return nil
		},
	}
}

func notifyStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show notification center counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			stats, err := a.client.GetNotificationStats(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			fmt.Println("🔔 Notification Center")
			fmt.Printf("   Total:  %d\n", stats.Total)
			fmt.Printf("   Unread: %d\n", stats.UnreadCount)
			fmt.Printf("   Read:   %d\n", stats.ReadCount)
			if len(stats.ByPriority) > 0 {
				fmt.Println("   By priority:")
				for p, n := range stats.ByPriority {
					fmt.Printf("     %s: %d\n", p, n)
				}
			}
			return nil
		},
	}
}

func cachePath(a *app) string {
	return filepath.Join(a.cfg.DataDir, "notifications.db")
}

// printNotification renders one notification line with a type icon
func printNotification(n api.Notification) {
	icon := map[api.NotificationType]string{
		api.NotifySecurity: "🚨",
		api.NotifyInfo:     "ℹ️ ",
		api.NotifyWarning:  "⚠️ ",
		api.NotifyError:    "❌",
		api.NotifySuccess:  "✅",
		api.NotifyDocument: "📄",
		api.NotifyUser:     "👤",
		api.NotifySystem:   "⚙️ ",
	}[n.Type]
	if icon == "" {
		icon = "•"
	}

	read := " "
	if !n.IsRead {
		read = "*"
	}

	fmt.Printf("%s%s %s  %s\n", read, icon, n.CreatedAt.Format("15:04"), n.Title)
	if n.Message != "" {
		fmt.Printf("     %s\n", truncate(n.Message, 90))
	}
	if n.Priority == api.PriorityCritical || n.Priority == api.PriorityHigh {
		fmt.Printf("     priority: %s\n", n.Priority)
	}
	fmt.Printf("     id: %s\n", n.ID)
}
