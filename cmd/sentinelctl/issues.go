package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sentinelops/sentinel/internal/api"
)

// issuesCmd groups facility ops operations
func issuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "issues",
		Aliases: []string{"issue"},
		Short:   "Facility issues",
	}

	cmd.AddCommand(
		issuesListCmd(),
		issuesCreateCmd(),
		issuesShowCmd(),
		issuesAssignCmd(),
		issuesOutcomeCmd(),
		issuesTechniciansCmd(),
	)
	return cmd
}

func issuesListCmd() *cobra.Command {
	var (
		filter api.IssueFilter
		solved bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List facility issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			var issues []api.Issue
			if solved {
				issues, err = a.client.SolvedIssues(cmd.Context())
			} else {
				issues, err = a.client.ListIssues(cmd.Context(), filter)
			}
			if err != nil {
				return friendly(err)
			}

			if len(issues) == 0 {
				fmt.Println("No issues found.")
				return nil
			}

			for _, is := range issues {
				printIssue(is)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&filter.Priority, "priority", "", "filter by priority (high, medium, low)")
	cmd.Flags().StringVar(&filter.Category, "category", "", "filter by category (cctv, door_access, computer, power_supply, network, other)")
	cmd.Flags().BoolVar(&solved, "solved", false, "show solved issues only")
	return cmd
}

func issuesCreateCmd() *cobra.Command {
	var (
		description string
		priority    string
		category    string
		location    string
	)

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Open a facility issue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			issue, err := a.client.CreateIssue(cmd.Context(), api.IssueCreate{
				Title:       strings.Join(args, " "),
				Description: description,
				Priority:    priority,
				Category:    category,
				Location:    location,
			})
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("✅ Issue #%d opened\n", issue.IssueNumber)
			printIssue(*issue)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "issue description")
	cmd.Flags().StringVar(&priority, "priority", api.PriorityMedium, "priority: high, medium, low")
	cmd.Flags().StringVar(&category, "category", api.CategoryOther, "category: cctv, door_access, computer, power_supply, network, other")
	cmd.Flags().StringVar(&location, "location", "", "where in the facility")
	return cmd
}

func issuesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			issue, err := a.client.GetIssue(cmd.Context(), args[0])
			if err != nil {
				return friendly(err)
			}

			printIssue(*issue)
			if issue.Description != "" {
				fmt.Printf("   %s\n", issue.Description)
			}
			return nil
		},
	}
}

func issuesAssignCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "assign [issue-id] [technician-id]",
		Short: "Assign an issue to a technician",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			issue, err := a.client.AssignIssue(cmd.Context(), args[0], args[1], notes)
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("✅ Issue #%d assigned to %s\n", issue.IssueNumber, issue.AssignedToName)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "assignment notes")
	return cmd
}

func issuesOutcomeCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "outcome [issue-id] [solved|unsolved]",
		Short: "Record the outcome of an assigned issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			outcome := args[1]
			if outcome != "solved" && outcome != "unsolved" {
				return fmt.Errorf("invalid outcome %q (want solved or unsolved)", outcome)
			}

			issue, err := a.client.SubmitOutcome(cmd.Context(), args[0], outcome, notes)
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("✅ Issue #%d recorded as %s\n", issue.IssueNumber, issue.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "outcome notes")
	return cmd
}

func issuesTechniciansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "technicians",
		Short: "List technicians ranked by score",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			techs, err := a.client.Technicians(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			if len(techs) == 0 {
				fmt.Println("No technicians available.")
				return nil
			}

			for i, tech := range techs {
				fmt.Printf("%d. %s <%s>\n", i+1, tech.FullName, tech.Email)
				fmt.Printf("   Score: %d | Active: %d | Solved: %d | Failed: %d\n",
					tech.Score, tech.ActiveIssues, tech.SolvedIssues, tech.FailedIssues)
			}
			return nil
		},
	}
}

// printIssue is the one-line issue rendering shared across commands
func printIssue(is api.Issue) {
	line := fmt.Sprintf("• #%d [%s/%s] %s", is.IssueNumber, is.Status, is.Priority, is.Title)
	if is.AssignedToName != "" {
		line += "  → " + is.AssignedToName
	}
	fmt.Println(line)
	fmt.Printf("  ID: %s", is.ID)
	if is.Location != "" {
		fmt.Printf(" | %s", is.Location)
	}
	fmt.Println()
}
