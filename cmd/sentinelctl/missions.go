package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinelops/sentinel/internal/api"
)

// missionsCmd groups ops planner operations
func missionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "missions",
		Aliases: []string{"mission"},
		Short:   "Ops planner missions",
	}

	cmd.AddCommand(
		missionsListCmd(),
		missionsBoardCmd(),
		missionsCreateCmd(),
		missionsShowCmd(),
		missionsAssignCmd(),
		missionsStatusCmd(),
		missionsAgentsCmd(),
		missionsMyWorkCmd(),
		missionsUploadCmd(),
		missionsActivityCmd(),
	)
	return cmd
}

func missionsListCmd() *cobra.Command {
	var filter api.MissionFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			missions, err := a.client.ListMissions(cmd.Context(), filter)
			if err != nil {
				return friendly(err)
			}

			if len(missions) == 0 {
				fmt.Println("No missions found.")
				return nil
			}

			for _, m := range missions {
				printMission(m)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status (pending, in_progress, completed, failed, aborted)")
	cmd.Flags().StringVar(&filter.Difficulty, "difficulty", "", "filter by difficulty (search, hard, insane)")
	cmd.Flags().StringVar(&filter.AgentID, "agent", "", "filter by assigned agent ID")
	return cmd
}

func missionsBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the kanban board",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			board, err := a.client.Board(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("🗂  Mission Board (%d missions)\n", board.Total)
			for _, col := range board.Columns {
				fmt.Printf("\n── %s (%d) ──\n", strings.ToUpper(col.Status), len(col.Missions))
				for _, m := range col.Missions {
					line := fmt.Sprintf("   %s  %s", m.ID, truncate(m.Title, 50))
					if m.AssignedAgentName != "" {
						line += "  → " + m.AssignedAgentName
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}
}

func missionsCreateCmd() *cobra.Command {
	var (
		description string
		difficulty  string
		due         string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a mission",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if !api.ValidDifficulty(difficulty) {
				return fmt.Errorf("invalid difficulty %q (want search, hard or insane)", difficulty)
			}

			req := api.MissionCreate{
				Title:       strings.Join(args, " "),
				Description: description,
				Difficulty:  difficulty,
				Tags:        tags,
			}
			if due != "" {
				t, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid --due %q, want YYYY-MM-DD", due)
				}
				req.DueDate = &t
			}

			mission, err := a.client.CreateMission(cmd.Context(), req)
			if err != nil {
				return friendly(err)
			}

			fmt.Println("✅ Mission created")
			printMission(*mission)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "mission description")
	cmd.Flags().StringVar(&difficulty, "difficulty", api.DifficultySearch, "difficulty: search, hard, insane")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "mission tag (repeatable)")
	return cmd
}

func missionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			mission, err := a.client.GetMission(cmd.Context(), args[0])
			if err != nil {
				return friendly(err)
			}

			printMission(*mission)
			if mission.Description != "" {
				fmt.Printf("   %s\n", mission.Description)
			}
			if len(mission.Documents) > 0 {
				fmt.Printf("   Documents: %d\n", len(mission.Documents))
			}
			return nil
		},
	}
}

func missionsAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign [mission-id] [agent-id]",
		Short: "Assign a mission to an agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			mission, err := a.client.AssignMission(cmd.Context(), args[0], args[1])
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("✅ Assigned %q to %s\n", mission.Title, mission.AssignedAgentName)
			return nil
		},
	}
}

func missionsStatusCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "status [mission-id] [status]",
		Short: "Move a mission to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if !api.ValidMissionStatus(args[1]) {
				return fmt.Errorf("invalid status %q (want pending, in_progress, completed, failed or aborted)", args[1])
			}

			mission, err := a.client.SetMissionStatus(cmd.Context(), args[0], args[1], notes)
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("✅ %q is now %s\n", mission.Title, mission.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "completion or failure notes")
	return cmd
}

func missionsAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List available agents ranked by score",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			agents, err := a.client.AvailableAgents(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			if len(agents) == 0 {
				fmt.Println("No agents available.")
				return nil
			}

			for i, ag := range agents {
				fmt.Printf("%d. %s <%s>\n", i+1, ag.FullName, ag.Email)
				fmt.Printf("   Score: %d | Active: %d | Completed: %d | Failed: %d\n",
					ag.Score, ag.ActiveMissions, ag.CompletedMissions, ag.FailedMissions)
			}
			return nil
		},
	}
}

func missionsMyWorkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "my-work",
		Short: "Show your assigned missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			work, err := a.client.MyWork(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("🎯 Your Work (score %d, %d missions total)\n\n", work.CurrentScore, work.TotalMissions)
			if len(work.AssignedMissions) == 0 {
				fmt.Println("Nothing assigned right now.")
				return nil
			}
			for _, m := range work.AssignedMissions {
				printMission(m)
			}
			return nil
		},
	}
}

func missionsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload [mission-id] [file]",
		Short: "Attach a document to a mission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := a.client.UploadMissionDocument(cmd.Context(), args[0], filepath.Base(args[1]), f)
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("✅ Uploaded %s (%d bytes)\n", doc.Filename, doc.FileSize)
			return nil
		},
	}
}

func missionsActivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity [mission-id]",
		Short: "Show a mission's audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			entries, err := a.client.MissionActivity(cmd.Context(), args[0])
			if err != nil {
				return friendly(err)
			}

			for _, e := range entries {
				line := fmt.Sprintf("%s  %-14s %s", e.Timestamp.Format("2006-01-02 15:04"), e.Action, e.PerformedByName)
				if e.Details != "" {
					line += "  " + truncate(e.Details, 60)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

// printMission is the one-line mission rendering shared across commands
func printMission(m api.Mission) {
	line := fmt.Sprintf("• [%s/%s] %s", m.Status, m.Difficulty, m.Title)
	if m.AssignedAgentName != "" {
		line += "  → " + m.AssignedAgentName
	}
	if m.DueDate != nil {
		line += "  (due " + m.DueDate.Format("2006-01-02") + ")"
	}
	fmt.Println(line)
	fmt.Printf("  ID: %s\n", m.ID)
}
