package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// docsCmd groups knowledge base operations
func docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Knowledge base documents",
	}

	cmd.AddCommand(
		docsListCmd(),
		docsSearchCmd(),
		docsUploadCmd(),
		docsShowCmd(),
		docsDeleteCmd(),
	)
	return cmd
}

func docsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			docs, err := a.client.ListDocuments(cmd.Context())
			if err != nil {
				return friendly(err)
			}

			if len(docs) == 0 {
				fmt.Println("Knowledge base is empty.")
				return nil
			}

			for _, d := range docs {
				fmt.Printf("• %s [%s] %d bytes, uploaded %s\n", d.Name, d.Status, d.FileSize, d.UploadedAt.Format("2006-01-02"))
				fmt.Printf("  ID: %s\n", d.ID)
			}
			return nil
		},
	}
}

func docsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			resp, err := a.client.SearchDocuments(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return friendly(err)
			}

			if resp.TotalResults == 0 {
				fmt.Println("No matches.")
				return nil
			}

			fmt.Printf("Found %d documents:\n\n", resp.TotalResults)
			for i, r := range resp.Results {
				fmt.Printf("%d. %s (%s)\n", i+1, r.Name, r.ID)
				if r.Summary != "" {
					fmt.Printf("   %s\n", truncate(r.Summary, 100))
				}
				if r.MatchContext != "" {
					fmt.Printf("   ...%s...\n", truncate(r.MatchContext, 100))
				}
			}
			return nil
		},
	}
}

func docsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := a.client.UploadDocument(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("✅ Uploaded %s\n", doc.Name)
			fmt.Printf("   ID:     %s\n", doc.ID)
			fmt.Printf("   Status: %s\n", doc.Status)
			return nil
		},
	}
}

func docsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			doc, err := a.client.GetDocument(cmd.Context(), args[0])
			if err != nil {
				return friendly(err)
			}

			fmt.Printf("%s [%s]\n", doc.Name, doc.Status)
			fmt.Printf("   Uploaded: %s by %s\n", doc.UploadedAt.Format("2006-01-02 15:04"), doc.UploadedBy)
			fmt.Printf("   Size: %d bytes (%s)\n", doc.FileSize, doc.MimeType)
			if doc.Summary != nil && doc.Summary.ShortSummary != "" {
				fmt.Printf("\n%s\n", doc.Summary.ShortSummary)
			}
			return nil
		},
	}
}

func docsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.client.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return friendly(err)
			}
			fmt.Println("✅ Document deleted")
			return nil
		},
	}
}
