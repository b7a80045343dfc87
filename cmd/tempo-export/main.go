package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tempo/internal/cli"
	"tempo/internal/client"
	"tempo/internal/controller"
	"tempo/internal/core"
	"tempo/internal/export"
	"tempo/internal/storage"
)

var (
	flagFrom    string
	flagTo      string
	flagProject string
	flagDB      string
	flagServer  string
	flagOutput  string
)

var rootCmd = &cobra.Command{
	Use:   "tempo-export",
	Short: "Export the timesheet as CSV",
	Long: `tempo-export reads the timesheet document from a local database or a
running tempo server and writes it out as CSV.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.Flags().StringVar(&flagFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	rootCmd.Flags().StringVar(&flagTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	rootCmd.Flags().StringVar(&flagProject, "project", "", "Limit to one project by ID or name")
	rootCmd.Flags().StringVar(&flagDB, "db", "", "SQLite database path (default: SQLITE_DB_PATH)")
	rootCmd.Flags().StringVar(&flagServer, "server", "", "Base URL of a running server, e.g. http://localhost:8082")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")
}

func main() {
	cli.LoadEnvFile()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	rng, err := parseRange(flagFrom, flagTo)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd.Context())
	if err != nil {
		return err
	}
	doc.Normalize()

	projectID, err := resolveProject(doc, flagProject)
	if err != nil {
		return err
	}

	csv := export.BuildCSV(doc, projectID, rng)

	if flagOutput == "" {
		fmt.Print(csv)
		return nil
	}
	if err := os.WriteFile(flagOutput, []byte(csv), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flagOutput, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", flagOutput)
	return nil
}

// loadDocument prefers a remote server when --server is set, else opens
// the local database directly.
func loadDocument(ctx context.Context) (*core.Document, error) {
	var store controller.Store
	if flagServer != "" {
		store = client.NewHTTPStore(flagServer)
	} else {
		dbPath := flagDB
		if dbPath == "" {
			dbPath = os.Getenv("SQLITE_DB_PATH")
		}
		if dbPath == "" {
			dbPath = "./data/tempo.db"
		}
		repo, err := storage.NewRepository(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database %s: %w", dbPath, err)
		}
		defer repo.Close()
		store = repo
	}

	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		doc = core.DefaultDocument()
	}
	return doc, nil
}

func parseRange(from, to string) (*core.DateRange, error) {
	if from != "" && !core.ValidDate(from) {
		return nil, fmt.Errorf("invalid --from date %q, want YYYY-MM-DD", from)
	}
	if to != "" && !core.ValidDate(to) {
		return nil, fmt.Errorf("invalid --to date %q, want YYYY-MM-DD", to)
	}
	if from == "" && to == "" {
		return nil, nil
	}
	return &core.DateRange{From: from, To: to}, nil
}

// resolveProject accepts a project ID or an exact name.
func resolveProject(doc *core.Document, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if p := doc.Project(ref); p != nil {
		return p.ID, nil
	}
	for i := range doc.Projects {
		if doc.Projects[i].Name == ref {
			return doc.Projects[i].ID, nil
		}
	}
	return "", fmt.Errorf("no project with ID or name %q", ref)
}
