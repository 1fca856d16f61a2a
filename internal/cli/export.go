package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lazypower/lifelog/internal/store"
)

var (
	exportEmail  string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one user's journal as JSON or YAML",
	Long: `Export every record a user owns: events and timestamps, themes and PDCs,
weather, logs, proverbs, routines, notes and concern graphs.

EXAMPLES:

  lifelog export --email me@example.com                   # JSON to stdout
  lifelog export --email me@example.com --format yaml     # YAML to stdout
  lifelog export --email me@example.com -o backup.json    # Save to file`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "owner of the journal (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	exportCmd.MarkFlagRequired("email")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := db.GetUserByEmail(exportEmail)
	if err != nil {
		return fmt.Errorf("user %s: %w", exportEmail, err)
	}
	dump, err := db.ExportUser(u.ID)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return writeExport(cmd.OutOrStdout(), dump, exportFormat)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOutput, err)
	}
	if err := writeExport(f, dump, exportFormat); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ Exported to %s\n", exportOutput)
	return nil
}

func writeExport(w io.Writer, dump *store.Export, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format: %s (use json or yaml)", format)
}
