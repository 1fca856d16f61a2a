package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lazypower/lifelog/internal/mcp"
)

var mcpEmail string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout acting as one user.

AVAILABLE TOOLS:

  list_events      Events with when each last happened
  add_timestamp    Record an event occurrence
  list_notes       Study notes with review progress
  random_proverb   A random proverb
  list_concerns    Concerns with a mind graph
  concern_graph    One concern's nodes and edges

AVAILABLE RESOURCES:

  lifelog://today  Today's date, latest event stamps, open PDC count`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		u, err := db.GetUserByEmail(mcpEmail)
		if err != nil {
			return fmt.Errorf("user %s: %w", mcpEmail, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return mcp.NewServer(db, u, VersionString()).Serve(ctx)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpEmail, "email", "", "user whose journal to serve (required)")
	mcpCmd.MarkFlagRequired("email")
}
