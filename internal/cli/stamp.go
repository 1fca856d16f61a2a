package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazypower/lifelog/internal/client"
	"github.com/lazypower/lifelog/internal/logger"
)

var (
	stampURL      string
	stampEmail    string
	stampPassword string
	stampAt       string
)

var stampCmd = &cobra.Command{
	Use:   "stamp <event>",
	Short: "Record that an event just happened",
	Long: `Record a timestamp for an event through the running server.

Authenticates with LIFELOG_TOKEN when set, otherwise logs in with --email
and --password (or LIFELOG_EMAIL and LIFELOG_PASSWORD).

EXAMPLES:

  lifelog stamp 起床
  lifelog stamp coffee --at 2024-03-01T08:00:00+09:00`,
	Args: cobra.ExactArgs(1),
	RunE: runStamp,
}

func init() {
	stampCmd.Flags().StringVar(&stampURL, "url", "", "server URL (default from config or LIFELOG_URL)")
	stampCmd.Flags().StringVar(&stampEmail, "email", os.Getenv("LIFELOG_EMAIL"), "login email")
	stampCmd.Flags().StringVar(&stampPassword, "password", os.Getenv("LIFELOG_PASSWORD"), "login password")
	stampCmd.Flags().StringVar(&stampAt, "at", "", "when it happened (RFC 3339); defaults to now")
}

func runStamp(cmd *cobra.Command, args []string) error {
	url := stampURL
	if url == "" && os.Getenv("LIFELOG_URL") == "" {
		url = "http://" + cfg.ListenAddr()
	}
	c := client.New(url)

	var at *time.Time
	if stampAt != "" {
		t, err := time.Parse(time.RFC3339, stampAt)
		if err != nil {
			return fmt.Errorf("invalid --at %q (use RFC 3339)", stampAt)
		}
		at = &t
	}

	if c.Token() == "" {
		if stampEmail == "" {
			return fmt.Errorf("no credentials: set LIFELOG_TOKEN or pass --email and --password")
		}
		if _, err := c.Login(stampEmail, stampPassword); err != nil {
			return err
		}
		defer func() {
			if err := c.Logout(); err != nil {
				logger.Debug("logout failed", "err", err)
			}
		}()
	}

	ts, err := c.Stamp(args[0], at)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s", args[0])
	fmt.Fprintf(cmd.OutOrStdout(), " %s\n", color.New(color.Faint).Sprint(ts.At.Local().Format("2006-01-02 15:04")))
	return nil
}
