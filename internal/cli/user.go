package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazypower/lifelog/internal/auth"
	"github.com/lazypower/lifelog/internal/models"
)

var (
	userPassword  string
	userFirstName string
	userLastName  string
	userStaff     bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage journal accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a regular user",
	Long: `Create a regular user. The password comes from --password or, when that
is empty, the first line of stdin. An empty password leaves the account
unable to log in until one is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return createUser(cmd, args[0], false)
	},
}

var userCreateSuperCmd = &cobra.Command{
	Use:   "createsuperuser <email>",
	Short: "Create a staff superuser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return createUser(cmd, args[0], true)
	},
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := db.ListUsers()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No users yet.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, u := range users {
			fmt.Fprintf(out, "%s %s %s%s\n", faint.Sprint(u.ID), u.Email, u.FullName(), userFlags(&u))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{userCreateCmd, userCreateSuperCmd} {
		c.Flags().StringVarP(&userPassword, "password", "p", "", "password (read from stdin when empty)")
		c.Flags().StringVar(&userFirstName, "first-name", "", "first name")
		c.Flags().StringVar(&userLastName, "last-name", "", "last name")
	}
	userCreateCmd.Flags().BoolVar(&userStaff, "staff", false, "mark the user as staff")

	userCmd.AddCommand(userCreateCmd, userCreateSuperCmd, userListCmd)
}

func createUser(cmd *cobra.Command, email string, super bool) error {
	password := userPassword
	if password == "" {
		var err error
		if password, err = readLine(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	am := auth.NewManager(db, cfg.Auth.Secret, cfg.Auth.TokenTTL)
	opts := auth.Options{FirstName: userFirstName, LastName: userLastName}

	var u *models.User
	if super {
		u, err = am.CreateSuperuser(email, password, opts)
	} else {
		opts.IsStaff = auth.Bool(userStaff)
		u, err = am.CreateUser(email, password, opts)
	}
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Created %s", u.Email)
	fmt.Fprintf(cmd.OutOrStdout(), " %s\n", color.New(color.Faint).Sprint(u.ID))
	if !auth.HasUsablePassword(u) {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "  no password set; this account cannot log in")
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func userFlags(u *models.User) string {
	var flags []string
	if u.IsSuperuser {
		flags = append(flags, "superuser")
	} else if u.IsStaff {
		flags = append(flags, "staff")
	}
	if !u.IsActive {
		flags = append(flags, "inactive")
	}
	if len(flags) == 0 {
		return ""
	}
	return color.New(color.Faint).Sprintf(" [%s]", strings.Join(flags, ", "))
}
