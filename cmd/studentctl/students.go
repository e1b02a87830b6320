package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fatih/color"
	"github.com/rohits-web03/studentvault/internal/client"
	"github.com/spf13/cobra"
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all students, decrypted",
		Args:  cobra.NoArgs,
		RunE: authenticated(func(cmd *cobra.Command, c *client.Client, args []string) error {
			students, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(students) == 0 {
				fmt.Println(color.YellowString("!") + " No students registered")
				return nil
			}
			fmt.Println(color.GreenString("✓") + fmt.Sprintf(" %d students:", len(students)))
			for _, s := range students {
				fmt.Println(color.CyanString("  • ") + s.FullName + " <" + s.Email + "> " + color.YellowString(s.ID))
			}
			return nil
		}),
	}

	getCmd = &cobra.Command{
		Use:   "get <id>",
		Short: "Show one student, decrypted",
		Args:  cobra.ExactArgs(1),
		RunE: authenticated(func(cmd *cobra.Command, c *client.Client, args []string) error {
			s, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printStudent(s)
			return nil
		}),
	}

	updateCmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Change some fields of a student",
		Long: `Only the flags you pass are sent; everything else stays as it is.

Examples:
  studentctl update 3f1c... --course Physics
  studentctl update 3f1c... --password 'N3wSecret!'`,
		Args: cobra.ExactArgs(1),
		RunE: authenticated(func(cmd *cobra.Command, c *client.Client, args []string) error {
			profile.Password = password
			if err := c.Update(cmd.Context(), args[0], profile); err != nil {
				return err
			}
			fmt.Println(color.GreenString("✓") + " Student " + color.YellowString(args[0]) + " updated")
			return nil
		}),
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: authenticated(func(cmd *cobra.Command, c *client.Client, args []string) error {
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(color.GreenString("✓") + " Student " + color.YellowString(args[0]) + " deleted")
			return nil
		}),
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export an encrypted snapshot to object storage",
		Args:  cobra.NoArgs,
		RunE: authenticated(func(cmd *cobra.Command, c *client.Client, args []string) error {
			info, err := c.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(color.GreenString("✓") + fmt.Sprintf(" Exported %d students to ", info.Count) + color.CyanString(info.Key))
			fmt.Println("  Download: " + info.URL)
			fmt.Println("  Expires:  " + info.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		}),
	}
)

// authenticated runs fn with a signed-in client. An expired access token is
// refreshed once and the new session saved.
func authenticated(fn func(*cobra.Command, *client.Client, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if c.Tokens().AccessToken == "" {
			return errors.New("not signed in; run studentctl login first")
		}

		err = fn(cmd, c, args)
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || c.Tokens().RefreshToken == "" {
			return err
		}
		if _, rerr := c.Refresh(cmd.Context()); rerr != nil {
			return fmt.Errorf("session expired; run studentctl login again: %w", rerr)
		}
		if err := saveSession(sessionPath, c.Tokens()); err != nil {
			return err
		}
		return fn(cmd, c, args)
	}
}

func printStudent(s *client.Student) {
	fmt.Println(color.GreenString("✓") + " " + color.CyanString(s.FullName))
	fmt.Println("  ID:       " + color.YellowString(s.ID))
	fmt.Println("  Email:    " + s.Email)
	fmt.Println("  Phone:    " + s.PhoneNumber)
	fmt.Println("  Born:     " + s.DateOfBirth)
	fmt.Println("  Gender:   " + s.Gender)
	fmt.Println("  Address:  " + s.Address)
	fmt.Println("  Course:   " + s.CourseEnrolled)
}
