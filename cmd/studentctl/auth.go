package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rohits-web03/studentvault/internal/client"
	"github.com/spf13/cobra"
)

var (
	profile  client.Profile
	password string

	registerCmd = &cobra.Command{
		Use:   "register",
		Short: "Create a student account",
		Long: `Register a new student. Every field is required.

Examples:
  studentctl register --name "Jane Doe" --email jane@example.com --phone "+1 555 0100" \
    --dob 2001-02-03 --gender female --address "1 Main St" --course Mathematics --password 'Sup3rSecret!'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			profile.Password = password
			id, err := c.Register(cmd.Context(), profile)
			if err != nil {
				return err
			}
			fmt.Println(color.GreenString("✓") + " Registered " + color.CyanString(profile.Email))
			fmt.Println("  ID: " + color.YellowString(id))
			fmt.Println(color.CyanString("→") + " Run " + color.YellowString("studentctl login") + " to sign in")
			return nil
		},
	}

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			me, err := c.Login(cmd.Context(), profile.Email, password)
			if err != nil {
				return err
			}
			if err := saveSession(sessionPath, c.Tokens()); err != nil {
				return err
			}
			fmt.Println(color.GreenString("✓") + " Signed in as " + color.CyanString(me.FullName) + " <" + me.Email + ">")
			return nil
		},
	}
)

func profileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&profile.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&profile.Email, "email", "", "email address")
	cmd.Flags().StringVar(&profile.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&profile.DateOfBirth, "dob", "", "date of birth")
	cmd.Flags().StringVar(&profile.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&profile.Address, "address", "", "postal address")
	cmd.Flags().StringVar(&profile.CourseEnrolled, "course", "", "course enrolled")
	cmd.Flags().StringVar(&password, "password", "", "account password")
}

func init() {
	profileFlags(registerCmd)
	profileFlags(updateCmd)
	for _, name := range []string{"name", "email", "phone", "dob", "gender", "address", "course", "password"} {
		_ = registerCmd.MarkFlagRequired(name)
	}

	loginCmd.Flags().StringVar(&profile.Email, "email", "", "email address")
	loginCmd.Flags().StringVar(&password, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}
