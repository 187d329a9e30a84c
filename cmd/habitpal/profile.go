package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"habitpal/internal/model"
	"habitpal/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change the user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.svc.LoadProfile(cmd.Context())
		if errors.Is(err, service.ErrProfileNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No profile saved.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Name:   %s\nEmail:  %s\nGender: %s\n", p.Name, p.Email, p.Gender)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <name> [email] [gender]",
	Short: "Save the profile",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var email, gender string
		if len(args) > 1 {
			email = args[1]
		}
		if len(args) > 2 {
			gender = args[2]
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.svc.SaveProfile(cmd.Context(), args[0], email, gender)
		return err
	},
}

type profileSaver interface {
	SaveProfile(ctx context.Context, name, email, gender string) (model.Profile, error)
}

// promptProfile asks for the profile fields on in until a valid name is
// given or in runs out.
func promptProfile(ctx context.Context, svc profileSaver, in io.Reader, out io.Writer) (model.Profile, error) {
	r := bufio.NewReader(in)
	ask := func(label string) (string, error) {
		fmt.Fprintf(out, "%s: ", label)
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprintln(out, "Welcome to habitpal. Tell us a bit about yourself.")
	for {
		name, err := ask("Name")
		if err != nil {
			return model.Profile{}, err
		}
		email, err := ask("Email")
		if err != nil {
			return model.Profile{}, err
		}
		gender, err := ask("Gender")
		if err != nil {
			return model.Profile{}, err
		}

		p, err := svc.SaveProfile(ctx, name, email, gender)
		if errors.Is(err, service.ErrValidation) {
			fmt.Fprintf(out, "%v, please try again.\n", err)
			continue
		}
		return p, err
	}
}

func init() {
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
