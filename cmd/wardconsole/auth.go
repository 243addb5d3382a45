package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/session"
)

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session for this profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				p, err := readLine("Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			resp, err := a.service.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(a.out, resp.Data.User)
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", resp.Data.User.FullName, resp.Data.User.Role)
			return nil
		},
	}
	cmd.Flags().String("username", "", "account username")
	cmd.Flags().String("password", "", "account password; prompted when empty")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

type whoami struct {
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Expired   bool      `json:"expired"`
	FullName  string    `json:"fullName,omitempty"`
}

func (a *app) whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := a.holder.Get()
			if err != nil {
				return err
			}
			claims, err := session.ParseClaims(creds.AccessToken)
			if err != nil {
				return err
			}

			w := whoami{
				Username: claims.Username(),
				Roles:    claims.AllRoles(),
				Expired:  claims.Expired(time.Now()),
			}
			if claims.ExpiresAt != nil {
				w.ExpiresAt = claims.ExpiresAt.Time
			}

			if remote, _ := cmd.Flags().GetBool("remote"); remote {
				me, err := a.service.Me(cmd.Context())
				if err != nil {
					return err
				}
				w.FullName = me.Data.FullName
			}

			if a.json {
				return writeJSON(a.out, w)
			}
			fmt.Fprintf(a.out, "%s [%s]\n", w.Username, strings.Join(w.Roles, ", "))
			if w.FullName != "" {
				fmt.Fprintln(a.out, w.FullName)
			}
			switch {
			case w.Expired:
				fmt.Fprintln(a.out, "access token expired, log in again")
			case !w.ExpiresAt.IsZero():
				fmt.Fprintf(a.out, "expires %s\n", display.FormatDateTime(w.ExpiresAt))
			}
			return nil
		},
	}
	cmd.Flags().Bool("remote", false, "also fetch the profile from the server")
	return cmd
}

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
