package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/taskflow/client"
	"github.com/Rajangupta9/taskflow/store"
)

type credentialFlags struct {
	password string
	server   string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "password (read from stdin when omitted)")
	cmd.Flags().StringVar(&f.server, "server", "", "API base URL (default client.base_url)")
}

func readPassword(cmd *cobra.Command, given string) (string, error) {
	if given != "" {
		return given, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) baseURL(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Client.BaseURL
}

func (a *app) registerCmd() *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, f.password)
			if err != nil {
				return err
			}
			c := client.New(a.baseURL(f.server), "", a.cfg.Client.Timeout)
			if err := c.Register(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Run `taskflow login %s` to sign in.\n", args[0], args[0])
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, f.password)
			if err != nil {
				return err
			}
			base := a.baseURL(f.server)
			c := client.New(base, "", a.cfg.Client.Timeout)
			res, err := c.Login(cmd.Context(), args[0], password)
			if errors.Is(err, client.ErrUnauthorized) {
				return errors.New("invalid username or password")
			}
			if err != nil {
				return err
			}
			sess := &store.Session{Token: res.Token, Username: res.Username, BaseURL: base}
			if err := store.SaveSession(a.cfg.Client.SessionPath, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", res.Username)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := a.session()
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil && !errors.Is(err, client.ErrUnauthorized) {
				return err
			}
			if err := store.ClearSession(a.cfg.Client.SessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
