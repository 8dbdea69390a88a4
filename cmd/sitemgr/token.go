package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sitemgr/internal/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API bearer token",
	}
	cmd.AddCommand(newTokenHashCmd())
	return cmd
}

func newTokenHashCmd() *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "hash [token]",
		Short: "Print the bcrypt hash of a token for auth.token_hash",
		Long: "Reads the token from the argument or the first line of stdin and prints its bcrypt hash.\n" +
			"With --generate a random token is created and printed to stderr first.",
		Args: requireAtMostArgs(1, "at most one token may be given"),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenFromInput(args, cmd.InOrStdin(), generate)
			if err != nil {
				return err
			}
			if generate {
				fmt.Fprintf(cmd.ErrOrStderr(), "token: %s\n", token)
			}

			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}
			return writePlain("%s\n", hash)
		},
	}

	cmd.Flags().BoolVar(&generate, "generate", false, "generate a random token")
	return cmd
}

func tokenFromInput(args []string, stdin io.Reader, generate bool) (string, error) {
	switch {
	case generate && len(args) > 0:
		return "", errors.New("--generate cannot be combined with a token argument")
	case generate:
		return auth.GenerateToken()
	case len(args) == 1:
		return strings.TrimSpace(args[0]), nil
	}

	if stdin == nil {
		stdin = os.Stdin
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("token is required (argument or stdin)")
	}
	return token, nil
}
