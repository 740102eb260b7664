package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/memodb-io/assetbucket/internal/pkg/utils/secrets"
	"github.com/spf13/cobra"
)

func newHashSecretCmd() *cobra.Command {
	var pepper string
	cmd := &cobra.Command{
		Use:   "hash-secret",
		Short: "Print an argon2id hash for root.secret_token_phc",
		Long: `Reads the secret token from the first line of stdin and prints the PHC
string to put in root.secret_token_phc (ROOT_SECRET_TOKEN_PHC).

  echo -n "$TOKEN" | assetbucket hash-secret --pepper "$ROOT_SECRET_PEPPER"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return hashSecret(cmd.InOrStdin(), cmd.OutOrStdout(), pepper)
		},
	}
	cmd.Flags().StringVar(&pepper, "pepper", os.Getenv("ROOT_SECRET_PEPPER"), "pepper appended to the secret before hashing")
	return cmd
}

func hashSecret(in io.Reader, out io.Writer, pepper string) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read secret: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return errors.New("no secret on stdin")
	}
	phc, err := secrets.HashSecret(secret, pepper)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, phc)
	return err
}
