package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/repository"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/service"
)

// NewCreateUserCmd создаёт CLI-команду для заведения пользователя без браузера.
//
// Пароль и подтверждение читаются с терминала без эха. Если stdin не терминал,
// читаются две строки из stdin.
//
// Пример использования:
//
//	vaxreport create-user --email admin@example.com
func NewCreateUserCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Создать пользователя",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			password, err := readPassword(cmd, in, "Password: ")
			if err != nil {
				return err
			}
			confirmation, err := readPassword(cmd, in, "Confirm password: ")
			if err != nil {
				return err
			}

			db, err := OpenDB(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			svc, err := service.NewServices(service.Repositories{
				Users:    repository.NewUsersRepository(db),
				Reports:  repository.NewReportsRepository(db),
				Sessions: repository.NewSessionsRepository(db),
			}, cfg)
			if err != nil {
				return err
			}

			id, err := svc.Auth.Register(cmd.Context(), email, password, confirmation)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user created: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the new user")
	cmd.MarkFlagRequired("email")

	return cmd
}

// readPassword читает пароль с терминала без эха либо строку из in.
func readPassword(cmd *cobra.Command, in *bufio.Reader, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
