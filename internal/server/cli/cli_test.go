package cli_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/cli"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/config"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	body := `
db:
  dsn: postgres://u:p@localhost:5432/vax?sslmode=disable
password:
  hasher: bcrypt
  bcrypt:
    cost: 4
log:
  dir: ` + filepath.Join(dir, "logs") + `
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// stubDB подменяет открытие БД на sqlmock до конца теста.
func stubDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := cli.OpenDB
	cli.OpenDB = func(context.Context, config.DBConfig) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { cli.OpenDB = orig })
	return mock
}

// expectEmailFree ожидает проверку email перед вставкой, пользователя нет.
func expectEmailFree(mock sqlmock.Sqlmock, email string) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash FROM users`)).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}))
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd("1.0.0", "2026-10-14")

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))

	err := root.Execute()
	return out.String(), err
}

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := cli.NewRootCmd("1.0.0", "2026-10-14")

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, w := range []string{"serve", "migrate", "create-user", "version"} {
		assert.True(t, names[w], "expected subcommand %q", w)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version=1.0.0")
	assert.Contains(t, out, "build_date=2026-10-14")
}

func TestRootCmd_LoadsEnvFile(t *testing.T) {
	const key = "VAXREPORT_CLI_TEST_VAR"
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte(key+"=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(key) })

	root := cli.NewRootCmd("1.0.0", "2026-10-14")
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"version", "--env-file", env})
	require.NoError(t, root.Execute())

	assert.Equal(t, "loaded", os.Getenv(key))
}

func TestCreateUser_OK(t *testing.T) {
	cfg := writeConfig(t)
	mock := stubDB(t)

	id := uuid.New()
	expectEmailFree(mock, "admin@example.com")
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password_hash)`)).
		WithArgs("admin@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	mock.ExpectClose()

	out, err := run(t, "secret\nsecret\n", "create-user", "--config", cfg, "--email", "Admin@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "user created: "+id.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_PasswordMismatch(t *testing.T) {
	cfg := writeConfig(t)
	mock := stubDB(t)
	expectEmailFree(mock, "admin@example.com")
	mock.ExpectClose()

	_, err := run(t, "secret\nother\n", "create-user", "--config", cfg, "--email", "admin@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_EmailTaken(t *testing.T) {
	cfg := writeConfig(t)
	mock := stubDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash FROM users`)).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(uuid.New().String(), "hash"))
	mock.ExpectClose()

	_, err := run(t, "secret\nother\n", "create-user", "--config", cfg, "--email", "admin@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_RequiresEmail(t *testing.T) {
	_, err := run(t, "", "create-user", "--config", writeConfig(t))
	require.Error(t, err)
}

func TestMigrate_RejectsUnknownDirection(t *testing.T) {
	_, err := run(t, "", "migrate", "sideways", "--config", writeConfig(t))
	require.Error(t, err)
}

func TestMigrate_Direction(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{nil, config.MigrateUp},
		{[]string{"down"}, config.MigrateDown},
	} {
		cfg := writeConfig(t)
		mock := stubDB(t)
		mock.ExpectClose()

		var got string
		orig := cli.Migrate
		cli.Migrate = func(_ *sql.DB, source, direction string, _ *zap.SugaredLogger) error {
			assert.Equal(t, "file://migrations/postgres", source)
			got = direction
			return nil
		}
		t.Cleanup(func() { cli.Migrate = orig })

		out, err := run(t, "", append(append([]string{"migrate"}, tc.args...), "--config", cfg)...)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.Contains(t, out, "migrations "+tc.want+" applied")
	}
}

func TestServe_DBError(t *testing.T) {
	cfg := writeConfig(t)

	orig := cli.OpenDB
	cli.OpenDB = func(context.Context, config.DBConfig) (*sql.DB, error) { return nil, errors.New("db down") }
	t.Cleanup(func() { cli.OpenDB = orig })

	_, err := run(t, "", "serve", "--config", cfg)
	require.EqualError(t, err, "db down")
}

func TestServe_BadConfig(t *testing.T) {
	_, err := run(t, "", "serve", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
