package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/dbschema"
)

// EnvAdminPassword supplies the password for `admin create` without a prompt.
// #nosec G101 -- env var name, not a credential.
const EnvAdminPassword = "NOOR_ADMIN_PASSWORD"

var errNeedsDatabase = errors.New("NOOR_DATABASE_URL is required for this command")

// Run is the CLI entrypoint used by cmd/noor.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run(args []string) error {
	root := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	root.SetArgs(args)
	return root.Execute()
}

// NewRootCommand builds the noor command tree. Without a subcommand it serves
// HTTP.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "noor",
		Short:         "Mosque Noor admin server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	})

	adminCmd := &cobra.Command{Use: "admin", Short: "Manage admin accounts"}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin (password from " + EnvAdminPassword + " or stdin)",
		Args:  cobra.NoArgs,
		RunE:  runAdminCreate,
	}
	createCmd.Flags().String("username", "", "admin username")
	_ = createCmd.MarkFlagRequired("username")
	adminCmd.AddCommand(createCmd)
	root.AddCommand(adminCmd)

	sessionsCmd := &cobra.Command{Use: "sessions", Short: "Session maintenance"}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions and print how many were removed",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCleanup,
	})
	root.AddCommand(sessionsCmd)

	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errNeedsDatabase
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := dbschema.Apply(ctx, pool, cfg.DBSchema, log)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to schema %s\n", n, cfg.DBSchema)
	return nil
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	username, _ := cmd.Flags().GetString("username")

	a, cancel, err := openOpsApp(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close()

	pw, err := readAdminPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	admin, err := a.Verifier().CreateAdmin(cmd.Context(), username, pw)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Username, admin.ID)
	return nil
}

func runSessionsCleanup(cmd *cobra.Command, _ []string) error {
	a, cancel, err := openOpsApp(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close()

	n, err := a.Sessions().CleanupExpiredSessions(cmd.Context(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cleanup sessions: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired session(s)\n", n)
	return nil
}

// openOpsApp builds a database-backed App for one-shot commands. Logs go to
// stderr so stdout carries only the command result.
func openOpsApp(cmd *cobra.Command) (*App, context.CancelFunc, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, errNeedsDatabase
	}
	cfg.MetricsEnabled = false
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	cmd.SetContext(ctx)

	a, err := New(ctx, cfg, log)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return a, cancel, nil
}

func readAdminPassword(stdin io.Reader) (string, error) {
	if pw := os.Getenv(EnvAdminPassword); pw != "" {
		return pw, nil
	}
	sc := bufio.NewScanner(stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no password given: set %s or pipe it on stdin", EnvAdminPassword)
	}
	pw := strings.TrimRight(sc.Text(), "\r\n")
	if pw == "" {
		return "", errors.New("empty password")
	}
	return pw, nil
}
