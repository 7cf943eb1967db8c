package internal

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vahti-ci/vahti/cmd/vahti/internal/clierr"
	"github.com/vahti-ci/vahti/internal/check"
	"github.com/vahti-ci/vahti/internal/config"
	"github.com/vahti-ci/vahti/internal/executil"
	"github.com/vahti-ci/vahti/internal/notify"
	"github.com/vahti-ci/vahti/internal/repo"
	"github.com/vahti-ci/vahti/internal/status"
)

// defaultLockTTL bounds how long a crashed invocation can keep the status
// file locked before the lock counts as stale.
const defaultLockTTL = 2 * time.Hour

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <repository> <status-file> <test-command>",
		Short: "Run one repository check and exit",
		Long: `Check updates the repository working copy, runs the test command if there are
new commits since the last run, and notifies on stdout (and over SMTP when
configured) whenever the test outcome changes.

Exit code 0 means no new commits or passing tests; exit code 1 means the
repository update failed, commit info could not be read, or the tests failed.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			repository, statusFile, testCommand := args[0], args[1], args[2]

			cfg, err := resolveConfig(cmd)
			if err != nil {
				return clierr.Wrap(1, "invalid configuration", err)
			}
			force, _ := cmd.Flags().GetBool("force")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}

			if cfg.Lock {
				lock, err := status.AcquireLock(statusFile, defaultLockTTL)
				if err != nil {
					return clierr.Wrap(1, "could not lock status file", err)
				}
				defer lock.Release()
			}

			backend, err := repo.New(repo.Kind(cfg.VCS), repository, repo.Options{
				Runner: executil.Shell{},
				Ref:    cfg.GitHub.Ref,
				Token:  cfg.GitHub.Token,
			})
			if err != nil {
				return clierr.Wrap(1, "invalid repository backend", err)
			}

			notifier := notify.New(notify.Config{
				Server:    cfg.SMTP.Server,
				Port:      cfg.SMTP.Port,
				Username:  cfg.SMTP.Username,
				Password:  cfg.SMTP.Password,
				From:      cfg.SMTP.From,
				Receivers: cfg.SMTP.Receivers,
			}, notify.WithOutput(cmd.OutOrStdout()), notify.WithErrorOutput(cmd.ErrOrStderr()))

			result, err := check.Run(ctx, check.Options{
				Repo:        backend,
				Runner:      executil.Shell{},
				Notifier:    notifier,
				Store:       status.NewFileStore(statusFile),
				TestCommand: testCommand,
				Force:       force,
			})
			if err != nil {
				return clierr.Wrap(1, "check failed", err)
			}
			if result.ExitCode() != 0 {
				return clierr.New(1, "tests failed")
			}
			return nil
		},
	}

	cmd.Flags().String("config", "", "YAML config file with notifier and backend settings")
	cmd.Flags().String("vcs", "svn", "Repository backend: svn, git or github")
	cmd.Flags().Bool("force", false, "Run tests even when no new commits are detected")
	cmd.Flags().Bool("lock", false, "Take an advisory lock on the status file to reject overlapping runs")
	cmd.Flags().Duration("timeout", 0, "Bound the whole invocation; 0 disables the timeout")
	cmd.Flags().String("github-ref", "", "Branch or ref for the github backend (default: default branch)")
	cmd.Flags().String("github-token", "", "API token for the github backend")
	cmd.Flags().String("smtp-server", "", "SMTP server address for mail out; empty disables email")
	cmd.Flags().Int("smtp-port", 25, "SMTP server port; 465 selects implicit TLS")
	cmd.Flags().String("smtp-user", "", "SMTP username")
	cmd.Flags().String("smtp-password", "", "SMTP password")
	cmd.Flags().String("smtp-from", "", "Sender email address")
	cmd.Flags().String("receivers", "", "Comma-separated notification receivers")

	return cmd
}

// resolveConfig loads the YAML config file when given and lets explicitly set
// flags override it. Flags left at their defaults never clobber file values.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("vcs") {
		cfg.VCS, _ = flags.GetString("vcs")
	}
	if flags.Changed("lock") {
		cfg.Lock, _ = flags.GetBool("lock")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("github-ref") {
		cfg.GitHub.Ref, _ = flags.GetString("github-ref")
	}
	if flags.Changed("github-token") {
		cfg.GitHub.Token, _ = flags.GetString("github-token")
	}
	if flags.Changed("smtp-server") {
		cfg.SMTP.Server, _ = flags.GetString("smtp-server")
	}
	if flags.Changed("smtp-port") {
		cfg.SMTP.Port, _ = flags.GetInt("smtp-port")
	}
	if flags.Changed("smtp-user") {
		cfg.SMTP.Username, _ = flags.GetString("smtp-user")
	}
	if flags.Changed("smtp-password") {
		cfg.SMTP.Password, _ = flags.GetString("smtp-password")
	}
	if flags.Changed("smtp-from") {
		cfg.SMTP.From, _ = flags.GetString("smtp-from")
	}
	if flags.Changed("receivers") {
		raw, _ := flags.GetString("receivers")
		cfg.SMTP.Receivers = config.SplitReceivers(raw)
	}

	return cfg, nil
}
