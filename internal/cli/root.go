// Package cli implements the soapnote command line: note generation from a
// file, stdin or line-by-line dictation, PDF export and the audit log.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/generation"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/config"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/database"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
)

// GeneratorFactory builds the note generator for one command run
type GeneratorFactory func(cfg *config.Config, log *logger.Logger) (interfaces.NoteGenerator, error)

// DatabaseOpener connects to the audit database
type DatabaseOpener func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.DB, error)

// env carries what every command needs; it is filled in before a command runs
type env struct {
	fs           afero.Fs
	newGenerator GeneratorFactory
	openDatabase DatabaseOpener
	loadConfig   func() (*config.Config, error)

	cfg    *config.Config
	logger *logger.Logger
}

// Option configures the root command
type Option func(*env)

// WithFs sets the filesystem used for --file and --out paths
func WithFs(fs afero.Fs) Option {
	return func(e *env) { e.fs = fs }
}

// WithGeneratorFactory replaces the configured generation client
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(e *env) { e.newGenerator = f }
}

// WithDatabaseOpener replaces the PostgreSQL connection used by audit
func WithDatabaseOpener(f DatabaseOpener) Option {
	return func(e *env) { e.openDatabase = f }
}

// WithConfig skips loading configuration from the environment
func WithConfig(cfg *config.Config) Option {
	return func(e *env) {
		e.loadConfig = func() (*config.Config, error) { return cfg, nil }
	}
}

// NewRoot builds the soapnote command tree
func NewRoot(opts ...Option) *cobra.Command {
	e := &env{
		fs:           afero.NewOsFs(),
		newGenerator: defaultGenerator,
		openDatabase: defaultDatabase,
		loadConfig:   config.Load,
	}
	for _, opt := range opts {
		opt(e)
	}

	var verbose bool

	cmd := &cobra.Command{
		Use:           "soapnote",
		Short:         "Generate structured SOAP notes from consultation transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			e.cfg = cfg

			// logs go to stderr so stdout stays pipeable JSON
			if verbose {
				e.logger = logger.NewWithOutput(cfg.LogLevel, cmd.ErrOrStderr())
			} else {
				e.logger = logger.Discard()
			}
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write structured logs to stderr")

	cmd.AddCommand(newGenerateCmd(e))
	cmd.AddCommand(newExampleCmd(e))
	cmd.AddCommand(newDictateCmd(e))
	cmd.AddCommand(newExportCmd(e))
	cmd.AddCommand(newAuditCmd(e))
	return cmd
}

// defaultGenerator selects proxied or direct mode once from configuration
func defaultGenerator(cfg *config.Config, log *logger.Logger) (interfaces.NoteGenerator, error) {
	client, mode, err := generation.NewClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	return generation.NewService(client, mode, log), nil
}

func defaultDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.DB, error) {
	return database.NewConnection(ctx, &cfg.Database, log)
}

func writeLine(w io.Writer, a ...interface{}) {
	_, _ = fmt.Fprintln(w, a...)
}
