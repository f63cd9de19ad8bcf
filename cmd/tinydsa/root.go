package main

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pornin/go-tiny-dsa/internal/config"
	"github.com/pornin/go-tiny-dsa/internal/logger"
	"github.com/pornin/go-tiny-dsa/internal/store"
	"github.com/pornin/go-tiny-dsa/tinydsa"
	"github.com/pornin/go-tiny-dsa/vshash"
)

// Shared state of one command invocation.
type app struct {
	configPath string
	cfg        config.Config
	log        zerolog.Logger
	db         *store.DB
}

// NewRootCmd builds the tinydsa command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "tinydsa",
		Short:         "Small-integer DSA: parameters, keys, signatures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to config file (json or yaml)")
	flags.Int("log-level", 1, "log level (0=debug ... 5=panic)")
	flags.String("log-format", "console", "log format (json or console)")
	flags.String("db", "tinydsa.db", "path to the SQLite database")

	rootCmd.AddCommand(
		primesCmd(a),
		paramsCmd(a),
		keygenCmd(a),
		hashCmd(a),
		signCmd(a),
		verifyCmd(a),
		stressCmd(a),
	)
	return rootCmd
}

// Load the configuration; flags given on the command line take
// precedence over the file and the environment.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetInt("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return errors.Errorf("log format must be 'json' or 'console', got %q", cfg.LogFormat)
	}
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	return nil
}

// Open the database on first use.
func (a *app) store() (*store.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := store.OpenFileDB(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Core settings for one operation.
func (a *app) tiny(label string) *tinydsa.Config {
	return a.cfg.Tiny(&a.log, label)
}

// Hash modes accepted by --mode.
const (
	modeChunks    = "chunks"
	modeCollapsed = "collapsed"
	modeShake     = "shake"
)

func hashFor(mode string) (tinydsa.HashFunc, error) {
	switch mode {
	case modeChunks, "":
		return vshash.Sum, nil
	case modeCollapsed:
		return vshash.CollapsedSum, nil
	case modeShake:
		return vshash.Shake256, nil
	default:
		return nil, errors.Errorf("unknown hash mode %q (want chunks, collapsed or shake)", mode)
	}
}
