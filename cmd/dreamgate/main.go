package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dreamgate/internal/config"
	"dreamgate/internal/logging"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	backend    string
	seed       int64
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dreamgate",
	Short: "dreamgate - symbolic artifact generator",
	Long: `dreamgate turns a stated intent into a small symbolic artifact:
a glyph, a phrase, a color, and the reasoning that binds them.

An oracle backend (ollama or gemini) dreams the artifact; when the
oracle times out, misbehaves, or returns something malformed, a local
fallback composes one from the theme tables instead. Every artifact is
journaled and echoed into per-concept markdown files.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode owns the terminal; keep zap quiet there.
		if cmd.CalledAs() != "dreamgate" {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		return logging.Initialize(ws)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Dream config file (default: <workspace>/.dreamgate/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Oracle backend: ollama or gemini (default: from config)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Random seed for symbol/color selection (0 = time-based)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Oracle call timeout (default: from config)")

	rootCmd.AddCommand(dreamCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(brainCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(echoesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// baseDir returns the .dreamgate state directory under the workspace.
func baseDir() string {
	ws := workspace
	if ws == "" {
		ws, _ = os.Getwd()
	}
	return filepath.Join(ws, ".dreamgate")
}

// resolvedConfigPath returns the config file path, creating a default
// config on first use so every command works out of the box.
func resolvedConfigPath() (string, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(baseDir(), "config.yaml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && configPath == "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create workspace: %w", err)
		}
		if err := config.Default().Save(path); err != nil {
			return "", err
		}
	}
	return path, nil
}

// loadConfig resolves and loads the dream configuration.
func loadConfig() (*config.Config, string, error) {
	path, err := resolvedConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newRNG builds the injected random source. A zero seed means
// non-reproducible runs.
func newRNG() *rand.Rand {
	s := seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(s))
}
