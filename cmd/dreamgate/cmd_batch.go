package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dreamgate/internal/batch"
	"dreamgate/internal/cache"
	"dreamgate/internal/config"
	"dreamgate/internal/dream"
	"dreamgate/internal/echo"
	"dreamgate/internal/oracle"
)

var (
	batchBrainPath string
	brainsDir      string
	compareBackend string
)

// batchCmd runs attempts over a list of configuration sources
var batchCmd = &cobra.Command{
	Use:   "batch [config-sources...]",
	Short: "Run a batch of generation attempts",
	Long: `Runs one generation attempt per configuration source, strictly in
order, aggregating outcomes into run stats. Configurations are resolved
through the content-addressed cache, so repeated sources parse once.

With --compare, the whole source list runs a second pass against another
backend; the cache is shared across passes.

With --brains-dir, every brain*.json in the directory runs as its own
batch against the sources (or the default config when none are given).

Examples:
  dreamgate batch configs/a.yaml configs/b.yaml --brain brain.json
  dreamgate batch configs/*.yaml --compare gemini
  dreamgate batch --brains-dir ./brains`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchBrainPath, "brain", "", "Brain file with intent and style")
	batchCmd.Flags().StringVar(&brainsDir, "brains-dir", "", "Directory of brain*.json files to batch over")
	batchCmd.Flags().StringVar(&compareBackend, "compare", "", "Second backend for a comparison pass")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Cancelling batch after current attempt")
		cancel()
	}()

	sources := args
	if len(sources) == 0 {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		sources = []string{path}
	}

	// Backend construction needs a model config; use the first source
	// that parses. Per-attempt configs still come through the cache.
	seedCfg, err := firstLoadable(sources)
	if err != nil {
		return err
	}

	backends, err := buildBackends(ctx, seedCfg.Model)
	if err != nil {
		return err
	}

	cc, err := cache.New(filepath.Join(baseDir(), "cache"))
	if err != nil {
		return err
	}

	opts := []batch.Option{batch.WithMaxSources(seedCfg.MaxSources())}
	if timeout > 0 {
		opts = append(opts, batch.WithTimeout(timeout))
	}
	orch := batch.New(cc, newRNG(), opts...)

	brainNames, brains, err := resolveBatchBrains()
	if err != nil {
		return err
	}

	var lastErr error
	for _, name := range brainNames {
		brain := brains[name]
		logger.Info("Running batch", zap.String("brain", name), zap.Int("sources", len(sources)))
		stats, err := orch.RunBatch(ctx, brain, sources, backends)
		if err != nil && !errors.Is(err, batch.ErrAllAttemptsFailed) {
			if stats == nil {
				return err
			}
			lastErr = err
		}
		if errors.Is(err, batch.ErrAllAttemptsFailed) {
			lastErr = err
		}
		if stats != nil {
			persistBatch(stats)
			printStats(name, sources, stats)
		}
	}
	fmt.Printf("cache: %s\n", cc.Stats())
	return lastErr
}

func firstLoadable(sources []string) (*config.Config, error) {
	var lastErr error
	for _, s := range sources {
		cfg, err := config.Load(s)
		if err == nil {
			return cfg, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no loadable configuration source: %w", lastErr)
}

func buildBackends(ctx context.Context, model config.ModelConfig) ([]oracle.Client, error) {
	primary, err := oracle.NewClient(ctx, backend, model)
	if err != nil {
		return nil, err
	}
	backends := []oracle.Client{primary}
	if compareBackend != "" {
		second, err := oracle.NewClient(ctx, compareBackend, model)
		if err != nil {
			return nil, fmt.Errorf("comparison backend: %w", err)
		}
		if second.Name() == primary.Name() {
			return nil, fmt.Errorf("comparison backend %q is the same as the primary", compareBackend)
		}
		backends = append(backends, second)
	}
	return backends, nil
}

// resolveBatchBrains returns named brains: the single --brain (or active
// brain), or every brain in --brains-dir.
func resolveBatchBrains() ([]string, map[string]*config.Brain, error) {
	if brainsDir != "" {
		paths, names, err := config.DiscoverBrains(brainsDir)
		if err != nil {
			return nil, nil, err
		}
		if len(names) == 0 {
			return nil, nil, fmt.Errorf("no brain*.json files in %s", brainsDir)
		}
		brains := make(map[string]*config.Brain, len(names))
		for _, name := range names {
			b, err := config.LoadBrain(paths[name])
			if err != nil {
				return nil, nil, err
			}
			brains[name] = b
		}
		return names, brains, nil
	}

	saved := brainPath
	brainPath = batchBrainPath
	b, err := resolveBrain(nil)
	brainPath = saved
	if err != nil {
		return nil, nil, err
	}
	return []string{"brain"}, map[string]*config.Brain{"brain": b}, nil
}

func persistBatch(stats *batch.RunStats) {
	journal, err := echo.NewJournal(filepath.Join(baseDir(), "journal.db"))
	if err != nil {
		logger.Warn("Failed to open journal", zap.Error(err))
		return
	}
	defer journal.Close()

	writer := echo.NewWriter(baseDir())
	for _, o := range stats.Outcomes {
		revisions := 0
		if o.Concept != "" {
			revisions, _ = journal.ConceptRevisions(o.Concept)
		}
		if err := journal.Record(stats.RunID, o); err != nil {
			logger.Warn("Failed to journal outcome", zap.Error(err))
		}
		if o.Prompt != "" {
			if err := writer.WriteSession(sessionFor(o)); err != nil {
				logger.Warn("Failed to write session transcript", zap.Error(err))
			}
		}
		if o.Artifact != nil {
			if err := writer.AppendEcho(o.Concept, o.Artifact, revisions); err != nil {
				logger.Warn("Failed to write echo", zap.Error(err))
			}
		}
	}
}

func printStats(brainName string, sources []string, stats *batch.RunStats) {
	fmt.Printf("\n[%s] %s\n", brainName, stats)
	for i, o := range stats.Outcomes {
		source := sources[i%len(sources)]
		line := fmt.Sprintf("  %-28s %-9s backend=%s elapsed=%v",
			filepath.Base(source), o.Status, o.Backend, o.Elapsed.Round(time.Millisecond))
		if o.Err != nil {
			line += " error=" + strings.TrimSpace(o.Err.Error())
		} else if o.Artifact != nil {
			line += fmt.Sprintf(" %s %s", o.Artifact.Symbol, o.Artifact.Color)
		}
		if o.ErrorKind != dream.ErrNone && o.Err == nil {
			line += " (" + o.ErrorKind.String() + ")"
		}
		fmt.Println(line)
	}
}
