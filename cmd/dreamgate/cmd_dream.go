package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dreamgate/internal/config"
	"dreamgate/internal/dream"
	"dreamgate/internal/echo"
	"dreamgate/internal/oracle"
)

var brainPath string

// dreamCmd runs a single generation attempt
var dreamCmd = &cobra.Command{
	Use:   "dream [intent...]",
	Short: "Generate one symbolic artifact from an intent",
	Long: `Runs a single generation attempt: resolves the intent's theme,
asks the oracle for an artifact, and falls back to local symbolic
selection if the oracle fails. The artifact is printed, journaled,
and echoed into its concept file.

Examples:
  dreamgate dream seeking wisdom in transformation
  dreamgate dream --brain brain.json
  dreamgate dream -b gemini what lies beyond the quantum veil`,
	RunE: runDream,
}

func init() {
	dreamCmd.Flags().StringVar(&brainPath, "brain", "", "Brain file with intent and style (overrides args)")
}

func runDream(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	brain, err := resolveBrain(args)
	if err != nil {
		return err
	}

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Dreaming", zap.String("intent", brain.Intent), zap.String("config", cfgPath))

	client, err := oracle.NewClient(ctx, backend, cfg.Model)
	if err != nil {
		return err
	}

	attemptTimeout := timeout
	if attemptTimeout <= 0 {
		attemptTimeout = cfg.ModelTimeout()
	}
	runner := dream.NewRunner(client, attemptTimeout, newRNG())
	outcome := runner.Run(ctx, brain, cfg)

	if err := persistOutcome(outcome, outcome.ID); err != nil {
		logger.Warn("Failed to persist artifact", zap.Error(err))
	}

	printOutcome(outcome)
	return nil
}

// resolveBrain builds the brain from --brain, the args, or the active
// brain file, in that order.
func resolveBrain(args []string) (*config.Brain, error) {
	if brainPath != "" {
		return config.LoadBrain(brainPath)
	}
	if len(args) > 0 {
		return &config.Brain{Intent: strings.Join(args, " ")}, nil
	}
	active := filepath.Join(baseDir(), "brain.json")
	if _, err := os.Stat(active); err == nil {
		return config.LoadBrain(active)
	}
	return nil, fmt.Errorf("no intent given: pass one as arguments, use --brain, or activate a brain with 'dreamgate brain activate'")
}

// persistOutcome journals the outcome and, when an artifact exists,
// writes output.json and the concept echo.
func persistOutcome(o dream.Outcome, runID string) error {
	journal, err := echo.NewJournal(filepath.Join(baseDir(), "journal.db"))
	if err != nil {
		return err
	}
	defer journal.Close()

	revisions := 0
	if o.Concept != "" {
		revisions, _ = journal.ConceptRevisions(o.Concept)
	}
	if err := journal.Record(runID, o); err != nil {
		return err
	}

	writer := echo.NewWriter(baseDir())
	if o.Prompt != "" {
		if err := writer.WriteSession(sessionFor(o)); err != nil {
			return err
		}
	}

	if o.Artifact == nil {
		return nil
	}
	if err := writer.WriteOutput(o.Artifact); err != nil {
		return err
	}
	return writer.AppendEcho(o.Concept, o.Artifact, revisions)
}

// sessionFor builds the transcript record for one attempt.
func sessionFor(o dream.Outcome) echo.Session {
	return echo.Session{
		AttemptID: o.ID,
		Backend:   o.Backend,
		Prompt:    o.Prompt,
		Raw:       o.Raw,
		Outcome:   o.Status.String(),
	}
}

var (
	symbolStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(11)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

func printOutcome(o dream.Outcome) {
	if o.Artifact == nil {
		fmt.Printf("attempt %s failed: %v\n", o.ID, o.Err)
		return
	}
	a := o.Artifact
	colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color))

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Symbol"), colorStyle.Inherit(symbolStyle).Render(a.Symbol))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Phrase"), a.Phrase)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Color"), colorStyle.Render(a.Color))
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Reasoning"), a.Reasoning)
	theme := o.Theme
	if theme == "" {
		theme = "none"
	}
	fmt.Fprintf(&b, "%s %s · %s %s · %s %s · %s %v",
		labelStyle.Render("Theme"), theme,
		labelStyle.Render("Concept"), o.Concept,
		labelStyle.Render("Status"), o.Status,
		labelStyle.Render("Elapsed"), o.Elapsed.Round(time.Millisecond))
	fmt.Println(boxStyle.Render(b.String()))
}
