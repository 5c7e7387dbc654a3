package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dreamgate/internal/config"
)

var (
	brainIntent string
	brainStyle  string
)

// brainCmd manages brain files (intent + style)
var brainCmd = &cobra.Command{
	Use:   "brain",
	Short: "Manage brain files (intent and style)",
}

var brainListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List brain*.json files in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listBrains,
}

var brainCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a brain file",
	Long: `Creates <name>.json (prefixed with "brain_" when the name does not
already start with "brain") in the current directory.

Example:
  dreamgate brain create quantum --intent "explore the quantum veil" --style poetic`,
	Args: cobra.ExactArgs(1),
	RunE: createBrain,
}

var brainActivateCmd = &cobra.Command{
	Use:   "activate [file]",
	Short: "Make a brain file the default for dream and batch runs",
	Args:  cobra.ExactArgs(1),
	RunE:  activateBrain,
}

func init() {
	brainCreateCmd.Flags().StringVar(&brainIntent, "intent", "", "Intent text (required)")
	brainCreateCmd.Flags().StringVar(&brainStyle, "style", "", "Stylistic register for the oracle")
	brainCreateCmd.MarkFlagRequired("intent")

	brainCmd.AddCommand(brainListCmd)
	brainCmd.AddCommand(brainCreateCmd)
	brainCmd.AddCommand(brainActivateCmd)
}

func listBrains(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	paths, names, err := config.DiscoverBrains(dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("no brain*.json files in %s\n", dir)
		return nil
	}
	for _, name := range names {
		b, err := config.LoadBrain(paths[name])
		if err != nil {
			fmt.Printf("%-24s (invalid: %v)\n", name, err)
			continue
		}
		fmt.Printf("%-24s %s\n", name, b.Intent)
	}
	return nil
}

func createBrain(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !strings.HasPrefix(name, "brain") {
		name = "brain_" + name
	}
	path := name + ".json"
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	b := &config.Brain{Intent: brainIntent, Style: brainStyle}
	if err := b.Save(path); err != nil {
		return err
	}
	fmt.Printf("created %s\n", path)
	return nil
}

func activateBrain(cmd *cobra.Command, args []string) error {
	b, err := config.LoadBrain(args[0])
	if err != nil {
		return err
	}
	target := filepath.Join(baseDir(), "brain.json")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if err := b.Save(target); err != nil {
		return err
	}
	fmt.Printf("activated: %s\n", b.Intent)
	return nil
}
