package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"dreamgate/internal/theme"
)

// themesCmd inspects the theme tables
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List configured themes with their pools",
	RunE:  listThemes,
}

var themesResolveCmd = &cobra.Command{
	Use:   "resolve [text...]",
	Short: "Show which theme a piece of text resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE:  resolveTheme,
}

func init() {
	themesCmd.AddCommand(themesResolveCmd)
}

func listThemes(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	nameStyle := lipgloss.NewStyle().Bold(true).Width(16)
	for _, t := range cfg.Themes {
		var swatches []string
		for _, poolID := range t.Colors {
			for _, c := range cfg.Colors.Palettes[poolID] {
				swatches = append(swatches, lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("●"))
			}
		}
		var glyphs []string
		for _, poolID := range t.Symbols {
			glyphs = append(glyphs, cfg.Symbols.Pools[poolID]...)
		}
		fmt.Printf("%s %s  %s\n", nameStyle.Render(t.ID),
			strings.Join(glyphs, " "), strings.Join(swatches, ""))
		fmt.Printf("%s keywords: %s\n", strings.Repeat(" ", 16), strings.Join(t.Keywords, ", "))
	}
	return nil
}

func resolveTheme(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	id := theme.Resolve(text, cfg.Themes)
	concept := theme.ExtractConcept(text, cfg.Themes)
	if id == "" {
		fmt.Printf("theme: none (no keywords matched)\nconcept: %s\n", concept)
		return nil
	}
	fmt.Printf("theme: %s\nconcept: %s\n", id, concept)
	return nil
}
