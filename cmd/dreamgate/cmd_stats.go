package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"dreamgate/internal/cache"
	"dreamgate/internal/echo"
	"dreamgate/internal/oracle"
)

var statsLimit int

// statsCmd shows journal history and backend health
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dream journal stats and backend health",
	RunE:  showStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "Number of recent dreams to show")
}

func showStats(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Printf("config: %s (model %s/%s, timeout %v)\n",
		cfgPath, cfg.Model.Backend, cfg.Model.Name, cfg.ModelTimeout())

	if cfg.Model.Backend == "ollama" {
		client := oracle.NewOllamaCLIClient(cfg.Model.Name)
		if err := client.CheckBinary(cmd.Context()); err != nil {
			fmt.Printf("backend: unavailable (%v)\n", err)
		} else {
			fmt.Printf("backend: %s ok\n", client.Name())
		}
	}

	cc, err := cache.New(filepath.Join(baseDir(), "cache"))
	if err != nil {
		return err
	}
	warm, err := cc.WarmEntries()
	if err != nil {
		return err
	}
	fmt.Printf("cache: %d warm entries\n", warm)

	journalPath := filepath.Join(baseDir(), "journal.db")
	if _, err := os.Stat(journalPath); os.IsNotExist(err) {
		fmt.Println("journal: empty (no dreams recorded yet)")
		return nil
	}
	journal, err := echo.NewJournal(journalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	counts, err := journal.ConceptCounts()
	if err != nil {
		return err
	}
	if len(counts) > 0 {
		type cc struct {
			concept string
			n       int
		}
		ordered := make([]cc, 0, len(counts))
		for c, n := range counts {
			ordered = append(ordered, cc{c, n})
		}
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].n != ordered[j].n {
				return ordered[i].n > ordered[j].n
			}
			return ordered[i].concept < ordered[j].concept
		})
		fmt.Println("\nconcepts:")
		for _, e := range ordered {
			fmt.Printf("  %-20s revisited %d times\n", e.concept, e.n)
		}
	}

	records, err := journal.Recent(statsLimit)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		fmt.Println("\nrecent dreams:")
		for _, r := range records {
			desc := r.Symbol
			if desc == "" {
				desc = "(no artifact)"
			}
			fmt.Printf("  %s  %-9s %-14s %s %s  %v\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.Concept,
				desc, r.Color, time.Duration(r.ElapsedMS)*time.Millisecond)
		}
	}
	return nil
}
