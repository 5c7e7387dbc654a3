package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"dreamgate/internal/echo"
)

// echoesCmd renders the per-concept echo files
var echoesCmd = &cobra.Command{
	Use:   "echoes [concept]",
	Short: "Read the echo files collected for a concept",
	Long: `Without arguments, lists the concepts that have echo files.
With a concept name, renders that concept's markdown echoes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: showEchoes,
}

func showEchoes(cmd *cobra.Command, args []string) error {
	writer := echo.NewWriter(baseDir())

	if len(args) == 0 {
		concepts, err := writer.ListEchoes()
		if err != nil {
			return err
		}
		if len(concepts) == 0 {
			fmt.Println("no echoes yet")
			return nil
		}
		fmt.Println(strings.Join(concepts, "\n"))
		return nil
	}

	path := writer.EchoPath(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no echoes for concept %q", args[0])
		}
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(string(data))
		return nil
	}
	out, err := renderer.Render(string(data))
	if err != nil {
		fmt.Print(string(data))
		return nil
	}
	fmt.Print(out)
	return nil
}
