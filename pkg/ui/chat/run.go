package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReplyFunc turns one line of user input into the goose's reply lines. An
// empty slice with a nil error means the goose chose silence.
type ReplyFunc func(ctx context.Context, input string) ([]string, error)

// Run drives the interactive pond until the user quits.
func Run(ctx context.Context, replyFn ReplyFunc) error {
	model := newModel(ctx, replyFn)
	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(renderGoodbyeBanner())
	return nil
}

func renderGoodbyeBanner() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("22")).
		Padding(1, 2)

	return style.Render("🪿 honk honk, goodbye")
}
