package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/chat"
	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var exitWords = map[string]bool{"exit": true, "quit": true, ":q": true}

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the assistant",
		Long: `Talk to the assistant. With a message argument one turn is run and the
reply printed. Without one, a prompt loop runs until "exit" or end of input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := app.Sessions.Create()
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				return chatTurn(cmd, app, sess, strings.Join(args, " "))
			}

			next := lineReader(cmd.InOrStdin())
			if app.IsInteractive() {
				next = promptReader()
				fmt.Fprintln(out, formatter.Dim(`Type "exit" to leave.`))
			}
			for {
				text, err := next()
				if errors.Is(err, io.EOF) || errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				if err != nil {
					return err
				}
				text = strings.TrimSpace(text)
				if text == "" {
					continue
				}
				if exitWords[strings.ToLower(text)] {
					return nil
				}
				if err := chatTurn(cmd, app, sess, text); err != nil {
					fmt.Fprintln(out, formatter.StyleRed.Render("error: "+err.Error()))
				}
			}
		},
	}
}

func chatTurn(cmd *cobra.Command, app *App, sess *chat.Session, text string) error {
	out := cmd.OutOrStdout()
	stop := app.spin(cmd.ErrOrStderr(), "Thinking...")
	reply, err := app.Chat.Send(cmd.Context(), sess, text, func(e chat.Event) {
		if e.Type == chat.EventError {
			return
		}
		if line := formatter.FormatChatEvent(e); line != "" {
			stop()
			fmt.Fprintln(out, line)
		}
	})
	stop()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply.Message.Content)
	return nil
}

func lineReader(r io.Reader) func() (string, error) {
	scanner := bufio.NewScanner(r)
	return func() (string, error) {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
}

func promptReader() func() (string, error) {
	return func() (string, error) {
		var text string
		input := huh.NewInput().Title("You").Value(&text)
		input.WithTheme(chatTheme())
		err := input.Run()
		return text, err
	}
}

func chatTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	return t
}
