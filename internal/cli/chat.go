package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Abhishek8211/energyiq/internal/ai"
	"github.com/Abhishek8211/energyiq/internal/config"
	"github.com/Abhishek8211/energyiq/internal/dialogue"
	"github.com/Abhishek8211/energyiq/internal/history"
	"github.com/Abhishek8211/energyiq/internal/rates"
	"github.com/Abhishek8211/energyiq/internal/tui"
)

// NewChatCmd creates the chat command, the interactive calculator.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the conversational energy calculator",
		RunE:  runChat,
	}
	cmd.Flags().Bool("plain", false, "line-based chat without the TUI")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := config.Global()

	country := countryForCmd(cmd)
	tariff, found := rates.Lookup(country)
	if !found {
		cmd.PrintErrf("No rate on file for %q, using %s (%s%.2f/kWh)\n",
			country, tariff.Country, tariff.Currency, tariff.RatePerKwh)
	}

	var store history.Store
	if fs, err := history.NewFileStore(cfg.History.Path, cfg.History.MaxEntries); err != nil {
		logger.Warn().Err(err).Msg("history unavailable, calculations will not be saved")
	} else {
		store = fs
	}

	controller := dialogue.NewController(store, nil)

	client, err := ai.NewClientFromEnv()
	if err != nil {
		logger.Debug().Msg("no gemini api key, free-form questions get fallback answers")
	}
	svc := ai.NewService(client)

	plain, _ := cmd.Flags().GetBool("plain")
	if plain || !isTerminal(os.Stdout) {
		return runPlainChat(cmd, controller, tariff, svc)
	}

	model := tui.NewChatModel(cmd.Context(), controller, tariff, svc.Ask)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}

// runPlainChat runs the dialogue over plain stdin/stdout lines. Free-form
// questions are answered synchronously here; only the TUI needs the
// out-of-band path.
func runPlainChat(cmd *cobra.Command, controller *dialogue.Controller, tariff rates.Tariff, svc *ai.Service) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	state, msgs := controller.Start(tariff)
	printChatMessages(out, msgs)
	fmt.Fprint(out, "> ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			fmt.Fprint(out, "> ")
			continue
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			fmt.Fprintln(out, "Goodbye! 👋")
			return nil
		}

		state, msgs = controller.Transition(ctx, state, line)
		printChatMessages(out, msgs)

		if question := state.PendingQuestion; question != "" {
			state.PendingQuestion = ""
			answer, _, askErr := svc.Ask(ctx, question)
			if askErr != nil {
				answer = "Sorry, something went wrong answering that. Please try again."
			}
			fmt.Fprintln(out, answer)
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func printChatMessages(w io.Writer, msgs []dialogue.Message) {
	for _, m := range msgs {
		fmt.Fprintln(w, m.Content)
		if len(m.Options) > 0 {
			fmt.Fprintf(w, "[%s]\n", strings.Join(m.Options, " | "))
		}
		fmt.Fprintln(w)
	}
}
