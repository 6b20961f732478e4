package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Abhishek8211/energyiq/internal/ai"
)

// NewAskCmd creates the ask command for one-shot questions.
func NewAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a free-form electricity question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	client, _ := ai.NewClientFromEnv()
	answer, source, err := ai.NewService(client).Ask(cmd.Context(), question)
	if err != nil {
		return err
	}

	cmd.Println(answer)
	if source != ai.SourceAI {
		logger.Debug().Str("source", source).Msg("served non-ai answer")
	}
	return nil
}
