package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/Nidhi-o/AI-Powered-Knowledge-Engine-for-Smart-Support-and-Ticket-Resolution/internal"
	"github.com/spf13/cobra"
)

func NewChatCmd(askUC *internal.AskUseCase, feedbackUC *internal.FeedbackUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question session",
		Long:  `Ask questions in a loop. Each answer ends with a feedback prompt; the outcome feeds the knowledge-gap report.`,
		RunE:  makeChatRunner(askUC, feedbackUC),
	}

	cmd.Flags().IntP("number", "n", 0, "Context size (defaults to configured top-k)")
	cmd.Flags().String("provider", "", "LLM provider (defaults to configured default)")
	return cmd
}

func makeChatRunner(askUC *internal.AskUseCase, feedbackUC *internal.FeedbackUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		k, _ := cmd.Flags().GetInt("number")
		providerName, _ := cmd.Flags().GetString("provider")
		wsHint, _ := cmd.Flags().GetString("workspace")

		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())

		fmt.Fprintln(out, "Ask a question, or 'exit' to quit.")

		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				return scanner.Err()
			}

			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if question == "exit" || question == "quit" {
				return nil
			}

			answer, err := streamAnswer(cmd, askUC, internal.AskInput{
				Question: question, K: k, Workspace: wsHint, Provider: providerName,
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				continue
			}

			if err := collectFeedback(cmd, scanner, feedbackUC, wsHint, question, answer); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "record feedback: %v\n", err)
			}
		}
	}
}

type chatAnswer struct {
	text    string
	context string
}

func streamAnswer(cmd *cobra.Command, askUC *internal.AskUseCase, input internal.AskInput) (chatAnswer, error) {
	chunks, results, err := askUC.ExecuteStream(cmd.Context(), input)
	if err != nil {
		return chatAnswer{}, err
	}

	var sb strings.Builder
	for chunk := range chunks {
		fmt.Fprint(cmd.OutOrStdout(), chunk)
		sb.WriteString(chunk)
	}
	fmt.Fprintln(cmd.OutOrStdout())

	return chatAnswer{
		text:    sb.String(),
		context: internal.FormatContext(results),
	}, nil
}

func collectFeedback(
	cmd *cobra.Command,
	scanner *bufio.Scanner,
	feedbackUC *internal.FeedbackUseCase,
	wsHint, question string,
	answer chatAnswer,
) error {
	fmt.Fprint(cmd.OutOrStdout(), "Did this resolve your issue? [y/n/skip] ")
	if !scanner.Scan() {
		return scanner.Err()
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return feedbackUC.Execute(cmd.Context(), internal.FeedbackInput{
			Workspace: wsHint,
			Query:     question,
			Context:   answer.context,
			Answer:    answer.text,
			Helpful:   true,
		})
	case "n", "no":
		return feedbackUC.Execute(cmd.Context(), internal.FeedbackInput{
			Workspace: wsHint,
			Query:     question,
			Answer:    answer.text,
			Helpful:   false,
		})
	default:
		return nil
	}
}
