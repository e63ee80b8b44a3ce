package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/quiz"
	"github.com/abhisek/quizgen/internal/quizgen"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Generate history quizzes about some content",
	Example: `  quizgen history --content "Lecompton Constitution" --keyword Missouri
  quizgen history --content "Treaty of Ghent" -k 1814 -k "War of 1812" -n 3`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("content", "", "Historical content the quiz is about (required)")
	historyCmd.Flags().StringArrayP("keyword", "k", nil, "Keyword to steer the question (repeatable)")
	historyCmd.Flags().IntP("count", "n", 1, "Number of quizzes to generate")
	_ = historyCmd.MarkFlagRequired("content")
}

func runHistory(cmd *cobra.Command, args []string) error {
	content, _ := cmd.Flags().GetString("content")
	keywords, _ := cmd.Flags().GetStringArray("keyword")
	count, _ := cmd.Flags().GetInt("count")

	provider, cleanup, err := newProvider(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	gen := quizgen.NewHistory(provider, appConfig.Generator, log)
	req := quizgen.HistoryRequest{Content: content, Keywords: keywords}

	if count == 1 {
		q, err := gen.CreateQuiz(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("generate history quiz: %w", err)
		}
		return writeJSON(cmd, q)
	}

	coll, err := gen.CreateQuizzes(cmd.Context(), req, count)
	if err != nil {
		return fmt.Errorf("generate history quizzes: %w", err)
	}
	return writeJSON(cmd, coll)
}

// writeJSON prints v to stdout as indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	out, err := quiz.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
