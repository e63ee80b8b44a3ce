package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgen/internal/quizgen"
)

var mathCmd = &cobra.Command{
	Use:   "math",
	Short: "Generate two-variable linear system word problems",
	RunE:  runMath,
}

func init() {
	mathCmd.Flags().IntP("count", "n", 1, "Number of quizzes to generate")
}

func runMath(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")

	provider, cleanup, err := newProvider(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	gen := quizgen.NewMath(provider, appConfig.Generator, log)

	if count == 1 {
		q, err := gen.CreateQuiz(cmd.Context())
		if err != nil {
			return fmt.Errorf("generate math quiz: %w", err)
		}
		return writeJSON(cmd, q)
	}

	coll, err := gen.CreateQuizzes(cmd.Context(), count)
	if err != nil {
		return fmt.Errorf("generate math quizzes: %w", err)
	}
	return writeJSON(cmd, coll)
}
