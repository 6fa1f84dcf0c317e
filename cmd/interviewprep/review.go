package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/cli"
)

func newReviewCommand() *cobra.Command {
	var (
		id      int64
		quality string
	)

	command := &cobra.Command{
		Use:   "review",
		Short: "Review due questions, or grade one question with --id and --quality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id != 0 && quality == "" {
				return fmt.Errorf("--quality is required with --id")
			}
			if id == 0 && quality != "" {
				return fmt.Errorf("--id is required with --quality")
			}

			var grade int
			if quality != "" {
				var err error
				if grade, err = cli.ParseQuality(quality); err != nil {
					return err
				}
			}

			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				out := cmd.OutOrStdout()
				if id == 0 {
					return cli.NewReviewSessionCLI(c.Policy, os.Stdin, out, cli.WithLocation(c.Location)).Run(cmd.Context())
				}

				q, err := c.Policy.SubmitReview(cmd.Context(), id, grade)
				if err != nil {
					return fmt.Errorf("policy.SubmitReview > %w", err)
				}
				fmt.Fprintf(out, "Graded question %d with quality %d. Next review on %s (in %d days)\n",
					q.ID,
					grade,
					q.NextReviewDate.In(c.Location).Format("2006-01-02"),
					q.Interval,
				)
				return nil
			})
		},
	}

	flags := command.Flags()
	flags.Int64Var(&id, "id", 0, "question to grade")
	flags.StringVar(&quality, "quality", "", "grade from 0 to 5, or again, hard, good, easy")
	return command
}
