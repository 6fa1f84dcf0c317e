package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/cli"
	"github.com/rupamsaini/interviewprep/internal/question"
	"github.com/rupamsaini/interviewprep/internal/selection"
)

type SourceMode string

func (m *SourceMode) Set(val string) error {
	for _, mode := range allSourceModes {
		if val == string(mode) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("invalid source: %s", val)
}

func (m SourceMode) String() string {
	return string(m)
}

func (m *SourceMode) Type() string {
	return "SourceMode"
}

const (
	// SourceModeAuto tries generation and falls back to a stored question.
	SourceModeAuto  SourceMode = "auto"
	SourceModeLocal SourceMode = "local"
	SourceModeAI    SourceMode = "ai"
)

var (
	_              pflag.Value = (*SourceMode)(nil)
	allSourceModes             = []SourceMode{SourceModeAuto, SourceModeLocal, SourceModeAI}
)

func newNextCommand() *cobra.Command {
	var (
		category   string
		difficulty string
		force      bool
		showAnswer bool
	)
	source := SourceModeAuto

	command := &cobra.Command{
		Use:   "next",
		Short: "Show the next question to practice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				// Filters left empty fall back to the stored preferences.
				req := c.Policy.ResolveRequest(cmd.Context(), selection.FetchRequest{
					Category:   category,
					Difficulty: difficulty,
					Force:      force,
				})

				var q *question.Question
				switch source {
				case SourceModeLocal:
					if category == "" && difficulty == "" {
						q = c.Policy.SelectPreferred(cmd.Context())
						break
					}
					q = c.Policy.SelectLocalRandom(cmd.Context(), question.Filters{Category: req.Category, Difficulty: req.Difficulty})
				case SourceModeAI:
					q = c.Policy.FetchOrGenerate(cmd.Context(), req)
				default:
					q = c.Policy.FetchOrFallback(cmd.Context(), req)
				}

				out := cmd.OutOrStdout()
				if q == nil {
					fmt.Fprintln(out, "No question matched. Try other filters or import more questions.")
					return nil
				}
				cli.WriteQuestion(out, *q, showAnswer)
				if !showAnswer {
					fmt.Fprintf(out, "\nGrade it with: interviewprep review --id %d --quality <0-5>\n", q.ID)
				}
				return nil
			})
		},
	}

	flags := command.Flags()
	flags.StringVar(&category, "category", "", fmt.Sprintf("category to pick from. One of %v or All. Defaults to the preferred_category preference", question.Categories))
	flags.StringVar(&difficulty, "difficulty", "", fmt.Sprintf("difficulty to pick from. One of %v or All. Defaults to the preferred_difficulty preference", question.Difficulties))
	flags.Var(&source, "source", fmt.Sprintf("where the question comes from. Possible values are %v", allSourceModes))
	flags.BoolVar(&force, "force", false, "skip the generation cooldown and chance checks")
	flags.BoolVar(&showAnswer, "answer", false, "show the answer right away")
	return command
}
