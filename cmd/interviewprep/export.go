package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/export"
	"github.com/rupamsaini/interviewprep/internal/question"
)

func newExportCommand() *cobra.Command {
	var (
		category string
		dueOnly  bool
		asPDF    bool
		name     string
	)

	command := &cobra.Command{
		Use:   "export",
		Short: "Export questions as a markdown or PDF study sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				var questions []question.Question
				if dueOnly {
					questions = c.Policy.DueQuestions(cmd.Context())
				} else {
					all, err := c.Questions.GetAll(cmd.Context())
					if err != nil {
						return fmt.Errorf("repository.GetAll > %w", err)
					}
					questions = all
				}

				filters := question.Filters{Category: category}
				var matched []question.Question
				for _, q := range questions {
					if filters.Matches(q) {
						matched = append(matched, q)
					}
				}
				if len(matched) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No questions to export")
					return nil
				}

				fileName := name
				if fileName == "" {
					fileName = "questions-" + time.Now().In(c.Location).Format("20060102")
				}
				exporter := export.NewExporter(c.Config.Export.Template, c.Config.Export.Directory)
				path, err := exporter.Export(fileName, matched, asPDF)
				if err != nil {
					return fmt.Errorf("exporter.Export > %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d questions to %s\n", len(matched), path)
				return nil
			})
		},
	}

	flags := command.Flags()
	flags.StringVar(&category, "category", question.All, "category filter")
	flags.BoolVar(&dueOnly, "due", false, "only export questions due for review")
	flags.BoolVar(&asPDF, "pdf", false, "also convert the sheet to PDF")
	flags.StringVar(&name, "name", "", "output file name without extension")
	return command
}
