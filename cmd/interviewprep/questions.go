package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/cli"
	"github.com/rupamsaini/interviewprep/internal/question"
	"github.com/rupamsaini/interviewprep/internal/seed"
	"github.com/rupamsaini/interviewprep/internal/selection"
)

func newListCommand() *cobra.Command {
	var (
		category   string
		difficulty string
		source     string
		dueOnly    bool
	)

	command := &cobra.Command{
		Use:   "list",
		Short: "List stored questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedSource, ok := question.ParseSource(source)
			if !ok {
				return fmt.Errorf("invalid source: %s", source)
			}
			filters := question.Filters{Category: category, Difficulty: difficulty, Source: parsedSource}

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

				var matched []question.Question
				for _, q := range questions {
					if filters.Matches(q) {
						matched = append(matched, q)
					}
				}
				return cli.WriteTable(cmd.OutOrStdout(), matched)
			})
		},
	}

	flags := command.Flags()
	flags.StringVar(&category, "category", question.All, "category filter")
	flags.StringVar(&difficulty, "difficulty", question.All, "difficulty filter")
	flags.StringVar(&source, "source", question.All, "source filter: local, ai, scraped or All")
	flags.BoolVar(&dueOnly, "due", false, "only list questions due for review")
	return command
}

func newDeleteCommand() *cobra.Command {
	var scope string

	command := &cobra.Command{
		Use:   "delete",
		Short: "Delete questions in a scope",
		Long: fmt.Sprintf(`Delete questions in a scope.

Scopes are All, Today, cat:<category> and diff:<difficulty>. Known scopes:
  %v`, selection.Scopes()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				if c.Policy.ResolveDeletionScope(scope).Kind == question.DeleteNone {
					return fmt.Errorf("unknown scope: %s", scope)
				}
				deleted := c.Policy.DeleteByScope(cmd.Context(), scope)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d questions (%s)\n", deleted, selection.ScopeLabel(scope))
				return nil
			})
		},
	}

	command.Flags().StringVar(&scope, "scope", "", "deletion scope such as All, Today, cat:Kotlin or diff:Senior")
	_ = command.MarkFlagRequired("scope")
	return command
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <url>",
		Short: "Import questions from a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				imported := c.Policy.ImportFromURL(cmd.Context(), url)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions from %s\n", imported, url)
				return nil
			})
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string

	command := &cobra.Command{
		Use:   "seed",
		Short: "Import questions from a YAML file, or the bundled dataset when no file is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				questions []question.Question
				err       error
			)
			if file == "" {
				questions, err = seed.Bundled()
			} else {
				questions, err = loadSeedFile(file)
			}
			if err != nil {
				return err
			}

			return withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				count, err := c.Importer.Import(cmd.Context(), questions)
				if err != nil {
					return fmt.Errorf("importer.Import > %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions\n", count)
				return nil
			})
		},
	}

	command.Flags().StringVar(&file, "file", "", "YAML file with question records")
	return command
}

func loadSeedFile(path string) ([]question.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	questions, err := seed.Load(f)
	if err != nil {
		return nil, fmt.Errorf("seed.Load(%s) > %w", path, err)
	}
	return questions, nil
}
