package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/rupamsaini/interviewprep/internal/question"
)

// WriteQuestion prints a question with its metadata, and the answer when showAnswer is set.
func WriteQuestion(w io.Writer, q question.Question, showAnswer bool) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	fmt.Fprintln(w, bold.Sprint(q.Question))
	fmt.Fprintln(w, faint.Sprintf("id: %d | Category: %s | Difficulty: %s | Source: %s", q.ID, q.Category, q.Difficulty, q.Source))
	if showAnswer {
		fmt.Fprintln(w)
		WriteAnswer(w, q)
	}
}

// WriteAnswer prints the answer, the explanation, and the code example.
func WriteAnswer(w io.Writer, q question.Question) {
	fmt.Fprintln(w, q.Answer)
	if q.Explanation != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.New(color.Italic).Sprint(q.Explanation))
	}
	if q.CodeExample != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.New(color.FgYellow).Sprint(q.CodeExample))
	}
	fmt.Fprintln(w)
}

// WriteTable prints one question per row.
func WriteTable(w io.Writer, questions []question.Question) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tDIFFICULTY\tSOURCE\tNEXT REVIEW\tQUESTION")
	for _, q := range questions {
		next := "-"
		if !q.NextReviewDate.IsZero() {
			next = q.NextReviewDate.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			q.ID, q.Category, q.Difficulty, q.Source, next, truncate(q.Question, 60))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("tabwriter.Flush > %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
