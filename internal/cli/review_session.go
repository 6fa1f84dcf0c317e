// Package cli implements the terminal interactions of the interviewprep command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"

	"github.com/rupamsaini/interviewprep/internal/question"
	"github.com/rupamsaini/interviewprep/internal/review"
)

var errEnd = errors.New("end")

//go:generate mockgen -source=review_session.go -destination=../mocks/cli/mock_reviewer.go -package=mock_cli

// Reviewer loads due questions and records grades. *selection.Policy satisfies it.
type Reviewer interface {
	DueQuestions(ctx context.Context) []question.Question
	SubmitReview(ctx context.Context, id int64, quality int) (*question.Question, error)
}

var qualityShortcuts = map[string]int{
	"a": review.QualityAgain,
	"h": review.QualityHard,
	"g": review.QualityGood,
	"e": review.QualityEasy,
}

// ParseQuality accepts a grade 0-5 or the first letter of Again, Hard, Good, or Easy.
func ParseQuality(input string) (int, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if quality, ok := qualityShortcuts[input]; ok {
		return quality, nil
	}
	for quality, label := range review.Labels {
		if input == strings.ToLower(label) {
			return quality, nil
		}
	}
	quality, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("%q is not a grade: %w", input, review.ErrInvalidQuality)
	}
	if err := review.ValidateQuality(quality); err != nil {
		return 0, err
	}
	return quality, nil
}

// ReviewSessionCLI walks through the due questions one by one.
type ReviewSessionCLI struct {
	reviewer     Reviewer
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	location     *time.Location
	bold         *color.Color
	italic       *color.Color
	good         *color.Color

	queue    []question.Question
	reviewed atomic.Int64
}

type ReviewSessionOption func(*ReviewSessionCLI)

// WithLocation prints review dates in loc. Dates keep their own zone otherwise.
func WithLocation(loc *time.Location) ReviewSessionOption {
	return func(cli *ReviewSessionCLI) {
		cli.location = loc
	}
}

func NewReviewSessionCLI(reviewer Reviewer, stdin io.Reader, stdout io.Writer, opts ...ReviewSessionOption) *ReviewSessionCLI {
	cli := &ReviewSessionCLI{
		reviewer:     reviewer,
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: &lockedWriter{w: stdout},
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		good:         color.New(color.FgGreen),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// lockedWriter serializes writes from the session goroutine and Run.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// Reviewed returns how many questions were graded so far.
func (cli *ReviewSessionCLI) Reviewed() int {
	return int(cli.reviewed.Load())
}

// Run reviews every due question until the queue is empty, the user quits, or an interrupt arrives.
func (cli *ReviewSessionCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	cli.queue = cli.reviewer.DueQuestions(ctx)
	if len(cli.queue) == 0 {
		fmt.Fprintln(cli.stdoutWriter, "No questions are due. Come back later!")
		return nil
	}
	fmt.Fprintf(cli.stdoutWriter, "Starting review session with %d questions\n\n", len(cli.queue))

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for len(cli.queue) > 0 {
			if ctx.Err() != nil {
				return
			}
			if err := cli.Session(ctx); err != nil {
				if !errors.Is(err, errEnd) {
					errCh <- err
				}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	// The session goroutine may still be blocked on stdin after an interrupt.
	fmt.Fprintf(cli.stdoutWriter, "Reviewed %d questions.\n", cli.Reviewed())
	return nil
}

func (cli *ReviewSessionCLI) readLine() (string, error) {
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errEnd
		}
		return "", fmt.Errorf("stdinReader.ReadString > %w", err)
	}
	return strings.TrimSpace(line), nil
}

func isQuit(input string) bool {
	return input == "q" || input == "quit" || input == "exit"
}

// Session shows the next due question, reveals the answer, and records a grade.
func (cli *ReviewSessionCLI) Session(ctx context.Context) error {
	q := cli.queue[0]

	fmt.Fprintln(cli.stdoutWriter, cli.bold.Sprint(q.Question))
	fmt.Fprintln(cli.stdoutWriter, cli.italic.Sprintf("%s | %s", q.Category, q.Difficulty))
	fmt.Fprint(cli.stdoutWriter, "Press Enter to show the answer (q to quit): ")
	input, err := cli.readLine()
	if err != nil {
		return err
	}
	if isQuit(input) {
		return errEnd
	}

	fmt.Fprintln(cli.stdoutWriter)
	WriteAnswer(cli.stdoutWriter, q)

	for {
		fmt.Fprint(cli.stdoutWriter, "Grade [0-5, a=Again h=Hard g=Good e=Easy]: ")
		input, err := cli.readLine()
		if err != nil {
			return err
		}
		if isQuit(input) {
			return errEnd
		}
		quality, err := ParseQuality(input)
		if err != nil {
			fmt.Fprintf(cli.stdoutWriter, "Invalid grade: %v\n", err)
			continue
		}

		updated, err := cli.reviewer.SubmitReview(ctx, q.ID, quality)
		if err != nil {
			return fmt.Errorf("reviewer.SubmitReview(%d) > %w", q.ID, err)
		}
		cli.reviewed.Add(1)
		cli.queue = cli.queue[1:]
		next := updated.NextReviewDate
		if cli.location != nil {
			next = next.In(cli.location)
		}
		fmt.Fprintln(cli.stdoutWriter, cli.good.Sprintf("Next review on %s (in %d days)\n",
			next.Format("2006-01-02"), updated.Interval))
		return nil
	}
}
