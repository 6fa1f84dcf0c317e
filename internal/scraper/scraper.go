// Package scraper imports question/answer pairs from arbitrary web pages.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"github.com/rupamsaini/interviewprep/internal/question"
)

//go:generate mockgen -source=scraper.go -destination=../mocks/scraper/mock_scraper.go -package=mock_scraper

// Scraper returns candidate questions found at a URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) ([]question.Question, error)
}

// minQuestionLength is the length a heading must exceed to count as a question.
const minQuestionLength = 10

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	headingPattern    = regexp.MustCompile(`^h[1-6]$`)
)

type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// HTTPScraper fetches pages over HTTP and extracts questions from headings.
type HTTPScraper struct {
	client *resty.Client
}

func NewHTTPScraper(config Config) *HTTPScraper {
	client := resty.New()
	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	return &HTTPScraper{client: client}
}

func (s *HTTPScraper) Scrape(ctx context.Context, url string) ([]question.Question, error) {
	res, err := s.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("client.R.Get(%s) > %w", url, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status code: %d, url: %s", res.StatusCode(), url)
	}

	questions, err := Extract(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("Extract(%s) > %w", url, err)
	}
	return questions, nil
}

// Extract finds h1-h6, strong and b elements whose text contains "?" and is longer than ten characters.
// The answer is the text of the following sibling elements up to the next heading.
// Candidates without an answer are dropped.
func Extract(r io.Reader) ([]question.Question, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("html.Parse > %w", err)
	}

	var questions []question.Question
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if isCandidate(n) {
			text := cleanText(getTextContent(n))
			if strings.Contains(text, "?") && utf8.RuneCountInString(text) > minQuestionLength {
				if answer := collectAnswer(n); answer != "" {
					questions = append(questions, question.NewQuestion(
						text, answer, question.ScrapedCategory, question.ScrapedDifficulty, question.SourceScraped,
					))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return questions, nil
}

func isCandidate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return headingPattern.MatchString(n.Data) || n.Data == "strong" || n.Data == "b"
}

func collectAnswer(n *html.Node) string {
	var lines []string
	for next := nextElementSibling(n); next != nil; next = nextElementSibling(next) {
		if headingPattern.MatchString(next.Data) {
			break
		}
		if text := cleanText(getTextContent(next)); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func getTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var result strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result.WriteString(getTextContent(c))
	}
	return result.String()
}

func cleanText(s string) string {
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
