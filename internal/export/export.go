// Package export renders questions into a markdown study sheet and optionally a PDF.
package export

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/mandolyte/mdtopdf"

	"github.com/rupamsaini/interviewprep/internal/question"
)

const embeddedTemplateName = "study-sheet.md.go.tmpl"

//go:embed templates/study-sheet.md.go.tmpl
var fallbackTemplate string

var difficultyLabels = map[string]string{
	"junior": "Junior",
	"mid":    "Mid-Level",
	"senior": "Senior",
}

func difficultyLabel(difficulty string) string {
	if label, ok := difficultyLabels[question.NormalizeDifficulty(difficulty)]; ok {
		return label
	}
	return difficulty
}

// ParseTemplate parses templatePath, falling back to the embedded template when it is missing or invalid.
func ParseTemplate(templatePath string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join":       strings.Join,
		"difficulty": difficultyLabel,
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a template, using the embedded one",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(embeddedTemplateName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

type Group struct {
	Category  string
	Questions []question.Question
}

// Sheet is the data passed to the template.
type Sheet struct {
	Title       string
	GeneratedAt time.Time
	Total       int
	Groups      []Group
}

// NewSheet groups questions by category in alphabetical order, keeping store order inside a group.
func NewSheet(title string, questions []question.Question, generatedAt time.Time) Sheet {
	byCategory := make(map[string][]question.Question)
	for _, q := range questions {
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	groups := make([]Group, 0, len(categories))
	for _, category := range categories {
		groups = append(groups, Group{Category: category, Questions: byCategory[category]})
	}
	return Sheet{
		Title:       title,
		GeneratedAt: generatedAt,
		Total:       len(questions),
		Groups:      groups,
	}
}

// Exporter writes study sheets into a directory.
type Exporter struct {
	templatePath string
	directory    string
	now          func() time.Time
}

func NewExporter(templatePath, directory string) *Exporter {
	return &Exporter{
		templatePath: templatePath,
		directory:    directory,
		now:          time.Now,
	}
}

// Render writes the markdown sheet to w.
func (e *Exporter) Render(w io.Writer, questions []question.Question) error {
	tmpl, err := ParseTemplate(e.templatePath)
	if err != nil {
		return fmt.Errorf("ParseTemplate(%s) > %w", e.templatePath, err)
	}
	sheet := NewSheet("Interview Questions", questions, e.now())
	if err := tmpl.Execute(w, sheet); err != nil {
		return fmt.Errorf("tmpl.Execute > %w", err)
	}
	return nil
}

// Export writes <name>.md into the export directory and converts it to PDF when asPDF is set.
// It returns the path of the last file written.
func (e *Exporter) Export(name string, questions []question.Question, asPDF bool) (string, error) {
	if err := os.MkdirAll(e.directory, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", e.directory, err)
	}
	markdownPath := filepath.Join(e.directory, name+".md")
	file, err := os.Create(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
	}
	if err := e.Render(file, questions); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("file.Close(%s) > %w", markdownPath, err)
	}
	if !asPDF {
		return markdownPath, nil
	}

	pdfPath, err := ConvertMarkdownToPDF(markdownPath)
	if err != nil {
		return "", fmt.Errorf("ConvertMarkdownToPDF > %w", err)
	}
	return pdfPath, nil
}

// ConvertMarkdownToPDF writes a PDF next to a .md file and returns its absolute path.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}
	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}
