package inference

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionPrompt builds the instruction sent to every backend.
func QuestionPrompt(params GenerateQuestionRequest) string {
	return fmt.Sprintf(`Generate a single Android interview question for a '%s' level candidate in the category of '%s'.
Return strictly valid JSON with no markdown formatting.
Structure:
{
  "question": "The question text",
  "answer": "Concise answer",
  "explanation": "Brief explanation",
  "codeExample": "Optional code snippet or null"
}`, params.Difficulty, params.Category)
}

// ParseGeneratedQuestion decodes backend output into a question.
// Markdown code fences and any text around the first JSON object are ignored, as are unknown keys.
func ParseGeneratedQuestion(text string) (GeneratedQuestion, error) {
	content := strings.ReplaceAll(text, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = extractJSONObject(strings.TrimSpace(content))

	var decoded struct {
		Question    string  `json:"question"`
		Answer      string  `json:"answer"`
		Explanation *string `json:"explanation"`
		CodeExample *string `json:"codeExample"`
	}
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return GeneratedQuestion{}, fmt.Errorf("json.Unmarshal(%s) > %w: %w", content, ErrMalformedResponse, err)
	}

	result := GeneratedQuestion{
		Question: strings.TrimSpace(decoded.Question),
		Answer:   strings.TrimSpace(decoded.Answer),
	}
	if result.Question == "" || result.Answer == "" {
		return GeneratedQuestion{}, fmt.Errorf("question or answer is empty: %w", ErrMalformedResponse)
	}
	if decoded.Explanation != nil {
		result.Explanation = strings.TrimSpace(*decoded.Explanation)
	}
	if decoded.CodeExample != nil && !strings.EqualFold(strings.TrimSpace(*decoded.CodeExample), "null") {
		result.CodeExample = strings.TrimSpace(*decoded.CodeExample)
	}
	return result, nil
}

// extractJSONObject returns the first balanced {...} object in content, or content unchanged.
func extractJSONObject(content string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range content {
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}
	return content
}
