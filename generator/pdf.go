package generator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxGoalChars caps how much of a document is sent as the goal.
const maxGoalChars = 4000

// GoalFromPDF extracts the plain text of a PDF so a goal document can seed
// generation. Whitespace runs are collapsed.
func GoalFromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	goal := strings.Join(strings.Fields(string(raw)), " ")
	if goal == "" {
		return "", errors.New("pdf contains no extractable text")
	}
	if runes := []rune(goal); len(runes) > maxGoalChars {
		goal = string(runes[:maxGoalChars])
	}
	return goal, nil
}
