package quiz

import (
	"slices"
	"strings"

	"github.com/ikigai-wellness/ikigai/internal/domain"
)

// Satisfied reports whether a question counts as answered. ok is false
// when nothing has been recorded for the question yet.
//
//	scale            value in 1..max (max defaults to 5)
//	multiple_choice  one non-empty option id
//	checkbox         at least one option selected
//	text             non-blank after trimming
//
// Optional questions are always satisfied. An answer of the wrong kind
// never satisfies a required question.
func Satisfied(q domain.Question, a domain.Answer, ok bool) bool {
	if !q.Required {
		return true
	}
	if !ok || a.Kind != q.Type {
		return false
	}
	switch q.Type {
	case domain.QuestionScale:
		return a.Scale >= 1 && a.Scale <= q.ScaleMax()
	case domain.QuestionMultipleChoice:
		return a.Choice != ""
	case domain.QuestionCheckbox:
		return len(a.Selected) > 0
	case domain.QuestionText:
		return strings.TrimSpace(a.Text) != ""
	}
	return false
}

// ToggleSelection flips optionID in a checkbox selection. A present option
// is removed. A new option is appended; when maxSelect > 0 and the
// selection is full, the oldest entries are evicted first.
func ToggleSelection(current []string, optionID string, maxSelect int) []string {
	if i := slices.Index(current, optionID); i >= 0 {
		return slices.Delete(slices.Clone(current), i, i+1)
	}
	next := append(slices.Clone(current), optionID)
	if maxSelect > 0 && len(next) > maxSelect {
		next = next[len(next)-maxSelect:]
	}
	return next
}
