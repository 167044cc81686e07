package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// QuestionType is the input kind of a questionnaire question.
type QuestionType string

const (
	QuestionScale          QuestionType = "scale"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionText           QuestionType = "text"
)

// Valid reports whether t is one of the four known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionScale, QuestionMultipleChoice, QuestionCheckbox, QuestionText:
		return true
	}
	return false
}

// Answer is a tagged union over the four question types.
// Only the payload matching Kind is meaningful.
type Answer struct {
	Kind     QuestionType
	Scale    int
	Choice   string
	Selected []string
	Text     string
}

// ScaleAnswer builds an answer for a scale question.
func ScaleAnswer(v int) Answer { return Answer{Kind: QuestionScale, Scale: v} }

// ChoiceAnswer builds an answer for a multiple-choice question.
func ChoiceAnswer(optionID string) Answer {
	return Answer{Kind: QuestionMultipleChoice, Choice: optionID}
}

// CheckboxAnswer builds an answer for a checkbox question. Order is kept:
// it is the selection order used for max-select eviction.
func CheckboxAnswer(optionIDs ...string) Answer {
	return Answer{Kind: QuestionCheckbox, Selected: slices.Clone(optionIDs)}
}

// TextAnswer builds an answer for a free-text question.
func TextAnswer(s string) Answer { return Answer{Kind: QuestionText, Text: s} }

// Clone deep-copies the selection slice.
func (a Answer) Clone() Answer {
	a.Selected = slices.Clone(a.Selected)
	return a
}

// String renders the payload for terminal display.
func (a Answer) String() string {
	switch a.Kind {
	case QuestionScale:
		return fmt.Sprintf("%d", a.Scale)
	case QuestionMultipleChoice:
		return a.Choice
	case QuestionCheckbox:
		return fmt.Sprintf("%v", a.Selected)
	case QuestionText:
		return a.Text
	}
	return ""
}

// answerJSON is the wire form: {"kind":"scale","value":3}.
type answerJSON struct {
	Kind  QuestionType    `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the tag alongside the matching payload.
func (a Answer) MarshalJSON() ([]byte, error) {
	var v any
	switch a.Kind {
	case QuestionScale:
		v = a.Scale
	case QuestionMultipleChoice:
		v = a.Choice
	case QuestionCheckbox:
		sel := a.Selected
		if sel == nil {
			sel = []string{}
		}
		v = sel
	case QuestionText:
		v = a.Text
	default:
		return nil, fmt.Errorf("answer: unknown kind %q", a.Kind)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(answerJSON{Kind: a.Kind, Value: raw})
}

// UnmarshalJSON decodes the payload according to the tag.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var w answerJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Answer{Kind: w.Kind}
	var err error
	switch w.Kind {
	case QuestionScale:
		err = json.Unmarshal(w.Value, &out.Scale)
	case QuestionMultipleChoice:
		err = json.Unmarshal(w.Value, &out.Choice)
	case QuestionCheckbox:
		err = json.Unmarshal(w.Value, &out.Selected)
	case QuestionText:
		err = json.Unmarshal(w.Value, &out.Text)
	default:
		return fmt.Errorf("answer: unknown kind %q", w.Kind)
	}
	if err != nil {
		return fmt.Errorf("answer %s: %w", w.Kind, err)
	}
	*a = out
	return nil
}

// CloneResponses deep-copies a response map. A nil map clones to an empty one.
func CloneResponses(in map[string]Answer) map[string]Answer {
	out := make(map[string]Answer, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}
