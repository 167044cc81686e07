package domain

// ─── Catalog Entities ───────────────────────────────────────────────────────
// Static definitions. The engine only ever reads them.

// Island is a themed track grouping a fixed number of modules.
type Island struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
	Mascot      string     `json:"mascot"`
	ModuleCount int        `json:"module_count"`
	Badges      []BadgeDef `json:"badges"`
}

// Badge looks up one of the island's badge definitions by its key, the
// value modules carry in BadgeID.
func (i Island) Badge(key string) (BadgeDef, bool) {
	for _, b := range i.Badges {
		if b.LookupKey() == key {
			return b, true
		}
	}
	return BadgeDef{}, false
}

// BadgeDef describes an earnable badge. Key is what modules reference;
// ID is what lands in the earned badge list.
type BadgeDef struct {
	Key         string `json:"key,omitempty"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// LookupKey is Key, or ID when no separate key was given.
func (b BadgeDef) LookupKey() string {
	if b.Key != "" {
		return b.Key
	}
	return b.ID
}

// Module is a learning unit with an ordered questionnaire.
type Module struct {
	ID          string     `json:"id"`
	IslandID    string     `json:"island_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Duration    string     `json:"duration"`
	Level       int        `json:"level"`
	Points      int        `json:"points"`
	BadgeID     string     `json:"badge_id,omitempty"`
	Questions   []Question `json:"questions"`
}

// Question is one questionnaire step.
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt"`
	Required    bool         `json:"required"`
	Min         int          `json:"min,omitempty"`
	Max         int          `json:"max,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	MaxSelect   int          `json:"max_select,omitempty"` // 0 = unlimited
	Options     []Option     `json:"options,omitempty"`
}

// DefaultScaleMax is used when a scale question leaves Max unset.
const DefaultScaleMax = 5

// ScaleMax returns the upper bound of a scale question.
func (q Question) ScaleMax() int {
	if q.Max > 0 {
		return q.Max
	}
	return DefaultScaleMax
}

// HasOption reports whether optionID is one of the question's options.
func (q Question) HasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// Option is a selectable choice of a multiple-choice or checkbox question.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Challenge is a standalone one-time task.
type Challenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
}
