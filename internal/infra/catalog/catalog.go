// Package catalog provides the immutable lookup tables of islands, modules
// and challenges. The built-in program ships embedded as default.toml;
// a TOML file with the same layout can replace it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/ikigai-wellness/ikigai/internal/domain"
)

//go:embed default.toml
var defaultTOML []byte

// file mirrors the TOML layout.
type file struct {
	Islands    []islandEntry    `toml:"islands" validate:"required,dive"`
	Modules    []moduleEntry    `toml:"modules" validate:"dive"`
	Challenges []challengeEntry `toml:"challenges" validate:"dive"`
}

type islandEntry struct {
	ID          string       `toml:"id" validate:"required"`
	Name        string       `toml:"name" validate:"required"`
	Description string       `toml:"description"`
	Color       string       `toml:"color" validate:"omitempty,hexcolor"`
	Icon        string       `toml:"icon"`
	Mascot      string       `toml:"mascot"`
	ModuleCount int          `toml:"module_count" validate:"gte=0"`
	Badges      []badgeEntry `toml:"badges" validate:"dive"`
}

type badgeEntry struct {
	Key         string `toml:"key"`
	ID          string `toml:"id" validate:"required"`
	Name        string `toml:"name" validate:"required"`
	Description string `toml:"description"`
	Icon        string `toml:"icon"`
}

type moduleEntry struct {
	ID          string          `toml:"id" validate:"required"`
	IslandID    string          `toml:"island_id" validate:"required"`
	Title       string          `toml:"title" validate:"required"`
	Description string          `toml:"description"`
	Icon        string          `toml:"icon"`
	Duration    string          `toml:"duration"`
	Level       int             `toml:"level" validate:"gte=0"`
	Points      int             `toml:"points" validate:"gte=0"`
	BadgeID     string          `toml:"badge_id"`
	Questions   []questionEntry `toml:"questions" validate:"dive"`
}

type questionEntry struct {
	ID          string        `toml:"id" validate:"required"`
	Type        string        `toml:"type" validate:"required,oneof=scale multiple_choice checkbox text"`
	Prompt      string        `toml:"prompt" validate:"required"`
	Required    bool          `toml:"required"`
	Min         int           `toml:"min" validate:"gte=0"`
	Max         int           `toml:"max" validate:"gte=0"`
	Labels      []string      `toml:"labels"`
	Placeholder string        `toml:"placeholder"`
	MaxSelect   int           `toml:"max_select" validate:"gte=0"`
	Options     []optionEntry `toml:"options" validate:"dive"`
}

type optionEntry struct {
	ID    string `toml:"id" validate:"required"`
	Label string `toml:"label" validate:"required"`
}

type challengeEntry struct {
	ID          string `toml:"id" validate:"required"`
	Title       string `toml:"title" validate:"required"`
	Description string `toml:"description"`
	Points      int    `toml:"points" validate:"gte=0"`
	Icon        string `toml:"icon"`
	Color       string `toml:"color" validate:"omitempty,hexcolor"`
	Category    string `toml:"category"`
	Duration    string `toml:"duration"`
}

// Catalog is an immutable, id-indexed view of the program content.
// It implements domain.Catalog.
type Catalog struct {
	islands    []domain.Island
	modules    []domain.Module
	challenges []domain.Challenge

	islandIdx    map[string]int
	moduleIdx    map[string]int
	challengeIdx map[string]int
}

var _ domain.Catalog = (*Catalog)(nil)

var validate = validator.New()

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the built-in catalog. The embedded file is part of the
// binary, so a parse failure is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultTOML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded default.toml: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// LoadFile reads a catalog from a TOML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return New(f.toDomain())
}

// New builds a catalog from already-constructed entities. Order of each
// slice is kept as display and unlock order. Duplicate ids and modules that
// point to unknown islands are rejected; badge ids that resolve to nothing
// are allowed and simply award nothing.
func New(islands []domain.Island, modules []domain.Module, challenges []domain.Challenge) (*Catalog, error) {
	c := &Catalog{
		islands:      slices.Clone(islands),
		modules:      slices.Clone(modules),
		challenges:   slices.Clone(challenges),
		islandIdx:    make(map[string]int, len(islands)),
		moduleIdx:    make(map[string]int, len(modules)),
		challengeIdx: make(map[string]int, len(challenges)),
	}

	var errs []error
	for i, is := range c.islands {
		if _, dup := c.islandIdx[is.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate island %q", is.ID))
			continue
		}
		c.islandIdx[is.ID] = i
		keys := make(map[string]bool, len(is.Badges))
		for _, b := range is.Badges {
			if keys[b.LookupKey()] {
				errs = append(errs, fmt.Errorf("island %q: duplicate badge key %q", is.ID, b.LookupKey()))
			}
			keys[b.LookupKey()] = true
		}
	}
	for i, m := range c.modules {
		if _, dup := c.moduleIdx[m.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate module %q", m.ID))
			continue
		}
		if _, ok := c.islandIdx[m.IslandID]; !ok {
			errs = append(errs, fmt.Errorf("module %q: unknown island %q", m.ID, m.IslandID))
		}
		seen := make(map[string]bool, len(m.Questions))
		for _, q := range m.Questions {
			if seen[q.ID] {
				errs = append(errs, fmt.Errorf("module %q: duplicate question %q", m.ID, q.ID))
			}
			seen[q.ID] = true
			if !q.Type.Valid() {
				errs = append(errs, fmt.Errorf("question %q: unknown type %q", q.ID, q.Type))
			}
		}
		c.moduleIdx[m.ID] = i
	}
	for i, ch := range c.challenges {
		if _, dup := c.challengeIdx[ch.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate challenge %q", ch.ID))
			continue
		}
		c.challengeIdx[ch.ID] = i
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, errors.Join(errs...))
	}
	return c, nil
}

// ─── Lookups ────────────────────────────────────────────────────────────────

// Island looks up an island by id.
func (c *Catalog) Island(id string) (domain.Island, bool) {
	i, ok := c.islandIdx[id]
	if !ok {
		return domain.Island{}, false
	}
	return cloneIsland(c.islands[i]), true
}

// Module looks up a module by id.
func (c *Catalog) Module(id string) (domain.Module, bool) {
	i, ok := c.moduleIdx[id]
	if !ok {
		return domain.Module{}, false
	}
	return cloneModule(c.modules[i]), true
}

// Challenge looks up a challenge by id.
func (c *Catalog) Challenge(id string) (domain.Challenge, bool) {
	i, ok := c.challengeIdx[id]
	if !ok {
		return domain.Challenge{}, false
	}
	return c.challenges[i], true
}

// Islands returns all islands in display order.
func (c *Catalog) Islands() []domain.Island {
	out := make([]domain.Island, len(c.islands))
	for i, is := range c.islands {
		out[i] = cloneIsland(is)
	}
	return out
}

// ModulesForIsland returns the island's modules in catalog order.
func (c *Catalog) ModulesForIsland(islandID string) []domain.Module {
	var out []domain.Module
	for _, m := range c.modules {
		if m.IslandID == islandID {
			out = append(out, cloneModule(m))
		}
	}
	return out
}

// Challenges returns all challenges in display order.
func (c *Catalog) Challenges() []domain.Challenge {
	return slices.Clone(c.challenges)
}

// ModuleCount returns the number of modules across all islands.
func (c *Catalog) ModuleCount() int {
	return len(c.modules)
}

func cloneIsland(is domain.Island) domain.Island {
	is.Badges = slices.Clone(is.Badges)
	return is
}

func cloneModule(m domain.Module) domain.Module {
	qs := make([]domain.Question, len(m.Questions))
	for i, q := range m.Questions {
		q.Labels = slices.Clone(q.Labels)
		q.Options = slices.Clone(q.Options)
		qs[i] = q
	}
	m.Questions = qs
	return m
}

// ─── Conversion ─────────────────────────────────────────────────────────────

func (f file) toDomain() ([]domain.Island, []domain.Module, []domain.Challenge) {
	islands := make([]domain.Island, 0, len(f.Islands))
	for _, e := range f.Islands {
		is := domain.Island{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Color:       e.Color,
			Icon:        e.Icon,
			Mascot:      e.Mascot,
			ModuleCount: e.ModuleCount,
		}
		for _, b := range e.Badges {
			is.Badges = append(is.Badges, domain.BadgeDef{
				Key: b.Key, ID: b.ID, Name: b.Name, Description: b.Description, Icon: b.Icon,
			})
		}
		islands = append(islands, is)
	}

	modules := make([]domain.Module, 0, len(f.Modules))
	for _, e := range f.Modules {
		m := domain.Module{
			ID:          e.ID,
			IslandID:    e.IslandID,
			Title:       e.Title,
			Description: e.Description,
			Icon:        e.Icon,
			Duration:    e.Duration,
			Level:       e.Level,
			Points:      e.Points,
			BadgeID:     e.BadgeID,
		}
		for _, q := range e.Questions {
			dq := domain.Question{
				ID:          q.ID,
				Type:        domain.QuestionType(q.Type),
				Prompt:      q.Prompt,
				Required:    q.Required,
				Min:         q.Min,
				Max:         q.Max,
				Labels:      q.Labels,
				Placeholder: q.Placeholder,
				MaxSelect:   q.MaxSelect,
			}
			for _, o := range q.Options {
				dq.Options = append(dq.Options, domain.Option{ID: o.ID, Label: o.Label})
			}
			m.Questions = append(m.Questions, dq)
		}
		modules = append(modules, m)
	}

	challenges := make([]domain.Challenge, 0, len(f.Challenges))
	for _, e := range f.Challenges {
		challenges = append(challenges, domain.Challenge{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Points:      e.Points,
			Icon:        e.Icon,
			Color:       e.Color,
			Category:    e.Category,
			Duration:    e.Duration,
		})
	}
	return islands, modules, challenges
}
