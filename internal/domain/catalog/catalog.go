// Package catalog defines the static, versioned set of ratable E-E-A-T signals.
//
// A Catalog is immutable once built. Lookups by signal id are O(1) and every
// iteration follows the declared group and signal order.
package catalog

import (
	"fmt"
	"slices"

	"github.com/okian/eeat/internal/domain/model"
)

// Scope tells whether a group is evaluated once per site or once per page.
type Scope string

// Group scopes.
const (
	ScopeDomain Scope = "domain"
	ScopePage   Scope = "page"
)

// Signal is one atomic, ratable quality indicator.
type Signal struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Concept     model.Concept  `json:"concept"`
	Weight      int            `json:"weight"`
	Intents     []model.Intent `json:"intents"`
	ManualCheck bool           `json:"manual_check"`
	// Key is the field name the classifier uses for this signal within its group.
	Key         string `json:"key"`
	Remediation string `json:"remediation"`
}

// AllIntents reports whether the signal carries the "all" sentinel.
func (s Signal) AllIntents() bool {
	return len(s.Intents) == 0 || slices.Contains(s.Intents, model.IntentAll)
}

// Lists reports whether intent is named explicitly by the signal.
func (s Signal) Lists(intent model.Intent) bool {
	return intent != model.IntentUnknown && slices.Contains(s.Intents, intent)
}

// Group is an ordered set of signals sharing a scope and a classifier source.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Scope       Scope    `json:"scope"`
	Source      string   `json:"source"`
	Signals     []Signal `json:"signals"`
}

type ref struct {
	group int
	pos   int
}

// Catalog is the immutable signal catalog.
type Catalog struct {
	version string
	groups  []Group
	index   map[string]ref
}

// New validates groups and builds a Catalog.
func New(version string, groups ...Group) (*Catalog, error) {
	c := &Catalog{
		version: version,
		groups:  make([]Group, 0, len(groups)),
		index:   make(map[string]ref),
	}
	seenGroups := make(map[string]bool, len(groups))
	for gi, g := range groups {
		if g.ID == "" {
			return nil, fmt.Errorf("%w: group %d has no id", ErrInvalidCatalog, gi)
		}
		if seenGroups[g.ID] {
			return nil, fmt.Errorf("%w: duplicate group %q", ErrInvalidCatalog, g.ID)
		}
		seenGroups[g.ID] = true
		if g.Scope != ScopeDomain && g.Scope != ScopePage {
			return nil, fmt.Errorf("%w: group %q has unknown scope %q", ErrInvalidCatalog, g.ID, g.Scope)
		}
		if g.Source == "" {
			g.Source = g.ID
		}
		cp := g
		cp.Signals = make([]Signal, 0, len(g.Signals))
		for si, s := range g.Signals {
			if err := validateSignal(s); err != nil {
				return nil, fmt.Errorf("%w: group %q signal %d: %w", ErrInvalidCatalog, g.ID, si, err)
			}
			if _, dup := c.index[s.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate signal id %q", ErrInvalidCatalog, s.ID)
			}
			if len(s.Intents) == 0 {
				s.Intents = []model.Intent{model.IntentAll}
			}
			s.Intents = slices.Clone(s.Intents)
			c.index[s.ID] = ref{group: len(c.groups), pos: len(cp.Signals)}
			cp.Signals = append(cp.Signals, s)
		}
		c.groups = append(c.groups, cp)
	}
	return c, nil
}

func validateSignal(s Signal) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("missing id")
	case s.Label == "":
		return fmt.Errorf("signal %q has no label", s.ID)
	case !s.Concept.Valid():
		return fmt.Errorf("signal %q has unknown concept %q", s.ID, s.Concept)
	case s.Weight < 1 || s.Weight > 3:
		return fmt.Errorf("signal %q weight %d outside 1..3", s.ID, s.Weight)
	}
	for _, in := range s.Intents {
		if in == model.IntentAll {
			continue
		}
		if !slices.Contains(model.Intents, in) {
			return fmt.Errorf("signal %q lists unknown intent %q", s.ID, in)
		}
	}
	return nil
}

// Version returns the catalog version tag.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of signals.
func (c *Catalog) Len() int { return len(c.index) }

// Groups returns the groups in declared order. Callers must not mutate them.
func (c *Catalog) Groups() []Group { return c.groups }

// Signals returns every signal in declared order.
func (c *Catalog) Signals() []Signal {
	out := make([]Signal, 0, len(c.index))
	for _, g := range c.groups {
		out = append(out, g.Signals...)
	}
	return out
}

// Signal returns the signal with the given id or an UnknownSignalError.
func (c *Catalog) Signal(id string) (Signal, error) {
	r, ok := c.index[id]
	if !ok {
		return Signal{}, &UnknownSignalError{ID: id}
	}
	return c.groups[r.group].Signals[r.pos], nil
}

// MustSignal is Signal for ids known at compile time. It panics on unknown ids.
func (c *Catalog) MustSignal(id string) Signal {
	s, err := c.Signal(id)
	if err != nil {
		panic(err)
	}
	return s
}

// GroupOf returns the group holding the signal id.
func (c *Catalog) GroupOf(id string) (Group, error) {
	r, ok := c.index[id]
	if !ok {
		return Group{}, &UnknownSignalError{ID: id}
	}
	return c.groups[r.group], nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Scope returns a catalog restricted to groups of the given scope.
func (c *Catalog) Scope(scope Scope) *Catalog {
	var groups []Group
	for _, g := range c.groups {
		if g.Scope == scope {
			groups = append(groups, g)
		}
	}
	// groups were validated when c was built
	sub, _ := New(c.version, groups...)
	return sub
}

// Remediation returns the improvement advice for a signal.
func (c *Catalog) Remediation(id string) (string, bool) {
	s, err := c.Signal(id)
	if err != nil || s.Remediation == "" {
		return "", false
	}
	return s.Remediation, true
}

// Check returns an UnknownSignalError for the first id of ratings absent from c.
func (c *Catalog) Check(ratings model.Ratings) error {
	for id := range ratings {
		if !c.Has(id) {
			return &UnknownSignalError{ID: id}
		}
	}
	return nil
}
