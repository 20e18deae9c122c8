package stages

import (
	"context"
	"sort"
	"strings"

	"github.com/HendryAvila/mission-control/internal/apperr"
	"github.com/HendryAvila/mission-control/internal/config"
)

// Board exposes the validated operations for one staged-entity type.
// Every validation runs before the repository is touched, so a rejected
// call never leaves a partial update behind.
type Board struct {
	kind     string
	cfg      config.Board
	repo     Repository
	stageSet map[string]bool
	required map[string]bool
}

// NewBoard creates a Board for the given kind ("task", "content") using
// the stage enumeration and attributes from cfg.
func NewBoard(kind string, cfg config.Board, repo Repository) *Board {
	b := &Board{
		kind:     kind,
		cfg:      cfg,
		repo:     repo,
		stageSet: make(map[string]bool, len(cfg.Stages)),
		required: make(map[string]bool, len(cfg.Required)),
	}
	for _, s := range cfg.Stages {
		b.stageSet[s] = true
	}
	for _, r := range cfg.Required {
		b.required[r] = true
	}
	return b
}

// Kind returns the entity type this board manages.
func (b *Board) Kind() string { return b.kind }

// Stages returns a copy of the stage enumeration in display order.
func (b *Board) Stages() []string {
	out := make([]string, len(b.cfg.Stages))
	copy(out, b.cfg.Stages)
	return out
}

// ActiveStage returns the stage counted as "in progress", or "".
func (b *Board) ActiveStage() string { return b.cfg.ActiveStage }

// AttributeNames returns the declared attributes, sorted.
func (b *Board) AttributeNames() []string {
	names := make([]string, 0, len(b.cfg.Attributes))
	for name := range b.cfg.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllowedValues returns the enumeration for an attribute (nil = free text).
func (b *Board) AllowedValues(attr string) []string {
	return b.cfg.Attributes[attr]
}

// ValidateStage returns a validation error if stage is not in the enumeration.
func (b *Board) ValidateStage(stage string) error {
	if !b.stageSet[stage] {
		return apperr.Validation("invalid %s stage %q: must be one of: %s",
			b.kind, stage, strings.Join(b.cfg.Stages, ", "))
	}
	return nil
}

// Create validates and inserts a new item, returning its id.
func (b *Board) Create(ctx context.Context, p CreateParams) (string, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return "", apperr.Validation("%s title is required", b.kind)
	}
	if err := b.ValidateStage(p.Stage); err != nil {
		return "", err
	}

	attrs := make(map[string]string, len(p.Attrs))
	for name, value := range p.Attrs {
		if value == "" {
			continue
		}
		if err := b.validateAttr(name, value); err != nil {
			return "", err
		}
		attrs[name] = value
	}
	for _, name := range b.cfg.Required {
		if attrs[name] == "" {
			return "", apperr.Validation("%s %s is required", b.kind, name)
		}
	}

	ts := now()
	item := Item{
		ID:        newID(),
		Kind:      b.kind,
		Title:     title,
		Stage:     p.Stage,
		Attrs:     attrs,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := b.repo.InsertItem(ctx, item); err != nil {
		return "", apperr.Store("insert "+b.kind, err)
	}
	return item.ID, nil
}

// TransitionStage moves an item to stage. Moving to the current stage is
// allowed and still refreshes updated_at.
func (b *Board) TransitionStage(ctx context.Context, id, stage string) error {
	if err := b.ValidateStage(stage); err != nil {
		return err
	}
	found, err := b.repo.PatchItem(ctx, b.kind, id, Patch{Stage: &stage, UpdatedAt: now()})
	if err != nil {
		return apperr.Store("move "+b.kind, err)
	}
	if !found {
		return apperr.NotFound(b.kind, id)
	}
	return nil
}

// Update applies only the supplied fields and refreshes updated_at.
func (b *Board) Update(ctx context.Context, id string, p UpdateParams) error {
	patch := Patch{UpdatedAt: now()}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return apperr.Validation("%s title must not be empty", b.kind)
		}
		patch.Title = &title
	}
	if p.Stage != nil {
		if err := b.ValidateStage(*p.Stage); err != nil {
			return err
		}
		patch.Stage = p.Stage
	}
	if len(p.Attrs) > 0 {
		patch.Attrs = make(map[string]*string, len(p.Attrs))
		for name, value := range p.Attrs {
			if value == "" {
				if _, ok := b.cfg.Attributes[name]; !ok {
					return apperr.Validation("unknown %s attribute %q", b.kind, name)
				}
				if b.required[name] {
					return apperr.Validation("%s %s cannot be cleared", b.kind, name)
				}
				patch.Attrs[name] = nil
				continue
			}
			if err := b.validateAttr(name, value); err != nil {
				return err
			}
			v := value
			patch.Attrs[name] = &v
		}
	}

	found, err := b.repo.PatchItem(ctx, b.kind, id, patch)
	if err != nil {
		return apperr.Store("update "+b.kind, err)
	}
	if !found {
		return apperr.NotFound(b.kind, id)
	}
	return nil
}

// Remove deletes an item. Unknown ids are not an error.
func (b *Board) Remove(ctx context.Context, id string) error {
	return apperr.Store("delete "+b.kind, b.repo.DeleteItem(ctx, b.kind, id))
}

// Get returns one item or a not-found error.
func (b *Board) Get(ctx context.Context, id string) (*Item, error) {
	item, err := b.repo.GetItem(ctx, b.kind, id)
	if err != nil {
		return nil, apperr.Store("get "+b.kind, err)
	}
	if item == nil {
		return nil, apperr.NotFound(b.kind, id)
	}
	return item, nil
}

// List returns items most recently created first, capped by the board's
// list limit when one is configured.
func (b *Board) List(ctx context.Context) ([]Item, error) {
	items, err := b.repo.ListItems(ctx, b.kind, ListOptions{Limit: b.cfg.ListLimit})
	if err != nil {
		return nil, apperr.Store("list "+b.kind, err)
	}
	return items, nil
}

// ListByStage returns the items in one stage, most recent first.
func (b *Board) ListByStage(ctx context.Context, stage string) ([]Item, error) {
	if err := b.ValidateStage(stage); err != nil {
		return nil, err
	}
	items, err := b.repo.ListItems(ctx, b.kind, ListOptions{Stage: stage, Limit: b.cfg.StageListLimit})
	if err != nil {
		return nil, apperr.Store("list "+b.kind, err)
	}
	return items, nil
}

// Counts returns the number of items per stage. Every configured stage is
// present; items left in a stage since dropped from the configuration are
// reported under that stage name so totals still cover them.
func (b *Board) Counts(ctx context.Context) (map[string]int, error) {
	raw, err := b.repo.CountByStage(ctx, b.kind)
	if err != nil {
		return nil, apperr.Store("count "+b.kind, err)
	}
	counts := make(map[string]int, len(b.cfg.Stages)+len(raw))
	for _, s := range b.cfg.Stages {
		counts[s] = 0
	}
	for s, n := range raw {
		counts[s] = n
	}
	return counts, nil
}

func (b *Board) validateAttr(name, value string) error {
	allowed, ok := b.cfg.Attributes[name]
	if !ok {
		return apperr.Validation("unknown %s attribute %q", b.kind, name)
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return apperr.Validation("invalid %s %s %q: must be one of: %s",
		b.kind, name, value, strings.Join(allowed, ", "))
}
