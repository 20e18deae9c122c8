// Package stages implements the staged-entity model shared by the task
// board and the content pipeline.
//
// A staged item occupies exactly one stage of a fixed enumeration at any
// time. Unlike a workflow engine there is no ordering between stages:
// any stage can be reached from any other, and only explicit calls
// (TransitionStage, Update) change it.
//
// Layout follows the rest of the codebase:
// - types.go: Item, params, Repository (the persistence abstraction)
// - board.go: Board, the validated operations over one entity type
package stages

import (
	"context"
	"time"
)

// Item is a staged entity: a task on the board or a content item in the
// pipeline. Attrs holds the type-specific optional fields (assignee,
// description, script, thumbnail_url, ...).
type Item struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Title     string            `json:"title"`
	Stage     string            `json:"stage"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Attr returns the named attribute or "".
func (i Item) Attr(name string) string {
	return i.Attrs[name]
}

// CreateParams holds the input for Board.Create.
type CreateParams struct {
	Title string            `json:"title"`
	Stage string            `json:"stage"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// UpdateParams holds a partial update. Nil fields are left untouched.
// An attribute mapped to "" is cleared.
type UpdateParams struct {
	Title *string           `json:"title,omitempty"`
	Stage *string           `json:"stage,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (p UpdateParams) IsEmpty() bool {
	return p.Title == nil && p.Stage == nil && len(p.Attrs) == 0
}

// Patch is the store-level partial update. A nil entry in Attrs removes
// that attribute.
type Patch struct {
	Title     *string
	Stage     *string
	Attrs     map[string]*string
	UpdatedAt time.Time
}

// ListOptions filters and caps ListItems.
type ListOptions struct {
	Stage string
	Limit int // 0 = no cap
}

// Repository is the record store as seen by a Board. Missing records are
// reported through the boolean / nil results, never through an error.
type Repository interface {
	InsertItem(ctx context.Context, item Item) error
	GetItem(ctx context.Context, kind, id string) (*Item, error)
	PatchItem(ctx context.Context, kind, id string, p Patch) (bool, error)
	DeleteItem(ctx context.Context, kind, id string) error
	ListItems(ctx context.Context, kind string, opts ListOptions) ([]Item, error)
	CountByStage(ctx context.Context, kind string) (map[string]int, error)
}
