// Package crud drives the list/create/edit/delete workflow shared by every
// entity page of the console.
package crud

import (
	"context"
	"strings"
	"time"

	"github.com/odyssey-erp/stockdesk/internal/table"
)

// DefaultRecentLimit is how many rows a recent-activity list keeps.
const DefaultRecentLimit = 10

// Gateway is the remote collection an entity page works against.
type Gateway[T any] interface {
	List(ctx context.Context, endpoint string) ([]T, error)
	Create(ctx context.Context, endpoint string, payload any) (string, error)
	Update(ctx context.Context, endpoint string, payload any) (string, error)
	Delete(ctx context.Context, endpoint string) (string, error)
}

// Prompt is what the operator is asked before a destructive action.
type Prompt struct {
	Title        string
	Body         string
	ConfirmLabel string
	CancelLabel  string
}

// Confirmer asks the operator to approve a prompt. Anything other than an
// explicit true is treated as a decline.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt Prompt) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt Prompt) bool {
	if f == nil {
		return false
	}
	return f(ctx, prompt)
}

// Config describes one entity page.
type Config[T any] struct {
	// Singular and Plural name the entity in notifications ("Category").
	Singular string
	Plural   string

	CollectionEndpoint string
	// ItemEndpoint defaults to CollectionEndpoint + "/" + id.
	ItemEndpoint func(id string) string

	ID func(T) string
	// DisplayName is the primary label; an empty value blocks saving.
	DisplayName func(T) string
	// NameLabel names the DisplayName field in the "is required" warning.
	// Empty means "<Singular> name".
	NameLabel string
	// DuplicateKey is compared case-insensitively against the collection.
	// A nil DuplicateKey disables the check.
	DuplicateKey func(T) string
	// Trim returns a copy of the draft with editable strings trimmed.
	Trim func(T) T
	// Payload builds the request body from a trimmed draft. Defaults to the
	// draft itself.
	Payload func(T) any

	Columns []table.Column[T]

	ConfirmDeleteTitle string
	ConfirmDeleteText  string

	// RecentBy turns the list into a recent-activity view: sorted by the
	// returned time, newest first, truncated to RecentLimit.
	RecentBy    func(T) time.Time
	RecentLimit int
}

func (c Config[T]) itemEndpoint(id string) string {
	if c.ItemEndpoint != nil {
		return c.ItemEndpoint(id)
	}
	return strings.TrimRight(c.CollectionEndpoint, "/") + "/" + id
}

func (c Config[T]) singular() string {
	if c.Singular != "" {
		return c.Singular
	}
	return "Record"
}

func (c Config[T]) nameLabel() string {
	if c.NameLabel != "" {
		return c.NameLabel
	}
	return c.singular() + " name"
}

func (c Config[T]) plural() string {
	if c.Plural != "" {
		return c.Plural
	}
	return strings.ToLower(c.singular()) + "s"
}

func (c Config[T]) trim(draft T) T {
	if c.Trim != nil {
		return c.Trim(draft)
	}
	return draft
}

func (c Config[T]) payload(draft T) any {
	if c.Payload != nil {
		return c.Payload(draft)
	}
	return draft
}

// DeletePrompt is the confirmation shown before a record is removed.
func (c Config[T]) DeletePrompt() Prompt {
	title := c.ConfirmDeleteTitle
	if title == "" {
		title = "Are you sure?"
	}
	body := c.ConfirmDeleteText
	if body == "" {
		body = "This " + strings.ToLower(c.singular()) + " will be permanently deleted."
	}
	return Prompt{Title: title, Body: body, ConfirmLabel: "Yes, delete it", CancelLabel: "Cancel"}
}
