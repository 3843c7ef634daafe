package crud

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/odyssey-erp/stockdesk/internal/gateway"
	"github.com/odyssey-erp/stockdesk/internal/notify"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// Mode is the modal lifecycle state.
type Mode string

const (
	ModeClosed   Mode = "closed"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

// State is a point-in-time copy of a controller, safe to render.
type State[T any] struct {
	Collection []T
	Draft      T
	EditingID  string
	Mode       Mode
	Loading    bool
	Generation uint64
}

// Open reports whether the modal is showing.
func (s State[T]) Open() bool { return s.Mode != ModeClosed }

// Controller owns one entity page: its collection, the open draft and the
// modal state. Gateway calls are made without holding the lock, so saves,
// deletes and refreshes may overlap; the last refresh to complete wins.
type Controller[T any] struct {
	cfg     Config[T]
	gateway Gateway[T]
	sink    notify.Sink
	confirm Confirmer
	logger  *slog.Logger
	mutated func(context.Context)

	mu         sync.Mutex
	collection []T
	generation uint64
	inflight   int
	mode       Mode
	draft      T
	editingID  string
}

// Deps groups a controller's collaborators.
type Deps[T any] struct {
	Gateway   Gateway[T]
	Sink      notify.Sink
	Confirmer Confirmer
	Logger    *slog.Logger
	// OnMutate runs after every successful create, update or delete,
	// before the refetch.
	OnMutate func(context.Context)
}

// NewController constructs a Controller in the closed state with an empty
// collection.
func NewController[T any](cfg Config[T], deps Deps[T]) *Controller[T] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	confirm := deps.Confirmer
	if confirm == nil {
		confirm = ContextConfirmer
	}
	return &Controller[T]{
		cfg:        cfg,
		gateway:    deps.Gateway,
		sink:       deps.Sink,
		confirm:    confirm,
		logger:     logger.With(slog.String("entity", cfg.singular())),
		mutated:    deps.OnMutate,
		collection: []T{},
		mode:       ModeClosed,
	}
}

// Config returns the controller's configuration.
func (c *Controller[T]) Config() Config[T] {
	return c.cfg
}

// Refresh reloads the collection. Failures keep the previous collection and
// surface a notification.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	records, err := c.gateway.List(ctx, c.cfg.CollectionEndpoint)

	c.mu.Lock()
	c.inflight--
	if err == nil {
		if records == nil {
			records = []T{}
		}
		c.collection = records
		c.generation++
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("refresh collection", slog.Any("error", err))
		notify.Error(c.sink, "Failed to load "+c.cfg.plural())
	}
}

// OpenCreate opens the modal with an empty draft.
func (c *Controller[T]) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.draft = zero
	c.editingID = ""
	c.mode = ModeCreating
}

// OpenEdit opens the modal with a copy of record.
func (c *Controller[T]) OpenEdit(record T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = record
	c.editingID = c.cfg.ID(record)
	c.mode = ModeEditing
}

// CloseModal discards the draft. Calling it on a closed modal does nothing.
func (c *Controller[T]) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Controller[T]) closeLocked() {
	var zero T
	c.draft = zero
	c.editingID = ""
	c.mode = ModeClosed
}

// SetDraft replaces the open draft.
func (c *Controller[T]) SetDraft(draft T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeClosed {
		return ErrModalClosed
	}
	c.draft = draft
	return nil
}

// Find returns the collection record with id.
func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.collection {
		if c.cfg.ID(rec) == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Save validates the draft locally and submits it. Every outcome is also
// reported through the notification sink; on failure the modal stays open
// with the draft untouched.
func (c *Controller[T]) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.mode == ModeClosed {
		c.mu.Unlock()
		return ErrModalClosed
	}
	mode, editingID := c.mode, c.editingID
	draft := c.cfg.trim(c.draft)
	collection := c.collection
	c.mu.Unlock()

	if err := c.validate(draft, mode, editingID, collection); err != nil {
		return err
	}

	payload := c.cfg.payload(draft)
	var err error
	if mode == ModeEditing {
		_, err = c.gateway.Update(ctx, c.cfg.itemEndpoint(editingID), payload)
	} else {
		_, err = c.gateway.Create(ctx, c.cfg.CollectionEndpoint, payload)
	}
	if err != nil {
		c.logger.Warn("save draft", slog.String("mode", string(mode)), slog.String("id", editingID), slog.Any("error", err))
		c.reportSaveFailure(err)
		return err
	}

	if mode == ModeEditing {
		notify.Success(c.sink, c.cfg.singular()+" updated successfully")
	} else {
		notify.Success(c.sink, c.cfg.singular()+" added successfully")
	}
	c.afterMutation(ctx)
	c.Refresh(ctx)
	c.CloseModal()
	return nil
}

func (c *Controller[T]) validate(draft T, mode Mode, editingID string, collection []T) error {
	if c.cfg.DisplayName != nil && strings.TrimSpace(c.cfg.DisplayName(draft)) == "" {
		notify.Warning(c.sink, c.cfg.nameLabel()+" is required")
		return &ValidationError{Reason: ReasonRequired, Field: c.cfg.nameLabel()}
	}
	if c.cfg.DuplicateKey == nil {
		return nil
	}
	key := duplicateKey(c.cfg.DuplicateKey(draft))
	if key == "" {
		return nil
	}
	for _, rec := range collection {
		if mode == ModeEditing && c.cfg.ID(rec) == editingID {
			continue
		}
		if duplicateKey(c.cfg.DuplicateKey(rec)) == key {
			notify.Error(c.sink, c.cfg.singular()+" already exists")
			return &ValidationError{Reason: ReasonDuplicate, Field: c.cfg.singular()}
		}
	}
	return nil
}

func (c *Controller[T]) reportSaveFailure(err error) {
	var verr *gateway.ValidationError
	if !errors.As(err, &verr) {
		notify.Error(c.sink, "Failed to save "+strings.ToLower(c.cfg.singular()))
		return
	}
	if strings.TrimSpace(verr.Message) != "" {
		notify.Error(c.sink, verr.Message)
		return
	}
	reported := false
	for _, field := range verr.Fields {
		if msg := field.First(); msg != "" {
			notify.Error(c.sink, msg)
			reported = true
		}
	}
	if !reported {
		notify.Error(c.sink, "Validation failed")
	}
}

// Remove asks for confirmation and deletes id. A declined prompt returns
// ErrDeclined without contacting the gateway. The collection is only changed
// by the refresh that follows a successful delete.
func (c *Controller[T]) Remove(ctx context.Context, id string) error {
	if !c.confirm.Confirm(ctx, c.cfg.DeletePrompt()) {
		return ErrDeclined
	}
	msg, err := c.gateway.Delete(ctx, c.cfg.itemEndpoint(id))
	if err != nil {
		c.logger.Warn("delete record", slog.String("id", id), slog.Any("error", err))
		var merr *gateway.MutationError
		if errors.As(err, &merr) && merr.Message != "" {
			notify.Error(c.sink, merr.Message)
		} else {
			notify.Error(c.sink, "Failed to delete "+strings.ToLower(c.cfg.singular()))
		}
		return err
	}
	if msg == "" {
		msg = c.cfg.singular() + " deleted successfully"
	}
	notify.Success(c.sink, msg)
	c.afterMutation(ctx)
	c.Refresh(ctx)
	return nil
}

func (c *Controller[T]) afterMutation(ctx context.Context) {
	if c.mutated != nil {
		c.mutated(ctx)
	}
}

// Snapshot copies the controller state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	collection := make([]T, len(c.collection))
	copy(collection, c.collection)
	return State[T]{
		Collection: collection,
		Draft:      c.draft,
		EditingID:  c.editingID,
		Mode:       c.mode,
		Loading:    c.inflight > 0,
		Generation: c.generation,
	}
}

// Loading reports whether a refresh is in flight.
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Rows renders the current collection through the configured columns.
func (c *Controller[T]) Rows() table.Rows {
	state := c.Snapshot()
	records := state.Collection
	if c.cfg.RecentBy != nil {
		records = Recent(records, c.cfg.RecentBy, c.cfg.RecentLimit)
	}
	return table.Build(records, c.cfg.Columns, c.cfg.ID, state.Generation)
}

// Recent sorts a copy of records newest first and keeps at most limit.
func Recent[T any](records []T, by func(T) time.Time, limit int) []T {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return by(out[i]).After(by(out[j]))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func duplicateKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

type decisionKey struct{}

// WithDecision records the operator's answer to a confirmation prompt.
func WithDecision(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, decisionKey{}, confirmed)
}

// ContextConfirmer answers prompts from the decision stored by WithDecision.
// A missing decision is a decline.
var ContextConfirmer Confirmer = ConfirmFunc(func(ctx context.Context, _ Prompt) bool {
	confirmed, _ := ctx.Value(decisionKey{}).(bool)
	return confirmed
})
