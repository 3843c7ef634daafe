package crud

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockdesk/internal/gateway"
	"github.com/odyssey-erp/stockdesk/internal/notify"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

type category struct {
	ID       int64  `json:"id,omitempty"`
	Category string `json:"category"`
}

type call struct {
	Method   string
	Endpoint string
	Payload  any
}

// fakeGateway is an in-memory collection that records every call.
type fakeGateway struct {
	mu        sync.Mutex
	records   []category
	nextID    int64
	calls     []call
	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeGateway(records ...category) *fakeGateway {
	next := int64(1)
	for _, r := range records {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return &fakeGateway{records: records, nextID: next}
}

func (f *fakeGateway) record(method, endpoint string, payload any) {
	f.calls = append(f.calls, call{Method: method, Endpoint: endpoint, Payload: payload})
}

func (f *fakeGateway) List(ctx context.Context, endpoint string) ([]category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET", endpoint, nil)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]category, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeGateway) Create(ctx context.Context, endpoint string, payload any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("POST", endpoint, payload)
	if f.createErr != nil {
		return "", f.createErr
	}
	body := payload.(map[string]string)
	f.records = append(f.records, category{ID: f.nextID, Category: body["category"]})
	f.nextID++
	return "", nil
}

func (f *fakeGateway) Update(ctx context.Context, endpoint string, payload any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PUT", endpoint, payload)
	if f.updateErr != nil {
		return "", f.updateErr
	}
	id := endpoint[strings.LastIndex(endpoint, "/")+1:]
	body := payload.(map[string]string)
	for i, r := range f.records {
		if strconv.FormatInt(r.ID, 10) == id {
			f.records[i].Category = body["category"]
		}
	}
	return "", nil
}

func (f *fakeGateway) Delete(ctx context.Context, endpoint string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DELETE", endpoint, nil)
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	id := endpoint[strings.LastIndex(endpoint, "/")+1:]
	kept := f.records[:0]
	for _, r := range f.records {
		if strconv.FormatInt(r.ID, 10) != id {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return "", nil
}

func (f *fakeGateway) mutations() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Method != "GET" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGateway) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == "GET" {
			n++
		}
	}
	return n
}

func categoryConfig() Config[category] {
	return Config[category]{
		Singular:           "Category",
		Plural:             "categories",
		CollectionEndpoint: "/categories",
		ID:                 func(c category) string { return strconv.FormatInt(c.ID, 10) },
		DisplayName:        func(c category) string { return c.Category },
		DuplicateKey:       func(c category) string { return c.Category },
		Trim: func(c category) category {
			c.Category = strings.TrimSpace(c.Category)
			return c
		},
		Payload: func(c category) any { return map[string]string{"category": c.Category} },
		Columns: []table.Column[category]{
			{Header: "Category", Value: func(c category) string { return c.Category }},
		},
	}
}

func newTestController(t *testing.T, gw *fakeGateway, confirm Confirmer) (*Controller[category], *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	ctrl := NewController(categoryConfig(), Deps[category]{Gateway: gw, Sink: rec, Confirmer: confirm})
	ctrl.Refresh(context.Background())
	rec.Drain()
	return ctrl, rec
}

func TestSaveRejectsDuplicateCaseInsensitively(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Resistors"})
	ctrl, rec := newTestController(t, gw, nil)

	ctrl.OpenCreate()
	require.NoError(t, ctrl.SetDraft(category{Category: "resistors"}))
	err := ctrl.Save(context.Background())

	assert.True(t, IsValidation(err, ReasonDuplicate))
	assert.Empty(t, gw.mutations())
	assert.Equal(t, []string{"Category already exists"}, rec.Texts(notify.KindError))
	assert.True(t, ctrl.Snapshot().Open())
}

func TestSaveRejectsDuplicateAfterTrimAndUnicodeFold(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Straße"})
	ctrl, _ := newTestController(t, gw, nil)

	ctrl.OpenCreate()
	require.NoError(t, ctrl.SetDraft(category{Category: "  STRASSE "}))
	assert.True(t, IsValidation(ctrl.Save(context.Background()), ReasonDuplicate))
	assert.Empty(t, gw.mutations())
}

func TestSaveRejectsBlankName(t *testing.T) {
	gw := newFakeGateway()
	ctrl, rec := newTestController(t, gw, nil)

	for _, name := range []string{"", "   ", "\t\n"} {
		ctrl.OpenCreate()
		require.NoError(t, ctrl.SetDraft(category{Category: name}))
		err := ctrl.Save(context.Background())
		assert.True(t, IsValidation(err, ReasonRequired), "name %q", name)
	}
	assert.Empty(t, gw.mutations())
	assert.Len(t, rec.Texts(notify.KindWarning), 3)
}

func TestRequiredWarningNamesPrimaryField(t *testing.T) {
	gw := newFakeGateway()
	ctrl, rec := newTestController(t, gw, nil)
	ctrl.OpenCreate()
	require.NoError(t, ctrl.SetDraft(category{}))
	require.Error(t, ctrl.Save(context.Background()))
	assert.Equal(t, []string{"Category name is required"}, rec.Texts(notify.KindWarning))

	cfg := categoryConfig()
	cfg.Singular = "Purchase"
	cfg.NameLabel = "Component"
	labelled := NewController(cfg, Deps[category]{Gateway: gw, Sink: rec})
	labelled.OpenCreate()
	require.NoError(t, labelled.SetDraft(category{Category: " "}))
	err := labelled.Save(context.Background())
	assert.True(t, IsValidation(err, ReasonRequired))
	assert.Equal(t, "Component is required", rec.Texts(notify.KindWarning)[1])
}

func TestEditUpdatesAndCloses(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Resistors"})
	ctrl, rec := newTestController(t, gw, nil)

	ctrl.OpenEdit(category{ID: 1, Category: "Resistors"})
	require.NoError(t, ctrl.SetDraft(category{ID: 1, Category: "Capacitors"}))
	require.NoError(t, ctrl.Save(context.Background()))

	muts := gw.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, call{Method: "PUT", Endpoint: "/categories/1", Payload: map[string]string{"category": "Capacitors"}}, muts[0])
	assert.Equal(t, 2, gw.lists())

	state := ctrl.Snapshot()
	assert.False(t, state.Open())
	assert.Equal(t, []category{{ID: 1, Category: "Capacitors"}}, state.Collection)
	assert.Equal(t, []string{"Category updated successfully"}, rec.Texts(notify.KindSuccess))
}

func TestEditingRecordMayKeepItsOwnName(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Resistors"}, category{ID: 2, Category: "Diodes"})
	ctrl, _ := newTestController(t, gw, nil)

	ctrl.OpenEdit(category{ID: 1, Category: "Resistors"})
	require.NoError(t, ctrl.SetDraft(category{ID: 1, Category: "RESISTORS"}))
	require.NoError(t, ctrl.Save(context.Background()))

	ctrl.OpenEdit(category{ID: 1, Category: "RESISTORS"})
	require.NoError(t, ctrl.SetDraft(category{ID: 1, Category: "diodes"}))
	assert.True(t, IsValidation(ctrl.Save(context.Background()), ReasonDuplicate))
}

func TestOpenEditThenSaveResubmitsRecordUnchanged(t *testing.T) {
	original := category{ID: 7, Category: "Transistors"}
	gw := newFakeGateway(original)
	ctrl, _ := newTestController(t, gw, nil)

	ctrl.OpenEdit(original)
	require.NoError(t, ctrl.Save(context.Background()))

	muts := gw.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, "/categories/7", muts[0].Endpoint)
	assert.Equal(t, map[string]string{"category": "Transistors"}, muts[0].Payload)
}

func TestCreateAddsAndRefreshes(t *testing.T) {
	gw := newFakeGateway()
	ctrl, rec := newTestController(t, gw, nil)

	ctrl.OpenCreate()
	require.NoError(t, ctrl.SetDraft(category{Category: "  Inductors  "}))
	require.NoError(t, ctrl.Save(context.Background()))

	muts := gw.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, "POST", muts[0].Method)
	assert.Equal(t, map[string]string{"category": "Inductors"}, muts[0].Payload)

	state := ctrl.Snapshot()
	require.Len(t, state.Collection, 1)
	assert.Equal(t, "Inductors", state.Collection[0].Category)
	assert.Equal(t, []string{"Category added successfully"}, rec.Texts(notify.KindSuccess))
}

func TestRemoteFieldErrorsKeepDraft(t *testing.T) {
	gw := newFakeGateway()
	gw.createErr = &gateway.ValidationError{Fields: []gateway.FieldError{{Field: "category", Messages: []string{"Name too long"}}}}
	ctrl, rec := newTestController(t, gw, nil)

	ctrl.OpenCreate()
	draft := category{Category: "A very long name"}
	require.NoError(t, ctrl.SetDraft(draft))
	err := ctrl.Save(context.Background())
	require.Error(t, err)

	assert.Equal(t, []notify.Message{{Kind: notify.KindError, Text: "Name too long"}}, rec.Messages())
	state := ctrl.Snapshot()
	assert.Equal(t, ModeCreating, state.Mode)
	assert.Equal(t, draft, state.Draft)
}

func TestRemoteValidationVariants(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want []string
	}{
		{"message", &gateway.ValidationError{Message: "The category has already been taken."}, []string{"The category has already been taken."}},
		{"fields in order", &gateway.ValidationError{Fields: []gateway.FieldError{
			{Field: "zeta", Messages: []string{"z1", "z2"}},
			{Field: "alpha", Messages: []string{"a1"}},
		}}, []string{"z1", "a1"}},
		{"unknown", &gateway.ValidationError{}, []string{"Validation failed"}},
		{"transport", &gateway.MutationError{Status: 500}, []string{"Failed to save category"}},
		{"plain", errors.New("boom"), []string{"Failed to save category"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newFakeGateway(category{ID: 1, Category: "Resistors"})
			gw.updateErr = tc.err
			ctrl, rec := newTestController(t, gw, nil)

			ctrl.OpenEdit(category{ID: 1, Category: "Resistors"})
			require.Error(t, ctrl.Save(context.Background()))
			assert.Equal(t, tc.want, rec.Texts(notify.KindError))
			assert.Equal(t, ModeEditing, ctrl.Snapshot().Mode)
			assert.Equal(t, "1", ctrl.Snapshot().EditingID)
		})
	}
}

func TestCloseModalIsIdempotent(t *testing.T) {
	ctrl, _ := newTestController(t, newFakeGateway(category{ID: 1, Category: "Resistors"}), nil)

	ctrl.OpenEdit(category{ID: 1, Category: "Resistors"})
	ctrl.CloseModal()
	once := ctrl.Snapshot()
	ctrl.CloseModal()
	twice := ctrl.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, ModeClosed, twice.Mode)
	assert.Empty(t, twice.EditingID)
	assert.Equal(t, category{}, twice.Draft)
	assert.ErrorIs(t, ctrl.Save(context.Background()), ErrModalClosed)
	assert.ErrorIs(t, ctrl.SetDraft(category{Category: "x"}), ErrModalClosed)
}

func TestRemoveDeclinedIsNoop(t *testing.T) {
	gw := newFakeGateway(category{ID: 5, Category: "Fuses"})
	ctrl, rec := newTestController(t, gw, nil)

	err := ctrl.Remove(context.Background(), "5")
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Empty(t, gw.mutations())
	assert.Empty(t, rec.Messages())
}

func TestRemoveConfirmedDeletesAndRefreshes(t *testing.T) {
	gw := newFakeGateway(category{ID: 5, Category: "Fuses"}, category{ID: 6, Category: "Relays"})
	var prompt Prompt
	confirm := ConfirmFunc(func(ctx context.Context, p Prompt) bool {
		prompt = p
		return true
	})
	ctrl, rec := newTestController(t, gw, confirm)

	require.NoError(t, ctrl.Remove(context.Background(), "5"))
	assert.Equal(t, "Cancel", prompt.CancelLabel)
	assert.Equal(t, []category{{ID: 6, Category: "Relays"}}, ctrl.Snapshot().Collection)
	assert.Equal(t, []string{"Category deleted successfully"}, rec.Texts(notify.KindSuccess))
}

func TestRemoveWithContextDecision(t *testing.T) {
	gw := newFakeGateway(category{ID: 5, Category: "Fuses"})
	ctrl, _ := newTestController(t, gw, nil)

	require.NoError(t, ctrl.Remove(WithDecision(context.Background(), true), "5"))
	assert.Empty(t, ctrl.Snapshot().Collection)
}

func TestRemoveFailureKeepsStaleRow(t *testing.T) {
	gw := newFakeGateway(category{ID: 5, Category: "Fuses"})
	gw.deleteErr = &gateway.MutationError{Err: errors.New("connection refused")}
	ctrl, rec := newTestController(t, gw, ConfirmFunc(func(context.Context, Prompt) bool { return true }))

	err := ctrl.Remove(context.Background(), "5")
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to delete category"}, rec.Texts(notify.KindError))
	assert.Equal(t, []category{{ID: 5, Category: "Fuses"}}, ctrl.Snapshot().Collection)
	assert.Equal(t, 1, gw.lists())
}

func TestRefreshFailureKeepsPreviousCollection(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Resistors"})
	ctrl, rec := newTestController(t, gw, nil)
	before := ctrl.Snapshot()

	gw.listErr = &gateway.TransientError{Status: 503}
	ctrl.Refresh(context.Background())

	after := ctrl.Snapshot()
	assert.Equal(t, before.Collection, after.Collection)
	assert.Equal(t, before.Generation, after.Generation)
	assert.False(t, after.Loading)
	assert.Equal(t, []string{"Failed to load categories"}, rec.Texts(notify.KindError))
}

func TestRefreshBumpsGenerationAndRows(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Resistors"})
	ctrl, _ := newTestController(t, gw, nil)
	first := ctrl.Rows()

	ctrl.Refresh(context.Background())
	second := ctrl.Rows()

	assert.Greater(t, second.Generation, first.Generation)
	assert.Equal(t, []string{"Category"}, second.Headers)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "1", second.Items[0].ID)
}

type slowGateway struct {
	*fakeGateway
	release chan struct{}
	started chan struct{}
}

func (s *slowGateway) List(ctx context.Context, endpoint string) ([]category, error) {
	close(s.started)
	<-s.release
	return s.fakeGateway.List(ctx, endpoint)
}

func TestLoadingFlagDuringRefresh(t *testing.T) {
	gw := &slowGateway{fakeGateway: newFakeGateway(), release: make(chan struct{}), started: make(chan struct{})}
	ctrl := NewController(categoryConfig(), Deps[category]{Gateway: gw, Sink: &notify.Recorder{}})

	done := make(chan struct{})
	go func() {
		ctrl.Refresh(context.Background())
		close(done)
	}()
	<-gw.started
	assert.True(t, ctrl.Loading())
	close(gw.release)
	<-done
	assert.False(t, ctrl.Loading())
}

func TestConcurrentSaveAndRemove(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Resistors"}, category{ID: 2, Category: "Diodes"})
	ctrl, _ := newTestController(t, gw, ConfirmFunc(func(context.Context, Prompt) bool { return true }))

	ctrl.OpenEdit(category{ID: 1, Category: "Resistors"})
	require.NoError(t, ctrl.SetDraft(category{ID: 1, Category: "Capacitors"}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = ctrl.Save(context.Background())
	}()
	go func() {
		defer wg.Done()
		_ = ctrl.Remove(context.Background(), "2")
	}()
	wg.Wait()

	ctrl.Refresh(context.Background())
	assert.Equal(t, []category{{ID: 1, Category: "Capacitors"}}, ctrl.Snapshot().Collection)
}

type purchase struct {
	ID   string
	Date time.Time
}

func TestRecentSortsNewestFirstAndTruncates(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var records []purchase
	for i := 0; i < 15; i++ {
		records = append(records, purchase{ID: strconv.Itoa(i), Date: base.AddDate(0, 0, i)})
	}

	recent := Recent(records, func(p purchase) time.Time { return p.Date }, 0)
	require.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, "14", recent[0].ID)
	assert.Equal(t, "5", recent[9].ID)
	assert.Equal(t, "0", records[0].ID)
}

func TestOnMutateRunsOnlyAfterSuccessfulMutations(t *testing.T) {
	gw := newFakeGateway(category{ID: 1, Category: "Resistors"})
	var mutations int
	ctrl := NewController(categoryConfig(), Deps[category]{
		Gateway:   gw,
		Sink:      &notify.Recorder{},
		Confirmer: ConfirmFunc(func(context.Context, Prompt) bool { return true }),
		OnMutate:  func(context.Context) { mutations++ },
	})
	ctx := context.Background()
	ctrl.Refresh(ctx)

	ctrl.OpenCreate()
	require.NoError(t, ctrl.SetDraft(category{Category: "resistors"}))
	require.Error(t, ctrl.Save(ctx))
	assert.Equal(t, 0, mutations)

	require.NoError(t, ctrl.SetDraft(category{Category: "Diodes"}))
	require.NoError(t, ctrl.Save(ctx))
	assert.Equal(t, 1, mutations)

	require.NoError(t, ctrl.Remove(ctx, "1"))
	assert.Equal(t, 2, mutations)

	gw.deleteErr = errors.New("boom")
	require.Error(t, ctrl.Remove(ctx, "2"))
	assert.Equal(t, 2, mutations)
}
