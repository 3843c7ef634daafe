package console

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockdesk/internal/crud"
	"github.com/odyssey-erp/stockdesk/internal/entities"
	"github.com/odyssey-erp/stockdesk/internal/gateway"
	"github.com/odyssey-erp/stockdesk/internal/notify"
	"github.com/odyssey-erp/stockdesk/internal/shared"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// Handler serves the CRUD page of one entity. Each operator session drives
// its own controller, kept in Workspaces between requests.
type Handler[T any] struct {
	deps       Deps
	schema     entities.Schema[T]
	collection *gateway.Collection[T]
}

// NewHandler constructs the page for schema.
func NewHandler[T any](deps Deps, schema entities.Schema[T]) *Handler[T] {
	return &Handler[T]{deps: deps, schema: schema, collection: gateway.NewCollection[T](deps.Gateway)}
}

// Path returns the mount path.
func (h *Handler[T]) Path() string { return h.schema.Path }

// MountRoutes registers the page routes.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/refresh", h.refresh)
	r.Get("/new", h.openCreate)
	r.Get("/{id}/edit", h.openEdit)
	r.Post("/save", h.save)
	r.Post("/close", h.close)
	r.Get("/{id}/delete", h.confirmDelete)
	r.Post("/{id}/delete", h.remove)
}

type entityWorkspace[T any] struct {
	controller *crud.Controller[T]
	notices    *notify.Recorder

	mu         sync.Mutex
	formErrors entities.FormErrors
}

func (ws *entityWorkspace[T]) setErrors(errs entities.FormErrors) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.formErrors = errs
}

func (ws *entityWorkspace[T]) fieldErrors() entities.FormErrors {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.formErrors
}

func (h *Handler[T]) workspace(r *http.Request) (*entityWorkspace[T], bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, false
	}
	ws, created := acquire(h.deps.Workspaces, sess.ID, h.schema.Path, func() *entityWorkspace[T] {
		rec := &notify.Recorder{}
		deps := crud.Deps[T]{
			Gateway: h.collection,
			Sink:    notify.Fanout{rec, notify.LogSink{Logger: h.deps.logger()}},
			Logger:  h.deps.logger(),
		}
		if h.deps.Lookups != nil {
			deps.OnMutate = h.deps.Lookups.Invalidate
		}
		return &entityWorkspace[T]{controller: crud.NewController(h.schema.Config, deps), notices: rec}
	})
	if created {
		ws.controller.Refresh(r.Context())
	}
	return ws, true
}

type sortHeader struct {
	Header string
	Href   template.URL
	Active bool
	Desc   bool
}

type modalView struct {
	Heading string
	Editing bool
	Fields  []entities.FormField
}

type listView struct {
	Title    string
	Path     string
	Singular string
	Plural   string
	Loading  bool
	Page     table.Page
	Sort     []sortHeader
	Prev     template.URL
	Next     template.URL
	Invoices map[string]template.URL
	Modal    *modalView
	Return   string
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.deps.renderError(w, r, http.StatusUnauthorized, "Your session expired, please sign in again")
		return
	}
	forward(r, ws.notices)

	cfg := h.schema.Config
	state := ws.controller.Snapshot()
	page := table.Apply(ws.controller.Rows(), table.ParseQuery(r.URL.Query()))

	data := listView{
		Title:    h.schema.Title,
		Path:     h.schema.Path,
		Singular: strings.ToLower(cfg.Singular),
		Plural:   cfg.Plural,
		Loading:  state.Loading,
		Page:     page,
		Return:   page.Query.PageLink(page.Query.Page),
	}
	for i, header := range page.Headers {
		data.Sort = append(data.Sort, sortHeader{
			Header: header,
			Href:   h.href(page.Query.SortLink(i)),
			Active: page.Query.SortColumn == i,
			Desc:   page.Query.SortColumn == i && page.Query.SortDesc,
		})
	}
	if page.HasPrev() {
		data.Prev = h.href(page.Query.PageLink(page.PrevPage()))
	}
	if page.HasNext() {
		data.Next = h.href(page.Query.PageLink(page.NextPage()))
	}
	if h.schema.InvoicePath != nil {
		data.Invoices = make(map[string]template.URL)
		for _, rec := range state.Collection {
			if link := h.schema.InvoicePath(rec); link != "" {
				data.Invoices[cfg.ID(rec)] = template.URL(link)
			}
		}
	}
	if state.Open() {
		heading := "Add " + strings.ToLower(cfg.Singular)
		if state.Mode == crud.ModeEditing {
			heading = "Edit " + strings.ToLower(cfg.Singular)
		}
		data.Modal = &modalView{
			Heading: heading,
			Editing: state.Mode == crud.ModeEditing,
			Fields:  h.schema.Form(state.Draft, ws.fieldErrors()),
		}
	}
	h.deps.render(w, r, http.StatusOK, "pages/entity.html", h.schema.Title, data)
}

func (h *Handler[T]) refresh(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.back(w, r, nil)
		return
	}
	ws.controller.Refresh(r.Context())
	h.back(w, r, ws)
}

func (h *Handler[T]) openCreate(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.back(w, r, nil)
		return
	}
	ws.setErrors(nil)
	ws.controller.OpenCreate()
	h.back(w, r, ws)
}

func (h *Handler[T]) openEdit(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.back(w, r, nil)
		return
	}
	record, found := ws.controller.Find(recordID(r))
	if !found {
		notify.Error(ws.notices, h.schema.Config.Singular+" not found")
		h.back(w, r, ws)
		return
	}
	ws.setErrors(nil)
	ws.controller.OpenEdit(record)
	h.back(w, r, ws)
}

func (h *Handler[T]) close(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.back(w, r, nil)
		return
	}
	ws.setErrors(nil)
	ws.controller.CloseModal()
	h.back(w, r, ws)
}

func (h *Handler[T]) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.deps.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read")
		return
	}
	ws, ok := h.workspace(r)
	if !ok {
		h.back(w, r, nil)
		return
	}
	state := ws.controller.Snapshot()
	if !state.Open() {
		notify.Info(ws.notices, "The form was already closed")
		h.back(w, r, ws)
		return
	}

	record, err := h.schema.Bind(r.PostForm, state.Draft)
	var formErrs entities.FormErrors
	if errors.As(err, &formErrs) {
		_ = ws.controller.SetDraft(record)
		ws.setErrors(formErrs)
		notify.Warning(ws.notices, "Please correct the highlighted fields")
		h.back(w, r, ws)
		return
	}
	if err := ws.controller.SetDraft(record); err != nil {
		notify.Info(ws.notices, "The form was already closed")
		h.back(w, r, ws)
		return
	}

	err = ws.controller.Save(r.Context())
	var remote *gateway.ValidationError
	switch {
	case err == nil:
		ws.setErrors(nil)
	case errors.As(err, &remote):
		ws.setErrors(remoteFieldErrors(remote))
	default:
		ws.setErrors(nil)
		if !errors.Is(err, crud.ErrModalClosed) {
			h.deps.logger().Debug("save rejected", slog.String("entity", h.schema.Path), slog.Any("error", err))
		}
	}
	h.back(w, r, ws)
}

type confirmView struct {
	Prompt crud.Prompt
	Name   string
	Action string
	Return string
}

func (h *Handler[T]) confirmDelete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.back(w, r, nil)
		return
	}
	id := recordID(r)
	record, found := ws.controller.Find(id)
	if !found {
		notify.Error(ws.notices, h.schema.Config.Singular+" not found")
		h.back(w, r, ws)
		return
	}
	cfg := h.schema.Config
	data := confirmView{
		Prompt: cfg.DeletePrompt(),
		Action: h.schema.Path + "/" + url.PathEscape(id) + "/delete",
		Return: r.URL.Query().Get("return"),
	}
	if cfg.DisplayName != nil {
		data.Name = cfg.DisplayName(record)
	}
	h.deps.render(w, r, http.StatusOK, "pages/confirm.html", data.Prompt.Title, data)
}

func (h *Handler[T]) remove(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.back(w, r, nil)
		return
	}
	confirmed := r.PostFormValue("decision") == "confirm"
	ctx := crud.WithDecision(r.Context(), confirmed)
	if err := ws.controller.Remove(ctx, recordID(r)); err != nil && !errors.Is(err, crud.ErrDeclined) {
		h.deps.logger().Debug("delete rejected", slog.String("entity", h.schema.Path), slog.Any("error", err))
	}
	h.back(w, r, ws)
}

// back redirects to the list, keeping the table query the form carried.
func (h *Handler[T]) back(w http.ResponseWriter, r *http.Request, ws *entityWorkspace[T]) {
	if ws != nil {
		forward(r, ws.notices)
	}
	target := h.schema.Path
	ret := r.FormValue("return")
	if ret != "" {
		if _, err := url.ParseQuery(ret); err == nil {
			target += "?" + ret
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler[T]) href(query string) template.URL {
	if query == "" {
		return template.URL(h.schema.Path)
	}
	return template.URL(h.schema.Path + "?" + query)
}

func recordID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func remoteFieldErrors(err *gateway.ValidationError) entities.FormErrors {
	if len(err.Fields) == 0 {
		return nil
	}
	out := entities.FormErrors{}
	for _, f := range err.Fields {
		if msg := f.First(); msg != "" {
			out[f.Field] = msg
		}
	}
	return out
}
