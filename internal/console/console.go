// Package console serves the operator-facing pages: one CRUD page per entity,
// the dashboard, the stock lookup and invoice downloads.
package console

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockdesk/internal/entities"
	"github.com/odyssey-erp/stockdesk/internal/gateway"
	"github.com/odyssey-erp/stockdesk/internal/lookups"
	"github.com/odyssey-erp/stockdesk/internal/notify"
	"github.com/odyssey-erp/stockdesk/internal/shared"
	"github.com/odyssey-erp/stockdesk/internal/view"
)

// Deps groups the collaborators every console handler shares.
type Deps struct {
	Gateway    *gateway.Client
	Lookups    *lookups.Service
	Workspaces *Workspaces
	Templates  *view.Engine
	CSRF       *shared.CSRFManager
	Logger     *slog.Logger
}

// Page is an entity page mounted under its own path.
type Page interface {
	Path() string
	MountRoutes(r chi.Router)
}

// Pages instantiates the CRUD page of every entity.
func Pages(deps Deps) []Page {
	return []Page{
		NewHandler(deps, entities.Categories()),
		NewHandler(deps, entities.Countries()),
		NewHandler(deps, entities.Purchases()),
		NewHandler(deps, entities.PurchaseReturns()),
		NewHandler(deps, entities.SoldProducts()),
	}
}

// Mount registers every console route on r.
func Mount(r chi.Router, deps Deps) {
	dashboard := &DashboardHandler{deps: deps}
	stockPage := &StockHandler{deps: deps}
	invoices := &InvoiceHandler{deps: deps}

	r.Get("/", dashboard.show)
	r.Route("/stock", stockPage.MountRoutes)
	r.Get("/invoices/{invoice}/pdf", invoices.download)
	for _, p := range Pages(deps) {
		r.Route(p.Path(), p.MountRoutes)
	}
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	td := view.TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess != nil {
		td.CSRFToken, _ = d.CSRF.EnsureToken(sess)
		td.Flashes = sess.Flashes()
		td.User = shared.OperatorFromContext(r.Context())
	}
	if err := d.Templates.RenderStatus(w, status, name, td); err != nil {
		d.logger().Error("render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (d Deps) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	d.render(w, r, status, "pages/error.html", http.StatusText(status), map[string]any{"Message": message})
}

// flash queues a notification on the request's session.
func flash(r *http.Request, kind notify.Kind, text string) {
	notify.FlashSink{Session: shared.SessionFromContext(r.Context())}.Notify(kind, text)
}

// forward moves queued controller notifications onto the session so they
// survive the redirect.
func forward(r *http.Request, rec *notify.Recorder) {
	sink := notify.FlashSink{Session: shared.SessionFromContext(r.Context())}
	for _, m := range rec.Drain() {
		sink.Notify(m.Kind, m.Text)
	}
}
