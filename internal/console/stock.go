package console

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockdesk/internal/gateway"
	"github.com/odyssey-erp/stockdesk/internal/notify"
	"github.com/odyssey-erp/stockdesk/internal/shared"
	"github.com/odyssey-erp/stockdesk/internal/timeline"
)

// StockHandler serves the serial-number stock lookup.
type StockHandler struct {
	deps Deps
}

// MountRoutes registers the lookup routes.
func (h *StockHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/sections/{index}/toggle", h.toggle)
}

type sectionView struct {
	Index    int
	Title    string
	Fields   []timeline.Field
	Expanded bool
}

type stockView struct {
	Serial   string
	Sections []sectionView
}

func (h *StockHandler) expansion(r *http.Request) *timeline.Expansion {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return &timeline.Expansion{}
	}
	exp, _ := acquire(h.deps.Workspaces, sess.ID, "/stock", func() *timeline.Expansion {
		return &timeline.Expansion{}
	})
	return exp
}

func (h *StockHandler) show(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	serial := strings.TrimSpace(query.Get("serial"))
	data := stockView{Serial: serial}
	if serial != "" {
		exp := h.expansion(r)
		if query.Has("lookup") {
			exp.Reset(serial)
		} else {
			exp.Follow(serial)
		}
		sections, err := h.deps.Lookups.StockTrace(r.Context(), serial)
		switch {
		case errors.Is(err, gateway.ErrNotFound):
			flash(r, notify.KindWarning, "No stock record found for "+serial)
		case err != nil:
			flash(r, notify.KindError, "Failed to look up serial number")
		default:
			for i, s := range sections {
				data.Sections = append(data.Sections, sectionView{
					Index:    i,
					Title:    s.Title,
					Fields:   s.Fields,
					Expanded: exp.Expanded(i),
				})
			}
		}
	}
	h.deps.render(w, r, http.StatusOK, "pages/stock.html", "Stock lookup", data)
}

func (h *StockHandler) toggle(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= len(timeline.Titles()) {
		h.deps.renderError(w, r, http.StatusNotFound, "Unknown section")
		return
	}
	exp := h.expansion(r)
	exp.Toggle(i)
	target := "/stock"
	if serial := exp.Serial(); serial != "" {
		target += "?serial=" + url.QueryEscape(serial)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
