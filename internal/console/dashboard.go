package console

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/stockdesk/internal/entities"
	"github.com/odyssey-erp/stockdesk/internal/lookups"
	"github.com/odyssey-erp/stockdesk/internal/notify"
	"github.com/odyssey-erp/stockdesk/internal/stock"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// DashboardHandler renders the landing page lookups.
type DashboardHandler struct {
	deps Deps
}

type rowsView struct {
	Rows  table.Rows
	Links map[string]template.URL
}

type dashboardView struct {
	Capacity    string
	Unavailable []stock.Part
	Purchases   rowsView
	Sales       rowsView
	Counts      []lookups.CategoryCount
}

func (h *DashboardHandler) show(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.Lookups.Dashboard(r.Context())
	if err != nil {
		h.deps.logger().Warn("load dashboard", slog.Any("error", err))
		flash(r, notify.KindWarning, "Some dashboard figures could not be loaded")
	}

	purchases := entities.RecentPurchases()
	sales := entities.RecentSales()
	data := dashboardView{
		Capacity:  d.Capacity,
		Purchases: rowsView{Rows: table.Build(d.RecentPurchases, purchases.Columns, purchases.ID, 0)},
		Sales:     rowsView{Rows: table.Build(d.RecentSales, sales.Columns, sales.ID, 0)},
		Counts:    d.CategoryCounts,
	}
	if d.Capacity != "" {
		data.Unavailable = d.Stock.Unavailable()
	}
	data.Purchases.Links = invoiceLinks(d.RecentPurchases, purchases.ID, entities.Purchases().InvoicePath)
	data.Sales.Links = invoiceLinks(d.RecentSales, sales.ID, entities.SoldProducts().InvoicePath)
	h.deps.render(w, r, http.StatusOK, "pages/dashboard.html", "Dashboard", data)
}

func invoiceLinks[T any](records []T, id func(T) string, link func(T) string) map[string]template.URL {
	out := make(map[string]template.URL)
	for _, rec := range records {
		if l := link(rec); l != "" {
			out[id(rec)] = template.URL(l)
		}
	}
	return out
}
