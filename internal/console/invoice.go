package console

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockdesk/internal/gateway"
)

// InvoiceHandler proxies generated invoice PDFs from the backend.
type InvoiceHandler struct {
	deps Deps
}

func (h *InvoiceHandler) download(w http.ResponseWriter, r *http.Request) {
	invoice, err := url.PathUnescape(chi.URLParam(r, "invoice"))
	if err != nil || invoice == "" {
		h.deps.renderError(w, r, http.StatusNotFound, "Invoice not found")
		return
	}
	doc, err := h.deps.Gateway.OpenDocument(r.Context(), "/invoices/"+url.PathEscape(invoice)+"/pdf")
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.deps.renderError(w, r, http.StatusNotFound, "Invoice not found")
			return
		}
		h.deps.logger().Warn("open invoice", slog.String("invoice", invoice), slog.Any("error", err))
		h.deps.renderError(w, r, http.StatusBadGateway, "The invoice could not be generated")
		return
	}
	filename := doc.Filename
	if filename == "" {
		filename = "invoice-" + invoice + ".pdf"
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(doc.Body)
}
