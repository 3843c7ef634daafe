package entities

import (
	"time"

	"github.com/odyssey-erp/stockdesk/internal/crud"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// Purchase is one component purchase line.
type Purchase struct {
	ID           ID     `json:"id,omitempty"`
	InvoiceNo    string `json:"invoice_no" validate:"max=50"`
	Component    string `json:"component" validate:"max=150"`
	Supplier     string `json:"supplier" validate:"max=150"`
	Quantity     Number `json:"quantity" validate:"gte=0"`
	UnitPrice    Number `json:"unit_price" validate:"gte=0"`
	PurchaseDate Date   `json:"purchase_date"`
}

type purchasePayload struct {
	InvoiceNo    string `json:"invoice_no"`
	Component    string `json:"component"`
	Supplier     string `json:"supplier"`
	Quantity     Number `json:"quantity"`
	UnitPrice    Number `json:"unit_price"`
	PurchaseDate Date   `json:"purchase_date"`
}

func purchaseFields() []Field[Purchase] {
	return []Field[Purchase]{
		text("invoice_no", "Invoice", func(p *Purchase) *string { return &p.InvoiceNo }),
		text("component", "Component", func(p *Purchase) *string { return &p.Component }),
		text("supplier", "Supplier", func(p *Purchase) *string { return &p.Supplier }),
		number("quantity", "Quantity", func(p *Purchase) *Number { return &p.Quantity }),
		number("unit_price", "Unit price", func(p *Purchase) *Number { return &p.UnitPrice }),
		date("purchase_date", "Purchase date", func(p *Purchase) *Date { return &p.PurchaseDate }),
	}
}

func purchaseConfig() crud.Config[Purchase] {
	return crud.Config[Purchase]{
		Singular:           "Purchase",
		Plural:             "purchases",
		CollectionEndpoint: "/purchases",
		ID:                 func(p Purchase) string { return p.ID.String() },
		DisplayName:        func(p Purchase) string { return p.Component },
		NameLabel:          "Component",
		DuplicateKey:       func(p Purchase) string { return p.InvoiceNo },
		Trim: func(p Purchase) Purchase {
			trimAll(&p.InvoiceNo, &p.Component, &p.Supplier)
			return p
		},
		Payload: func(p Purchase) any {
			return purchasePayload{
				InvoiceNo:    p.InvoiceNo,
				Component:    p.Component,
				Supplier:     p.Supplier,
				Quantity:     p.Quantity,
				UnitPrice:    p.UnitPrice,
				PurchaseDate: p.PurchaseDate,
			}
		},
		Columns: []table.Column[Purchase]{
			{Header: "Invoice", Value: func(p Purchase) string { return p.InvoiceNo }},
			{Header: "Component", Value: func(p Purchase) string { return p.Component }},
			{Header: "Supplier", Value: func(p Purchase) string { return p.Supplier }},
			{Header: "Qty", Value: func(p Purchase) string { return p.Quantity.String() }},
			{Header: "Unit price", Value: func(p Purchase) string { return p.UnitPrice.String() }},
			{Header: "Date", Value: func(p Purchase) string { return p.PurchaseDate.String() }},
		},
		ConfirmDeleteTitle: "Delete purchase?",
		ConfirmDeleteText:  "The purchase will be removed and stock levels recalculated by the backend.",
	}
}

// Purchases describes the purchase page.
func Purchases() Schema[Purchase] {
	return Schema[Purchase]{
		Path:   "/purchases",
		Title:  "Purchases",
		Fields: purchaseFields(),
		Config: purchaseConfig(),
		InvoicePath: func(p Purchase) string { return invoiceLink(p.InvoiceNo) },
	}
}

// RecentPurchases is the dashboard variant: newest ten purchases.
func RecentPurchases() crud.Config[Purchase] {
	cfg := purchaseConfig()
	cfg.RecentBy = func(p Purchase) time.Time { return p.PurchaseDate.Time }
	cfg.RecentLimit = crud.DefaultRecentLimit
	return cfg
}
