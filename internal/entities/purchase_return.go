package entities

import (
	"github.com/odyssey-erp/stockdesk/internal/crud"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// PurchaseReturn records components sent back to a supplier.
type PurchaseReturn struct {
	ID         ID     `json:"id,omitempty"`
	Component  string `json:"component" validate:"max=150"`
	Supplier   string `json:"supplier" validate:"max=150"`
	Quantity   Number `json:"quantity" validate:"gte=0"`
	Reason     string `json:"reason" validate:"max=255"`
	ReturnDate Date   `json:"return_date"`
}

type purchaseReturnPayload struct {
	Component  string `json:"component"`
	Supplier   string `json:"supplier"`
	Quantity   Number `json:"quantity"`
	Reason     string `json:"reason"`
	ReturnDate Date   `json:"return_date"`
}

// PurchaseReturns describes the purchase return page. Returns have no
// natural unique key, so duplicates are left to the backend.
func PurchaseReturns() Schema[PurchaseReturn] {
	return Schema[PurchaseReturn]{
		Path:  "/purchase-returns",
		Title: "Purchase returns",
		Fields: []Field[PurchaseReturn]{
			text("component", "Component", func(p *PurchaseReturn) *string { return &p.Component }),
			text("supplier", "Supplier", func(p *PurchaseReturn) *string { return &p.Supplier }),
			number("quantity", "Quantity", func(p *PurchaseReturn) *Number { return &p.Quantity }),
			text("reason", "Reason", func(p *PurchaseReturn) *string { return &p.Reason }),
			date("return_date", "Return date", func(p *PurchaseReturn) *Date { return &p.ReturnDate }),
		},
		Config: crud.Config[PurchaseReturn]{
			Singular:           "Purchase return",
			Plural:             "purchase returns",
			CollectionEndpoint: "/purchase-returns",
			ID:                 func(p PurchaseReturn) string { return p.ID.String() },
			DisplayName:        func(p PurchaseReturn) string { return p.Component },
			NameLabel:          "Component",
			Trim: func(p PurchaseReturn) PurchaseReturn {
				trimAll(&p.Component, &p.Supplier, &p.Reason)
				return p
			},
			Payload: func(p PurchaseReturn) any {
				return purchaseReturnPayload{
					Component:  p.Component,
					Supplier:   p.Supplier,
					Quantity:   p.Quantity,
					Reason:     p.Reason,
					ReturnDate: p.ReturnDate,
				}
			},
			Columns: []table.Column[PurchaseReturn]{
				{Header: "Component", Value: func(p PurchaseReturn) string { return p.Component }},
				{Header: "Supplier", Value: func(p PurchaseReturn) string { return p.Supplier }},
				{Header: "Qty", Value: func(p PurchaseReturn) string { return p.Quantity.String() }},
				{Header: "Reason", Value: func(p PurchaseReturn) string { return p.Reason }},
				{Header: "Date", Value: func(p PurchaseReturn) string { return p.ReturnDate.String() }},
			},
			ConfirmDeleteTitle: "Delete purchase return?",
			ConfirmDeleteText:  "The return record will be permanently removed.",
		},
	}
}
