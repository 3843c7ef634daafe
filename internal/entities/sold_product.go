package entities

import (
	"time"

	"github.com/odyssey-erp/stockdesk/internal/crud"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// SoldProduct tracks a finished board by serial number.
type SoldProduct struct {
	ID           ID     `json:"id,omitempty"`
	SerialNumber string `json:"serial_number" validate:"max=64"`
	Product      string `json:"product" validate:"max=150"`
	Customer     string `json:"customer" validate:"max=150"`
	InvoiceNo    string `json:"invoice_no" validate:"max=50"`
	SoldDate     Date   `json:"sold_date"`
}

type soldProductPayload struct {
	SerialNumber string `json:"serial_number"`
	Product      string `json:"product"`
	Customer     string `json:"customer"`
	InvoiceNo    string `json:"invoice_no"`
	SoldDate     Date   `json:"sold_date"`
}

func soldProductConfig() crud.Config[SoldProduct] {
	return crud.Config[SoldProduct]{
		Singular:           "Sold product",
		Plural:             "sold products",
		CollectionEndpoint: "/sold-products",
		ID:                 func(s SoldProduct) string { return s.ID.String() },
		DisplayName:        func(s SoldProduct) string { return s.SerialNumber },
		NameLabel:          "Serial number",
		DuplicateKey:       func(s SoldProduct) string { return s.SerialNumber },
		Trim: func(s SoldProduct) SoldProduct {
			trimAll(&s.SerialNumber, &s.Product, &s.Customer, &s.InvoiceNo)
			return s
		},
		Payload: func(s SoldProduct) any {
			return soldProductPayload{
				SerialNumber: s.SerialNumber,
				Product:      s.Product,
				Customer:     s.Customer,
				InvoiceNo:    s.InvoiceNo,
				SoldDate:     s.SoldDate,
			}
		},
		Columns: []table.Column[SoldProduct]{
			{Header: "Serial", Value: func(s SoldProduct) string { return s.SerialNumber }},
			{Header: "Product", Value: func(s SoldProduct) string { return s.Product }},
			{Header: "Customer", Value: func(s SoldProduct) string { return s.Customer }},
			{Header: "Invoice", Value: func(s SoldProduct) string { return s.InvoiceNo }},
			{Header: "Date", Value: func(s SoldProduct) string { return s.SoldDate.String() }},
		},
		ConfirmDeleteTitle: "Delete sold product?",
		ConfirmDeleteText:  "The serial number will no longer appear in stock traces.",
	}
}

// SoldProducts describes the sold products page.
func SoldProducts() Schema[SoldProduct] {
	return Schema[SoldProduct]{
		Path:  "/sold-products",
		Title: "Sold products",
		Fields: []Field[SoldProduct]{
			text("serial_number", "Serial number", func(s *SoldProduct) *string { return &s.SerialNumber }),
			text("product", "Product", func(s *SoldProduct) *string { return &s.Product }),
			text("customer", "Customer", func(s *SoldProduct) *string { return &s.Customer }),
			text("invoice_no", "Invoice", func(s *SoldProduct) *string { return &s.InvoiceNo }),
			date("sold_date", "Sold date", func(s *SoldProduct) *Date { return &s.SoldDate }),
		},
		Config: soldProductConfig(),
		InvoicePath: func(s SoldProduct) string { return invoiceLink(s.InvoiceNo) },
	}
}

// RecentSales is the dashboard variant: newest ten sales.
func RecentSales() crud.Config[SoldProduct] {
	cfg := soldProductConfig()
	cfg.RecentBy = func(s SoldProduct) time.Time { return s.SoldDate.Time }
	cfg.RecentLimit = crud.DefaultRecentLimit
	return cfg
}
