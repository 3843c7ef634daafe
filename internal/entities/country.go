package entities

import (
	"strings"

	"github.com/odyssey-erp/stockdesk/internal/crud"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// Country is a country of origin for suppliers and components.
type Country struct {
	ID      ID     `json:"id,omitempty"`
	Country string `json:"country" validate:"max=100"`
	Code    string `json:"code,omitempty" validate:"omitempty,len=2,alpha"`
}

type countryPayload struct {
	Country string `json:"country"`
	Code    string `json:"code,omitempty"`
}

// Countries describes the country page.
func Countries() Schema[Country] {
	return Schema[Country]{
		Path:  "/countries",
		Title: "Countries",
		Fields: []Field[Country]{
			text("country", "Country", func(c *Country) *string { return &c.Country }),
			text("code", "ISO code", func(c *Country) *string { return &c.Code }),
		},
		Config: crud.Config[Country]{
			Singular:           "Country",
			Plural:             "countries",
			CollectionEndpoint: "/countries",
			ID:                 func(c Country) string { return c.ID.String() },
			DisplayName:        func(c Country) string { return c.Country },
			DuplicateKey:       func(c Country) string { return c.Country },
			Trim: func(c Country) Country {
				trimAll(&c.Country, &c.Code)
				c.Code = strings.ToUpper(c.Code)
				return c
			},
			Payload: func(c Country) any {
				return countryPayload{Country: c.Country, Code: c.Code}
			},
			Columns: []table.Column[Country]{
				{Header: "Country", Value: func(c Country) string { return c.Country }},
				{Header: "Code", Value: func(c Country) string { return c.Code }},
			},
			ConfirmDeleteTitle: "Delete country?",
			ConfirmDeleteText:  "This country will be removed from the list.",
		},
	}
}
