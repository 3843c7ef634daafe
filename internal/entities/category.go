package entities

import (
	"github.com/odyssey-erp/stockdesk/internal/crud"
	"github.com/odyssey-erp/stockdesk/internal/table"
)

// Category groups components.
type Category struct {
	ID       ID     `json:"id,omitempty"`
	Category string `json:"category" validate:"max=100"`
}

// Categories describes the category page.
func Categories() Schema[Category] {
	return Schema[Category]{
		Path:  "/categories",
		Title: "Categories",
		Fields: []Field[Category]{
			text("category", "Category", func(c *Category) *string { return &c.Category }),
		},
		Config: crud.Config[Category]{
			Singular:           "Category",
			Plural:             "categories",
			CollectionEndpoint: "/categories",
			ID:                 func(c Category) string { return c.ID.String() },
			DisplayName:        func(c Category) string { return c.Category },
			DuplicateKey:       func(c Category) string { return c.Category },
			Trim: func(c Category) Category {
				trimAll(&c.Category)
				return c
			},
			Payload: func(c Category) any {
				return map[string]string{"category": c.Category}
			},
			Columns: []table.Column[Category]{
				{Header: "Category", Value: func(c Category) string { return c.Category }},
			},
			ConfirmDeleteTitle: "Delete category?",
			ConfirmDeleteText:  "Products filed under this category will lose their category.",
		},
	}
}
