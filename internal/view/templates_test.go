package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockdesk/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderErrorPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.RenderStatus(rr, http.StatusNotFound, "pages/error.html", TemplateData{
		Title:       "Not found",
		CurrentPath: "/categories",
		User:        "admin@example.com",
		Flashes:     []shared.FlashMessage{{Kind: "error", Message: "Category not found"}},
		Data:        map[string]any{"Message": "The requested record was not found"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Category not found")
	assert.Contains(t, body, "The requested record was not found")
	assert.Contains(t, body, `class="active" href="/categories"`)
}

func TestRenderUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	assert.Error(t, engine.Render(rr, "pages/missing.html", TemplateData{}))
	assert.Empty(t, rr.Body.String())
}
