package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/stockdesk/internal/shared"
)

func TestHelpersSkipEmptyAndNil(t *testing.T) {
	rec := &Recorder{}
	Success(rec, "")
	Error(nil, "ignored")
	Warning(rec, "Category name is required")
	assert.Equal(t, []Message{{Kind: KindWarning, Text: "Category name is required"}}, rec.Messages())
	assert.Len(t, rec.Drain(), 1)
	assert.Empty(t, rec.Messages())
}

func TestFanoutAndLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &Recorder{}
	sess := &shared.Session{ID: "s"}
	sink := Fanout{rec, nil, LogSink{Logger: logger}, FlashSink{Session: sess}}

	Error(sink, "Failed to delete category")
	Info(sink, "Loaded")

	assert.Equal(t, []string{"Failed to delete category"}, rec.Texts(KindError))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "Failed to delete category")
	assert.Equal(t, []shared.FlashMessage{
		{Kind: "error", Message: "Failed to delete category"},
		{Kind: "info", Message: "Loaded"},
	}, sess.Flashes())
}
