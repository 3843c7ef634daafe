package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacityMessageUsesMaxWhenAllPartsAvailable(t *testing.T) {
	s := Summary{
		Parts:           []Part{{Component: "MCU", Available: 40}, {Component: "PCB", Available: 12}},
		MaxBoards:       1200,
		AvailableBoards: 12,
	}
	assert.Equal(t, "Maximum 1,200 boards can be built", CapacityMessage(s))
	assert.Equal(t, 1200, s.Boards())
}

func TestCapacityMessageUsesAvailableWhenAnyPartIsOut(t *testing.T) {
	s := Summary{
		Parts:           []Part{{Component: "MCU", Available: 40}, {Component: "PCB", Available: 0}},
		MaxBoards:       40,
		AvailableBoards: 3,
	}
	assert.Equal(t, "Only 3 boards can be built with the available stock", CapacityMessage(s))
	assert.Equal(t, 3, s.Boards())
	require.Len(t, s.Unavailable(), 1)
	assert.Equal(t, "PCB", s.Unavailable()[0].Component)
}

func TestCapacityMessageNegativeAvailabilityCountsAsUnavailable(t *testing.T) {
	s := Summary{Parts: []Part{{Component: "Relay", Available: -2}}, MaxBoards: 9, AvailableBoards: 0}
	assert.Equal(t, "Only 0 boards can be built with the available stock", CapacityMessage(s))
}

func TestCapacityMessageNoParts(t *testing.T) {
	assert.Equal(t, "Maximum 0 boards can be built", CapacityMessage(Summary{}))
}

func TestDecodeSummaryShapes(t *testing.T) {
	s, err := DecodeSummary([]byte(`{"parts":[{"component":"MCU","available":2}],"max_boards":2,"available_boards":2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.MaxBoards)

	s, err = DecodeSummary([]byte(`{"data":{"max_boards":5,"available_boards":1}}`))
	require.NoError(t, err)
	assert.Equal(t, 5, s.MaxBoards)
	assert.Equal(t, 1, s.AvailableBoards)

	_, err = DecodeSummary([]byte(`[`))
	assert.Error(t, err)
}
