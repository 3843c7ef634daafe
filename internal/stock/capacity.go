// Package stock turns the component-stock summary into the capacity message
// shown on the dashboard.
package stock

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Part is one component of the bill of materials with its stock level.
type Part struct {
	Component string  `json:"component"`
	Required  float64 `json:"required"`
	InStock   float64 `json:"in_stock"`
	Available float64 `json:"available"`
}

// Summary is the component-stock lookup response.
type Summary struct {
	Parts           []Part `json:"parts"`
	MaxBoards       int    `json:"max_boards"`
	AvailableBoards int    `json:"available_boards"`
}

// Unavailable returns the parts with nothing available.
func (s Summary) Unavailable() []Part {
	var out []Part
	for _, p := range s.Parts {
		if p.Available <= 0 {
			out = append(out, p)
		}
	}
	return out
}

// Boards returns the figure the capacity message is built from: the
// available count when any part is unavailable, the maximum otherwise.
func (s Summary) Boards() int {
	if len(s.Unavailable()) > 0 {
		return s.AvailableBoards
	}
	return s.MaxBoards
}

var printer = message.NewPrinter(language.English)

// CapacityMessage renders the dashboard capacity line.
func CapacityMessage(s Summary) string {
	if len(s.Unavailable()) > 0 {
		return printer.Sprintf("Only %d boards can be built with the available stock", s.AvailableBoards)
	}
	return printer.Sprintf("Maximum %d boards can be built", s.MaxBoards)
}

// DecodeSummary accepts a bare summary object or one wrapped in {"data": ...}.
func DecodeSummary(body []byte) (Summary, error) {
	var envelope struct {
		Data *Summary `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return *envelope.Data, nil
	}
	var s Summary
	if err := json.Unmarshal(body, &s); err != nil {
		return Summary{}, fmt.Errorf("decode stock summary: %w", err)
	}
	return s, nil
}
