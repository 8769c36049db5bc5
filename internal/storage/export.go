package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/csrtrack/internal/sim"
)

type ExportData struct {
	Run     RunMetadata        `json:"run"`
	Steps   int                `json:"steps"`
	S       []float64          `json:"s"`
	History []sim.Record       `json:"history"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run's metadata and history as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, history []sim.Record) error {
	data := ExportData{
		Run:     *meta,
		Steps:   len(history),
		S:       make([]float64, len(history)),
		History: history,
		Metrics: meta.Metrics,
	}

	for i, rec := range history {
		data.S[i] = rec.Position
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
