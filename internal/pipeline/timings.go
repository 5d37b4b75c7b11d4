package pipeline

import (
	"encoding/json"
	"fmt"

	"sierradec/internal/diag"
	"sierradec/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingDiagnostic turns the phases recorded by timer into an info
// diagnostic whose single note carries the JSON report.
func TimingDiagnostic(timer *observ.Timer, input string) diag.Diagnostic {
	report := timer.Report()
	payload := timingPayload{Kind: "decompile", Path: input, TotalMS: report.TotalMS, Phases: report.Phases}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)

	d := diag.New(diag.SevInfo, diag.ObsTimings, diag.At(input, zeroPos), msg)
	data, err := json.Marshal(payload)
	if err != nil {
		return d
	}
	d.Notes = []diag.Note{{Msg: string(data)}}
	return d
}
