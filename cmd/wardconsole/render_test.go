package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/pages"
	"stealthcompany.com/wardconsole/internal/view"
)

func TestRenderTextPatients(t *testing.T) {
	v := pages.NursePatientsView{
		Header: pages.Header{Title: "My patients", Mode: view.ModeReady},
		Total:  1,
		Shown:  1,
		Groups: []display.Group[string, pages.PatientRow]{{
			Key: "Cardiology",
			Items: []pages.PatientRow{{
				StayID:      7,
				PatientName: "Jane Doe",
				Location:    "Room 12 / Bed A",
				Status:      display.NewBadge(display.KindInpatientStay, "ADMITTED"),
			}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, v))

	out := buf.String()
	assert.Contains(t, out, "My patients")
	assert.Contains(t, out, "Cardiology")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Room 12 / Bed A")
	assert.Contains(t, out, "1 of 1 patients")
}

func TestRenderTextEmptyAndFailed(t *testing.T) {
	tests := []struct {
		name   string
		header pages.Header
		want   string
	}{
		{"empty", pages.Header{Title: "My patients", Mode: view.ModeEmpty, Empty: "No patients"}, "No patients"},
		{"failed", pages.Header{Title: "My patients", Mode: view.ModeFailed, Error: "Unauthorized"}, "Error: Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderText(&buf, pages.NursePatientsView{Header: tt.header}))
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "STAY")
		})
	}
}

func TestRenderTextPendingRow(t *testing.T) {
	v := pages.WorkflowView{
		Header:   pages.Header{Title: "Workflow", Mode: view.ModeReady, ActionError: "Step is locked"},
		Progress: "0/1 done",
		Steps: []pages.StepRow{{
			ID:      3,
			Order:   1,
			Name:    "Admission assessment",
			Status:  display.NewBadge(display.KindWorkflowStep, "PENDING"),
			Pending: true,
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, v))
	assert.Contains(t, buf.String(), "(saving)")
	assert.Contains(t, buf.String(), "✗ Step is locked")
}

func TestRenderJSONFallback(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, map[string]int{"n": 1}))
	assert.JSONEq(t, `{"n":1}`, buf.String())
}
