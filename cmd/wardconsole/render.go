package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/pages"
	"stealthcompany.com/wardconsole/internal/view"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) render(v any) error {
	if a.json {
		return writeJSON(a.out, v)
	}
	return renderText(a.out, v)
}

// renderText prints a view model as aligned columns.
func renderText(out io.Writer, v any) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	switch m := v.(type) {
	case pages.NursePatientsView:
		if writeHeader(tw, m.Header) {
			fmt.Fprintf(tw, "%d of %d patients\n", m.Shown, m.Total)
			for _, g := range m.Groups {
				fmt.Fprintf(tw, "\n%s\n", g.Key)
				fmt.Fprintln(tw, "STAY\tPATIENT\tMRN\tLOCATION\tSTATUS\tADMITTED\tTASKS\tALLERGIES")
				for _, r := range g.Items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
						r.StayID, r.PatientName, r.MRN, r.Location, r.Status.Label, r.AdmittedAt, r.PendingTasks, joinOr(r.Allergies))
				}
			}
		}

	case pages.WorkflowView:
		if writeHeader(tw, m.Header) {
			fmt.Fprintf(tw, "Progress: %s\n\n", m.Progress)
			fmt.Fprintln(tw, "ID\t#\tSTEP\tSTATUS\tDUE\tDONE\tNOTE")
			for _, r := range m.Steps {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Order, r.Name, status(r.Status.Label, r.Pending), r.DueAt, r.CompletedAt, r.SkipReason)
			}
		}

	case pages.BedAssignmentView:
		if writeHeader(tw, m.Header) {
			if m.BedsError != "" {
				fmt.Fprintf(tw, "Beds unavailable: %s\n", m.BedsError)
			}
			fmt.Fprintf(tw, "%d beds available\n\n", m.AvailableBeds)
			fmt.Fprintln(tw, "STAY\tPATIENT\tDEPARTMENT\tBED\tSTATUS\tCANDIDATE BEDS")
			for _, r := range m.Stays {
				beds := make([]string, 0, len(r.Beds))
				for _, b := range r.Beds {
					beds = append(beds, fmt.Sprintf("%d:%s/%s", b.ID, b.RoomNumber, b.BedNumber))
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.PatientName, r.Department, r.Bed, status(r.Status.Label, r.Pending), joinOr(beds))
			}
		}

	case pages.MedicationView:
		if writeHeader(tw, m.Header) {
			fmt.Fprintf(tw, "%d doses due\n", m.Due)
			for _, g := range m.Groups {
				fmt.Fprintf(tw, "\n%s\n", g.Key)
				fmt.Fprintln(tw, "ID\tMEDICATION\tDOSE\tROUTE\tFREQUENCY\tSCHEDULED\tLAST GIVEN\tSTATUS")
				for _, r := range g.Items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						r.ID, r.Medication, r.Dosage, r.Route, r.Frequency, r.ScheduledAt, r.LastAdministered, status(r.Status.Label, r.Pending))
				}
			}
		}

	case pages.PharmacistQueueView:
		if writeHeader(tw, m.Header) {
			fmt.Fprintln(tw, "GROUP\tPATIENT\tPRESCRIBER\tCREATED\tSTATUS\tORDERS")
			for _, r := range m.Groups {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.PatientName, r.PrescribedBy, r.CreatedAt, status(r.Status.Label, r.Pending), strings.Join(r.Orders, "; "))
			}
		}

	case pages.AdmissionRequestsView:
		if writeHeader(tw, m.Header) {
			fmt.Fprintln(tw, "ID\tPATIENT\tDEPARTMENT\tPRIORITY\tREQUESTED\tBY\tSTATUS\tREASON")
			for _, r := range m.Requests {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.PatientName, r.Department, r.Priority.Label, r.RequestedAt, r.RequestedBy, status(r.Status.Label, r.Pending), r.Reason)
			}
		}

	case pages.DischargePlansView:
		if writeHeader(tw, m.Header) {
			fmt.Fprintln(tw, "ID\tSTAY\tPATIENT\tPLANNED\tDESTINATION\tSTATUS\tCREATED BY")
			for _, r := range m.Plans {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.StayID, r.PatientName, r.PlannedDate, r.Destination, status(r.Status.Label, r.Pending), r.CreatedBy)
			}
		}

	case pages.PatientChartView:
		if writeHeader(tw, m.Header) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.PatientName, m.Department, m.Bed, m.Status.Label)
			fmt.Fprintf(tw, "Admitted %s\t%s\n", m.AdmittedAt, m.Diagnosis)

			fmt.Fprintln(tw, "\nVital signs")
			if writePanel(tw, m.Vitals.Mode, m.Vitals.Error, m.Vitals.Empty, len(m.Vitals.Rows)) {
				fmt.Fprintln(tw, "RECORDED\tTEMP\tHR\tRR\tBP\tSPO2\tPAIN\tBY")
				for _, r := range m.Vitals.Rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						r.RecordedAt, r.Temperature, r.HeartRate, r.RespiratoryRate, r.BloodPressure, r.OxygenSaturation, r.PainScore, r.RecordedBy)
				}
			}

			fmt.Fprintln(tw, "\nNursing notes")
			if writePanel(tw, m.Notes.Mode, m.Notes.Error, m.Notes.Empty, len(m.Notes.Rows)) {
				for _, r := range m.Notes.Rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Age, r.Category, r.Author, r.Content)
				}
			}

			fmt.Fprintln(tw, "\nSafety assessments")
			if writePanel(tw, m.Assessments.Mode, m.Assessments.Error, m.Assessments.Empty, len(m.Assessments.Rows)) {
				for _, r := range m.Assessments.Rows {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.AssessedAt, r.Type, r.Score, r.Risk.Label, r.AssessedBy)
				}
			}
		}

	default:
		if err := tw.Flush(); err != nil {
			return err
		}
		return writeJSON(out, v)
	}

	return tw.Flush()
}

// writeHeader prints the page title and messages. It reports whether there are rows to print.
func writeHeader(w io.Writer, h pages.Header) bool {
	fmt.Fprintln(w, h.Title)
	if h.Notice != "" {
		fmt.Fprintf(w, "✓ %s\n", h.Notice)
	}
	if h.ActionError != "" {
		fmt.Fprintf(w, "✗ %s\n", h.ActionError)
	}
	switch h.Mode {
	case view.ModeFailed:
		fmt.Fprintf(w, "Error: %s\n", h.Error)
		return false
	case view.ModeEmpty:
		fmt.Fprintln(w, h.Empty)
		return false
	case view.ModeIdle, view.ModeLoading:
		fmt.Fprintln(w, "Loading...")
		return false
	}
	if h.Empty != "" {
		fmt.Fprintln(w, h.Empty)
		return false
	}
	return true
}

func writePanel(w io.Writer, mode view.Mode, errMsg, empty string, rows int) bool {
	switch {
	case mode == view.ModeFailed:
		fmt.Fprintf(w, "Error: %s\n", errMsg)
		return false
	case rows == 0:
		fmt.Fprintln(w, empty)
		return false
	}
	return true
}

func status(label string, pending bool) string {
	if pending {
		return label + " (saving)"
	}
	return label
}

func joinOr(items []string) string {
	if len(items) == 0 {
		return display.Placeholder
	}
	return strings.Join(items, ", ")
}
