package display

import (
	"strings"
)

// Kind names a resource type whose status is rendered as a badge.
type Kind string

const (
	KindAdmissionRequest Kind = "admission_request"
	KindInpatientStay    Kind = "inpatient_stay"
	KindBed              Kind = "bed"
	KindMedicationOrder  Kind = "medication_order"
	KindMedicationGroup  Kind = "medication_group"
	KindWorkflowStep     Kind = "workflow_step"
	KindDischargePlan    Kind = "discharge_plan"
	KindRiskLevel        Kind = "risk_level"
	KindPriority         Kind = "priority"
)

// DefaultBadgeClass is used for unknown kinds and statuses.
const DefaultBadgeClass = "badge-secondary"

type statusEntry struct {
	class string
	label string
}

// One table for every page, so two pages can never disagree on a status colour.
var statusTable = map[Kind]map[string]statusEntry{
	KindAdmissionRequest: {
		"PENDING":   {"badge-warning", "Pending"},
		"APPROVED":  {"badge-success", "Approved"},
		"REJECTED":  {"badge-danger", "Rejected"},
		"CANCELLED": {"badge-secondary", "Cancelled"},
	},
	KindInpatientStay: {
		"ADMITTED":          {"badge-info", "Admitted"},
		"ACTIVE":            {"badge-success", "Active"},
		"TRANSFERRED":       {"badge-primary", "Transferred"},
		"DISCHARGE_PENDING": {"badge-warning", "Discharge pending"},
		"DISCHARGED":        {"badge-secondary", "Discharged"},
	},
	KindBed: {
		"AVAILABLE":   {"badge-success", "Available"},
		"OCCUPIED":    {"badge-danger", "Occupied"},
		"CLEANING":    {"badge-warning", "Cleaning"},
		"MAINTENANCE": {"badge-dark", "Maintenance"},
		"RESERVED":    {"badge-info", "Reserved"},
	},
	KindMedicationOrder: {
		"PENDING":      {"badge-warning", "Pending"},
		"VERIFIED":     {"badge-info", "Verified"},
		"ACTIVE":       {"badge-primary", "Active"},
		"ADMINISTERED": {"badge-success", "Administered"},
		"MISSED":       {"badge-danger", "Missed"},
		"HELD":         {"badge-dark", "Held"},
		"DISCONTINUED": {"badge-secondary", "Discontinued"},
	},
	KindMedicationGroup: {
		"PENDING":                {"badge-warning", "Pending verification"},
		"VERIFIED":               {"badge-info", "Verified"},
		"REJECTED":               {"badge-danger", "Rejected"},
		"PARTIALLY_ADMINISTERED": {"badge-primary", "Partially administered"},
		"COMPLETED":              {"badge-success", "Completed"},
	},
	KindWorkflowStep: {
		"PENDING":     {"badge-warning", "Pending"},
		"IN_PROGRESS": {"badge-primary", "In progress"},
		"COMPLETED":   {"badge-success", "Completed"},
		"SKIPPED":     {"badge-secondary", "Skipped"},
	},
	KindDischargePlan: {
		"DRAFT":            {"badge-light", "Draft"},
		"PENDING_APPROVAL": {"badge-warning", "Pending approval"},
		"APPROVED":         {"badge-success", "Approved"},
		"REJECTED":         {"badge-danger", "Rejected"},
		"COMPLETED":        {"badge-secondary", "Completed"},
	},
	KindRiskLevel: {
		"LOW":      {"badge-success", "Low risk"},
		"MODERATE": {"badge-warning", "Moderate risk"},
		"HIGH":     {"badge-danger", "High risk"},
	},
	KindPriority: {
		"ROUTINE":   {"badge-secondary", "Routine"},
		"URGENT":    {"badge-warning", "Urgent"},
		"EMERGENCY": {"badge-danger", "Emergency"},
	},
}

func normaliseStatus(status string) string {
	s := strings.ToUpper(strings.TrimSpace(status))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

func lookup(kind Kind, status string) (statusEntry, bool) {
	table, ok := statusTable[kind]
	if !ok {
		return statusEntry{}, false
	}
	entry, ok := table[normaliseStatus(status)]
	return entry, ok
}

// Known reports whether status is one of the listed statuses of kind.
func Known(kind Kind, status string) bool {
	_, ok := lookup(kind, status)
	return ok
}

// BadgeClass maps a status to its css badge class. Unknown input yields DefaultBadgeClass.
func BadgeClass(kind Kind, status string) string {
	if entry, ok := lookup(kind, status); ok {
		return entry.class
	}
	return DefaultBadgeClass
}

// Label is the human text for a status. Unknown statuses are humanised ("ON_LEAVE" -> "On leave").
func Label(kind Kind, status string) string {
	if entry, ok := lookup(kind, status); ok {
		return entry.label
	}
	return Humanise(status)
}

// Humanise turns an enum-ish string into sentence case. Empty input yields the placeholder.
func Humanise(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	words := strings.Fields(strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(s)))
	out := strings.Join(words, " ")
	return strings.ToUpper(out[:1]) + out[1:]
}

// Badge is the rendered form of a status.
type Badge struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Class  string `json:"class"`
}

func NewBadge(kind Kind, status string) Badge {
	return Badge{Status: status, Label: Label(kind, status), Class: BadgeClass(kind, status)}
}
