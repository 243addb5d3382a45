package resources

// Response is a decoded envelope: Data is the zero value when the server sent no data.
type Response[T any] struct {
	Data    T
	Status  string
	Code    string
	Message string
}

type UserProfile struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	DepartmentID int64  `json:"departmentId,omitempty"`
}

type LoginResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"user"`
}

// NursePatient is one row of the nurse's patient list.
type NursePatient struct {
	StayID          int64     `json:"stayId"`
	PatientID       int64     `json:"patientId"`
	PatientName     string    `json:"patientName"`
	MRN             string    `json:"mrn"`
	BedNumber       string    `json:"bedNumber"`
	RoomNumber      string    `json:"roomNumber"`
	WardName        string    `json:"wardName"`
	DepartmentID    int64     `json:"departmentId"`
	DepartmentName  string    `json:"departmentName"`
	Status          string    `json:"status"`
	AdmittedAt      Timestamp `json:"admittedAt"`
	AttendingDoctor string    `json:"attendingDoctor"`
	Allergies       []string  `json:"allergies"`
	PendingTasks    int       `json:"pendingTasks"`
}

type InpatientStay struct {
	ID             int64     `json:"id"`
	PatientID      int64     `json:"patientId"`
	PatientName    string    `json:"patientName"`
	DepartmentID   int64     `json:"departmentId"`
	DepartmentName string    `json:"departmentName"`
	BedID          *int64    `json:"bedId"`
	BedNumber      string    `json:"bedNumber"`
	Status         string    `json:"status"`
	Diagnosis      string    `json:"diagnosis"`
	AdmittedAt     Timestamp `json:"admittedAt"`
	DischargedAt   Timestamp `json:"dischargedAt"`
}

type Bed struct {
	ID             int64  `json:"id"`
	BedNumber      string `json:"bedNumber"`
	RoomNumber     string `json:"roomNumber"`
	WardName       string `json:"wardName"`
	DepartmentID   int64  `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Status         string `json:"status"`
}

type AdmissionRequest struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patientId"`
	PatientName     string    `json:"patientName"`
	RequestedBy     string    `json:"requestedBy"`
	DepartmentID    int64     `json:"departmentId"`
	DepartmentName  string    `json:"departmentName"`
	Priority        string    `json:"priority"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	RequestedAt     Timestamp `json:"requestedAt"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
}

type ApproveAdmissionInput struct {
	DepartmentID int64  `json:"departmentId"`
	BedID        *int64 `json:"bedId,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type WorkflowStep struct {
	ID           int64     `json:"id"`
	StayID       int64     `json:"stayId"`
	StepOrder    int       `json:"stepOrder"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	AssignedRole string    `json:"assignedRole"`
	DueAt        Timestamp `json:"dueAt"`
	CompletedAt  Timestamp `json:"completedAt"`
	CompletedBy  string    `json:"completedBy,omitempty"`
	SkipReason   string    `json:"skipReason,omitempty"`
}

type MedicationOrder struct {
	ID                 int64     `json:"id"`
	GroupID            *int64    `json:"groupId"`
	StayID             int64     `json:"stayId"`
	MedicationName     string    `json:"medicationName"`
	Dosage             string    `json:"dosage"`
	Route              string    `json:"route"`
	Frequency          string    `json:"frequency"`
	ScheduledAt        Timestamp `json:"scheduledAt"`
	Status             string    `json:"status"`
	Notes              string    `json:"notes,omitempty"`
	LastAdministeredAt Timestamp `json:"lastAdministeredAt"`
}

type MedicationOrderGroup struct {
	ID              int64             `json:"id"`
	StayID          int64             `json:"stayId"`
	PatientName     string            `json:"patientName"`
	PrescribedBy    string            `json:"prescribedBy"`
	Status          string            `json:"status"`
	CreatedAt       Timestamp         `json:"createdAt"`
	Orders          []MedicationOrder `json:"orders"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

type AdministerInput struct {
	Notes string `json:"notes,omitempty"`
}

type VitalSigns struct {
	ID               int64     `json:"id"`
	StayID           int64     `json:"stayId"`
	Temperature      *float64  `json:"temperature"`
	HeartRate        *int      `json:"heartRate"`
	RespiratoryRate  *int      `json:"respiratoryRate"`
	SystolicBP       *int      `json:"systolicBp"`
	DiastolicBP      *int      `json:"diastolicBp"`
	OxygenSaturation *int      `json:"oxygenSaturation"`
	PainScore        *int      `json:"painScore"`
	RecordedAt       Timestamp `json:"recordedAt"`
	RecordedBy       string    `json:"recordedBy"`
}

type VitalSignsInput struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	HeartRate        *int     `json:"heartRate,omitempty"`
	RespiratoryRate  *int     `json:"respiratoryRate,omitempty"`
	SystolicBP       *int     `json:"systolicBp,omitempty"`
	DiastolicBP      *int     `json:"diastolicBp,omitempty"`
	OxygenSaturation *int     `json:"oxygenSaturation,omitempty"`
	PainScore        *int     `json:"painScore,omitempty"`
}

type NursingNote struct {
	ID         int64     `json:"id"`
	StayID     int64     `json:"stayId"`
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName"`
	CreatedAt  Timestamp `json:"createdAt"`
}

type NursingNoteInput struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

type SafetyAssessment struct {
	ID             int64     `json:"id"`
	StayID         int64     `json:"stayId"`
	AssessmentType string    `json:"assessmentType"`
	Score          int       `json:"score"`
	RiskLevel      string    `json:"riskLevel"`
	Notes          string    `json:"notes,omitempty"`
	AssessedBy     string    `json:"assessedBy"`
	AssessedAt     Timestamp `json:"assessedAt"`
}

type SafetyAssessmentInput struct {
	AssessmentType string `json:"assessmentType"`
	Score          int    `json:"score"`
	Notes          string `json:"notes,omitempty"`
}

type DischargePlan struct {
	ID              int64     `json:"id"`
	StayID          int64     `json:"stayId"`
	PatientName     string    `json:"patientName"`
	PlannedDate     Timestamp `json:"plannedDate"`
	Destination     string    `json:"destination"`
	Instructions    string    `json:"instructions"`
	FollowUp        string    `json:"followUp,omitempty"`
	Status          string    `json:"status"`
	CreatedBy       string    `json:"createdBy"`
	ApprovedBy      string    `json:"approvedBy,omitempty"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
}

type DischargePlanInput struct {
	PlannedDate  string `json:"plannedDate"`
	Destination  string `json:"destination"`
	Instructions string `json:"instructions"`
	FollowUp     string `json:"followUp,omitempty"`
}

// reasonBody is the JSON body of reject / miss / hold / transfer style actions.
type reasonBody struct {
	Reason string `json:"reason"`
}
