package entities

import "time"

// AccessionStatus represents the lifecycle state of an accession
type AccessionStatus string

const (
	AccessionStatusDraft      AccessionStatus = "Draft"
	AccessionStatusSubmitted  AccessionStatus = "Submitted"
	AccessionStatusReceived   AccessionStatus = "Received"
	AccessionStatusProcessing AccessionStatus = "Processing"
	AccessionStatusCompleted  AccessionStatus = "Completed"
	AccessionStatusAbandoned  AccessionStatus = "Abandoned"
	AccessionStatusCancelled  AccessionStatus = "Cancelled"
	AccessionStatusQaReview   AccessionStatus = "Qa Review"
)

// AccessionStatuses lists the statuses offered by the worklist status filter
var AccessionStatuses = []AccessionStatus{
	AccessionStatusDraft,
	AccessionStatusSubmitted,
	AccessionStatusReceived,
	AccessionStatusProcessing,
	AccessionStatusQaReview,
	AccessionStatusCompleted,
	AccessionStatusAbandoned,
	AccessionStatusCancelled,
}

// Accession is the top-level case record in the LIMS
type Accession struct {
	ID              string          `json:"id"`
	AccessionNumber string          `json:"accessionNumber"`
	Status          AccessionStatus `json:"status"`
	PatientID       *string         `json:"patientId"`
	OrganizationID  *string         `json:"organizationId"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// AccessionWorklistItem is an accession row enriched for the worklist
type AccessionWorklistItem struct {
	Accession
	PatientFirstName string `json:"patientFirstName,omitempty"`
	PatientLastName  string `json:"patientLastName,omitempty"`
}

// AccessionForEdit bundles an accession with its child collections for the
// single-screen editing view
type AccessionForEdit struct {
	Accession
	Patient              *Patient              `json:"patient"`
	Organization         *Organization         `json:"organization"`
	TestOrders           []TestOrder           `json:"testOrders"`
	PanelOrders          []PanelOrderGroup     `json:"panelOrders"`
	StandaloneTestOrders []TestOrder           `json:"standaloneTestOrders"`
	OrphanedTestOrderIDs []string              `json:"orphanedTestOrderIds,omitempty"`
	Samples              []Sample              `json:"samples"`
	Comments             []AccessionComment    `json:"comments"`
	Attachments          []AccessionAttachment `json:"attachments"`
}

// AccessionForCreation is the payload for a new accession
type AccessionForCreation struct {
	PatientID      *string `json:"patientId,omitempty"`
	OrganizationID *string `json:"organizationId,omitempty"`
}

// AccessionForUpdate is the payload for changing an accession
type AccessionForUpdate struct {
	PatientID      *string `json:"patientId"`
	OrganizationID *string `json:"organizationId"`
}
