package entities

import "time"

// SampleStatus represents the status of a specimen
type SampleStatus string

const (
	SampleStatusReceived SampleStatus = "Received"
	SampleStatusRejected SampleStatus = "Rejected"
	SampleStatusDisposed SampleStatus = "Disposed"
)

// Sample represents a specimen collected from a patient
type Sample struct {
	ID             string       `json:"id"`
	SampleNumber   string       `json:"sampleNumber"`
	PatientID      string       `json:"patientId"`
	AccessionID    *string      `json:"accessionId,omitempty"`
	Type           string       `json:"type"`
	Status         SampleStatus `json:"status"`
	CollectionDate *time.Time   `json:"collectionDate,omitempty"`
	ReceivedDate   *time.Time   `json:"receivedDate,omitempty"`
}
