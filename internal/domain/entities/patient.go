package entities

import "time"

// Patient represents a LIMS patient
type Patient struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Sex         string     `json:"sex"`
	Race        string     `json:"race,omitempty"`
	Ethnicity   string     `json:"ethnicity,omitempty"`
	InternalID  string     `json:"internalId,omitempty"`
}

// PatientForUpsert is the payload for creating or updating a patient
type PatientForUpsert struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Sex         string     `json:"sex"`
	Race        string     `json:"race,omitempty"`
	Ethnicity   string     `json:"ethnicity,omitempty"`
}
