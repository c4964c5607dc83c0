package entities

// Organization represents a client organization that sends specimens
type Organization struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// OrganizationContact is a person at an organization who receives results
type OrganizationContact struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Npi            string `json:"npi,omitempty"`
}

// OrganizationContactForUpsert is the payload for creating or updating a contact
type OrganizationContactForUpsert struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Npi       string `json:"npi,omitempty"`
}
