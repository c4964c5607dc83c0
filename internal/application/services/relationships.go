package services

import "github.com/zatekoja/limsgateway/internal/domain/entities"

// Relationship declares that Child records are listed and aggregated under a Parent
type Relationship struct {
	Parent entities.Entity `json:"parent"`
	Child  entities.Entity `json:"child"`
}

var relationships = []Relationship{
	{Parent: entities.EntityAccession, Child: entities.EntitySample},
	{Parent: entities.EntityAccession, Child: entities.EntityTestOrder},
	{Parent: entities.EntityAccession, Child: entities.EntityAccessionComment},
	{Parent: entities.EntityAccession, Child: entities.EntityAccessionAttachment},
	{Parent: entities.EntityAccession, Child: entities.EntityPanelOrder},
	{Parent: entities.EntityPatient, Child: entities.EntitySample},
	{Parent: entities.EntityPatient, Child: entities.EntityTestOrder},
	{Parent: entities.EntityOrganization, Child: entities.EntityOrganizationContact},
}

// Relationships returns a copy of the declared parent/child pairs
func Relationships() []Relationship {
	out := make([]Relationship, len(relationships))
	copy(out, relationships)
	return out
}

// IsRelated reports whether child is declared under parent
func IsRelated(parent, child entities.Entity) bool {
	for _, r := range relationships {
		if r.Parent == parent && r.Child == child {
			return true
		}
	}
	return false
}
