package entities

// Entity names a LIMS resource type. The name is also the root token of the
// resource's query-key namespace.
type Entity string

const (
	EntityAccession           Entity = "accession"
	EntityPatient             Entity = "patient"
	EntitySample              Entity = "sample"
	EntityTestOrder           Entity = "test-order"
	EntityPanelOrder          Entity = "panel-order"
	EntityAccessionComment    Entity = "accession-comment"
	EntityAccessionAttachment Entity = "accession-attachment"
	EntityOrganization        Entity = "organization"
	EntityOrganizationContact Entity = "organization-contact"
	EntityTest                Entity = "test"
	EntityPanel               Entity = "panel"
)

// AllEntities lists every entity the gateway caches
var AllEntities = []Entity{
	EntityAccession,
	EntityPatient,
	EntitySample,
	EntityTestOrder,
	EntityPanelOrder,
	EntityAccessionComment,
	EntityAccessionAttachment,
	EntityOrganization,
	EntityOrganizationContact,
	EntityTest,
	EntityPanel,
}

// String returns the entity name
func (e Entity) String() string {
	return string(e)
}

// Valid reports whether e is a known entity
func (e Entity) Valid() bool {
	for _, known := range AllEntities {
		if known == e {
			return true
		}
	}
	return false
}
