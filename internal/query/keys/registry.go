package keys

import "github.com/zatekoja/limsgateway/internal/domain/entities"

// aggregates lists the entities that expose a forEdit aggregate
var aggregates = map[entities.Entity]bool{
	entities.EntityAccession: true,
}

// HasForEdit reports whether the entity has a denormalized editing aggregate
func HasForEdit(e entities.Entity) bool {
	return aggregates[e]
}

// Namespace binds the key builders to one entity
type Namespace struct {
	entity entities.Entity
}

// For returns the key namespace of an entity
func For(e entities.Entity) Namespace {
	return Namespace{entity: e}
}

// Entity returns the bound entity
func (n Namespace) Entity() entities.Entity { return n.entity }

// All returns the namespace root
func (n Namespace) All() Key { return All(n.entity) }

// Lists returns the list partition root
func (n Namespace) Lists() Key { return Lists(n.entity) }

// List returns a list key for params
func (n Namespace) List(params ListParams) Key { return List(n.entity, params) }

// Detail returns a detail key
func (n Namespace) Detail(id string) (Key, error) { return Detail(n.entity, id) }

// ForEdit returns a forEdit key
func (n Namespace) ForEdit(id string) (Key, error) { return ForEdit(n.entity, id) }

// ByParent returns a byParent key
func (n Namespace) ByParent(parentID string) (Key, error) { return ByParent(n.entity, parentID) }

// Accessions, Patients and the rest are the namespaces the gateway reads through.
var (
	Accessions           = For(entities.EntityAccession)
	Patients             = For(entities.EntityPatient)
	Samples              = For(entities.EntitySample)
	TestOrders           = For(entities.EntityTestOrder)
	PanelOrders          = For(entities.EntityPanelOrder)
	AccessionComments    = For(entities.EntityAccessionComment)
	AccessionAttachments = For(entities.EntityAccessionAttachment)
	OrganizationContacts = For(entities.EntityOrganizationContact)
)
