package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// mustKey unwraps a key builder result; builders only fail on empty ids
func mustKey(k keys.Key, err error) keys.Key {
	if err != nil {
		panic(err)
	}
	return k
}

func covers(roots []keys.Key, k keys.Key) bool {
	for _, r := range roots {
		if k.HasPrefix(r) {
			return true
		}
	}
	return false
}

func TestPlan_SubmitAccession(t *testing.T) {
	roots, err := services.Plan(services.Mutation{
		Entity:   entities.EntityAccession,
		Action:   entities.MutationActionStatusChange,
		RecordID: "a1",
	})
	require.NoError(t, err)

	assert.Equal(t, []keys.Key{
		keys.Accessions.Lists(),
		mustKey(keys.Accessions.Detail("a1")),
		mustKey(keys.Accessions.ForEdit("a1")),
	}, roots)

	// Every worklist page is covered, unrelated namespaces are not.
	page := keys.Accessions.List(keys.ListParams{PageNumber: 3, PageSize: 20, Filters: `status == "Draft"`})
	assert.True(t, covers(roots, page))
	assert.False(t, covers(roots, keys.Patients.All()))
	assert.False(t, covers(roots, mustKey(keys.Accessions.ForEdit("a2"))))
}

func TestPlan_ChildWithParent(t *testing.T) {
	roots, err := services.Plan(services.Mutation{
		Entity:  entities.EntityAccessionComment,
		Action:  entities.MutationActionCreate,
		Parents: []services.ParentRef{{Entity: entities.EntityAccession, ID: "a1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []keys.Key{
		keys.AccessionComments.Lists(),
		mustKey(keys.Accessions.ForEdit("a1")),
		mustKey(keys.AccessionComments.ByParent("a1")),
	}, roots)
}

func TestPlan_ParentWithoutAggregateUsesDetail(t *testing.T) {
	roots, err := services.Plan(services.Mutation{
		Entity:   entities.EntityOrganizationContact,
		Action:   entities.MutationActionUpdate,
		RecordID: "c1",
		Parents:  []services.ParentRef{{Entity: entities.EntityOrganization, ID: "o1"}},
	})
	require.NoError(t, err)

	assert.Contains(t, roots, mustKey(keys.Detail(entities.EntityOrganization, "o1")))
	assert.Contains(t, roots, mustKey(keys.OrganizationContacts.ByParent("o1")))
	assert.NotContains(t, roots, keys.Key{"organization-contact", "forEdit", "c1"})
}

func TestPlan_UndeclaredRelationship(t *testing.T) {
	roots, err := services.Plan(services.Mutation{
		Entity:   entities.EntityAccessionComment,
		Action:   entities.MutationActionDelete,
		RecordID: "c1",
		Parents:  []services.ParentRef{{Entity: entities.EntityPatient, ID: "p1"}},
	})
	assert.ErrorIs(t, err, services.ErrUndeclaredRelationship)

	// Own-entity roots are still planned, the parent is not touched.
	assert.Equal(t, []keys.Key{
		keys.AccessionComments.Lists(),
		mustKey(keys.AccessionComments.Detail("c1")),
	}, roots)
}

func TestPlan_EmptyParentID(t *testing.T) {
	roots, err := services.Plan(services.Mutation{
		Entity:  entities.EntitySample,
		Action:  entities.MutationActionStatusChange,
		Parents: []services.ParentRef{{Entity: entities.EntityPatient}},
	})
	assert.ErrorIs(t, err, keys.ErrEmptyID)
	assert.Equal(t, []keys.Key{keys.Samples.Lists()}, roots)
}

func TestPlan_Idempotent(t *testing.T) {
	m := services.Mutation{
		Entity:   entities.EntityTestOrder,
		Action:   entities.MutationActionStatusChange,
		RecordID: "t1",
		Parents:  []services.ParentRef{{Entity: entities.EntityAccession, ID: "a1"}},
	}
	first, err := services.Plan(m)
	require.NoError(t, err)
	second, err := services.Plan(m)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	merged, err := services.PlanAll(m, m)
	require.NoError(t, err)
	assert.Equal(t, first, merged)
}

func TestPlan_NeverTouchesUnrelatedNamespaces(t *testing.T) {
	for _, rel := range services.Relationships() {
		roots, err := services.Plan(services.Mutation{
			Entity:   rel.Child,
			Action:   entities.MutationActionUpdate,
			RecordID: "r1",
			Parents:  []services.ParentRef{{Entity: rel.Parent, ID: "p1"}},
		})
		require.NoError(t, err)
		for _, root := range roots {
			assert.Contains(t, []entities.Entity{rel.Child, rel.Parent}, root.Entity(), "%v touches %s", rel, root.String())
		}
	}
}

func TestMinimize(t *testing.T) {
	detail := mustKey(keys.Patients.Detail("p1"))
	roots := services.Minimize([]keys.Key{
		detail,
		keys.Accessions.Lists(),
		keys.Patients.All(),
		keys.Accessions.List(keys.ListParams{PageNumber: 1}),
		keys.Accessions.Lists(),
	})
	assert.Equal(t, []keys.Key{keys.Accessions.Lists(), keys.Patients.All()}, roots)
	assert.Empty(t, services.Minimize(nil))
}

func TestRelationships_Declared(t *testing.T) {
	assert.True(t, services.IsRelated(entities.EntityAccession, entities.EntitySample))
	assert.True(t, services.IsRelated(entities.EntityPatient, entities.EntityTestOrder))
	assert.False(t, services.IsRelated(entities.EntitySample, entities.EntityAccession))

	rels := services.Relationships()
	rels[0].Parent = "mutated"
	assert.Equal(t, entities.EntityAccession, services.Relationships()[0].Parent)
}
