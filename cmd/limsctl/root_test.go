package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeyCommand(t *testing.T) {
	out, err := runCLI(t, "key", "accession", "detail", "A1", "-o", "json")
	require.NoError(t, err)

	var view keyView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "accession:detail:A1:", view.Key)
	assert.Equal(t, []string{"accession", "detail", "A1"}, view.Tokens)
	assert.Equal(t, "accession:detail:A1:*", view.Pattern)
}

func TestKeyCommand_YAML(t *testing.T) {
	out, err := runCLI(t, "key", "patient", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "patient:")
	assert.Contains(t, out, "tokens:\n  - patient")
}

func TestKeyCommand_Errors(t *testing.T) {
	_, err := runCLI(t, "key", "invoice", "all")
	assert.ErrorContains(t, err, "unknown entity")

	_, err = runCLI(t, "key", "accession", "detail")
	assert.ErrorContains(t, err, "id is required")

	_, err = runCLI(t, "key", "accession", "everything")
	assert.ErrorContains(t, err, "unknown scope")

	_, err = runCLI(t, "key", "accession", "all", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestPlanCommand_ChildWithParent(t *testing.T) {
	out, err := runCLI(t, "plan", "accession-comment", "create", "--parent", "accession:A1", "-o", "json")
	require.NoError(t, err)

	var view planView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	keys := make([]string, len(view.Roots))
	for i, r := range view.Roots {
		keys[i] = r.Key
	}
	assert.ElementsMatch(t, []string{
		"accession-comment:list:",
		"accession:forEdit:A1:",
		"accession-comment:byParent:A1:",
	}, keys)
	assert.Empty(t, view.Incomplete)
}

func TestPlanCommand_UndeclaredParent(t *testing.T) {
	out, err := runCLI(t, "plan", "organization-contact", "update", "--id", "C1", "--parent", "accession:A1", "-o", "json")
	require.NoError(t, err)

	var view planView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.NotEmpty(t, view.Incomplete)
	require.Len(t, view.Roots, 2)
	assert.Equal(t, "organization-contact:list:", view.Roots[0].Key)
	assert.Equal(t, "organization-contact:detail:C1:", view.Roots[1].Key)
}

func TestPlanCommand_BadInput(t *testing.T) {
	_, err := runCLI(t, "plan", "accession", "archive")
	assert.ErrorContains(t, err, "unknown action")

	_, err = runCLI(t, "plan", "sample", "delete", "--parent", "patient")
	assert.ErrorContains(t, err, "entity:id")
}

func TestInvalidateCommand(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/invalidate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"invalidated":["accession:detail:A1:"]}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "invalidate", "--key", "accession:detail:A1:", "--gateway", srv.URL, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"accession", "detail", "A1"}, got["key"])
	assert.Contains(t, out, "accession:detail:A1:")
}

func TestInvalidateCommand_FlagRules(t *testing.T) {
	_, err := runCLI(t, "invalidate")
	assert.ErrorContains(t, err, "exactly one")

	_, err = runCLI(t, "invalidate", "--entity", "accession", "--key", "accession:list")
	assert.ErrorContains(t, err, "exactly one")
}

func TestInvalidateCommand_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown entity \"invoice\""}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, "invalidate", "--key", "invoice", "--gateway", srv.URL)
	assert.ErrorContains(t, err, "gateway returned 400")
	assert.ErrorContains(t, err, "unknown entity")
}

func TestCacheCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/cache", r.URL.Path)
		assert.Equal(t, "patient", r.URL.Query().Get("entity"))
		_, _ = w.Write([]byte(`{"entries":[],"count":0,"total":3}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "cache", "--entity", "patient", "--gateway", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "total: 3")
}

func TestMutationsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "accession", q.Get("entity"))
		assert.Equal(t, "A1", q.Get("recordId"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.NotEmpty(t, q.Get("since"))
		_, _ = w.Write([]byte(`{"mutations":[],"count":0}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "mutations", "--entity", "accession", "--record-id", "A1", "--limit", "5", "--since", "1h", "--gateway", srv.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 0`)
}
