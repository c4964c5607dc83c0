// Package keys builds hierarchical query keys for cached LIMS reads.
//
// A key is an ordered token sequence [entity, partition, qualifiers...].
// Every key built for an entity extends that entity's root, so invalidating
// a prefix invalidates every key below it: invalidating Lists(accession)
// covers List(accession, p) for every p.
package keys

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
)

// Partitions observed across entity namespaces
const (
	PartitionList     = "list"
	PartitionDetail   = "detail"
	PartitionForEdit  = "forEdit"
	PartitionByParent = "byParent"
)

// ErrEmptyID is returned when an id-scoped key is requested without an id.
// Callers gate fetches on id presence instead of building a placeholder key.
var ErrEmptyID = errors.New("keys: id is required")

// Key is an ordered sequence of tokens identifying a cached query result
type Key []string

// New builds a key from raw tokens
func New(tokens ...string) Key {
	k := make(Key, len(tokens))
	copy(k, tokens)
	return k
}

// Entity returns the namespace root token as an entity name
func (k Key) Entity() entities.Entity {
	if len(k) == 0 {
		return ""
	}
	return entities.Entity(k[0])
}

// HasPrefix reports whether prefix is k itself or a token-wise prefix of k
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both keys hold the same tokens
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// Extend returns a new key with extra tokens appended; k is left untouched
func (k Key) Extend(tokens ...string) Key {
	out := make(Key, 0, len(k)+len(tokens))
	out = append(out, k...)
	return append(out, tokens...)
}

// tokenEscaper keeps separators and Redis glob metacharacters out of encoded tokens
var tokenEscaper = strings.NewReplacer(
	"%", "%25",
	":", "%3A",
	"*", "%2A",
	"?", "%3F",
	"[", "%5B",
	"]", "%5D",
	"\\", "%5C",
)

// String encodes the key with every token terminated by ':'. Terminating each
// token keeps prefix matching token-aligned, so "detail:1:" never matches
// "detail:12:".
func (k Key) String() string {
	var b strings.Builder
	for _, t := range k {
		b.WriteString(tokenEscaper.Replace(t))
		b.WriteByte(':')
	}
	return b.String()
}

// Pattern returns a glob that matches the encoded key and all its extensions
func (k Key) Pattern() string {
	return k.String() + "*"
}

// Parse decodes a string produced by String
func Parse(s string) (Key, error) {
	if s == "" {
		return Key{}, nil
	}
	if !strings.HasSuffix(s, ":") {
		return nil, fmt.Errorf("keys: %q is not an encoded key", s)
	}
	parts := strings.Split(strings.TrimSuffix(s, ":"), ":")
	k := make(Key, len(parts))
	for i, p := range parts {
		t, err := url.PathUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("keys: decode token %q: %w", p, err)
		}
		k[i] = t
	}
	return k, nil
}

// All returns the namespace root of an entity
func All(e entities.Entity) Key {
	return Key{string(e)}
}

// Lists returns the root of every paged/filtered collection of an entity
func Lists(e entities.Entity) Key {
	return All(e).Extend(PartitionList)
}

// List returns the key for one page of a filtered, sorted collection
func List(e entities.Entity, params ListParams) Key {
	return Lists(e).Extend(params.Descriptor())
}

// Detail returns the key for a single record
func Detail(e entities.Entity, id string) (Key, error) {
	return scoped(e, PartitionDetail, id)
}

// ForEdit returns the key for a record's denormalized editing aggregate
func ForEdit(e entities.Entity, id string) (Key, error) {
	return scoped(e, PartitionForEdit, id)
}

// ByParent returns the key for a collection scoped to a foreign id
func ByParent(e entities.Entity, parentID string) (Key, error) {
	return scoped(e, PartitionByParent, parentID)
}

func scoped(e entities.Entity, partition, id string) (Key, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: %s %s", ErrEmptyID, e, partition)
	}
	return All(e).Extend(partition, id), nil
}

// ListParams is the logical query behind a list key
type ListParams struct {
	PageNumber int
	PageSize   int
	Filters    string
	SortOrder  string
	// Scope carries extra qualifiers such as a parent id for scoped lists.
	Scope map[string]string
}

// Descriptor serializes the params so equal logical queries share one key.
// Scope entries are sorted, so map insertion order never changes the result.
func (p ListParams) Descriptor() string {
	v := url.Values{}
	v.Set("pageNumber", strconv.Itoa(p.PageNumber))
	v.Set("pageSize", strconv.Itoa(p.PageSize))
	if p.Filters != "" {
		v.Set("filters", p.Filters)
	}
	if p.SortOrder != "" {
		v.Set("sortOrder", p.SortOrder)
	}
	for name, value := range p.Scope {
		v.Set("scope."+name, value)
	}
	return v.Encode()
}
