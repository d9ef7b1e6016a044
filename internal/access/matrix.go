package access

import (
	"encoding/json"
	"fmt"
)

type Resource string

const (
	Products   Resource = "products"
	Orders     Resource = "orders"
	Clients    Resource = "clients"
	Admins     Resource = "admins"
	Operations Resource = "operations"
	Statuses   Resource = "statuses"
	Currency   Resource = "currency"
)

var resources = []Resource{Products, Orders, Clients, Admins, Operations, Statuses, Currency}

// Resources returns every known resource in a stable order.
func Resources() []Resource {
	out := make([]Resource, len(resources))
	copy(out, resources)
	return out
}

func ParseResource(s string) (Resource, bool) {
	for _, r := range resources {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

type Grant struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}

// Matrix maps resources to grants. A missing resource denies everything.
type Matrix map[Resource]Grant

func (m Matrix) Allows(resource Resource, action Action) bool {
	g, ok := m[resource]
	if !ok {
		return false
	}
	switch action {
	case Read:
		return g.Read
	case Write:
		return g.Write
	}
	return false
}

// Validate rejects resource names outside the closed set.
func (m Matrix) Validate() error {
	for r := range m {
		if _, ok := ParseResource(string(r)); !ok {
			return fmt.Errorf("unknown resource %q", r)
		}
	}
	return nil
}

// UnmarshalJSON drops unknown resource keys so stored rows written by older
// versions cannot widen access.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw map[string]Grant
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Matrix, len(raw))
	for k, g := range raw {
		if r, ok := ParseResource(k); ok {
			out[r] = g
		}
	}
	*m = out
	return nil
}

// FullMatrix grants read and write on every resource.
func FullMatrix() Matrix {
	m := make(Matrix, len(resources))
	for _, r := range resources {
		m[r] = Grant{Read: true, Write: true}
	}
	return m
}

// DefaultStaffMatrix is applied to newly created admins when no matrix is given.
func DefaultStaffMatrix() Matrix {
	return Matrix{
		Products:   {Read: true},
		Orders:     {Read: true},
		Clients:    {Read: true},
		Operations: {Read: true},
		Statuses:   {Read: true},
		Currency:   {Read: true},
	}
}
