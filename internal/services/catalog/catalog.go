// Package catalog provides the built-in scheme catalog.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"kisanmitra-scheme-engine/internal/models"
)

//go:embed schemes.json
var schemesJSON []byte

// Catalog is an immutable, in-memory list of schemes.
type Catalog struct {
	schemes []*models.Scheme
	byID    map[string]*models.Scheme
}

// Default loads the embedded scheme catalog.
func Default() (*Catalog, error) {
	return Parse(schemesJSON)
}

// Parse builds a catalog from a JSON array of schemes.
func Parse(data []byte) (*Catalog, error) {
	var schemes []*models.Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		return nil, fmt.Errorf("failed to parse scheme catalog: %w", err)
	}
	return New(schemes)
}

// New builds a catalog from schemes. Scheme ids must be unique.
func New(schemes []*models.Scheme) (*Catalog, error) {
	c := &Catalog{
		schemes: make([]*models.Scheme, 0, len(schemes)),
		byID:    make(map[string]*models.Scheme, len(schemes)),
	}

	for _, s := range schemes {
		if s == nil || s.ID == "" {
			return nil, fmt.Errorf("scheme without id in catalog")
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scheme id %s", s.ID)
		}
		s.IsActive = true
		c.schemes = append(c.schemes, s)
		c.byID[s.ID] = s
	}

	return c, nil
}

// All returns every scheme in catalog order.
func (c *Catalog) All() []*models.Scheme {
	out := make([]*models.Scheme, len(c.schemes))
	copy(out, c.schemes)
	return out
}

// ListSchemes implements the eligibility service's scheme source.
func (c *Catalog) ListSchemes(_ context.Context) ([]*models.Scheme, error) {
	return c.All(), nil
}

// Get returns the scheme with the given id.
func (c *Catalog) Get(id string) (*models.Scheme, error) {
	s, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSchemeNotFound, id)
	}
	return s, nil
}

// Filter returns the schemes that pass the filter, in catalog order.
func (c *Catalog) Filter(f models.SchemeFilter) []*models.Scheme {
	out := make([]*models.Scheme, 0, len(c.schemes))
	for _, s := range c.schemes {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// Ministries returns the distinct ministries, sorted.
func (c *Catalog) Ministries() []string {
	return distinct(c.schemes, func(s *models.Scheme) string { return s.Ministry })
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	return distinct(c.schemes, func(s *models.Scheme) string { return s.Category })
}

func distinct(schemes []*models.Scheme, field func(*models.Scheme) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, s := range schemes {
		if s == nil {
			continue
		}
		v := field(s)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
