package app

import (
	"sort"
	"strings"

	"photos/internal/models"
)

// Catalog is the session-local set of known tag types, used by the UI
// for autocompletion. It is seeded with the built-in types and grows as
// tags with new names are added. It is not persisted; each login starts
// fresh.
type Catalog struct {
	policy models.TagPolicy
	known  map[string]string // lowercased name -> first-seen spelling
}

func NewCatalog() *Catalog {
	c := &Catalog{
		policy: models.DefaultTagPolicy(),
		known:  make(map[string]string),
	}
	c.Define("location")
	c.Define("person")
	return c
}

// Define records a tag type. Re-defining an existing type keeps its
// original spelling.
func (c *Catalog) Define(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	if _, ok := c.known[key]; !ok {
		c.known[key] = name
	}
}

// Types returns the known tag types, sorted.
func (c *Catalog) Types() []string {
	types := make([]string, 0, len(c.known))
	for _, name := range c.known {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Policy returns the arity policy applied when tagging photos.
func (c *Catalog) Policy() models.TagPolicy {
	return c.policy
}
