package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Template returns the template with the given index.
func (c *Catalog) Template(index int) (*Template, bool) {
	for i := range c.Templates {
		if c.Templates[i].Index == index {
			return &c.Templates[i], true
		}
	}
	return nil, false
}

// ParseChoice resolves a user's free-form reply ("3", " #3 ") to a template.
func (c *Catalog) ParseChoice(text string) (*Template, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "#")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return c.Template(n)
}

// Indices returns the template indices in ascending order.
func (c *Catalog) Indices() []int {
	out := make([]int, 0, len(c.Templates))
	for _, t := range c.Templates {
		out = append(out, t.Index)
	}
	sort.Ints(out)
	return out
}

// Missing returns the stage ids of t that have no entry in texts, in paint
// order.
func (t *Template) Missing(texts map[string]string) []string {
	var out []string
	for _, s := range t.Stages {
		if _, ok := texts[s.ID]; !ok {
			out = append(out, s.ID)
		}
	}
	return out
}
