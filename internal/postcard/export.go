package postcard

import (
	"fmt"
	"sort"
	"strings"
)

// ExportText describes p as plain text, one field per line in id order.
func ExportText(p Postcard) string {
	lines := []string{}
	if p.ID != "" {
		lines = append(lines, "# "+p.ID)
	}
	lines = append(lines, fmt.Sprintf("template: %d", p.Template))
	ids := make([]string, 0, len(p.Texts))
	for id := range p.Texts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		lines = append(lines, id+": "+strings.ReplaceAll(p.Texts[id], "\n", `\n`))
	}
	for _, w := range p.Warnings {
		lines = append(lines, "warning: "+w)
	}
	return strings.Join(lines, "\n")
}
