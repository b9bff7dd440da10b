package subset

import (
	"fmt"
	"slices"
	"strings"
)

// TopologicalSort returns the table names ordered so that every table goes after all the other tables
// it references. Self references are ignored. Ready tables are taken in name order.
func TopologicalSort(g *Graph) ([]string, error) {
	inDegree := make(map[string]int, g.Len())
	referencedBy := make(map[string][]string, g.Len())
	for _, t := range g.Tables() {
		inDegree[t.Name] = 0
		for _, target := range t.References() {
			if target == t.Name {
				continue
			}
			inDegree[t.Name]++
			referencedBy[target] = append(referencedBy[target], t.Name)
		}
	}

	var ready []string
	for _, name := range g.names {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, g.Len())
	for len(ready) > 0 {
		v := ready[0]
		ready = ready[1:]
		order = append(order, v)
		for _, u := range referencedBy[v] {
			inDegree[u]--
			if inDegree[u] == 0 {
				ready = append(ready, u)
			}
		}
		slices.Sort(ready)
	}

	if len(order) != g.Len() {
		var unresolved []string
		for _, name := range g.names {
			if inDegree[name] > 0 {
				unresolved = append(unresolved, name)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(unresolved, ", "))
	}
	return order, nil
}
