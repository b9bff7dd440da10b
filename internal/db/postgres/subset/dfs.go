package subset

// FindPath finds the shortest chain of non-nullable foreign keys from start to root. It returns an empty
// path when start is the root and false when there is no such chain.
//
// Targets are visited in sorted order, so the first of several shortest chains always wins.
func (g *Graph) FindPath(start, root string) (JoinPath, bool) {
	if _, ok := g.tables[start]; !ok {
		return nil, false
	}
	if _, ok := g.tables[root]; !ok {
		return nil, false
	}
	return g.findPathDfs(start, root, make(map[string]struct{}))
}

// findPathDfs - DFS over non-nullable edges. Tables that are already on the current path are dead ends.
func (g *Graph) findPathDfs(v, root string, onPath map[string]struct{}) (JoinPath, bool) {
	if v == root {
		return JoinPath{}, true
	}
	onPath[v] = struct{}{}
	defer delete(onPath, v)

	table := g.tables[v]
	var best JoinPath
	var found bool
	for _, target := range table.References() {
		if target == v {
			continue
		}
		if _, visited := onPath[target]; visited {
			continue
		}
		hop, ok := table.mandatoryHop(target)
		if !ok {
			continue
		}
		sub, ok := g.findPathDfs(target, root, onPath)
		if !ok {
			continue
		}
		if !found || len(sub)+1 < len(best) {
			best = append(JoinPath{hop}, sub...)
			found = true
		}
	}
	return best, found
}
