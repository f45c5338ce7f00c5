package query

// Graph maps a resource family to the cache prefixes derived from it. Settling a mutation on a
// family marks every dependent prefix stale.
type Graph map[string][]Key

// DefaultGraph is the dependency graph of the dashboard's resources.
func DefaultGraph() Graph {
	return Graph{
		"transactions":  {{"transactions", "stats"}, {"nacha", "stats"}},
		"nacha":         {{"nacha", "stats"}, {"transactions"}},
		"holidays":      {{"businessDays"}},
		"organizations": {{"transactions", "list"}},
		"config":        nil,
	}
}

// Dependents returns the prefixes to invalidate after a mutation touching the given families,
// without duplicates.
func (g Graph) Dependents(families ...string) []Key {
	seen := make(map[string]struct{})
	var out []Key
	for _, f := range families {
		for _, k := range g[f] {
			s := k.String()
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
