package pkg

// GenerateRemoveQueue computes the removal order for targets: every
// installed, non-meta package reachable from any target is a removal
// candidate, but a candidate is disqualified if some other installed
// package that isn't itself being removed still requires it. Survivors
// are returned leaves-first, so that by the time a package's own
// entry is processed nothing left in the queue still needs it.
//
// The algorithm is two passes over the whole reachable set, not a single
// walk, because "is some parent still installed and staying" can only be
// answered once every candidate has been identified:
//
//  1. Forward pass: walk the transitive dependency closure of every
//     target (unbounded unless opts.Deep is false, in which case only
//     the target itself is considered) and collect every installed,
//     non-meta node into the candidate set.
//  2. Backward pass: for each candidate, look at its immediate parents.
//     If any parent is installed and is not itself a candidate, the
//     child is required and dropped; onRequired (if non-nil) is told
//     which parent vetoed it.
//
// Surviving candidates come back in leaves-first order: a dependency is
// never placed after anything that depends on it, so executing the
// returned order top to bottom never tries to remove a package something
// later in the same batch still needs.
type RemoveQueueOptions struct {
	Deep       bool
	Oracle     Oracle
	TagFilter  TagFilter
	OnRequired func(child, parent string)
}

func GenerateRemoveQueue(g *Graph, targets []string, opts RemoveQueueOptions) ([]QueueEntry, error) {
	g.ResetRemoval()

	maxDist := 0
	if opts.Deep {
		maxDist = -1
	}

	var candidates []*Package
	seen := map[*Package]bool{}

	for _, target := range targets {
		it, node, err := Begin(g, target, IterForw, maxDist)
		if err != nil {
			return nil, err
		}
		for node != nil {
			if !node.IsMeta && !seen[node] {
				installed, err := opts.Oracle.IsInstalled(node.Name, opts.TagFilter)
				if err != nil {
					return nil, err
				}
				if installed {
					seen[node] = true
					g.state(node).forRemoval = true
					candidates = append(candidates, node)
				}
			}
			node, _, err = it.Next()
			if err != nil {
				return nil, err
			}
		}
	}

	for _, node := range candidates {
		it, parent, err := Begin(g, node.Name, IterRevdeps, 1)
		if err != nil {
			return nil, err
		}
		for parent != nil {
			if parent != node && !parent.IsMeta {
				installed, err := opts.Oracle.IsInstalled(parent.Name, opts.TagFilter)
				if err != nil {
					return nil, err
				}
				if installed && !g.state(parent).forRemoval {
					if opts.OnRequired != nil {
						opts.OnRequired(node.Name, parent.Name)
					}
					g.state(node).forRemoval = false
					break
				}
			}
			parent, _, err = it.Next()
			if err != nil {
				return nil, err
			}
		}
	}

	var stack []QueueEntry
	for _, node := range candidates {
		if g.state(node).forRemoval {
			stack = append(stack, QueueEntry{Name: node.Name})
		}
	}
	// LIFO: the last candidate pushed (the one furthest from any target,
	// i.e. the deepest leaf reached by the forward pass) is popped first.
	out := make([]QueueEntry, len(stack))
	for i, e := range stack {
		out[len(stack)-1-i] = e
	}
	return out, nil
}
