package pkg

// IterFlags controls how an Iterator walks the graph.
type IterFlags uint8

const (
	// IterRevdeps makes the iterator walk a node's Parents instead of its
	// Required edges: "who depends on this" instead of "what does this
	// depend on".
	IterRevdeps IterFlags = 1 << iota
	// IterForw selects pre-order emission (a node is returned the moment
	// it is first visited) instead of the default post-order (a node is
	// returned only once every edge below it has been exhausted).
	IterForw
	// IterReqNearest makes a node stopped by MaxDist emit each neighbour
	// one step past the boundary (coloring it BLACK), instead of silently
	// discarding those edges; it also makes an edge that reaches an
	// already-BLACK neighbour emit that neighbour again.
	IterReqNearest
	// IterMetaPkgDist restores a distance cost of 1 for a step across a
	// meta-package edge. By default such a step is free (distance 0), so
	// that MaxDist measures real-package depth, not meta-package
	// indirection.
	IterMetaPkgDist
	// IterPreserveColor skips the implicit ClearMarkers() at Begin, so a
	// caller can run several iterators back to back over the same
	// coloring (used by the update planner's fix-point loop).
	IterPreserveColor
)

func (f IterFlags) has(bit IterFlags) bool { return f&bit != 0 }

// Iterator walks a Graph from a start node, following Required or
// Parents edges depending on IterRevdeps, and stopping at MaxDist hops
// (MaxDist < 0 means unbounded). It is a single abstraction for every
// traversal this engine needs: build-queue generation, remove-queue
// generation, and both passes of the update planner differ only in which
// flags and MaxDist they pass to Begin.
type Iterator struct {
	g       *Graph
	flags   IterFlags
	maxDist int

	curNode  *Package
	edgeNode *Package
	visit    []*Package
	done     bool
}

// Begin starts a new traversal of g rooted at name. Unless
// IterPreserveColor is set, every node's color/distance/edge-cursor is
// reset first. The first node returned is name itself for a pre-order
// (IterForw) walk; for the default post-order walk it is whatever leaf
// Begin descends to first.
func Begin(g *Graph, name string, flags IterFlags, maxDist int) (*Iterator, *Package, error) {
	if !flags.has(IterPreserveColor) {
		g.ClearMarkers()
	}
	start, err := g.Search(name)
	if err != nil {
		return nil, nil, err
	}
	if start == nil {
		return nil, nil, ErrPackageNotFound
	}

	it := &Iterator{g: g, flags: flags, maxDist: maxDist}

	// The start node is always re-examined as a traversal root, even under
	// IterPreserveColor: its edge cursor must restart at 0 regardless of
	// how far a previous, possibly differently-directed, traversal rooted
	// elsewhere had advanced it (the update planner alternates Required
	// and Parents walks over the same nodes within one fix-point pass).
	if flags.has(IterForw) {
		s := g.state(start)
		s.color = white
		s.dist = 0
		s.edgeIndex = 0
		it.edgeNode = start
		return it, start, nil
	}

	s := g.state(start)
	s.color = grey
	s.dist = 0
	s.edgeIndex = 0
	it.curNode = start
	n, err := it.next()
	return it, n, err
}

// Next advances the traversal, returning the next node in order, or
// (nil, false, nil) when the walk is finished.
func (it *Iterator) Next() (*Package, bool, error) {
	if it.done {
		return nil, false, nil
	}
	n, err := it.next()
	if err != nil {
		return nil, false, err
	}
	if n == nil {
		it.done = true
		return nil, false, nil
	}
	return n, true, nil
}

func (it *Iterator) edges(p *Package) []*Package {
	if it.flags.has(IterRevdeps) {
		return p.Parents
	}
	return p.Required
}

// setNextNodeDist assigns edgeNode's distance from cur's, crediting a
// meta-package step with 0 unless IterMetaPkgDist overrides that. When an
// edge is reachable by more than one path, the node keeps the smallest
// distance seen.
func (it *Iterator) setNextNodeDist(cur, edgeNode *Package) {
	meta := cur.IsMeta
	if it.flags.has(IterRevdeps) {
		meta = edgeNode.IsMeta
	}
	incr := 1
	if !it.flags.has(IterMetaPkgDist) && meta {
		incr = 0
	}
	cs := it.g.state(cur)
	es := it.g.state(edgeNode)
	d := cs.dist + incr
	if es.dist < 0 || d < es.dist {
		es.dist = d
	}
}

// getNextEdgeNode fetches the next unvisited edge of cur, advances cur's
// edge cursor, and fails hard if that edge is already GREY: a GREY node
// reached again while still on the active path is a cycle, and the
// engine treats that as fatal rather than trying to route around it.
func (it *Iterator) getNextEdgeNode(cur *Package) (*Package, error) {
	edges := it.edges(cur)
	cs := it.g.state(cur)
	e := edges[cs.edgeIndex]
	cs.edgeIndex++
	if it.g.state(e).color == grey {
		return nil, &CycleError{Parent: cur.Name, Child: e.Name}
	}
	it.setNextNodeDist(cur, e)
	it.edgeNode = e
	return e, nil
}

func (it *Iterator) pop() *Package {
	if len(it.visit) == 0 {
		return nil
	}
	n := it.visit[len(it.visit)-1]
	it.visit = it.visit[:len(it.visit)-1]
	return n
}

func (it *Iterator) push(p *Package) { it.visit = append(it.visit, p) }

func (it *Iterator) next() (*Package, error) {
	if it.flags.has(IterForw) {
		return it.nextForward()
	}
	return it.nextReverse()
}

// nextReverse is the default post-order walk: a node is emitted only
// after every edge below it has been visited (i.e. on pop, not on push).
func (it *Iterator) nextReverse() (*Package, error) {
	for {
		cur := it.curNode
		if cur == nil {
			return nil, nil
		}
		cs := it.g.state(cur)
		edges := it.edges(cur)
		atMax := it.maxDist >= 0 && cs.dist == it.maxDist
		haveEdges := cs.edgeIndex < len(edges)

		if !haveEdges || atMax {
			if atMax && it.flags.has(IterReqNearest) && haveEdges {
				e, err := it.getNextEdgeNode(cur)
				if err != nil {
					return nil, err
				}
				it.g.state(e).color = black
				return e, nil
			}
			cs.color = black
			emitted := cur
			it.curNode = it.pop()
			return emitted, nil
		}

		advanced := false
		for cs.edgeIndex < len(edges) {
			e, err := it.getNextEdgeNode(cur)
			if err != nil {
				return nil, err
			}
			es := it.g.state(e)
			if es.color == black && it.flags.has(IterReqNearest) {
				return e, nil
			}
			if es.color == white {
				es.color = grey
				it.push(cur)
				it.curNode = e
				advanced = true
				break
			}
		}
		if advanced {
			continue
		}
		// Every edge of cur was already BLACK: loop again with the same
		// cur, whose edge cursor is now exhausted, so the top branch
		// above will finish it on the next pass.
	}
}

// nextForward is the pre-order walk: a newly discovered WHITE node is
// returned immediately, and only colored GREY / pushed on the following
// call, so the caller sees it before its own children.
func (it *Iterator) nextForward() (*Package, error) {
	for {
		if it.edgeNode != nil {
			en := it.edgeNode
			es := it.g.state(en)
			if es.color == white {
				es.color = grey
				it.push(it.curNode)
				it.curNode = en
			}
			it.edgeNode = nil
		}

		cur := it.curNode
		if cur == nil {
			return nil, nil
		}
		cs := it.g.state(cur)
		edges := it.edges(cur)
		atMax := it.maxDist >= 0 && cs.dist == it.maxDist
		haveEdges := cs.edgeIndex < len(edges)

		if !haveEdges || atMax {
			if atMax && it.flags.has(IterReqNearest) && haveEdges {
				e, err := it.getNextEdgeNode(cur)
				if err != nil {
					return nil, err
				}
				it.g.state(e).color = black
				return e, nil
			}
			cs.color = black
			it.curNode = it.pop()
			continue
		}

		found := false
		var result *Package
		for cs.edgeIndex < len(edges) {
			e, err := it.getNextEdgeNode(cur)
			if err != nil {
				return nil, err
			}
			es := it.g.state(e)
			if es.color == black && it.flags.has(IterReqNearest) {
				found, result = true, e
				break
			}
			if es.color == white {
				found, result = true, e
				break
			}
		}
		if found {
			return result, nil
		}
		it.edgeNode = nil
	}
}

// Dist returns p's distance from the current traversal's root. Only
// meaningful for a node already visited in this pass.
func (g *Graph) Dist(p *Package) int { return g.state(p).dist }
