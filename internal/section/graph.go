package section

import (
	"errors"
	"fmt"
)

// Graph is the read-only transition table built once at startup. Lookup misses
// are valid "no such transition" results, never errors.
type Graph struct {
	order   []Section
	infos   map[Section]Info
	forward map[Section]Edge
	back    map[Section]Edge
	direct  map[Section]map[Section]Edge
}

// chain is the linear axis of the experience; forward edges must follow it.
var chain = []Section{Hero, AboutStart, About, TeamOne, TeamTwo, Offer, Partner, Cases, Contact}

// heroDirectTargets are the top-level destinations hero must reach directly.
var heroDirectTargets = []Section{Showreel, AboutStart, Cases, Contact}

// Lookup resolves the edge for intent from the given section. The second
// return is false when no such transition exists; callers treat that as a
// no-op, not an error.
func (g *Graph) Lookup(from Section, intent Intent) (Edge, bool) {
	switch intent.Kind {
	case IntentForward:
		edge, ok := g.forward[from]
		return edge, ok
	case IntentBack:
		edge, ok := g.back[from]
		return edge, ok
	case IntentDirect:
		targets, ok := g.direct[from]
		if !ok {
			return Edge{}, false
		}
		edge, ok := targets[intent.Target]
		return edge, ok
	default:
		return Edge{}, false
	}
}

// Info returns the static properties of s. Unknown sections yield the zero
// Info.
func (g *Graph) Info(s Section) Info {
	return g.infos[s]
}

// Sections returns the graph's sections in document order.
func (g *Graph) Sections() []Section {
	cp := make([]Section, len(g.order))
	copy(cp, g.order)
	return cp
}

// Edges returns every edge, ordered by source section, then forward, back,
// direct (direct targets in canonical order). Used for presentation.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, s := range g.order {
		if edge, ok := g.forward[s]; ok {
			edges = append(edges, edge)
		}
		if edge, ok := g.back[s]; ok {
			edges = append(edges, edge)
		}
		targets := g.direct[s]
		if len(targets) == 0 {
			continue
		}
		for _, candidate := range canonical {
			if edge, ok := targets[candidate]; ok {
				edges = append(edges, edge)
			}
		}
	}
	return edges
}

// Validate checks the startup invariants of the transition table. These are
// configuration errors, so they surface at load time rather than during
// navigation.
func (g *Graph) Validate() error {
	if len(g.order) == 0 {
		return errors.New("graph has no sections")
	}
	for _, s := range g.order {
		if !Known(s) {
			return fmt.Errorf("unknown section %q", s)
		}
	}
	if err := g.validateEdgesResolve(); err != nil {
		return err
	}
	if err := g.validateChain(); err != nil {
		return err
	}
	if err := g.validateHeroDirects(); err != nil {
		return err
	}
	if err := g.validateNoDeadEnds(); err != nil {
		return err
	}
	return g.validateForwardAcyclic()
}

func (g *Graph) validateEdgesResolve() error {
	for _, edge := range g.Edges() {
		if _, ok := g.infos[edge.From]; !ok {
			return fmt.Errorf("edge %s -> %s references undeclared source", edge.From, edge.To)
		}
		if _, ok := g.infos[edge.To]; !ok {
			return fmt.Errorf("edge %s -> %s references undeclared target", edge.From, edge.To)
		}
		if edge.Clip == "" {
			return fmt.Errorf("edge %s -> %s has no bridge clip", edge.From, edge.To)
		}
		if edge.RequiresLoopWait && !g.infos[edge.From].Looping {
			return fmt.Errorf("edge %s -> %s requires a loop wait but %s has no looping background", edge.From, edge.To, edge.From)
		}
	}
	return nil
}

// validateChain requires the full linear axis with pairwise inverse back
// edges, which makes "back" deterministic everywhere on the chain.
func (g *Graph) validateChain() error {
	for i := 0; i < len(chain)-1; i++ {
		from, to := chain[i], chain[i+1]
		edge, ok := g.forward[from]
		if !ok {
			return fmt.Errorf("missing forward edge from %s", from)
		}
		if edge.To != to {
			return fmt.Errorf("forward edge from %s targets %s, want %s", from, edge.To, to)
		}
		backEdge, ok := g.back[to]
		if !ok {
			return fmt.Errorf("missing back edge from %s", to)
		}
		if backEdge.To != from {
			return fmt.Errorf("back edge from %s targets %s, want %s", to, backEdge.To, from)
		}
	}
	return nil
}

func (g *Graph) validateHeroDirects() error {
	targets := g.direct[Hero]
	for _, want := range heroDirectTargets {
		if _, ok := targets[want]; !ok {
			return fmt.Errorf("hero is missing a direct edge to %s", want)
		}
	}
	return nil
}

// validateNoDeadEnds requires every section reachable from hero to have an
// outgoing edge back toward the start.
func (g *Graph) validateNoDeadEnds() error {
	for _, s := range g.reachableFromHero() {
		if s == Hero {
			continue
		}
		if _, ok := g.back[s]; ok {
			continue
		}
		if _, ok := g.direct[s][Hero]; ok {
			continue
		}
		return fmt.Errorf("section %s has no edge back toward hero", s)
	}
	return nil
}

func (g *Graph) reachableFromHero() []Section {
	seen := map[Section]struct{}{Hero: {}}
	queue := []Section{Hero}
	var order []Section
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)
		var next []Section
		if edge, ok := g.forward[current]; ok {
			next = append(next, edge.To)
		}
		if edge, ok := g.back[current]; ok {
			next = append(next, edge.To)
		}
		for _, candidate := range canonical {
			if edge, ok := g.direct[current][candidate]; ok {
				next = append(next, edge.To)
			}
		}
		for _, n := range next {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return order
}

// validateForwardAcyclic rejects cycles of three or more nodes along forward
// edges; only adjacent forward/back pairs may cycle.
func (g *Graph) validateForwardAcyclic() error {
	for _, start := range g.order {
		seen := map[Section]struct{}{start: {}}
		current := start
		for {
			edge, ok := g.forward[current]
			if !ok {
				break
			}
			if _, revisited := seen[edge.To]; revisited {
				return fmt.Errorf("forward edges form a cycle through %s", edge.To)
			}
			seen[edge.To] = struct{}{}
			current = edge.To
		}
	}
	return nil
}
