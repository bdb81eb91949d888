// Package section defines the scene identifiers and the declarative
// transition table that drives navigation.
//
// The Graph maps (section, intent) pairs to edges: the target section, the
// bridge clip that visually connects the two, and whether the source's
// looping background must reach its seam first. The table is data, loaded
// from YAML (an embedded default or an external file) and validated once at
// startup; it is never mutated afterwards. Lookup misses are ordinary "no
// such transition" results that callers treat as no-ops.
//
// Validate enforces the invariants the engine depends on: the full linear
// axis with pairwise inverse back edges, hero's direct shortcuts, no dead
// ends, and no multi-node forward cycles.
package section
