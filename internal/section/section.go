package section

import "strings"

// Section identifies one named scene in the one-page experience. Exactly one
// section is current at any time; the set is fixed at startup.
type Section string

const (
	Hero       Section = "hero"
	AboutStart Section = "about-start"
	About      Section = "about"
	TeamOne    Section = "team-1"
	TeamTwo    Section = "team-2"
	Offer      Section = "offer"
	Partner    Section = "partner"
	Cases      Section = "cases"
	Contact    Section = "contact"
	Showreel   Section = "showreel"
)

var canonical = []Section{
	Hero,
	AboutStart,
	About,
	TeamOne,
	TeamTwo,
	Offer,
	Partner,
	Cases,
	Contact,
	Showreel,
}

var canonicalSet = func() map[Section]struct{} {
	set := make(map[Section]struct{}, len(canonical))
	for _, s := range canonical {
		set[s] = struct{}{}
	}
	return set
}()

// All returns the canonical ordered section list.
func All() []Section {
	cp := make([]Section, len(canonical))
	copy(cp, canonical)
	return cp
}

// Parse converts a string into a known Section.
func Parse(value string) (Section, bool) {
	normalized := Section(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := canonicalSet[normalized]
	return normalized, ok
}

// Known reports whether s belongs to the canonical set.
func Known(s Section) bool {
	_, ok := canonicalSet[s]
	return ok
}

// Clip identifies a bridging clip. Clip ids are opaque to the engine; the
// scene player maps them to actual media.
type Clip string

// IntentKind distinguishes the three navigation request classes.
type IntentKind int

const (
	IntentForward IntentKind = iota
	IntentBack
	IntentDirect
)

func (k IntentKind) String() string {
	switch k {
	case IntentForward:
		return "forward"
	case IntentBack:
		return "back"
	case IntentDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Intent is a discrete navigation request: forward, back, or direct-to-target.
type Intent struct {
	Kind   IntentKind
	Target Section // set only for IntentDirect
}

// Forward returns the forward navigation intent.
func Forward() Intent { return Intent{Kind: IntentForward} }

// Back returns the backward navigation intent.
func Back() Intent { return Intent{Kind: IntentBack} }

// DirectTo returns a direct navigation intent to target.
func DirectTo(target Section) Intent {
	return Intent{Kind: IntentDirect, Target: target}
}

func (i Intent) String() string {
	if i.Kind == IntentDirect {
		return "direct:" + string(i.Target)
	}
	return i.Kind.String()
}

// Edge is one allowed transition: following intent from From lands on To by
// playing Clip. RequiresLoopWait marks edges whose source scene must finish
// its background loop before the bridge may start.
type Edge struct {
	From             Section
	Kind             IntentKind
	To               Section
	Clip             Clip
	RequiresLoopWait bool
}

// Info carries the per-section static properties the engine and input gateway
// consult.
type Info struct {
	// Looping marks sections backed by a looping background video.
	Looping bool
	// Wheel marks sections that respond to wheel/touch scroll at all.
	Wheel bool
	// UI marks sections with an overlay whose visibility is coordinated.
	UI bool
}
