package digest

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier names, lowest granularity first.
const (
	TierLoop         = "loop"
	TierWeekly       = "weekly"
	TierMonthly      = "monthly"
	TierQuarterly    = "quarterly"
	TierAnnual       = "annual"
	TierTriennial    = "triennial"
	TierDecadal      = "decadal"
	TierMultidecadal = "multidecadal"
	TierCenturial    = "centurial"
)

// TierMeta is the static description of one tier of the hierarchy.
// Threshold is the count of source items that makes the tier ready to
// finalize; 0 means the tier is only ever finalized by an explicit external
// trigger (the loop tier).
type TierMeta struct {
	Name      string
	Prefix    string
	Source    string // tier whose archives this tier consumes; empty for loop
	Next      string // tier this tier cascades into; empty for centurial
	Threshold int
}

// variant captures the per-tier formatting differences. The loop tier uses a
// five digit sequence, every other tier uses four. Dispatch is by lookup
// table so a new variant never touches the existing ones.
type variant interface {
	Digits() int
}

type standardTier struct{}

func (standardTier) Digits() int { return 4 }

type loopTier struct{}

func (loopTier) Digits() int { return 5 }

// Registry is the ordered, immutable tier hierarchy. Construct one at
// process start and thread it through; it is safe for concurrent reads.
type Registry struct {
	order    []string
	tiers    map[string]TierMeta
	variants map[string]variant
}

// defaultTiers is the built-in hierarchy. Thresholds can be overridden per
// tier via NewRegistry.
var defaultTiers = []TierMeta{
	{Name: TierLoop, Prefix: "L", Source: "", Next: TierWeekly, Threshold: 0},
	{Name: TierWeekly, Prefix: "W", Source: TierLoop, Next: TierMonthly, Threshold: 5},
	{Name: TierMonthly, Prefix: "M", Source: TierWeekly, Next: TierQuarterly, Threshold: 4},
	{Name: TierQuarterly, Prefix: "Q", Source: TierMonthly, Next: TierAnnual, Threshold: 3},
	{Name: TierAnnual, Prefix: "Y", Source: TierQuarterly, Next: TierTriennial, Threshold: 4},
	{Name: TierTriennial, Prefix: "T", Source: TierAnnual, Next: TierDecadal, Threshold: 3},
	{Name: TierDecadal, Prefix: "D", Source: TierTriennial, Next: TierMultidecadal, Threshold: 3},
	{Name: TierMultidecadal, Prefix: "X", Source: TierDecadal, Next: TierCenturial, Threshold: 3},
	{Name: TierCenturial, Prefix: "C", Source: TierMultidecadal, Next: "", Threshold: 3},
}

// NewRegistry builds the tier registry, applying any per-tier threshold
// overrides. An override for an unknown tier or a non-positive override for
// a thresholded tier is a config error; a missing override falls back to
// the built-in default.
func NewRegistry(thresholdOverrides map[string]int) (*Registry, error) {
	r := &Registry{
		tiers:    make(map[string]TierMeta, len(defaultTiers)),
		variants: make(map[string]variant, len(defaultTiers)),
	}
	for _, m := range defaultTiers {
		r.order = append(r.order, m.Name)
		r.tiers[m.Name] = m
		if m.Name == TierLoop {
			r.variants[m.Name] = loopTier{}
		} else {
			r.variants[m.Name] = standardTier{}
		}
	}
	for name, th := range thresholdOverrides {
		m, ok := r.tiers[name]
		if !ok {
			return nil, newErr(KindConfig, "registry", "threshold override for unknown tier %q", name)
		}
		if m.Threshold == 0 {
			return nil, newErr(KindConfig, "registry", "tier %q takes no threshold", name)
		}
		if th <= 0 {
			return nil, newErr(KindConfig, "registry", "tier %q threshold must be positive, got %d", name, th)
		}
		m.Threshold = th
		r.tiers[name] = m
	}
	return r, nil
}

// Order returns the tier names lowest granularity first.
func (r *Registry) Order() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Tier returns the metadata for name.
func (r *Registry) Tier(name string) (TierMeta, error) {
	m, ok := r.tiers[name]
	if !ok {
		return TierMeta{}, newErr(KindConfig, "registry", "unknown tier %q", name)
	}
	return m, nil
}

// Digits returns the sequence-number width for a tier.
func (r *Registry) Digits(name string) (int, error) {
	v, ok := r.variants[name]
	if !ok {
		return 0, newErr(KindConfig, "registry", "unknown tier %q", name)
	}
	return v.Digits(), nil
}

// FormatNumber renders a tier-local sequence number, e.g. ("weekly", 42)
// -> "W0042" and ("loop", 186) -> "L00186".
func (r *Registry) FormatNumber(name string, n int) (string, error) {
	m, err := r.Tier(name)
	if err != nil {
		return "", err
	}
	digits, _ := r.Digits(name)
	if n < 0 || n >= pow10(digits) {
		return "", newErr(KindValidation, "registry", "number %d out of range for tier %q", n, name)
	}
	return fmt.Sprintf("%s%0*d", m.Prefix, digits, n), nil
}

// ParseNumber recovers the sequence number from a formatted string.
// Round-trips exactly with FormatNumber.
func (r *Registry) ParseNumber(name, s string) (int, error) {
	m, err := r.Tier(name)
	if err != nil {
		return 0, err
	}
	digits, _ := r.Digits(name)
	rest, ok := strings.CutPrefix(s, m.Prefix)
	if !ok || len(rest) != digits {
		return 0, newErr(KindValidation, "registry", "malformed %s number %q", name, s)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, newErr(KindValidation, "registry", "malformed %s number %q", name, s)
	}
	return n, nil
}

// ParseFileNumber extracts the sequence number embedded in an archive
// filename like "W0042_Week_42.txt".
func (r *Registry) ParseFileNumber(name, filename string) (int, error) {
	m, err := r.Tier(name)
	if err != nil {
		return 0, err
	}
	digits, _ := r.Digits(name)
	want := len(m.Prefix) + digits
	if len(filename) < want {
		return 0, newErr(KindValidation, "registry", "filename %q too short for tier %q", filename, name)
	}
	if len(filename) > want && filename[want] != '_' && filename[want] != '.' {
		return 0, newErr(KindValidation, "registry", "filename %q does not match tier %q pattern", filename, name)
	}
	return r.ParseNumber(name, filename[:want])
}

// ShouldCascade reports whether finalizing the tier feeds a higher tier.
func (r *Registry) ShouldCascade(name string) bool {
	m, ok := r.tiers[name]
	return ok && m.Next != ""
}

func pow10(digits int) int {
	n := 1
	for i := 0; i < digits; i++ {
		n *= 10
	}
	return n
}
