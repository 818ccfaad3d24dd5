package serial

import "fmt"

// Legality is a three-valued verdict over a single validation check, or the
// combined verdict over a set of them. It deliberately has no "false"
// state distinct from Illegal: a check either rules an item out, defers,
// or finds nothing wrong.
type Legality int

const (
	Legal Legality = iota
	Unknown
	Illegal
)

func (l Legality) String() string {
	switch l {
	case Legal:
		return "Legal"
	case Unknown:
		return "Unknown"
	case Illegal:
		return "Illegal"
	default:
		return fmt.Sprintf("Legality(%d)", int(l))
	}
}

// combine folds a single check's three-valued result into a running
// verdict: any Illegal wins outright, otherwise Unknown if any check could
// not decide, otherwise Legal.
func (l Legality) combine(other Legality) Legality {
	if l == Illegal || other == Illegal {
		return Illegal
	}
	if l == Unknown || other == Unknown {
		return Unknown
	}
	return Legal
}

// ValidationCheck is one named legality check and its individual verdict.
type ValidationCheck struct {
	Name   string
	Result Legality
	Detail string
}

// ValidationResult is the combined outcome of running every check against
// a decoded item.
type ValidationResult struct {
	Overall Legality
	Checks  []ValidationCheck
}

// maxKnownLevel bounds the level-range check. The format's code space could
// in principle encode higher levels than any version of the game has
// shipped; characters above this are treated as illegal rather than
// unknown, since the range is a hard property of the bit layout.
const maxKnownLevel = 80

// maxPlausiblePartIndex bounds the part-index-bounds check when the
// category's real pool size is not known to this codec.
const maxPlausiblePartIndex = 1000

// Validate runs every legality check against item and returns the combined
// verdict alongside the individual check results.
func Validate(item *DecodedItem) ValidationResult {
	checks := []ValidationCheck{
		checkLevel(item),
		checkPartCount(item),
		checkPartBounds(item),
		checkPoolMembership(item),
	}

	overall := Legal
	for _, c := range checks {
		overall = overall.combine(c.Result)
	}
	return ValidationResult{Overall: overall, Checks: checks}
}

func checkLevel(item *DecodedItem) ValidationCheck {
	if item.Level < 1 || item.Level > maxKnownLevel {
		return ValidationCheck{"level_range", Illegal, fmt.Sprintf("level %d outside 1..%d", item.Level, maxKnownLevel)}
	}
	return ValidationCheck{"level_range", Legal, ""}
}

func checkPartCount(item *DecodedItem) ValidationCheck {
	n := len(item.Parts)
	if n == 0 {
		return ValidationCheck{"part_count", Unknown, "no parts recorded"}
	}
	if n > maxPartCount {
		return ValidationCheck{"part_count", Unknown, fmt.Sprintf("%d parts exceeds expected count of %d (unverified limit)", n, maxPartCount)}
	}
	return ValidationCheck{"part_count", Legal, ""}
}

func checkPartBounds(item *DecodedItem) ValidationCheck {
	for _, p := range item.Parts {
		if p.Element != ElementNone {
			continue // element markers are not themselves pool indices
		}
		if p.Value > maxPlausiblePartIndex {
			return ValidationCheck{"part_bounds", Illegal, fmt.Sprintf("part index %d exceeds plausible bound %d", p.Value, maxPlausiblePartIndex)}
		}
	}
	return ValidationCheck{"part_bounds", Legal, ""}
}

func checkPoolMembership(item *DecodedItem) ValidationCheck {
	name, ok := CategoryName(item.CategoryID)
	if !ok {
		return ValidationCheck{"pool_membership", Unknown, fmt.Sprintf("category %d is not in the known pool table", item.CategoryID)}
	}
	if item.Format == FormatVarIntFirst {
		if _, _, ok := WeaponInfo(item.WeaponCode); !ok {
			return ValidationCheck{"pool_membership", Illegal, fmt.Sprintf("weapon code %d does not belong to category %s", item.WeaponCode, name)}
		}
	}
	return ValidationCheck{"pool_membership", Legal, ""}
}
