package serial

import (
	"fmt"
	"math"
	"strconv"
)

// tierProbability is the overall population share of items at each rarity
// tier, used as a fallback estimate when a legendary item's specific
// world-pool size is not supplied.
var tierProbability = map[int]float64{
	0: 0.60, // Common
	1: 0.25, // Uncommon
	2: 0.10, // Rare
	3: 0.04, // Epic
	4: 0.01, // Legendary
}

var tierNames = [...]string{"Common", "Uncommon", "Rare", "Epic", "Legendary"}

func tierName(tier int) string {
	if tier < 0 || tier >= len(tierNames) {
		return "Unknown"
	}
	return tierNames[tier]
}

// RarityEstimate summarizes how likely an item's specific roll was to
// occur, given its rarity tier and (for legendaries) the size of the world
// drop pool it was drawn from.
type RarityEstimate struct {
	Tier                 string
	TierProbability      float64
	EffectiveProbability float64
	OneInN                uint64
}

// OddsDisplay renders the estimate as a human "1 in N" string with
// comma-grouped N.
func (e RarityEstimate) OddsDisplay() string {
	return fmt.Sprintf("1 in %s", formatNumber(e.OneInN))
}

// EstimateRarity computes a RarityEstimate for item. worldPoolSize is the
// number of distinct legendary items sharing item's drop pool; it is
// ignored for non-legendary tiers and may be 0 if unknown, in which case
// the tier-wide probability is used as the effective probability too.
func EstimateRarity(item *DecodedItem, worldPoolSize int) RarityEstimate {
	tier := item.RarityTier
	tp := tierProbability[tier]

	effective := tp
	if tier == 4 && worldPoolSize > 0 {
		effective = tp / float64(worldPoolSize)
	}

	oneIn := uint64(1)
	if effective > 0 {
		oneIn = uint64(math.Round(1 / effective))
	}

	return RarityEstimate{
		Tier:                 tierName(tier),
		TierProbability:      tp,
		EffectiveProbability: effective,
		OneInN:                oneIn,
	}
}

// formatNumber renders n with thousands separated by commas, e.g.
// 1000000 -> "1,000,000".
func formatNumber(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	var out []byte
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
