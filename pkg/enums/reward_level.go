package enums

import "fmt"

// RewardLevel is the loyalty tier derived from accumulated points.
type RewardLevel string

const (
	RewardLevelBronze   RewardLevel = "Bronze"
	RewardLevelSilver   RewardLevel = "Silver"
	RewardLevelGold     RewardLevel = "Gold"
	RewardLevelPlatinum RewardLevel = "Platinum"
)

var validRewardLevels = []RewardLevel{
	RewardLevelBronze,
	RewardLevelSilver,
	RewardLevelGold,
	RewardLevelPlatinum,
}

const (
	silverThreshold   = 200
	goldThreshold     = 500
	platinumThreshold = 1000
)

// RewardLevelForPoints maps a point balance onto its tier. The thresholds are
// fixed; the level must be recomputed whenever points change.
func RewardLevelForPoints(points int) RewardLevel {
	switch {
	case points >= platinumThreshold:
		return RewardLevelPlatinum
	case points >= goldThreshold:
		return RewardLevelGold
	case points >= silverThreshold:
		return RewardLevelSilver
	default:
		return RewardLevelBronze
	}
}

// String implements fmt.Stringer.
func (r RewardLevel) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RewardLevel.
func (r RewardLevel) IsValid() bool {
	for _, candidate := range validRewardLevels {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRewardLevel converts raw input into a RewardLevel.
func ParseRewardLevel(value string) (RewardLevel, error) {
	for _, candidate := range validRewardLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reward level %q", value)
}
