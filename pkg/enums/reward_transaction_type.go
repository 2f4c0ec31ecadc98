package enums

import "fmt"

// RewardTransactionType classifies entries in the reward points ledger.
type RewardTransactionType string

const (
	RewardTransactionEarned   RewardTransactionType = "earned"
	RewardTransactionRedeemed RewardTransactionType = "redeemed"
	RewardTransactionExpired  RewardTransactionType = "expired"
	RewardTransactionAdjusted RewardTransactionType = "adjusted"
)

var validRewardTransactionTypes = []RewardTransactionType{
	RewardTransactionEarned,
	RewardTransactionRedeemed,
	RewardTransactionExpired,
	RewardTransactionAdjusted,
}

// String implements fmt.Stringer.
func (r RewardTransactionType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RewardTransactionType.
func (r RewardTransactionType) IsValid() bool {
	for _, candidate := range validRewardTransactionTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRewardTransactionType converts raw input into a RewardTransactionType.
func ParseRewardTransactionType(value string) (RewardTransactionType, error) {
	for _, candidate := range validRewardTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reward transaction type %q", value)
}
