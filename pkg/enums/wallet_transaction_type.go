package enums

import "fmt"

// WalletTransactionType classifies entries in the wallet ledger.
type WalletTransactionType string

const (
	WalletTransactionEarning    WalletTransactionType = "earning"
	WalletTransactionTopUp      WalletTransactionType = "topup"
	WalletTransactionWithdrawal WalletTransactionType = "withdrawal"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionEarning,
	WalletTransactionTopUp,
	WalletTransactionWithdrawal,
}

// String implements fmt.Stringer.
func (w WalletTransactionType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (w WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
