package domain

import (
	"strings"

	"github.com/google/uuid"
)

// BankVerificationStatus mirrors the supplier profile subsystem's verification state.
type BankVerificationStatus string

const (
	BankVerificationPending  BankVerificationStatus = "PENDING"
	BankVerificationVerified BankVerificationStatus = "VERIFIED"
	BankVerificationFailed   BankVerificationStatus = "FAILED"
)

// PayoutProfile is the read-only slice of a supplier profile the gate needs.
type PayoutProfile struct {
	SupplierID             uuid.UUID
	IsPayoutEnabled        bool
	BankCode               string
	AccountNumber          string
	AccountName            string
	BankCountry            string
	BankVerificationStatus BankVerificationStatus
}

// MissingPayoutFields lists every readiness requirement the profile fails.
func (p *PayoutProfile) MissingPayoutFields() []string {
	if p == nil {
		return []string{"payout profile"}
	}
	var missing []string
	if !p.IsPayoutEnabled {
		missing = append(missing, "isPayoutEnabled")
	}
	if strings.TrimSpace(p.BankCode) == "" {
		missing = append(missing, "bankCode")
	}
	if strings.TrimSpace(p.AccountNumber) == "" {
		missing = append(missing, "accountNumber")
	}
	if strings.TrimSpace(p.AccountName) == "" {
		missing = append(missing, "accountName")
	}
	if strings.TrimSpace(p.BankCountry) == "" {
		missing = append(missing, "bankCountry")
	}
	if !strings.EqualFold(string(p.BankVerificationStatus), string(BankVerificationVerified)) {
		missing = append(missing, "bankVerificationStatus")
	}
	return missing
}

// IsPayoutReady reports whether the supplier may publish purchasable offers.
func (p *PayoutProfile) IsPayoutReady() bool {
	return len(p.MissingPayoutFields()) == 0
}
