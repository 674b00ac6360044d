package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidOfferRef        = errors.New("invalid offer reference")
	ErrPriceRequired          = errors.New("price is required")
	ErrNegativePrice          = errors.New("price must not be negative")
	ErrNegativeQuantity       = errors.New("availableQty must not be negative")
	ErrNegativeLeadDays       = errors.New("leadDays must not be negative")
	ErrInvalidCurrency        = errors.New("currency must be an ISO-4217 code")
	ErrMissingSupplier        = errors.New("supplier id is required")
	ErrMissingProduct         = errors.New("product id is required")
	ErrMissingVariant         = errors.New("variant id is required")
	ErrVariantNotInProduct    = errors.New("variantId does not belong to this product")
	ErrConversionTarget       = errors.New("conversion target is required")
	ErrConversionSameKind     = errors.New("offer already has the requested kind")
	ErrConversionCrossProduct = errors.New("conversion must stay within the same product")
	ErrDuplicateOffer         = errors.New("duplicate offer")
	ErrOfferReferenced        = errors.New("offer is referenced by existing order items")
	ErrProductReferenced      = errors.New("product is referenced by existing order items")
	ErrPayoutNotReady         = errors.New("supplier payout setup is incomplete")
	ErrDeleteNotApplied       = errors.New("offer still present after delete")
	ErrOfferNotOwned          = errors.New("offer does not belong to this supplier")
)

// PayoutNotReadyError explains why a supplier cannot publish purchasable offers.
type PayoutNotReadyError struct {
	SupplierID uuid.UUID
	Missing    []string
}

func (e *PayoutNotReadyError) Error() string {
	if len(e.Missing) == 0 {
		return ErrPayoutNotReady.Error()
	}
	return fmt.Sprintf("%s: missing %s", ErrPayoutNotReady, strings.Join(e.Missing, ", "))
}

func (e *PayoutNotReadyError) Unwrap() error { return ErrPayoutNotReady }

// Remediation is the supplier-facing instruction attached to the rejection.
func (e *PayoutNotReadyError) Remediation() string {
	return "Complete your payout details (bank code, account number, account name, bank country) " +
		"and wait for bank verification before activating offers with stock and a price."
}
