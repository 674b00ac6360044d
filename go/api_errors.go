package offerserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	offerhttpmapper "github.com/Apurer/supplier-offers/internal/domains/offers/adapters/http/mapper"
	offersapp "github.com/Apurer/supplier-offers/internal/domains/offers/application"
	"github.com/Apurer/supplier-offers/internal/domains/offers/domain"
	apierrors "github.com/Apurer/supplier-offers/internal/shared/errors"
)

var responder = newOfferResponder()

func newOfferResponder() *apierrors.Responder {
	r := apierrors.NewResponder("")
	r.AddMapper(offerProblem)
	return r
}

// respondOfferServiceError renders any error returned by the offers service.
func respondOfferServiceError(c *gin.Context, err error) {
	responder.RespondError(c, err)
}

// offerProblem maps request coercion failures and application error classes
// onto problem documents. Internal failures never expose their cause.
func offerProblem(err error) (apierrors.ProblemDetail, bool) {
	var invalid *offerhttpmapper.ValidationError
	if errors.As(err, &invalid) {
		return apierrors.NewValidationProblem(invalid.Fields), true
	}
	switch offersapp.KindOf(err) {
	case offersapp.KindValidation:
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case offersapp.KindNotFound:
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case offersapp.KindConflict:
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case offersapp.KindPayoutNotReady:
		var notReady *domain.PayoutNotReadyError
		if errors.As(err, &notReady) {
			return apierrors.NewPayoutNotReadyProblem(notReady.Error(), notReady.Missing, notReady.Remediation()), true
		}
		return apierrors.ErrPayoutNotReady.WithDetail(err.Error()), true
	default:
		return apierrors.ErrInternal.WithDetail("unexpected error"), true
	}
}
