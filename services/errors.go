package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yashrajoria/storefront/clients"
	apperrors "github.com/yashrajoria/storefront/errors"
)

// upstreamFailure classifies a failed backend call. Only cancellation and 404
// are told apart; everything else is a network failure.
func upstreamFailure(op string, err error) *apperrors.Error {
	if errors.Is(err, context.Canceled) {
		return apperrors.Canceled(err)
	}

	var upstream *clients.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.StatusCode == http.StatusNotFound {
			e := apperrors.NotFound(op + ": not found")
			e.Err = err
			return e
		}
		return apperrors.Network(fmt.Sprintf("Request failed with status code %d", upstream.StatusCode), err)
	}
	return apperrors.Network(op+" failed", err)
}
