package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/vocalis/internal/service"
)

// retryAfter is the Retry-After value sent while draining, in seconds.
const retryAfter = "5"

func init() {
	newError := huma.NewError
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return newError(status, msg, errs...)
	}
}

// toHTTPError maps service errors to client responses. Internal failures are
// logged with their full chain and summarized to the client.
func toHTTPError(ctx context.Context, op string, err error) error {
	switch {
	case service.IsClientError(err):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, service.ErrDraining), errors.Is(err, service.ErrBusy):
		return huma.ErrorWithHeaders(
			huma.Error503ServiceUnavailable(err.Error()),
			http.Header{"Retry-After": {retryAfter}},
		)
	default:
		slog.ErrorContext(ctx, "Request failed", "operation", op, "request_id", RequestID(ctx), "error", err)
		return huma.Error500InternalServerError(op+" failed", err)
	}
}
