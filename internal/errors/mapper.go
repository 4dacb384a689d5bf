// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/swipe"
)

var invalid = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidDecision,
	domain.ErrInvalidGender,
	domain.ErrInvalidRole,
	domain.ErrEmptyName,
	domain.ErrInvalidLetter,
}

var conflict = []error{
	domain.ErrDuplicateName,
	domain.ErrEmailTaken,
	domain.ErrRoleTaken,
}

var unauthenticated = []error{
	domain.ErrInvalidCredentials,
	domain.ErrInvalidToken,
}

var notFound = []error{
	domain.ErrProfileNotFound,
	domain.ErrNoSwipeSession,
}

var precondition = []error{
	swipe.ErrBusy,
	swipe.ErrEmpty,
	swipe.ErrNotDragging,
	swipe.ErrNotCommitting,
	swipe.ErrNothingToUndo,
}

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case isAny(err, invalid):
		return status.Error(codes.InvalidArgument, err.Error())

	case isAny(err, conflict):
		return status.Error(codes.AlreadyExists, err.Error())

	case isAny(err, unauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())

	case isAny(err, notFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case isAny(err, precondition):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// HTTPStatus maps err to an HTTP status code and client-facing message.
func HTTPStatus(err error) (int, string) {
	st, _ := status.FromError(Map(err))
	code, ok := httpCodes[st.Code()]
	if !ok {
		code = http.StatusInternalServerError
	}
	return code, st.Message()
}

var httpCodes = map[codes.Code]int{
	codes.OK:                 http.StatusOK,
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.AlreadyExists:      http.StatusConflict,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.NotFound:           http.StatusNotFound,
	codes.FailedPrecondition: http.StatusConflict,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
	codes.Canceled:           499,
	codes.Internal:           http.StatusInternalServerError,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// Unauthenticated creates a gRPC Unauthenticated error.
func Unauthenticated(msg string) error {
	return status.Error(codes.Unauthenticated, msg)
}
