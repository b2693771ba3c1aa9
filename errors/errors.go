package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a failure the way the screens react to it.
type Kind string

const (
	KindNetwork      Kind = "NetworkFailure"
	KindValidation   Kind = "ValidationFailure"
	KindEmptyCart    Kind = "EmptyCartFailure"
	KindUnauthorized Kind = "Unauthorized"
	KindNotFound     Kind = "NotFound"
	KindConflict     Kind = "Conflict"
	KindCanceled     Kind = "Canceled"
	KindInternal     Kind = "Internal"
)

// StatusClientClosedRequest is answered when a screen-bound call was canceled.
const StatusClientClosedRequest = 499

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and message, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(kind Kind, code int, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func Network(message string, err error) *Error {
	return New(KindNetwork, http.StatusBadGateway, message, err)
}

func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(KindConflict, http.StatusConflict, message, nil)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, http.StatusInternalServerError, message, err)
}

func Canceled(err error) *Error {
	return New(KindCanceled, StatusClientClosedRequest, "Request canceled", err)
}

// Common errors
var (
	ErrEmptyCart          = New(KindEmptyCart, http.StatusBadRequest, "Cart is empty. Add products before finishing the order.", nil)
	ErrOrderFailed        = New(KindNetwork, http.StatusBadGateway, "Could not finish the order. Please try again later.", nil)
	ErrCheckoutInProgress = Conflict("An order is already being submitted")
	ErrMissingFields      = Validation("Please fill in all fields.")
	ErrAlreadySignedIn    = Conflict("Already signed in")
	ErrNotSignedIn        = Unauthorized("Sign in to continue")
	ErrForbidden          = New(KindUnauthorized, http.StatusForbidden, "Admin access required", nil)
	ErrProductNotFound    = NotFound("Product not found")
	ErrOrderNotLoaded     = NotFound("Order not found")
)

// KindOf reports the Kind of err, classifying bare context errors as canceled.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindInternal
}

// From converts any error into an *Error.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if stderrors.Is(err, context.Canceled) {
		return Canceled(err)
	}
	return Internal("Internal error", err)
}

// ErrorMiddleware renders the last error attached with c.Error.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := From(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.Code, appErr)
	}
}
