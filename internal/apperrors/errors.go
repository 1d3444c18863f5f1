package apperrors

import (
	"errors"
	"fmt"
)

// Error is a coded hub error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error carrying the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code of err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// KindOf extracts the kind of err.
func KindOf(err error) Kind {
	return CodeOf(err).Kind()
}

var (
	ErrInvalidFee                  = New(CodeInvalidFee, "invalid fee basis points, must be <= 1000 (10%)")
	ErrInvalidAmount               = New(CodeInvalidAmount, "invalid amount, must be > 0")
	ErrInvalidChain                = New(CodeInvalidChain, "invalid target/source chain id")
	ErrHubPaused                   = New(CodeHubPaused, "hub is currently paused")
	ErrHubNotInitialized           = New(CodeHubNotInitialized, "hub is not initialized")
	ErrHubAlreadyInitialized       = New(CodeHubAlreadyInitialized, "hub is already initialized")
	ErrUnauthorizedAdmin           = New(CodeUnauthorizedAdmin, "unauthorized admin access")
	ErrInsufficientHubBalance      = New(CodeInsufficientHubFees, "insufficient accrued hub fees")
	ErrBridgeAmountTooSmall        = New(CodeBridgeAmountTooSmall, "bridge amount too small")
	ErrBridgeAmountTooLarge        = New(CodeBridgeAmountTooLarge, "bridge amount exceeds maximum")
	ErrBridgeRequestExists         = New(CodeBridgeRequestExists, "bridge request already exists at this address")
	ErrBridgeRequestNotFound       = New(CodeBridgeRequestNotFound, "bridge request not found")
	ErrBridgeAlreadyCompleted      = New(CodeBridgeAlreadyCompleted, "bridge already completed")
	ErrBridgeCompletionNotFound    = New(CodeBridgeCompletionMissing, "bridge completion not found")
	ErrInvalidAttestation          = New(CodeInvalidAttestation, "invalid cross-chain attestation")
	ErrInvalidStatusTransition     = New(CodeInvalidStatusTransition, "invalid status transition")
	ErrPortfolioExists             = New(CodePortfolioExists, "portfolio already exists")
	ErrPortfolioNotFound           = New(CodePortfolioNotFound, "portfolio not found")
	ErrUnauthorizedPortfolioAccess = New(CodeUnauthorizedPortfolioAccess, "unauthorized portfolio access")
	ErrInvalidDeadline             = New(CodeInvalidDeadline, "deadline must be in the future")
	ErrPactExists                  = New(CodePactExists, "pact already exists")
	ErrPactNotFound                = New(CodePactNotFound, "pact not found")
	ErrPactClosed                  = New(CodePactClosed, "pact is closed")
	ErrPactNotReady                = New(CodePactNotReady, "pact is not ready")
	ErrInvalidContribution         = New(CodeInvalidContribution, "invalid contribution, must be > 0")
	ErrPayoutRecipientMismatch     = New(CodePayoutRecipientMismatch, "payout recipient does not match pact")
	ErrInsufficientFunds           = New(CodeInsufficientFunds, "insufficient funds")
	ErrVaultClosed                 = New(CodeVaultClosed, "vault is closed")
	ErrVaultMismatch               = New(CodeVaultMismatch, "vault handle does not match derived address")
	ErrCreditExists                = New(CodeCreditExists, "credit reference already applied")
	ErrAccountNotFound             = New(CodeAccountNotFound, "ledger account not found")
	ErrUnauthenticated             = New(CodeUnauthenticated, "caller identity required")
	ErrInvalidAddress              = New(CodeInvalidAddress, "invalid address")
	ErrArithmeticOverflow          = New(CodeArithmeticOverflow, "arithmetic overflow")
)
