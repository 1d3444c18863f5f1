// Package apperrors provides the discriminated error kinds returned by hub operations.
package apperrors

import "net/http"

// Code is a machine-readable error code.
type Code string

// Kind groups codes by how the caller should react.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindState         Kind = "state"
	KindNotFound      Kind = "not_found"
	KindArithmetic    Kind = "arithmetic"
	KindInternal      Kind = "internal"
)

const (
	CodeUnknown Code = "UNKNOWN"

	// Hub errors
	CodeInvalidFee            Code = "INVALID_FEE"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeInvalidChain          Code = "INVALID_CHAIN"
	CodeHubPaused             Code = "HUB_PAUSED"
	CodeHubNotInitialized     Code = "HUB_NOT_INITIALIZED"
	CodeHubAlreadyInitialized Code = "HUB_ALREADY_INITIALIZED"
	CodeUnauthorizedAdmin     Code = "UNAUTHORIZED_ADMIN"
	CodeInsufficientHubFees   Code = "INSUFFICIENT_HUB_BALANCE"

	// Bridge errors
	CodeBridgeAmountTooSmall    Code = "BRIDGE_AMOUNT_TOO_SMALL"
	CodeBridgeAmountTooLarge    Code = "BRIDGE_AMOUNT_TOO_LARGE"
	CodeBridgeRequestExists     Code = "BRIDGE_REQUEST_EXISTS"
	CodeBridgeRequestNotFound   Code = "BRIDGE_REQUEST_NOT_FOUND"
	CodeBridgeAlreadyCompleted  Code = "BRIDGE_ALREADY_COMPLETED"
	CodeBridgeCompletionMissing Code = "BRIDGE_COMPLETION_NOT_FOUND"
	CodeInvalidAttestation      Code = "INVALID_ATTESTATION"
	CodeInvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"

	// Portfolio errors
	CodePortfolioExists             Code = "PORTFOLIO_EXISTS"
	CodePortfolioNotFound           Code = "PORTFOLIO_NOT_FOUND"
	CodeUnauthorizedPortfolioAccess Code = "UNAUTHORIZED_PORTFOLIO_ACCESS"

	// Pact errors
	CodeInvalidDeadline         Code = "INVALID_DEADLINE"
	CodePactExists              Code = "PACT_EXISTS"
	CodePactNotFound            Code = "PACT_NOT_FOUND"
	CodePactClosed              Code = "PACT_CLOSED"
	CodePactNotReady            Code = "PACT_NOT_READY"
	CodeInvalidContribution     Code = "INVALID_CONTRIBUTION"
	CodePayoutRecipientMismatch Code = "PAYOUT_RECIPIENT_MISMATCH"

	// Ledger errors
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeVaultClosed       Code = "VAULT_CLOSED"
	CodeVaultMismatch     Code = "VAULT_MISMATCH"
	CodeCreditExists      Code = "CREDIT_EXISTS"
	CodeAccountNotFound   Code = "ACCOUNT_NOT_FOUND"

	// Caller errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeInvalidAddress  Code = "INVALID_ADDRESS"

	CodeArithmeticOverflow Code = "ARITHMETIC_OVERFLOW"
)

// Kind classifies the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidFee,
		CodeInvalidAmount,
		CodeInvalidChain,
		CodeBridgeAmountTooSmall,
		CodeBridgeAmountTooLarge,
		CodeInvalidAttestation,
		CodeInvalidDeadline,
		CodeInvalidContribution,
		CodeInvalidAddress:
		return KindValidation

	case CodeUnauthorizedAdmin,
		CodeUnauthorizedPortfolioAccess,
		CodePayoutRecipientMismatch,
		CodeUnauthenticated:
		return KindAuthorization

	case CodeHubPaused,
		CodeHubAlreadyInitialized,
		CodeInsufficientHubFees,
		CodeBridgeRequestExists,
		CodeBridgeAlreadyCompleted,
		CodeInvalidStatusTransition,
		CodePortfolioExists,
		CodePactExists,
		CodePactClosed,
		CodePactNotReady,
		CodeInsufficientFunds,
		CodeVaultClosed,
		CodeCreditExists:
		return KindState

	case CodeHubNotInitialized,
		CodeBridgeRequestNotFound,
		CodeBridgeCompletionMissing,
		CodePortfolioNotFound,
		CodePactNotFound,
		CodeAccountNotFound:
		return KindNotFound

	case CodeArithmeticOverflow:
		return KindArithmetic

	default:
		return KindInternal
	}
}

// HTTPStatus maps the code's kind to a response status.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		if c == CodeUnauthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case KindState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
