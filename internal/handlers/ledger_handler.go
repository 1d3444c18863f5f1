package handlers

import (
	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"

	"github.com/gin-gonic/gin"
)

// LedgerHandler account balances and admin credits
type LedgerHandler struct {
	ledgerService *services.LedgerService
	hubService    *services.HubService
}

// NewLedgerHandler creates a LedgerHandler
func NewLedgerHandler(ledgerService *services.LedgerService, hubService *services.HubService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, hubService: hubService}
}

// GetAccount GET /api/ledger/accounts/:address
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	account, err := h.ledgerService.GetAccount(c.Request.Context(), address)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, account)
}

// Credit POST /api/admin/ledger/credits
func (h *LedgerHandler) Credit(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	isAdmin, err := h.hubService.IsAdmin(c.Request.Context(), caller)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !isAdmin {
		respondWithError(c, apperrors.ErrUnauthorizedAdmin)
		return
	}

	var req types.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAmount, err)
		return
	}

	balance, err := h.ledgerService.Credit(c.Request.Context(), req.Reference, req.Address, req.Amount, "admin")
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondCreated(c, gin.H{
		"reference": req.Reference,
		"address":   req.Address,
		"balance":   balance,
	})
}
