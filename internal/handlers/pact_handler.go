package handlers

import (
	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"

	"github.com/gin-gonic/gin"
)

// PactHandler escrow pact endpoints
type PactHandler struct {
	pactService *services.PactService
}

// NewPactHandler creates a PactHandler
func NewPactHandler(pactService *services.PactService) *PactHandler {
	return &PactHandler{pactService: pactService}
}

// InitializePact POST /api/pacts
func (h *PactHandler) InitializePact(c *gin.Context) {
	creator, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.InitializePactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAmount, err)
		return
	}

	pact, err := h.pactService.InitializePact(c.Request.Context(), creator, services.InitializePactInput{
		CampaignSeed:    req.CampaignSeed,
		TargetAmount:    req.TargetAmount,
		Deadline:        req.Deadline,
		PayoutRecipient: req.PayoutRecipient,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondCreated(c, pact)
}

// Contribute POST /api/pacts/:address/contributions
func (h *PactHandler) Contribute(c *gin.Context) {
	contributor, ok := requireIdentity(c)
	if !ok {
		return
	}
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	var req types.ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidContribution, err)
		return
	}

	pact, err := h.pactService.JoinAndContribute(c.Request.Context(), contributor, address, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, pact)
}

// Settle POST /api/pacts/:address/settle
func (h *PactHandler) Settle(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	var req types.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return
	}

	pact, err := h.pactService.WithdrawOrSettle(c.Request.Context(), caller, address, req.Payout)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, pact)
}

// Refund POST /api/pacts/:address/refund
func (h *PactHandler) Refund(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}

	pact, err := h.pactService.Refund(c.Request.Context(), caller, address)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, pact)
}

// GetPact GET /api/pacts/:address
func (h *PactHandler) GetPact(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	pact, err := h.pactService.GetPact(ctx, address)
	if err != nil {
		respondWithError(c, err)
		return
	}
	balance, err := h.pactService.VaultBalance(ctx, address)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, gin.H{
		"pact":          pact,
		"vault_balance": balance,
	})
}

// ListContributions GET /api/pacts/:address/contributions
func (h *PactHandler) ListContributions(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	contributions, err := h.pactService.ListContributions(c.Request.Context(), address)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, contributions)
}

// ListByCreator GET /api/creators/:creator/pacts
func (h *PactHandler) ListByCreator(c *gin.Context) {
	creator, ok := addressParam(c, "creator")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	pacts, total, err := h.pactService.ListByCreator(c.Request.Context(), creator, page, pageSize)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondPage(c, pacts, total, page, pageSize)
}

// ListByContributor GET /api/contributors/:contributor/pacts
func (h *PactHandler) ListByContributor(c *gin.Context) {
	contributor, ok := addressParam(c, "contributor")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	pacts, total, err := h.pactService.ListByContributor(c.Request.Context(), contributor, page, pageSize)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondPage(c, pacts, total, page, pageSize)
}
