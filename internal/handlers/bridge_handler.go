package handlers

import (
	"fmt"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"github.com/gin-gonic/gin"
)

// BridgeHandler outbound requests and inbound completions
type BridgeHandler struct {
	bridgeService *services.BridgeService
}

// NewBridgeHandler creates a BridgeHandler
func NewBridgeHandler(bridgeService *services.BridgeService) *BridgeHandler {
	return &BridgeHandler{bridgeService: bridgeService}
}

// BridgeAssets POST /api/bridge/requests
func (h *BridgeHandler) BridgeAssets(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.BridgeAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAmount, err)
		return
	}
	recipient, err := utils.NormalizeRecipient(req.TargetChain, req.Recipient)
	if err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return
	}

	request, err := h.bridgeService.BridgeAssets(c.Request.Context(), caller, services.BridgeAssetsInput{
		TargetChain: req.TargetChain,
		Amount:      req.Amount,
		Recipient:   recipient,
		Asset:       req.Asset,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondCreated(c, request)
}

// CompleteBridge POST /api/bridge/completions
func (h *BridgeHandler) CompleteBridge(c *gin.Context) {
	payer, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.CompleteBridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAttestation, err)
		return
	}

	completion, err := h.bridgeService.CompleteBridge(c.Request.Context(), payer, services.CompleteBridgeInput{
		SourceChain: req.SourceChain,
		Amount:      req.Amount,
		BridgeHash:  req.BridgeHash,
		Recipient:   req.Recipient,
		Asset:       req.Asset,
		Proof:       req.Proof,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondCreated(c, completion)
}

// RecordOutcome POST /api/admin/bridge/requests/:address/outcome
func (h *BridgeHandler) RecordOutcome(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	var req types.RecordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidStatusTransition, err)
		return
	}
	status := models.BridgeStatus(req.Status)
	if !status.IsValid() {
		respondBadRequest(c, apperrors.CodeInvalidStatusTransition, fmt.Errorf("unknown status %q", req.Status))
		return
	}

	request, err := h.bridgeService.RecordBridgeOutcome(c.Request.Context(), caller, address, status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, request)
}

// GetRequest GET /api/bridge/requests/:address
func (h *BridgeHandler) GetRequest(c *gin.Context) {
	address, ok := addressParam(c, "address")
	if !ok {
		return
	}
	request, err := h.bridgeService.GetRequest(c.Request.Context(), address)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, request)
}

// ListRequestsByUser GET /api/bridge/users/:user/requests
func (h *BridgeHandler) ListRequestsByUser(c *gin.Context) {
	user, ok := addressParam(c, "user")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	requests, total, err := h.bridgeService.ListRequestsByUser(c.Request.Context(), user, page, pageSize)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondPage(c, requests, total, page, pageSize)
}

// GetCompletion GET /api/bridge/completions/:hash
func (h *BridgeHandler) GetCompletion(c *gin.Context) {
	hash, ok := addressParam(c, "hash")
	if !ok {
		return
	}
	completion, err := h.bridgeService.GetCompletionByHash(c.Request.Context(), hash)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, completion)
}

// ListCompletionsByRecipient GET /api/bridge/recipients/:recipient/completions
func (h *BridgeHandler) ListCompletionsByRecipient(c *gin.Context) {
	recipient, ok := addressParam(c, "recipient")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	completions, total, err := h.bridgeService.ListCompletionsByRecipient(c.Request.Context(), recipient, page, pageSize)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondPage(c, completions, total, page, pageSize)
}
