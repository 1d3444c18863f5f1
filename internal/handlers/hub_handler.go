package handlers

import (
	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"github.com/gin-gonic/gin"
)

// HubHandler hub configuration endpoints
type HubHandler struct {
	hubService *services.HubService
	params     services.HubParams
}

// NewHubHandler creates a HubHandler
func NewHubHandler(hubService *services.HubService, params services.HubParams) *HubHandler {
	return &HubHandler{hubService: hubService, params: params}
}

// InitializeHub POST /api/hub/initialize
func (h *HubHandler) InitializeHub(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.InitializeHubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return
	}

	hub, err := h.hubService.InitializeHub(c.Request.Context(), caller, req.BridgeFeeBps, req.Admin)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondCreated(c, hub)
}

// GetHub GET /api/hub
func (h *HubHandler) GetHub(c *gin.Context) {
	hub, err := h.hubService.GetHub(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, hub)
}

// SetPauseState POST /api/admin/hub/pause
func (h *HubHandler) SetPauseState(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.SetPauseStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAmount, err)
		return
	}

	hub, err := h.hubService.SetPauseState(c.Request.Context(), caller, *req.Paused)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, hub)
}

// CollectFees POST /api/admin/hub/fees/collect
func (h *HubHandler) CollectFees(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req types.CollectFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAmount, err)
		return
	}

	hub, err := h.hubService.CollectFees(c.Request.Context(), caller, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, hub)
}

// ListChains GET /api/chains
func (h *HubHandler) ListChains(c *gin.Context) {
	type chainInfo struct {
		utils.ChainInfo
		Native    bool `json:"native"`
		Supported bool `json:"supported"`
	}
	var chains []chainInfo
	for _, chain := range utils.GlobalChainRegistry.All() {
		chains = append(chains, chainInfo{
			ChainInfo: chain,
			Native:    chain.ChainID == h.params.NativeChainID,
			Supported: h.params.AcceptsTargetChain(chain.ChainID),
		})
	}
	respondOK(c, chains)
}

// DeriveAddress POST /api/derive
func (h *HubHandler) DeriveAddress(c *gin.Context) {
	var req types.DeriveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return
	}

	seeds, err := utils.SeedsForFamily(req.Family, utils.SeedParams{
		Owner:        req.Owner,
		TargetChain:  req.TargetChain,
		Amount:       req.Amount,
		BridgeHash:   req.BridgeHash,
		CampaignSeed: req.CampaignSeed,
	})
	if err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return
	}
	address, bump, err := utils.FindDerivedAddress(seeds, h.params.ProgramID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, gin.H{
		"family":  req.Family,
		"address": address,
		"bump":    bump,
	})
}
