package handlers

import (
	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler per-owner balance summaries
type PortfolioHandler struct {
	portfolioService *services.PortfolioService
}

// NewPortfolioHandler creates a PortfolioHandler
func NewPortfolioHandler(portfolioService *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// CreatePortfolio POST /api/portfolios
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	owner, ok := requireIdentity(c)
	if !ok {
		return
	}
	portfolio, err := h.portfolioService.CreatePortfolio(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondCreated(c, portfolio)
}

// UpdatePortfolio PUT /api/portfolios/:owner
func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	var req types.UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAmount, err)
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(c.Request.Context(), caller, owner, services.PortfolioBalances{
		Native:   req.NativeBalance,
		Ethereum: req.EthereumBalance,
		Polygon:  req.PolygonBalance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, portfolio)
}

// GetPortfolio GET /api/portfolios/:owner
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	portfolio, err := h.portfolioService.GetPortfolio(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, portfolio)
}
