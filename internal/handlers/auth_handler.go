package handlers

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/config"
	"crosschain-hub/internal/dto"
	"crosschain-hub/internal/types"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const nonceTTL = 5 * time.Minute

type pendingNonce struct {
	identity  types.Address
	expiresAt time.Time
}

// AuthHandler issues caller tokens to identities that sign a server challenge
type AuthHandler struct {
	secret []byte
	issuer string
	ttl    time.Duration

	mu      sync.Mutex
	pending map[string]pendingNonce // keyed by challenge message
	nowFn   func() time.Time
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(cfg config.JWTConfig) *AuthHandler {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthHandler{
		secret:  []byte(cfg.Secret),
		issuer:  cfg.Issuer,
		ttl:     ttl,
		pending: make(map[string]pendingNonce),
		nowFn:   time.Now,
	}
}

// GenerateNonceHandler issues a one-time challenge
// GET /api/auth/nonce?identity=0x...
func (h *AuthHandler) GenerateNonceHandler(c *gin.Context) {
	identity, err := types.ParseAddress(c.Query("identity"))
	if err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "failed to generate nonce",
		})
		return
	}

	now := h.nowFn()
	nonceStr := hex.EncodeToString(nonce)
	message := fmt.Sprintf("Crosschain Hub Authentication\nIdentity: %s\nNonce: %s\nTimestamp: %d", identity.Hex(), nonceStr, now.Unix())
	expiresAt := now.Add(nonceTTL)

	h.mu.Lock()
	for msg, p := range h.pending {
		if now.After(p.expiresAt) {
			delete(h.pending, msg)
		}
	}
	h.pending[message] = pendingNonce{identity: identity, expiresAt: expiresAt}
	h.mu.Unlock()

	c.JSON(http.StatusOK, dto.NonceResponse{
		Success:   true,
		Nonce:     nonceStr,
		Message:   message,
		Timestamp: now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
}

// LoginHandler exchanges a signed challenge for a token
// POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.AuthResponse{
			Success: false,
			Message: fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	identity, err := types.ParseAddress(req.Identity)
	if err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return
	}
	signature, err := hexutil.Decode(req.Signature)
	if err != nil || len(signature) != ed25519.SignatureSize {
		c.JSON(http.StatusUnauthorized, dto.AuthResponse{Success: false, Message: "malformed signature"})
		return
	}

	if !h.consumeChallenge(req.Message, identity) {
		c.JSON(http.StatusUnauthorized, dto.AuthResponse{Success: false, Message: "unknown or expired challenge"})
		return
	}
	if !ed25519.Verify(ed25519.PublicKey(identity.Bytes()), []byte(req.Message), signature) {
		log.Printf("⚠️ Login signature rejected for %s", identity.Hex())
		c.JSON(http.StatusUnauthorized, dto.AuthResponse{Success: false, Message: "signature verification failed"})
		return
	}

	token, expiresAt, err := GenerateJWTToken(h.secret, h.issuer, identity, h.ttl)
	if err != nil {
		log.Printf("❌ Failed to sign JWT: %v", err)
		c.JSON(http.StatusInternalServerError, dto.AuthResponse{Success: false, Message: "failed to issue token"})
		return
	}

	log.Printf("✅ Identity authenticated: %s", identity.Hex())
	c.JSON(http.StatusOK, dto.AuthResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Message:   "authenticated",
	})
}

// consumeChallenge removes the challenge; it is valid once, for its identity, before expiry
func (h *AuthHandler) consumeChallenge(message string, identity types.Address) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pending[message]
	if !ok {
		return false
	}
	delete(h.pending, message)
	return p.identity == identity && !h.nowFn().After(p.expiresAt)
}

// GenerateJWTToken signs an HS256 token for identity
func GenerateJWTToken(secret []byte, issuer string, identity types.Address, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := dto.JWTClaims{
		Identity: identity.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   identity.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateJWTToken verifies tokenString and returns its claims
func ValidateJWTToken(tokenString string, secret []byte) (*dto.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*dto.JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
