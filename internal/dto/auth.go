package dto

import "github.com/golang-jwt/jwt/v5"

// ==================== Auth DTOs ====================

// NonceResponse login challenge issued to an identity
type NonceResponse struct {
	Success   bool   `json:"success"`
	Nonce     string `json:"nonce"`
	Message   string `json:"message"` // sign this exact text
	Timestamp int64  `json:"timestamp"`
	ExpiresAt int64  `json:"expires_at"`
}

// LoginRequest signed challenge
type LoginRequest struct {
	Identity  string `json:"identity" binding:"required"`  // 32-byte ed25519 public key, 0x hex
	Message   string `json:"message" binding:"required"`   // message returned by the nonce endpoint
	Signature string `json:"signature" binding:"required"` // 64-byte ed25519 signature, 0x hex
}

// AuthResponse Authentication response structure
type AuthResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Message   string `json:"message"`
}

// JWTClaims JWT Claims structure
type JWTClaims struct {
	Identity string `json:"identity"` // hub address of the caller
	jwt.RegisteredClaims
}
