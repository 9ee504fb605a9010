package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL is used when the config leaves access_token_ttl at zero.
const defaultTokenTTL = 15 // minutes

// tokenIssuer is the iss claim of every token the server signs.
const tokenIssuer = "codeshelf"

// tokenRequest is the request body for POST /auth/token.
type tokenRequest struct {
	APIKey string `json:"api_key"`
}

// tokenResponse is the response body for POST /auth/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleToken exchanges a configured API key for a short-lived HS256
// bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.cfg.JWT.Secret == "" {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "token issuing is not configured")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !s.validAPIKey(req.APIKey) {
		writeUnauthorized(w, "invalid api key")
		return
	}

	ttl := s.cfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   keyFingerprint(req.APIKey),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttl) * time.Minute)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		writeInternalError(w, "failed to generate token")
		return
	}

	s.logger.Info("api token issued", "subject", claims.Subject, "ttl_minutes", ttl)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60, // seconds
	})
}

// parseToken validates a bearer token and returns its subject.
func (s *Server) parseToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWT.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// validAPIKey compares key against every configured key in constant time.
func (s *Server) validAPIKey(key string) bool {
	if key == "" {
		return false
	}
	match := 0
	for _, k := range s.cfg.APIKeys {
		match |= subtle.ConstantTimeCompare([]byte(k), []byte(key))
	}
	return match == 1
}

// keyFingerprintBytes is how much of the key hash names a token subject.
const keyFingerprintBytes = 6

// keyFingerprint names an API key in tokens and logs without revealing it.
func keyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "key:" + hex.EncodeToString(sum[:keyFingerprintBytes])
}
