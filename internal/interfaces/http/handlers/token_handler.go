package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quarkgate/apikit/internal/infrastructure/crypto"
	"github.com/quarkgate/apikit/pkg/constants"
	"github.com/quarkgate/apikit/pkg/errors"
	"github.com/quarkgate/apikit/pkg/logger"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenClaims is the claim set embedded in every issued token.
type TokenClaims struct {
	jwt.RegisteredClaims
	Scope     string `json:"scope,omitempty"`
	TokenType string `json:"token_type"`
}

// TokenHandler exposes the token issuing, refresh and introspection
// endpoints backed by the crypto engine.
type TokenHandler struct {
	engine *crypto.Engine
	issuer string
	log    logger.Logger
}

// NewTokenHandler creates the token endpoints handler.
func NewTokenHandler(engine *crypto.Engine, issuer string, log logger.Logger) *TokenHandler {
	return &TokenHandler{
		engine: engine,
		issuer: issuer,
		log:    log.WithComponent("token_handler"),
	}
}

type issueRequest struct {
	Subject string `json:"subject" binding:"required"`
	Scope   string `json:"scope"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Issue signs a fresh access and refresh token pair for the given subject.
func (h *TokenHandler) Issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.UnprocessableEntity(err.Error()))
		return
	}

	h.respondTokenPair(c, req.Subject, req.Scope)
}

// Refresh exchanges a valid refresh token for a new token pair. An expired
// refresh token is reported as such, distinct from a malformed one.
func (h *TokenHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.UnprocessableEntity(err.Error()))
		return
	}

	claims := &TokenClaims{}
	if appErr := h.parseToken(req.RefreshToken, claims); appErr != nil {
		respondError(c, appErr)
		return
	}
	if claims.TokenType != tokenTypeRefresh {
		respondError(c, errors.Unauthorized("Not a refresh token"))
		return
	}

	h.respondTokenPair(c, claims.Subject, claims.Scope)
}

// Introspect validates the bearer token on the request and reports its
// claims.
func (h *TokenHandler) Introspect(c *gin.Context) {
	token, ok := crypto.ExtractFromHeaders(c.Request.Header)
	if !ok {
		c.Header(constants.HeaderWWWAuthenticate, constants.BearerScheme)
		respondError(c, errors.Unauthorized("Missing bearer token"))
		return
	}

	claims := &TokenClaims{}
	if appErr := h.parseToken(token.Token, claims); appErr != nil {
		respondError(c, appErr)
		return
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	c.JSON(http.StatusOK, gin.H{
		"active":     true,
		"subject":    claims.Subject,
		"scope":      claims.Scope,
		"token_type": claims.TokenType,
		"expires_at": expiresAt,
	})
}

func (h *TokenHandler) respondTokenPair(c *gin.Context, subject, scope string) {
	now := time.Now()
	accessExpiry := now.Add(h.engine.AccessLifetime())
	refreshExpiry := now.Add(h.engine.RefreshLifetime())

	access, err := h.engine.Generate(h.newClaims(subject, scope, tokenTypeAccess, now, accessExpiry), accessExpiry)
	if err != nil {
		h.log.Error(c.Request.Context(), "access token generation failed", err)
		respondError(c, errors.InternalServerError("Token generation failed"))
		return
	}

	refresh, err := h.engine.Generate(h.newClaims(subject, scope, tokenTypeRefresh, now, refreshExpiry), refreshExpiry)
	if err != nil {
		h.log.Error(c.Request.Context(), "refresh token generation failed", err)
		respondError(c, errors.InternalServerError("Token generation failed"))
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    constants.BearerScheme,
		ExpiresAt:    access.ExpiredAt,
	})
}

func (h *TokenHandler) newClaims(subject, scope, tokenType string, now, expiresAt time.Time) *TokenClaims {
	return &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    h.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scope:     scope,
		TokenType: tokenType,
	}
}

// parseToken maps engine failures onto the API error space: expiry and
// malformed tokens both end in 401 but with distinct messages.
func (h *TokenHandler) parseToken(token string, claims *TokenClaims) *errors.AppError {
	err := h.engine.Parse(token, claims)
	switch {
	case err == nil:
		return nil
	case err == crypto.ErrExpiredToken:
		return errors.Unauthorized("Expired token")
	default:
		return errors.Unauthorized("Invalid token")
	}
}

func respondError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.Status, appErr.Envelope(c.Request.Context()))
}
