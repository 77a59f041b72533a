package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prizmamta/metropole/internal/core/metropole"
	"go.uber.org/zap"
)

//	@Summary	Issue verification code
//	@Schemes
//	@Description	the game server registers a code shown to the player in-game; the TTL is clamped server-side
//	@Tags			verify
//	@Accept			json
//	@Produce		json
//	@Param			issue	body	tVerifyIssueRequest	true	"issue"
//	@Success		200	"ok, ttlSeconds"
//	@failure		400	"missing code"
//	@failure		401	"bad shared secret"
//	@Router			/api/mta/verify [post]
func (s *Server) handlerVerifyIssue(c *gin.Context) {
	ctx := c.Request.Context()

	jBody := tVerifyIssueRequest{}
	if err := c.ShouldBind(&jBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_code"})
		return
	}

	ttl, err := s.service.IssueVerificationCode(ctx, jBody.Code, jBody.Serial, jBody.Account,
		time.Duration(jBody.TTLSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, metropole.ErrCodeNotValid) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_code"})
			return
		}
		s.log.Error("failed issue verification code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "ttlSeconds": int64(ttl / time.Second)})
}

//	@Summary	Confirm verification code
//	@Schemes
//	@Description	the player confirms the code shown in-game; an expired or unknown code is 404
//	@Tags			verify
//	@Accept			json
//	@Produce		json
//	@Param			verify	body	tVerifyRequest	true	"verify"
//	@Success		200	"ok, verified"
//	@failure		400	"missing code"
//	@failure		404	"code not found or expired"
//	@Router			/api/verify [post]
func (s *Server) handlerVerifyConfirm(c *gin.Context) {
	ctx := c.Request.Context()

	jBody := tVerifyRequest{}
	if err := c.ShouldBindJSON(&jBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_code"})
		return
	}

	if err := s.service.ConfirmVerificationCode(ctx, jBody.Code); err != nil {
		if errors.Is(err, metropole.ErrCodeNotValid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_code"})
			return
		}
		if errors.Is(err, metropole.ErrCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found_or_expired"})
			return
		}
		s.log.Error("failed confirm verification code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "verified": true})
}

//	@Summary	Verification status
//	@Schemes
//	@Description	poll endpoint for the game server; unknown and expired codes read as unverified
//	@Tags			verify
//	@Produce		json
//	@Param			code	query	string	true	"code"
//	@Success		200	"verified flag"
//	@failure		400	"missing code"
//	@Router			/api/status [get]
func (s *Server) handlerVerifyStatus(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_code"})
		return
	}

	verified, err := s.service.VerificationStatus(ctx, code)
	if err != nil {
		s.log.Error("failed get verification status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"verified": verified})
}

//	@Summary	Trusted serial lookup
//	@Schemes
//	@Description	whether a game-client serial is on the trusted list
//	@Tags			verify
//	@Produce		json
//	@Param			serial	query	string	true	"serial"
//	@Success		200	"trusted flag"
//	@failure		400	"missing serial"
//	@Router			/api/trusted [get]
func (s *Server) handlerTrustedSerial(c *gin.Context) {
	ctx := c.Request.Context()

	serial := c.Query("serial")
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_serial"})
		return
	}

	trusted, err := s.service.TrustedSerial(ctx, serial)
	if err != nil {
		s.log.Error("failed check trusted serial", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trusted": trusted})
}
