package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prizmamta/metropole/internal/adapters/store/errstore"
	"github.com/prizmamta/metropole/internal/core/metropole"
	"go.uber.org/zap"
)

//	@Summary	Register user
//	@Schemes
//	@Description	creates an account and opens a session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			registration	body	tRegistration	true	"registration"
//	@Success		200	"account created, session cookie set"
//	@failure		400	"invalid username or password"
//	@failure		409	"username already taken"
//	@failure		500	"internal error"
//	@Router			/api/user/register [post]
func (s *Server) handlerRegister(c *gin.Context) {
	ctx := c.Request.Context()

	jBody := tRegistration{}
	if err := c.ShouldBindJSON(&jBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := s.service.Register(ctx, jBody.Username, jBody.Password)
	if err != nil {
		if errors.Is(err, errstore.ErrLoginNotUnique) {
			c.JSON(http.StatusConflict, gin.H{"error": "username_taken"})
			return
		}
		if errors.Is(err, metropole.ErrLoginNotValid) || errors.Is(err, metropole.ErrPasswordNotValid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		s.log.Error("failed register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	session, err := s.service.OpenSession(ctx, user.ID)
	if err != nil {
		s.log.Error("failed open session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	s.setSessionCookie(c, session.Token, session.ExpiresAt)

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"user": tUser{ID: user.ID, Username: user.Login},
	})
}

//	@Summary	Login user
//	@Schemes
//	@Description	checks credentials and opens a session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			auth	body	tAuthorization	true	"auth"
//	@Success		200	"session cookie set"
//	@failure		400	"invalid request format"
//	@failure		401	"wrong username/password pair"
//	@failure		500	"internal error"
//	@Router			/api/user/login [post]
func (s *Server) handlerLogin(c *gin.Context) {
	ctx := c.Request.Context()

	jBody := tAuthorization{}
	if err := c.ShouldBindJSON(&jBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := s.service.Authorization(ctx, jBody.Username, jBody.Password)
	if err != nil {
		if errors.Is(err, metropole.ErrLoginNotValid) || errors.Is(err, metropole.ErrPasswordNotValid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		if errors.Is(err, metropole.ErrPasswordNotEqual) || errors.Is(err, errstore.ErrNotFoundData) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		s.log.Error("authorization failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	session, err := s.service.OpenSession(ctx, user.ID)
	if err != nil {
		s.log.Error("failed open session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	s.setSessionCookie(c, session.Token, session.ExpiresAt)

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"user": tUser{ID: user.ID, Username: user.Login},
	})
}

//	@Summary	Logout
//	@Schemes
//	@Description	drops the session row and clears the cookie
//	@Tags			auth
//	@Produce		json
//	@Success		200	"always, even without a session"
//	@Router			/api/user/logout [post]
func (s *Server) handlerLogout(c *gin.Context) {
	ctx := c.Request.Context()

	if cookie, err := c.Request.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.service.CloseSession(ctx, cookie.Value); err != nil {
			s.log.Error("failed close session", zap.Error(err))
		}
	}
	s.clearSessionCookie(c)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

//	@Summary	User balance
//	@Schemes
//	@Description	current diamonds balance of the session user
//	@Tags			balance
//	@Produce		json
//	@Success		200	{object}	tBalance
//	@failure		401	"not authenticated"
//	@failure		500	"internal error"
//	@Router			/api/user/balance [get]
func (s *Server) handlerBalance(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	user, err := s.checkAuth(c)
	if err != nil {
		if errors.Is(err, metropole.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		s.log.Error("failed authenticate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, tBalance{Diamonds: user.Diamonds})
}

//	@Summary	Diamond packages
//	@Schemes
//	@Description	active catalog entries, the source of truth for prices
//	@Tags			packages
//	@Produce		json
//	@Success		200	{array}	tPackage
//	@failure		500	"internal error"
//	@Router			/api/packages [get]
func (s *Server) handlerPackages(c *gin.Context) {
	ctx := c.Request.Context()

	packages, err := s.service.ActivePackages(ctx)
	if err != nil {
		s.log.Error("failed get packages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	response := []tPackage{}
	for _, pkg := range packages {
		response = append(response, tPackage{
			ID:         pkg.ID,
			Name:       pkg.Name,
			Diamonds:   pkg.Diamonds,
			PriceCents: pkg.PriceCents,
		})
	}
	c.JSON(http.StatusOK, response)
}

//	@Summary	Create checkout
//	@Schemes
//	@Description	inserts a pending order and returns the gateway redirect URL
//	@Tags			payment
//	@Accept			json
//	@Produce		json
//	@Param			checkout	body		tCheckoutRequest	true	"checkout"
//	@Success		200			{object}	tCheckoutResponse
//	@failure		400			"unknown or inactive package"
//	@failure		401			"not authenticated"
//	@failure		500			"internal error"
//	@failure		502			"payment gateway rejected the request"
//	@Router			/api/pix/create [post]
func (s *Server) handlerCreateCheckout(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := s.checkAuth(c)
	if err != nil {
		if errors.Is(err, metropole.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		s.log.Error("failed authenticate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	jBody := tCheckoutRequest{}
	if err := c.ShouldBindJSON(&jBody); err != nil || jBody.PackageID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_package"})
		return
	}

	checkout, err := s.service.CreateCheckout(ctx, user.ID, jBody.PackageID)
	if err != nil {
		if errors.Is(err, metropole.ErrPackageNotAvailable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_package"})
			return
		}
		if errors.Is(err, metropole.ErrGateway) {
			s.log.Error("gateway rejected checkout", zap.Uint("userID", user.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway_error"})
			return
		}
		s.log.Error("failed create checkout", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, tCheckoutResponse{
		OK:          true,
		OrderID:     checkout.OrderID,
		CheckoutURL: checkout.CheckoutURL,
	})
}

//	@Summary	Game-server balance lookup
//	@Schemes
//	@Description	balance by game account, guarded by the shared secret header
//	@Tags			mta
//	@Accept			json
//	@Produce		json
//	@Param			account	body	tMTABalanceRequest	true	"account"
//	@Success		200	"ok, account, diamonds"
//	@failure		400	"missing account"
//	@failure		401	"bad shared secret"
//	@failure		404	"unknown account"
//	@Router			/api/mta/diamonds/balance [post]
func (s *Server) handlerMTABalance(c *gin.Context) {
	ctx := c.Request.Context()

	jBody := tMTABalanceRequest{}
	if err := c.ShouldBind(&jBody); err != nil || jBody.Account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_account"})
		return
	}

	user, err := s.service.GetBalanceByAccount(ctx, jBody.Account)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user_not_found"})
			return
		}
		s.log.Error("failed get balance by account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"account":  user.Login,
		"diamonds": user.Diamonds,
	})
}

//	@Summary	Game-server spend
//	@Schemes
//	@Description	decrements the balance with a compare-and-swap; on a lost race the caller retries
//	@Tags			mta
//	@Accept			json
//	@Produce		json
//	@Param			spend	body	tMTASpendRequest	true	"spend"
//	@Success		200	"ok, newBalance, spent"
//	@failure		400	"missing account or non-positive amount"
//	@failure		401	"bad shared secret"
//	@failure		404	"unknown account"
//	@failure		409	"insufficient funds or concurrent update"
//	@Router			/api/mta/diamonds/spend [post]
func (s *Server) handlerMTASpend(c *gin.Context) {
	ctx := c.Request.Context()

	jBody := tMTASpendRequest{}
	if err := c.ShouldBind(&jBody); err != nil || jBody.Account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_account"})
		return
	}
	reason := jBody.Reason
	if reason == "" {
		reason = "mta_spend"
	}

	user, err := s.service.SpendDiamonds(ctx, jBody.Account, jBody.Amount)
	if err != nil {
		if errors.Is(err, metropole.ErrAmountNotValid) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_amount"})
			return
		}
		if errors.Is(err, errstore.ErrNotFoundData) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user_not_found"})
			return
		}
		if errors.Is(err, errstore.ErrBalanceNotEnough) {
			c.JSON(http.StatusConflict, gin.H{
				"ok":     false,
				"error":  "insufficient_funds",
				"needed": jBody.Amount,
			})
			return
		}
		if errors.Is(err, errstore.ErrConcurrentUpdate) {
			// Expected race, the game server repeats the command.
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "concurrency_retry"})
			return
		}
		s.log.Error("failed spend diamonds", zap.String("account", jBody.Account), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"account":    user.Login,
		"newBalance": user.Diamonds,
		"spent":      jBody.Amount,
		"reason":     reason,
	})
}
