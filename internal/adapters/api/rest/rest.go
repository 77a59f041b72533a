package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/prizmamta/metropole/docs"
	"github.com/prizmamta/metropole/internal/adapters/store/model"
	"github.com/prizmamta/metropole/internal/core/metropole"
)

var sessionCookieName = "session_token"

type metropoleI interface {
	Register(ctx context.Context, login, password string) (model.User, error)
	Authorization(ctx context.Context, login, password string) (model.User, error)
	OpenSession(ctx context.Context, userID uint) (model.Session, error)
	CloseSession(ctx context.Context, token string) error
	AuthenticateSession(ctx context.Context, token string) (model.User, error)
	ActivePackages(ctx context.Context) ([]*model.DiamondPackage, error)
	GetBalanceByAccount(ctx context.Context, account string) (model.User, error)
	CreateCheckout(ctx context.Context, userID, packageID uint) (metropole.Checkout, error)
	ProcessNotification(ctx context.Context, paymentID string) (metropole.NotificationResult, error)
	SpendDiamonds(ctx context.Context, account string, amount int64) (model.User, error)
	IssueVerificationCode(ctx context.Context, code, serial, account string, ttl time.Duration) (time.Duration, error)
	ConfirmVerificationCode(ctx context.Context, code string) error
	VerificationStatus(ctx context.Context, code string) (bool, error)
	TrustedSerial(ctx context.Context, serial string) (bool, error)
}

type Server struct {
	log          *zap.Logger
	engine       *gin.Engine
	service      metropoleI
	address      string
	mtaSecret    string
	cookieSecure bool
}

type Option func(*Server)

func Logger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func Configure(cfg *Config) Option {
	return func(s *Server) {
		s.address = cfg.Address
		s.mtaSecret = cfg.MTASecret
		s.cookieSecure = cfg.CookieSecure
	}
}

//	@title			Metropole diamonds API
//	@version		1.0
//	@description	Game-server companion backend: accounts, diamond balance and paid top-ups.
//	@host			localhost:8080
//	@BasePath		/

func New(service metropoleI, options ...Option) (*Server, error) {
	s := &Server{
		log:     zap.NewNop(),
		service: service,
	}

	s.engine = gin.New()
	s.engine.Use(
		s.Logger(),
		s.GzipDecompress(),
	)
	api := s.engine.Group("/api")
	api.Use(s.GzipCompress())
	{
		apiUser := api.Group("/user")
		{
			apiUser.POST("/register", s.handlerRegister)
			apiUser.POST("/login", s.handlerLogin)
			apiUser.POST("/logout", s.handlerLogout)
			apiUser.GET("/balance", s.handlerBalance)
		}

		api.GET("/packages", s.handlerPackages)

		api.POST("/verify", s.handlerVerifyConfirm)
		api.GET("/status", s.handlerVerifyStatus)
		api.GET("/trusted", s.handlerTrustedSerial)

		apiPix := api.Group("/pix")
		{
			apiPix.POST("/create", s.handlerCreateCheckout)
			apiPix.GET("/webhook", s.handlerWebhookHealth)
			apiPix.POST("/webhook", s.handlerWebhook)
		}

		apiMTA := api.Group("/mta")
		apiMTA.Use(s.MTAAuthentication())
		{
			apiMTA.POST("/diamonds/balance", s.handlerMTABalance)
			apiMTA.POST("/diamonds/spend", s.handlerMTASpend)
			apiMTA.POST("/verify", s.handlerVerifyIssue)
		}
	}
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run() error {
	if err := s.engine.Run(s.address); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	return nil
}

func (s *Server) checkAuth(c *gin.Context) (model.User, error) {
	var user model.User
	cookie, err := c.Request.Cookie(sessionCookieName)
	if err != nil {
		return user, fmt.Errorf("failed read session cookie: %w", metropole.ErrUnauthenticated)
	}

	user, err = s.service.AuthenticateSession(c.Request.Context(), cookie.Value)
	if err != nil {
		return user, fmt.Errorf("failed authenticate session: %w", err)
	}

	return user, nil
}

func (s *Server) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(c.Writer, cookie)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(c.Writer, cookie)
}
