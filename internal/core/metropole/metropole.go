// Package metropole holds the business rules of the diamonds shop: user
// accounts, cookie sessions, the checkout flow against the payment gateway
// and the webhook reconciliation that credits balances exactly once.
package metropole

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prizmamta/metropole/internal/adapters/gateway/mercadopago"
	"github.com/prizmamta/metropole/internal/adapters/store/errstore"
	"github.com/prizmamta/metropole/internal/adapters/store/model"
	"go.uber.org/zap"
)

type Store interface {
	RegisterUser(ctx context.Context, login, hashPassword string) (model.User, error)
	GetUserByLogin(ctx context.Context, login string) (model.User, error)
	GetUserByID(ctx context.Context, userID uint) (model.User, error)
	CreateSession(ctx context.Context, userID uint, token string, expiresAt time.Time) error
	GetSession(ctx context.Context, token string) (model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID uint) error
	GetPackage(ctx context.Context, packageID uint) (model.DiamondPackage, error)
	GetActivePackages(ctx context.Context) ([]*model.DiamondPackage, error)
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	SetOrderPreference(ctx context.Context, orderID, preferenceID string) error
	MarkOrderError(ctx context.Context, orderID string) error
	MarkOrderPaid(ctx context.Context, orderID, gatewayID string) error
	DeliverOrder(ctx context.Context, orderID, gatewayID string) (bool, error)
	CreditUserDiamonds(ctx context.Context, userID uint, amount int64) error
	SpendUserDiamonds(ctx context.Context, login string, amount int64) (model.User, error)
	PutVerificationCode(ctx context.Context, code, serial, account string, ttl time.Duration) error
	GetVerificationCode(ctx context.Context, code string) (model.VerificationCode, error)
	ConfirmVerificationCode(ctx context.Context, code string) (bool, error)
	IsTrustedSerial(ctx context.Context, serial string) (bool, error)
}

type PaymentGateway interface {
	CreatePreference(ctx context.Context, pref mercadopago.PreferenceRequest) (mercadopago.Preference, error)
	GetPayment(ctx context.Context, paymentID string) (mercadopago.Payment, error)
}

type Config struct {
	AppURL     string        `env:"APP_URL" envDefault:"http://localhost:8080"`
	CurrencyID string        `env:"CURRENCY_ID" envDefault:"BRL"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`
}

type Metropole struct {
	log     *zap.Logger
	cfg     *Config
	store   Store
	gateway PaymentGateway
}

type option func(*Metropole)

func Logger(log *zap.Logger) option {
	return func(m *Metropole) {
		if log != nil {
			m.log = log
		}
	}
}

func New(cfg *Config, store Store, gateway PaymentGateway, options ...option) *Metropole {
	m := &Metropole{
		log:     zap.NewNop(),
		cfg:     cfg,
		store:   store,
		gateway: gateway,
	}

	for _, opt := range options {
		opt(m)
	}

	return m
}

func (m *Metropole) Register(ctx context.Context, login, password string) (model.User, error) {
	var user model.User
	if err := validateLogin(login); err != nil {
		return user, fmt.Errorf("login invalidate: %w", err)
	}
	if err := validatePassword(password); err != nil {
		return user, fmt.Errorf("password invalidate: %w", err)
	}

	hashPass, err := HashPassword(password)
	if err != nil {
		return user, fmt.Errorf("failed hash password: %w", err)
	}

	user, err = m.store.RegisterUser(ctx, login, hashPass)
	if err != nil {
		return user, fmt.Errorf("failed register user: %w", err)
	}

	return user, nil
}

func (m *Metropole) Authorization(ctx context.Context, login, password string) (model.User, error) {
	var user model.User
	if err := validateLogin(login); err != nil {
		return user, fmt.Errorf("login invalidate: %w", err)
	}
	if err := validatePassword(password); err != nil {
		return user, fmt.Errorf("password invalidate: %w", err)
	}

	user, err := m.store.GetUserByLogin(ctx, login)
	if err != nil {
		return user, fmt.Errorf("failed getting user `%s`: %w", login, err)
	}

	if ok := checkPasswordHash(password, user.PasswordHash); !ok {
		return user, ErrPasswordNotEqual
	}

	return user, nil
}

// OpenSession replaces any previous session of the user with a fresh
// random token. The token is the only credential the browser holds.
func (m *Metropole) OpenSession(ctx context.Context, userID uint) (model.Session, error) {
	session := model.Session{
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.cfg.SessionTTL),
	}

	token, err := generateSessionToken()
	if err != nil {
		return session, fmt.Errorf("failed generate session token: %w", err)
	}
	session.Token = token

	if err := m.store.DeleteUserSessions(ctx, userID); err != nil {
		return session, fmt.Errorf("failed delete previous sessions: %w", err)
	}

	if err := m.store.CreateSession(ctx, userID, session.Token, session.ExpiresAt); err != nil {
		return session, fmt.Errorf("failed create session: %w", err)
	}

	return session, nil
}

func (m *Metropole) CloseSession(ctx context.Context, token string) error {
	if err := m.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed close session: %w", err)
	}

	return nil
}

// AuthenticateSession resolves the caller's identity from the cookie token.
func (m *Metropole) AuthenticateSession(ctx context.Context, token string) (model.User, error) {
	var user model.User
	if token == "" {
		return user, ErrUnauthenticated
	}

	session, err := m.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return user, ErrUnauthenticated
		}
		return user, fmt.Errorf("failed get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			m.log.Error("failed delete expired session", zap.Error(err))
		}
		return user, ErrUnauthenticated
	}

	user, err = m.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return user, ErrUnauthenticated
		}
		return user, fmt.Errorf("failed get session user: %w", err)
	}

	return user, nil
}

func (m *Metropole) ActivePackages(ctx context.Context) ([]*model.DiamondPackage, error) {
	packages, err := m.store.GetActivePackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed getting packages: %w", err)
	}
	return packages, nil
}

func (m *Metropole) GetBalanceByAccount(ctx context.Context, account string) (model.User, error) {
	user, err := m.store.GetUserByLogin(ctx, account)
	if err != nil {
		return user, fmt.Errorf("failed getting user `%s`: %w", account, err)
	}
	return user, nil
}

type Checkout struct {
	OrderID     string
	CheckoutURL string
}

// CreateCheckout inserts a pending order and asks the gateway for a
// redirect URL. The price always comes from the package row, never from
// the client. Each call creates a fresh independent order.
func (m *Metropole) CreateCheckout(ctx context.Context, userID, packageID uint) (Checkout, error) {
	var checkout Checkout

	pkg, err := m.store.GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return checkout, ErrPackageNotAvailable
		}
		return checkout, fmt.Errorf("failed get package: %w", err)
	}
	if !pkg.Active {
		return checkout, ErrPackageNotAvailable
	}

	order := &model.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		PackageID: pkg.ID,
		Status:    model.OrderStatePending,
	}
	if err := m.store.CreateOrder(ctx, order); err != nil {
		return checkout, fmt.Errorf("failed create order: %w", err)
	}

	pref, err := m.gateway.CreatePreference(ctx, mercadopago.PreferenceRequest{
		ExternalReference: order.ID,
		Items: []mercadopago.PreferenceItem{
			{
				Title:      pkg.Name,
				CurrencyID: m.cfg.CurrencyID,
				Quantity:   1,
				UnitPrice:  centsToUnits(pkg.PriceCents),
			},
		},
		BackURLs: mercadopago.BackURLs{
			Success: m.cfg.AppURL + "/?payment=success",
			Pending: m.cfg.AppURL + "/?payment=pending",
			Failure: m.cfg.AppURL + "/?payment=failure",
		},
		AutoReturn:      "approved",
		NotificationURL: m.cfg.AppURL + "/api/pix/webhook",
	})
	if err != nil {
		// Best-effort annotation, not a rollback. A stray error order
		// is acceptable.
		if markErr := m.store.MarkOrderError(ctx, order.ID); markErr != nil {
			m.log.Error("failed mark order error",
				zap.String("orderID", order.ID),
				zap.Error(markErr),
			)
		}
		return checkout, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	if err := m.store.SetOrderPreference(ctx, order.ID, pref.ID); err != nil {
		return checkout, fmt.Errorf("failed persist preference id: %w", err)
	}

	checkout.OrderID = order.ID
	checkout.CheckoutURL = pref.CheckoutURL()
	return checkout, nil
}

type NotificationOutcome string

const (
	OutcomeIgnored          NotificationOutcome = "ignored"
	OutcomeNotApproved      NotificationOutcome = "not_approved"
	OutcomeAmountMismatch   NotificationOutcome = "amount_mismatch"
	OutcomeAlreadyDelivered NotificationOutcome = "already_delivered"
	OutcomeDelivered        NotificationOutcome = "delivered"
)

type NotificationResult struct {
	Outcome       NotificationOutcome
	PaymentID     string
	PaymentStatus string
	OrderID       string
	Diamonds      int64
}

// ProcessNotification reconciles one webhook delivery. The inbound
// notification only supplied the payment id; status, amount and the
// correlation reference are re-fetched from the gateway. The credit is
// applied by the single caller that wins the conditional update in
// DeliverOrder, every other delivery of the same payment is a no-op.
func (m *Metropole) ProcessNotification(ctx context.Context, paymentID string) (NotificationResult, error) {
	result := NotificationResult{PaymentID: paymentID}

	payment, err := m.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	result.PaymentStatus = payment.Status

	if payment.Status != mercadopago.StatusApproved {
		// The gateway re-notifies the same payment on status change.
		result.Outcome = OutcomeNotApproved
		return result, nil
	}

	if payment.ExternalReference == "" {
		result.Outcome = OutcomeIgnored
		return result, nil
	}
	result.OrderID = payment.ExternalReference

	order, err := m.store.GetOrder(ctx, payment.ExternalReference)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			m.log.Warn("payment references unknown order",
				zap.String("paymentID", paymentID),
				zap.String("orderID", payment.ExternalReference),
			)
			result.Outcome = OutcomeIgnored
			return result, nil
		}
		return result, fmt.Errorf("failed get order: %w", err)
	}

	if order.DeliveredAt != nil || order.Status == model.OrderStateDelivered {
		result.Outcome = OutcomeAlreadyDelivered
		return result, nil
	}

	pkg, err := m.store.GetPackage(ctx, order.PackageID)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			m.log.Error("order references unknown package",
				zap.String("orderID", order.ID),
				zap.Uint("packageID", order.PackageID),
			)
			result.Outcome = OutcomeIgnored
			return result, nil
		}
		return result, fmt.Errorf("failed get package: %w", err)
	}

	if !amountsEqual(payment.TransactionAmount, centsToUnits(pkg.PriceCents)) {
		m.log.Warn("transaction amount does not match package price",
			zap.String("orderID", order.ID),
			zap.Float64("amount", payment.TransactionAmount),
			zap.Int64("priceCents", pkg.PriceCents),
		)
		result.Outcome = OutcomeAmountMismatch
		return result, nil
	}

	gatewayID := strconv.FormatInt(payment.ID, 10)

	// Record the confirmed payment first. Delivery below is the gate, so a
	// failure here only loses the paid timestamp, never duplicates a credit.
	if err := m.store.MarkOrderPaid(ctx, order.ID, gatewayID); err != nil {
		m.log.Error("failed mark order paid",
			zap.String("orderID", order.ID),
			zap.Error(err),
		)
	}

	delivered, err := m.store.DeliverOrder(ctx, order.ID, gatewayID)
	if err != nil {
		return result, fmt.Errorf("failed deliver order: %w", err)
	}
	if !delivered {
		// A concurrent delivery won the conditional update.
		result.Outcome = OutcomeAlreadyDelivered
		return result, nil
	}

	if err := m.store.CreditUserDiamonds(ctx, order.UserID, pkg.Diamonds); err != nil {
		// The order is marked delivered but the mirror credit failed.
		// Needs operator attention, the gateway will not retry this one.
		m.log.Error("order delivered but credit failed",
			zap.String("orderID", order.ID),
			zap.Uint("userID", order.UserID),
			zap.Int64("diamonds", pkg.Diamonds),
			zap.Error(err),
		)
		return result, fmt.Errorf("failed credit diamonds: %w", err)
	}

	m.log.Info("order delivered",
		zap.String("orderID", order.ID),
		zap.String("paymentID", paymentID),
		zap.Int64("diamonds", pkg.Diamonds),
	)

	result.Outcome = OutcomeDelivered
	result.Diamonds = pkg.Diamonds
	return result, nil
}

// SpendDiamonds serves the game server's spend command. The store applies
// a compare-and-swap, a lost race surfaces as errstore.ErrConcurrentUpdate.
func (m *Metropole) SpendDiamonds(ctx context.Context, account string, amount int64) (model.User, error) {
	var user model.User
	if amount <= 0 {
		return user, ErrAmountNotValid
	}

	user, err := m.store.SpendUserDiamonds(ctx, account, amount)
	if err != nil {
		return user, fmt.Errorf("failed spend diamonds: %w", err)
	}

	return user, nil
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

// amountsEqual compares currency amounts that went through float64 JSON.
func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
