package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prizmamta/metropole/internal/adapters/store/errstore"
	"github.com/prizmamta/metropole/internal/adapters/store/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

type option func(*Store)

func Logger(log *zap.Logger) option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func New(ctx context.Context, cfg *Config, options ...option) (*Store, error) {
	var err error
	s := &Store{
		log: zap.NewNop(),
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed connect to database: %w", err)
	}

	s.db = db.WithContext(ctx)

	for _, opt := range options {
		opt(s)
	}

	err = s.db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.DiamondPackage{},
		&model.Order{},
		&model.VerificationCode{},
		&model.TrustedSerial{},
	)
	if err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	if err := s.seedPackages(); err != nil {
		return nil, fmt.Errorf("failed seed packages: %w", err)
	}

	return s, nil
}

// seedPackages fills the catalog on a fresh database so the checkout flow
// works out of the box. An already populated table is left untouched.
func (s *Store) seedPackages() error {
	var count int64
	if err := s.db.Model(&model.DiamondPackage{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed count packages: %w", err)
	}
	if count > 0 {
		return nil
	}

	packages := []model.DiamondPackage{
		{Name: "290 Diamantes", Diamonds: 290, PriceCents: 6900, Active: true},
		{Name: "575 Diamantes", Diamonds: 575, PriceCents: 12900, Active: true},
		{Name: "1000 Diamantes", Diamonds: 1000, PriceCents: 25500, Active: true},
	}
	if err := s.db.Create(&packages).Error; err != nil {
		return fmt.Errorf("failed create packages: %w", err)
	}

	return nil
}

func (s *Store) CloseDB() error {
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed getting database connection: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed close database connection: %w", err)
	}

	return nil
}

func (s *Store) RegisterUser(ctx context.Context, login, hashPassword string) (model.User, error) {
	user := model.User{
		Login:        login,
		PasswordHash: hashPassword,
	}
	result := s.db.WithContext(ctx).Create(&user)
	if err := result.Error; err != nil {
		var sqlError *pgconn.PgError
		if errors.As(err, &sqlError) && sqlError.Code == pgerrcode.UniqueViolation {
			return user, errstore.ErrLoginNotUnique
		}
		return user, fmt.Errorf("failed save user: %w", result.Error)
	}

	return user, nil
}

func (s *Store) GetUserByLogin(ctx context.Context, login string) (model.User, error) {
	tx := s.db.WithContext(ctx)
	user := model.User{}
	result := tx.Where(&model.User{Login: login}).First(&user)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, errors.Join(errstore.ErrNotFoundData, err)
		}
		return user, fmt.Errorf("error found user: %w", result.Error)
	}

	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID uint) (model.User, error) {
	tx := s.db.WithContext(ctx)
	user := model.User{}
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, errors.Join(errstore.ErrNotFoundData, err)
		}
		return user, fmt.Errorf("error found user: %w", err)
	}

	return user, nil
}

func (s *Store) CreateSession(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	session := model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return fmt.Errorf("failed create session: %w", err)
	}

	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (model.Session, error) {
	tx := s.db.WithContext(ctx)
	session := model.Session{}
	if err := tx.Where(&model.Session{Token: token}).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session, errstore.ErrNotFoundData
		}
		return session, fmt.Errorf("failed get session: %w", err)
	}

	return session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	tx := s.db.WithContext(ctx)
	if err := tx.Delete(&model.Session{Token: token}).Error; err != nil {
		return fmt.Errorf("failed delete session: %w", err)
	}

	return nil
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID uint) error {
	tx := s.db.WithContext(ctx)
	if err := tx.Where(&model.Session{UserID: userID}).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("failed delete user sessions: %w", err)
	}

	return nil
}

func (s *Store) GetPackage(ctx context.Context, packageID uint) (model.DiamondPackage, error) {
	tx := s.db.WithContext(ctx)
	pkg := model.DiamondPackage{}
	if err := tx.First(&pkg, packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg, errstore.ErrNotFoundData
		}
		return pkg, fmt.Errorf("failed get package: %w", err)
	}

	return pkg, nil
}

func (s *Store) GetActivePackages(ctx context.Context) ([]*model.DiamondPackage, error) {
	packages := []*model.DiamondPackage{}
	tx := s.db.WithContext(ctx)
	if err := tx.Where(&model.DiamondPackage{Active: true}).Order("price_cents").Find(&packages).Error; err != nil {
		return nil, fmt.Errorf("failed get packages: %w", err)
	}

	return packages, nil
}

func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed create order: %w", err)
	}

	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	tx := s.db.WithContext(ctx)
	order := model.Order{}
	if err := tx.Where(&model.Order{ID: orderID}).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order, errstore.ErrNotFoundData
		}
		return order, fmt.Errorf("failed get order: %w", err)
	}

	return order, nil
}

func (s *Store) SetOrderPreference(ctx context.Context, orderID, preferenceID string) error {
	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.Order{}).
		Where(&model.Order{ID: orderID}).
		Update("preference_id", preferenceID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed set order preference: %w", err)
	}

	return nil
}

func (s *Store) MarkOrderError(ctx context.Context, orderID string) error {
	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.Order{}).
		Where(&model.Order{ID: orderID}).
		Update("status", model.OrderStateError)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed mark order error: %w", err)
	}

	return nil
}

// MarkOrderPaid records the confirmed payment before delivery is
// attempted. The update is conditioned on the pending state, so a
// redelivered webhook or a lost race leaves the row alone.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID, gatewayID string) error {
	now := time.Now()
	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatePending).
		Updates(map[string]interface{}{
			"status":     model.OrderStatePaid,
			"gateway_id": gatewayID,
			"paid_at":    &now,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed mark order paid: %w", err)
	}

	return nil
}

// DeliverOrder is the idempotency gate of the payment flow. The update is
// conditioned on delivered_at still being NULL, so of N concurrent webhook
// deliveries for one order exactly one affects a row. Returns false when
// another caller already delivered the order; that outcome is expected and
// must not be treated as an error.
func (s *Store) DeliverOrder(ctx context.Context, orderID, gatewayID string) (bool, error) {
	now := time.Now()
	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.Order{}).
		Where("id = ? AND delivered_at IS NULL", orderID).
		Updates(map[string]interface{}{
			"status":       model.OrderStateDelivered,
			"gateway_id":   gatewayID,
			"delivered_at": &now,
		})
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed deliver order: %w", err)
	}

	return result.RowsAffected > 0, nil
}

// CreditUserDiamonds increments the balance in a single statement instead
// of read-then-write, so concurrent credits from unrelated orders to the
// same user are never lost.
func (s *Store) CreditUserDiamonds(ctx context.Context, userID uint, amount int64) error {
	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("diamonds", gorm.Expr("diamonds + ?", amount))
	if err := result.Error; err != nil {
		return fmt.Errorf("failed credit user diamonds: %w", err)
	}
	if result.RowsAffected == 0 {
		return errstore.ErrNotFoundData
	}

	return nil
}

// SpendUserDiamonds decrements the balance with a compare-and-swap on the
// current value. A lost race returns ErrConcurrentUpdate and the caller is
// expected to retry the whole operation.
func (s *Store) SpendUserDiamonds(ctx context.Context, login string, amount int64) (model.User, error) {
	user, err := s.GetUserByLogin(ctx, login)
	if err != nil {
		return user, err
	}

	if user.Diamonds < amount {
		return user, fmt.Errorf("%w: have %d, need %d", errstore.ErrBalanceNotEnough, user.Diamonds, amount)
	}

	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.User{}).
		Where("id = ? AND diamonds = ?", user.ID, user.Diamonds).
		Update("diamonds", user.Diamonds-amount)
	if err := result.Error; err != nil {
		return user, fmt.Errorf("failed spend user diamonds: %w", err)
	}
	if result.RowsAffected == 0 {
		return user, errstore.ErrConcurrentUpdate
	}

	user.Diamonds -= amount
	return user, nil
}

// PutVerificationCode upserts a code row. The game server may re-issue
// the same code, the later issue wins and resets the verified flag.
func (s *Store) PutVerificationCode(ctx context.Context, code, serial, account string, ttl time.Duration) error {
	row := model.VerificationCode{
		Code:      code,
		Serial:    serial,
		Account:   account,
		ExpiresAt: time.Now().Add(ttl),
	}
	tx := s.db.WithContext(ctx)
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed put verification code: %w", err)
	}

	return nil
}

func (s *Store) GetVerificationCode(ctx context.Context, code string) (model.VerificationCode, error) {
	tx := s.db.WithContext(ctx)
	row := model.VerificationCode{}
	if err := tx.Where(&model.VerificationCode{Code: code}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, errstore.ErrNotFoundData
		}
		return row, fmt.Errorf("failed get verification code: %w", err)
	}
	if time.Now().After(row.ExpiresAt) {
		return row, errstore.ErrNotFoundData
	}

	return row, nil
}

// ConfirmVerificationCode flips the verified flag. The update is
// conditioned on the code still being alive, so an expired or unknown
// code reports false instead of resurrecting the row.
func (s *Store) ConfirmVerificationCode(ctx context.Context, code string) (bool, error) {
	tx := s.db.WithContext(ctx)
	result := tx.Model(&model.VerificationCode{}).
		Where("code = ? AND expires_at > ?", code, time.Now()).
		Update("verified", true)
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed confirm verification code: %w", err)
	}

	return result.RowsAffected > 0, nil
}

func (s *Store) IsTrustedSerial(ctx context.Context, serial string) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx)
	err := tx.Model(&model.TrustedSerial{}).
		Where(&model.TrustedSerial{Serial: serial}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed check trusted serial: %w", err)
	}

	return count > 0, nil
}
