package store

import (
	"context"
	"fmt"
	"time"

	"github.com/prizmamta/metropole/internal/adapters/store/database"
	"github.com/prizmamta/metropole/internal/adapters/store/model"
	"go.uber.org/zap"
)

type Config struct {
	Database *database.Config
}

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

func New(ctx context.Context, cfg *Config, log *zap.Logger) (Store, error) {
	s, err := database.New(ctx, cfg.Database, database.Logger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return s, nil
}
