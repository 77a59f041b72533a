package metropole

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prizmamta/metropole/internal/adapters/store/errstore"
)

// In-game verification codes. The game server issues a short-lived code
// and shows it to the player, the player confirms it in the browser, and
// the game server polls the status until it flips or the code expires.

const (
	verifyTTLDefault = 180 * time.Second
	verifyTTLMin     = 30 * time.Second
	verifyTTLMax     = 900 * time.Second
)

// IssueVerificationCode stores a code the game server handed out. The
// requested TTL is clamped to a sane window; zero picks the default.
// Returns the TTL actually applied.
func (m *Metropole) IssueVerificationCode(ctx context.Context, code, serial, account string, ttl time.Duration) (time.Duration, error) {
	if code == "" {
		return 0, ErrCodeNotValid
	}

	if ttl <= 0 {
		ttl = verifyTTLDefault
	}
	if ttl < verifyTTLMin {
		ttl = verifyTTLMin
	}
	if ttl > verifyTTLMax {
		ttl = verifyTTLMax
	}

	if err := m.store.PutVerificationCode(ctx, code, serial, account, ttl); err != nil {
		return 0, fmt.Errorf("failed issue verification code: %w", err)
	}

	return ttl, nil
}

// ConfirmVerificationCode marks a live code verified. The remaining TTL
// is untouched, the game server's poll window stays as issued.
func (m *Metropole) ConfirmVerificationCode(ctx context.Context, code string) error {
	if code == "" {
		return ErrCodeNotValid
	}

	confirmed, err := m.store.ConfirmVerificationCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed confirm verification code: %w", err)
	}
	if !confirmed {
		return ErrCodeNotFound
	}

	return nil
}

// VerificationStatus reports whether the code has been confirmed. An
// unknown or expired code is simply not verified, never an error, so the
// game server can poll without special cases.
func (m *Metropole) VerificationStatus(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, ErrCodeNotValid
	}

	row, err := m.store.GetVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, errstore.ErrNotFoundData) {
			return false, nil
		}
		return false, fmt.Errorf("failed get verification code: %w", err)
	}

	return row.Verified, nil
}

func (m *Metropole) TrustedSerial(ctx context.Context, serial string) (bool, error) {
	if serial == "" {
		return false, ErrSerialNotValid
	}

	trusted, err := m.store.IsTrustedSerial(ctx, serial)
	if err != nil {
		return false, fmt.Errorf("failed check trusted serial: %w", err)
	}

	return trusted, nil
}
