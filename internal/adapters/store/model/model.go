package model

import "time"

type User struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Login        string `gorm:"unique"`
	PasswordHash string
	ID           uint  `gorm:"primarykey"`
	Diamonds     int64 `gorm:"not null;default:0"`
}

// Session is an opaque random token exchanged through an httpOnly cookie.
// At most one session per user is kept alive: a new login removes the rest.
type Session struct {
	CreatedAt time.Time
	ExpiresAt time.Time
	Token     string `gorm:"primarykey"`
	User      User
	UserID    uint `gorm:"index"`
}

type DiamondPackage struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Name       string
	ID         uint `gorm:"primarykey"`
	Diamonds   int64
	PriceCents int64
	Active     bool `gorm:"default:true"`
}

type OrderStatus string

const (
	OrderStatePending   OrderStatus = "pending"
	OrderStatePaid      OrderStatus = "paid"
	OrderStateDelivered OrderStatus = "delivered"
	OrderStateError     OrderStatus = "error"
)

// Order is a locally recorded purchase intent. Its ID doubles as the
// external_reference sent to the payment gateway, so an incoming
// notification can be mapped back to the row. A confirmed payment first
// moves the order to paid, then the conditional update in DeliverOrder
// writes DeliveredAt at most once.
type Order struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PaidAt       *time.Time
	DeliveredAt  *time.Time
	ID           string      `gorm:"primarykey"`
	Status       OrderStatus `gorm:"default:pending"`
	GatewayID    string
	PreferenceID string
	User         User
	Package      DiamondPackage
	UserID       uint `gorm:"index"`
	PackageID    uint
}

// VerificationCode is a short-lived code the game server issues so a
// player can prove in the browser that they sit at the in-game account.
// The row expires via ExpiresAt; expired codes count as absent.
type VerificationCode struct {
	CreatedAt time.Time
	ExpiresAt time.Time
	Code      string `gorm:"primarykey"`
	Serial    string
	Account   string
	Verified  bool `gorm:"default:false"`
}

type TrustedSerial struct {
	CreatedAt time.Time
	Serial    string `gorm:"primarykey"`
}
