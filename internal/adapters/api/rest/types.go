package rest

type tRegistration struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tAuthorization struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type tBalance struct {
	Diamonds int64 `json:"diamonds"`
}

type tPackage struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Diamonds   int64  `json:"diamonds"`
	PriceCents int64  `json:"price_cents"`
}

type tCheckoutRequest struct {
	PackageID uint `json:"packageId"`
}

type tCheckoutResponse struct {
	OK          bool   `json:"ok"`
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
}

type tVerifyRequest struct {
	Code string `json:"code"`
}

// game-server endpoints accept JSON and form bodies
type tVerifyIssueRequest struct {
	Code       string `json:"code" form:"code"`
	Serial     string `json:"serial" form:"serial"`
	Account    string `json:"account" form:"account"`
	TTLSeconds int64  `json:"ttlSeconds" form:"ttlSeconds"`
}

type tMTABalanceRequest struct {
	Account string `json:"account" form:"account"`
}

type tMTASpendRequest struct {
	Account string `json:"account" form:"account"`
	Amount  int64  `json:"amount" form:"amount"`
	Reason  string `json:"reason" form:"reason"`
}
