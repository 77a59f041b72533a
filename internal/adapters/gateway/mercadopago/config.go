package mercadopago

import "time"

type Config struct {
	AccessToken string        `env:"MP_ACCESS_TOKEN"`
	BaseURL     string        `env:"MP_BASE_URL" envDefault:"https://api.mercadopago.com"`
	Timeout     time.Duration `env:"MP_TIMEOUT" envDefault:"10s"`
}
