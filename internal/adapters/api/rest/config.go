package rest

type Config struct {
	Address      string `env:"RUN_ADDRESS" envDefault:":8080"`
	MTASecret    string `env:"MTA_SHARED_SECRET"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
}
