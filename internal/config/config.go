package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Shopify Shopify `envPrefix:"SHOPIFY_"`
	Vapi    Vapi    `envPrefix:"VAPI_"`
	Redis   Redis   `envPrefix:"REDIS_"`
}

type Shopify struct {
	ShopDomain    string `env:"SHOP_DOMAIN"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Vapi struct {
	BaseApiURL        string `env:"BASE_API_URL" envDefault:"https://api.vapi.ai"`
	APIKey            string `env:"API_KEY"`
	AssistantID       string `env:"ASSISTANT_ID"`
	TwilioPhoneNumber string `env:"TWILIO_PHONE_NUMBER"`
	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
}

// Redis is optional; an empty Addr disables the scheduler pass lock.
type Redis struct {
	Addr string `env:"ADDR"`
	DB   int    `env:"DB" envDefault:"0"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
