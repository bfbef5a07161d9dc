package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
)

const (
	EnvProd = "prod"
	EnvTest = "test"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"prod"`
	Location string `yaml:"location" env:"LOCATION" env-default:"Europe/Moscow"`

	Log Log `yaml:"log"`

	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`

	Bot       Bot       `yaml:"bot"`
	Web       Web       `yaml:"web"`
	Cryptomus Cryptomus `yaml:"cryptomus"`
	Promo     Promo     `yaml:"promo"`

	TopUps []TopUp `yaml:"top_ups"`
}

type Log struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"console"`
	File     string `yaml:"file" env:"LOG_FILE"`
}

type Postgres struct {
	Database string `yaml:"database" env:"POSTGRES_DATABASE" env-default:"cars_bot"`
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Schema   string `yaml:"schema" env:"POSTGRES_SCHEMA" env-default:"cars_bot"`
	Username string `yaml:"username" env:"POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	Port     int64  `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	MaxConns int32  `yaml:"max_conns" env:"POSTGRES_MAX_CONNS" env-default:"20"`
}

// Redis is optional: with an empty Addr conversation state is kept in memory.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Bot struct {
	APIKey         string        `yaml:"api_key" env:"BOT_API_KEY"`
	Timeout        time.Duration `yaml:"timeout" env:"BOT_TIMEOUT" env-default:"10s"`
	HandlerTimeout time.Duration `yaml:"handler_timeout" env:"BOT_HANDLER_TIMEOUT" env-default:"15s"`
	StateTTL       time.Duration `yaml:"state_ttl" env:"BOT_STATE_TTL" env-default:"10m"`
	Dictionary     string        `yaml:"dictionary" env:"BOT_DICTIONARY" env-default:"dictionary.json"`
	Languages      []string      `yaml:"languages" env:"BOT_LANGUAGES" env-default:"ru,en"`

	Channels []Channel `yaml:"channels"`
}

// Channel is a chat the user must be subscribed to before using the bot.
type Channel struct {
	ID  int64  `yaml:"id"`
	URL string `yaml:"url"`
}

type Web struct {
	Addr           string   `yaml:"addr" env:"WEB_ADDR" env-default:":8080"`
	WebhookCIDRs   []string `yaml:"webhook_cidrs" env:"WEB_WEBHOOK_CIDRS" env-default:"91.227.144.54/32"`
	TrustedProxies []string `yaml:"trusted_proxies" env:"WEB_TRUSTED_PROXIES"`
}

type Cryptomus struct {
	BaseURL     string        `yaml:"base_url" env:"CRYPTOMUS_BASE_URL" env-default:"https://api.cryptomus.com"`
	APIKey      string        `yaml:"api_key" env:"CRYPTOMUS_API_KEY"`
	MerchantID  string        `yaml:"merchant_id" env:"CRYPTOMUS_MERCHANT_ID"`
	Currency    string        `yaml:"currency" env:"CRYPTOMUS_CURRENCY" env-default:"USDT"`
	SuccessURL  string        `yaml:"success_url" env:"CRYPTOMUS_SUCCESS_URL"`
	ReturnURL   string        `yaml:"return_url" env:"CRYPTOMUS_RETURN_URL"`
	CallbackURL string        `yaml:"callback_url" env:"CRYPTOMUS_CALLBACK_URL"`
	Lifetime    time.Duration `yaml:"lifetime" env:"CRYPTOMUS_LIFETIME" env-default:"1h"`
	CheckSpec   string        `yaml:"check_spec" env:"CRYPTOMUS_CHECK_SPEC" env-default:"@every 10s"`
}

func (c *Cryptomus) Enabled() bool {
	return c.APIKey != "" && c.MerchantID != ""
}

type Promo struct {
	TTL         time.Duration   `yaml:"ttl" env:"PROMO_TTL" env-default:"168h"`
	MaxReward   int64           `yaml:"max_reward" env:"PROMO_MAX_REWARD" env-default:"1000"`
	SeedOnStart bool            `yaml:"seed_on_start" env:"PROMO_SEED_ON_START"`
	Codes       []PromocodeSeed `yaml:"codes"`
}

type PromocodeSeed struct {
	Code     string `yaml:"code"`
	Category string `yaml:"category"`
	Reward   int64  `yaml:"reward"`
}

// TopUp is a balance package sold through the payment gateway.
type TopUp struct {
	Coins int64  `yaml:"coins"`
	Price string `yaml:"price"`
}

func (c *Config) GetPostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Postgres.Username, c.Postgres.Password, c.Postgres.Host, c.Postgres.Port, c.Postgres.Database)
}

func (c *Config) GetLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", c.Location, err)
	}

	return loc, nil
}

// GetConfig is Load for process bootstrap: any error is fatal.
func GetConfig(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal("config loading failed", zap.String("path", configPath), zap.Error(err))
	}

	return cfg
}

// Load reads the YAML file at configPath and overrides it with environment variables.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, errors.New("config path is required")
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Bot.APIKey == "" && c.Env != EnvTest {
		return errors.New("bot.api_key is required")
	}

	for _, ch := range c.Bot.Channels {
		if ch.ID == 0 || ch.URL == "" {
			return fmt.Errorf("channel %+v must have id and url", ch)
		}
	}

	if c.Promo.MaxReward < 0 {
		return errors.New("promo.max_reward must not be negative")
	}

	return nil
}
