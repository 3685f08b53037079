package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderN8N         = "n8n"
	ProviderMercadoPago = "mercadopago"
	ProviderMock        = "mock"
)

type Retry struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Development bool `yaml:"development"`
	} `yaml:"log"`
	Checkout struct {
		WebhookURL            string  `yaml:"webhook_url"`
		SigningSecret         string  `yaml:"signing_secret"`
		RequireSignature      bool    `yaml:"require_signature"`
		PlatformFeePercent    float64 `yaml:"platform_fee_percent"`
		DefaultCommissionRate float64 `yaml:"default_commission_rate"`
		MinutesToExpire       int     `yaml:"minutes_to_expire"`
		MaxInstallments       int     `yaml:"max_installments"`
		SuccessURL            string  `yaml:"success_url"`
		CancelURL             string  `yaml:"cancel_url"`
		ExpiredURL            string  `yaml:"expired_url"`
		WebhookRetry          Retry   `yaml:"webhook_retry"`
	} `yaml:"checkout"`
	Images struct {
		StoreDefaultURL  string        `yaml:"store_default_url"`
		PublicDefaultURL string        `yaml:"public_default_url"`
		CacheTTL         time.Duration `yaml:"cache_ttl"`
		StoreTimeout     time.Duration `yaml:"store_timeout"`
		PublicTimeout    time.Duration `yaml:"public_timeout"`
		FailureThreshold int           `yaml:"failure_threshold"`
		Cooldown         time.Duration `yaml:"cooldown"`
		RedisAddr        string        `yaml:"redis_addr"`
	} `yaml:"images"`
	DynamoDB struct {
		Region          string `yaml:"region"`
		Endpoint        string `yaml:"endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		Tables          Tables `yaml:"tables"`
	} `yaml:"dynamodb"`
	Payments struct {
		Provider               string `yaml:"provider"`
		MercadoPagoAccessToken string `yaml:"mercadopago_access_token"`
	} `yaml:"payments"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Tracing struct {
		JaegerEndpoint string `yaml:"jaeger_endpoint"`
		ServiceName    string `yaml:"service_name"`
	} `yaml:"tracing"`
}

type Tables struct {
	Orders         string `yaml:"orders"`
	AffiliateSales string `yaml:"affiliate_sales"`
	Companies      string `yaml:"companies"`
	Products       string `yaml:"products"`
	Coupons        string `yaml:"coupons"`
	Affiliates     string `yaml:"affiliates"`
}

// Load reads the optional YAML file at path (CONFIG_PATH or
// configs/config.yaml when empty), applies env overrides and defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Payments.Provider {
	case ProviderN8N:
		if c.Checkout.WebhookURL == "" {
			return errors.New("checkout.webhook_url is required for the n8n provider")
		}
	case ProviderMercadoPago:
		if c.Payments.MercadoPagoAccessToken == "" {
			return errors.New("payments.mercadopago_access_token is required for the mercadopago provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown payments.provider %q", c.Payments.Provider)
	}
	if c.Checkout.RequireSignature && c.Checkout.SigningSecret == "" {
		return errors.New("checkout.signing_secret is required when signatures are required")
	}
	if c.Checkout.WebhookRetry.MaxRetries < 0 {
		return errors.New("checkout.webhook_retry.max_retries must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	co := &cfg.Checkout
	if co.PlatformFeePercent == 0 {
		co.PlatformFeePercent = 8
	}
	if co.DefaultCommissionRate == 0 {
		co.DefaultCommissionRate = 5
	}
	if co.MinutesToExpire == 0 {
		co.MinutesToExpire = 15
	}
	if co.MaxInstallments == 0 {
		co.MaxInstallments = 1
	}
	if co.WebhookRetry == (Retry{}) {
		co.WebhookRetry.MaxRetries = 3
	}
	if co.WebhookRetry.InitialDelay == 0 {
		co.WebhookRetry.InitialDelay = time.Second
	}
	if co.WebhookRetry.MaxDelay == 0 {
		co.WebhookRetry.MaxDelay = 10 * time.Second
	}
	if co.WebhookRetry.Timeout == 0 {
		co.WebhookRetry.Timeout = 30 * time.Second
	}

	img := &cfg.Images
	if img.CacheTTL == 0 {
		img.CacheTTL = time.Hour
	}
	if img.StoreTimeout == 0 {
		img.StoreTimeout = 5 * time.Second
	}
	if img.PublicTimeout == 0 {
		img.PublicTimeout = 10 * time.Second
	}
	if img.FailureThreshold == 0 {
		img.FailureThreshold = 3
	}
	if img.Cooldown == 0 {
		img.Cooldown = 60 * time.Second
	}

	db := &cfg.DynamoDB
	if db.Region == "" {
		db.Region = "us-east-1"
	}
	if db.AccessKeyID == "" {
		db.AccessKeyID = "local"
	}
	if db.SecretAccessKey == "" {
		db.SecretAccessKey = "local"
	}
	t := &db.Tables
	t.Orders = orDefault(t.Orders, "orders")
	t.AffiliateSales = orDefault(t.AffiliateSales, "affiliate_sales")
	t.Companies = orDefault(t.Companies, "companies")
	t.Products = orDefault(t.Products, "products")
	t.Coupons = orDefault(t.Coupons, "coupons")
	t.Affiliates = orDefault(t.Affiliates, "affiliates")

	cfg.Payments.Provider = strings.ToLower(strings.TrimSpace(cfg.Payments.Provider))
	if cfg.Payments.Provider == "" {
		cfg.Payments.Provider = ProviderN8N
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "checkout-order-events"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "checkout-service"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		cfg.Log.Development = boolOr(cfg.Log.Development, v)
	}
	if v := os.Getenv("CHECKOUT_WEBHOOK_URL"); v != "" {
		cfg.Checkout.WebhookURL = v
	}
	if v := os.Getenv("CHECKOUT_SIGNING_SECRET"); v != "" {
		cfg.Checkout.SigningSecret = v
	}
	if v := os.Getenv("CHECKOUT_REQUIRE_SIGNATURE"); v != "" {
		cfg.Checkout.RequireSignature = boolOr(cfg.Checkout.RequireSignature, v)
	}
	if v := os.Getenv("CHECKOUT_SUCCESS_URL"); v != "" {
		cfg.Checkout.SuccessURL = v
	}
	if v := os.Getenv("CHECKOUT_CANCEL_URL"); v != "" {
		cfg.Checkout.CancelURL = v
	}
	if v := os.Getenv("CHECKOUT_EXPIRED_URL"); v != "" {
		cfg.Checkout.ExpiredURL = v
	}
	if v := os.Getenv("CHECKOUT_WEBHOOK_MAX_RETRIES"); v != "" {
		cfg.Checkout.WebhookRetry.MaxRetries = atoiOr(cfg.Checkout.WebhookRetry.MaxRetries, v)
	}
	if v := os.Getenv("IMAGE_STORE_DEFAULT_URL"); v != "" {
		cfg.Images.StoreDefaultURL = v
	}
	if v := os.Getenv("IMAGE_PUBLIC_DEFAULT_URL"); v != "" {
		cfg.Images.PublicDefaultURL = v
	}
	if v := os.Getenv("IMAGE_CACHE_TTL"); v != "" {
		cfg.Images.CacheTTL = durationOr(cfg.Images.CacheTTL, v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Images.RedisAddr = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.DynamoDB.Region = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		cfg.DynamoDB.Endpoint = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.DynamoDB.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.DynamoDB.SecretAccessKey = v
	}
	if v := os.Getenv("ORDERS_TABLE"); v != "" {
		cfg.DynamoDB.Tables.Orders = v
	}
	if v := os.Getenv("AFFILIATE_SALES_TABLE"); v != "" {
		cfg.DynamoDB.Tables.AffiliateSales = v
	}
	if v := os.Getenv("COMPANIES_TABLE"); v != "" {
		cfg.DynamoDB.Tables.Companies = v
	}
	if v := os.Getenv("PRODUCTS_TABLE"); v != "" {
		cfg.DynamoDB.Tables.Products = v
	}
	if v := os.Getenv("COUPONS_TABLE"); v != "" {
		cfg.DynamoDB.Tables.Coupons = v
	}
	if v := os.Getenv("AFFILIATES_TABLE"); v != "" {
		cfg.DynamoDB.Tables.Affiliates = v
	}
	if v := os.Getenv("PAYMENT_PROVIDER"); v != "" {
		cfg.Payments.Provider = v
	}
	if v := os.Getenv("MERCADOPAGO_ACCESS_TOKEN"); v != "" {
		cfg.Payments.MercadoPagoAccessToken = v
	}
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		if boolOr(false, os.Getenv(key)) {
			cfg.Payments.Provider = ProviderMock
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitCommaList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Tracing.JaegerEndpoint = v
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.Tracing.ServiceName = v
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func durationOr(fallback time.Duration, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func boolOr(fallback bool, v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "mock":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
