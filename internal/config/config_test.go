package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHECKOUT_WEBHOOK_URL", "https://hooks.example/checkout")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Payments.Provider != ProviderN8N {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	r := cfg.Checkout.WebhookRetry
	if r.MaxRetries != 3 || r.InitialDelay != time.Second || r.MaxDelay != 10*time.Second || r.Timeout != 30*time.Second {
		t.Fatalf("unexpected retry defaults: %+v", r)
	}
	if cfg.Checkout.PlatformFeePercent != 8 || cfg.Checkout.DefaultCommissionRate != 5 || cfg.Checkout.MinutesToExpire != 15 {
		t.Fatalf("unexpected checkout defaults: %+v", cfg.Checkout)
	}
	if cfg.Images.CacheTTL != time.Hour || cfg.Images.FailureThreshold != 3 || cfg.Images.Cooldown != time.Minute {
		t.Fatalf("unexpected image defaults: %+v", cfg.Images)
	}
	if cfg.DynamoDB.Tables.Orders != "orders" || cfg.Kafka.Topic != "checkout-order-events" {
		t.Fatalf("unexpected table/topic defaults: %+v %+v", cfg.DynamoDB.Tables, cfg.Kafka)
	}
	if cfg.Checkout.RequireSignature {
		t.Fatalf("signatures must be optional by default")
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
checkout:
  webhook_url: "https://file.example/hook"
  signing_secret: "s3cret"
  require_signature: true
  webhook_retry:
    max_retries: 5
    initial_delay: 250ms
images:
  cache_ttl: 10m
kafka:
  brokers: ["k1:9092"]
`)
	t.Setenv("CHECKOUT_WEBHOOK_URL", "https://env.example/hook")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("ORDERS_TABLE", "orders_test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Checkout.WebhookURL != "https://env.example/hook" {
		t.Fatalf("unexpected server/webhook: %s %s", cfg.Server.Addr, cfg.Checkout.WebhookURL)
	}
	if cfg.Checkout.WebhookRetry.MaxRetries != 5 || cfg.Checkout.WebhookRetry.InitialDelay != 250*time.Millisecond {
		t.Fatalf("unexpected retry: %+v", cfg.Checkout.WebhookRetry)
	}
	if cfg.Checkout.WebhookRetry.Timeout != 30*time.Second {
		t.Fatalf("missing fields must still get defaults: %+v", cfg.Checkout.WebhookRetry)
	}
	if cfg.Images.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected cache ttl: %v", cfg.Images.CacheTTL)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.DynamoDB.Tables.Orders != "orders_test" {
		t.Fatalf("unexpected orders table: %s", cfg.DynamoDB.Tables.Orders)
	}
}

func TestLoad_MockGatewayFlag(t *testing.T) {
	t.Setenv("PAYMENT_GATEWAY_MOCK", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("mock provider must not need a webhook url: %v", err)
	}
	if cfg.Payments.Provider != ProviderMock {
		t.Fatalf("expected mock provider, got %s", cfg.Payments.Provider)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "n8n without webhook url", env: map[string]string{}},
		{name: "mercadopago without token", env: map[string]string{"PAYMENT_PROVIDER": "mercadopago"}},
		{name: "unknown provider", env: map[string]string{"PAYMENT_PROVIDER": "stripe"}},
		{name: "required signature without secret", env: map[string]string{"CHECKOUT_WEBHOOK_URL": "https://x", "CHECKOUT_REQUIRE_SIGNATURE": "true"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
