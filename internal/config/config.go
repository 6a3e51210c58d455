package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tesouraria"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Driver      string `envconfig:"DB_DRIVER" default:"pgx"`
		Host        string `envconfig:"DB_HOST" default:"localhost"`
		Port        int    `envconfig:"DB_PORT" default:"5432"`
		User        string `envconfig:"DB_USER" default:"postgres"`
		Password    string `envconfig:"DB_PASSWORD" default:""`
		Name        string `envconfig:"DB_NAME" default:"tesouraria"`
		AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"20s"`
		AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Billing struct {
		BankCode      int    `envconfig:"BILLING_BANK_CODE" default:"1"`
		AgreementCode int    `envconfig:"BILLING_AGREEMENT_CODE" required:"true"`
		Carteira      string `envconfig:"BILLING_CARTEIRA" default:"17"`
		Location      string `envconfig:"BILLING_LOCATION" default:"America/Sao_Paulo"`
		// Manual ledger subcategories reported as operational in the DRE.
		OperationalSubcategories []string `envconfig:"BILLING_OPERATIONAL_SUBCATEGORIES" default:"mensalidade,matricula,salarios,encargos,aluguel,material,manutencao,servicos"`
	}

	Webhook struct {
		Secret string `envconfig:"WEBHOOK_SECRET" required:"true"`
		Issuer string `envconfig:"WEBHOOK_ISSUER" default:"payment-gateway"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}
}

// ConnectionString returns the DSN for the configured driver. For sqlite3
// DB_NAME is the database file path.
func (c *Config) ConnectionString() string {
	if c.DB.Driver == "sqlite3" {
		return c.DB.Name
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) BillingLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Billing.Location)
	if err != nil {
		return nil, fmt.Errorf("loading billing location %q: %w", c.Billing.Location, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.DB.Driver {
	case "pgx", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return &cfg, nil
}
