package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	// Record store backend: "xlsx" (workbook file) or "db" (gorm).
	StoreBackend string
	WorkbookPath string

	DBDriver   string // sqlite | mysql
	SQLitePath string
	MySQLHost  string
	MySQLPort  string
	MySQLDB    string
	MySQLUser  string
	MySQLPass  string

	RedisAddr string
	RedisDB   int

	AdminUser string
	AdminPass string

	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration

	OTPDigits    int
	SessionTTL   time.Duration
	RosterTTL    time.Duration
	EvalCacheTTL time.Duration
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		StoreBackend: getenv("STORE_BACKEND", "xlsx"),
		WorkbookPath: getenv("WORKBOOK_PATH", "assessments.xlsx"),

		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		SQLitePath: getenv("SQLITE_PATH", "assessments.db"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "assessment"),
		MySQLUser:  getenv("MYSQL_USER", "assessment"),
		MySQLPass:  getenv("MYSQL_PASS", "assessment"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		AdminUser: getenv("ADMIN_USER", ""),
		AdminPass: getenv("ADMIN_PASS", ""),

		AIAPIKey:  getenv("AI_API_KEY", ""),
		AIBaseURL: getenv("AI_BASE_URL", ""),
		AIModel:   getenv("AI_MODEL", "gpt-4o-mini"),
		AITimeout: time.Duration(getenvInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,

		OTPDigits:    getenvInt("OTP_DIGITS", 6),
		SessionTTL:   time.Duration(getenvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		RosterTTL:    time.Duration(getenvInt("ROSTER_TTL_SECONDS", 3600)) * time.Second,
		EvalCacheTTL: time.Duration(getenvInt("EVAL_CACHE_TTL_SECONDS", 86400)) * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.StoreBackend {
	case "xlsx":
		if c.WorkbookPath == "" {
			return errors.New("missing WORKBOOK_PATH")
		}
	case "db":
		switch c.DBDriver {
		case "sqlite":
			if c.SQLitePath == "" {
				return errors.New("missing SQLITE_PATH")
			}
		case "mysql":
			if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
				return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
			}
			if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
				return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
			}
		default:
			return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}
	if c.AdminUser == "" || c.AdminPass == "" {
		return errors.New("missing ADMIN_USER/ADMIN_PASS")
	}
	if c.OTPDigits < 4 || c.OTPDigits > 10 {
		return fmt.Errorf("OTP_DIGITS %d out of range", c.OTPDigits)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

// DSN returns the DSN for the configured relational driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	// parseTime needed for DATETIME columns
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
