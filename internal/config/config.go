// Package config loads runtime options from flags, the environment and an
// optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/consultdesk/consultdesk/db"
	"github.com/consultdesk/consultdesk/internal/types"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type Config struct {
	Listen string `long:"listen" env:"PORT" default:"3000" description:"Port to listen on"`

	DBDriver    string `long:"dbdriver" env:"DB_DRIVER" default:"postgres" choice:"postgres" choice:"mysql" choice:"sqlite" description:"Database driver"`
	DatabaseURL string `long:"dburl" env:"DATABASE_URL" description:"Database DSN; for mysql it may be omitted in favour of the dbhost/dbuser/dbpass/dbname options"`
	DBHost      string `long:"dbhost" env:"DB_HOST" default:"localhost:3306" description:"MySQL host:port"`
	DBUser      string `long:"dbuser" env:"DB_USER" description:"MySQL user"`
	DBPass      string `long:"dbpass" env:"DB_PASSWORD" description:"MySQL password"`
	DBName      string `long:"dbname" env:"DB_NAME" default:"consultdesk" description:"MySQL database name"`

	StoreTimeout time.Duration `long:"storetimeout" env:"STORE_TIMEOUT" default:"5s" description:"Upper bound on every store call"`
	TimeZone     string        `long:"timezone" env:"TIMEZONE" default:"UTC" description:"Business time zone used for calendar dates and month boundaries"`

	JWTSecret    string   `long:"jwtsecret" env:"JWT_SECRET" description:"HMAC secret for bearer tokens"`
	NoDemo       bool     `long:"nodemo" env:"NO_DEMO" description:"Require a bearer token on every request instead of falling back to the demo user"`
	DemoUsername string   `long:"demousername" env:"DEMO_USERNAME" default:"demo" description:"Username of the seeded demo user"`
	DemoPassword string   `long:"demopassword" env:"DEMO_PASSWORD" default:"demo-password" description:"Password of the seeded demo user"`
	DemoName     string   `long:"demoname" env:"DEMO_NAME" default:"Demo Consultant" description:"Display name of the seeded demo user"`
	DemoEmail    string   `long:"demoemail" env:"DEMO_EMAIL" default:"demo@example.com" description:"Email of the seeded demo user"`
	Origins      []string `long:"origin" env:"ALLOWED_ORIGINS" env-delim:"," description:"Allowed CORS and websocket origins (repeatable)"`

	TimerMaxHours  float64 `long:"timermaxhours" env:"TIMER_MAX_HOURS" default:"0" description:"Stop timers left running longer than this many hours; 0 disables the watchdog"`
	SlackWebhook   string  `long:"slackwebhook" env:"SLACK_WEBHOOK_URL" description:"Slack incoming webhook for invoice notifications"`
	DiscordWebhook string  `long:"discordwebhook" env:"DISCORD_WEBHOOK_URL" description:"Discord webhook for invoice notifications"`

	SenderName    string `long:"sendername" env:"INVOICE_SENDER_NAME" description:"Name printed in the invoice From block; defaults to the user's name"`
	SenderTitle   string `long:"sendertitle" env:"INVOICE_SENDER_TITLE" description:"Title printed in the invoice From block"`
	SenderAddress string `long:"senderaddress" env:"INVOICE_SENDER_ADDRESS" description:"Address printed in the invoice From block"`
	SenderEmail   string `long:"senderemail" env:"INVOICE_SENDER_EMAIL" description:"Email printed in the invoice From block"`

	LogDir     string `long:"logdir" env:"LOG_DIR" default:"logs" description:"Directory to log output"`
	DebugLevel string `short:"d" long:"debuglevel" env:"LOG_LEVEL" default:"info" description:"Logging level {trace, debug, info, warn, error, critical}; <subsystem>=<level> pairs are also accepted"`

	location *time.Location
}

// Load reads .env (if present) into the environment and parses args on top
// of it. Flags win over environment values.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}
	c.location = loc

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("storetimeout must be positive")
	}
	if c.TimerMaxHours < 0 {
		return fmt.Errorf("timermaxhours must not be negative")
	}
	if c.DatabaseURL == "" && c.DBDriver != db.DriverMySQL {
		return fmt.Errorf("DATABASE_URL is required for the %s driver", c.DBDriver)
	}

	if c.JWTSecret == "" {
		if c.NoDemo {
			return fmt.Errorf("JWT_SECRET is required when demo mode is disabled")
		}
		// Tokens will not survive a restart, which is acceptable for demo
		// deployments.
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		c.JWTSecret = hex.EncodeToString(secret)
	}

	if len(c.Origins) == 0 {
		c.Origins = append([]string(nil), types.DefaultAllowedOrigins...)
	}
	return nil
}

// Location is the business time zone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" || c.DBDriver != db.DriverMySQL {
		return c.DatabaseURL
	}

	mc := mysqldrv.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPass
	mc.Net = "tcp"
	mc.Addr = c.DBHost
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// TimerMaxRunning converts TimerMaxHours to a duration; zero means disabled.
func (c *Config) TimerMaxRunning() time.Duration {
	return time.Duration(c.TimerMaxHours * float64(time.Hour))
}
