package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TASKMINDER"

type Config struct {
	Database  DatabaseConfig
	Timezone  string
	Location  *time.Location
	Log       LogConfig
	BaseURL   string
	Mail      MailConfig
	Overdue   OverdueConfig
	Reminder  ReminderConfig
	Push      PushConfig
	Serve     ServeConfig
	Recipient RecipientConfig
}

type DatabaseConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
}

type MailConfig struct {
	Driver        string
	From          string
	PostmarkToken string
	SMTP          SMTPConfig
	RatePerSecond float64
	Burst         int
	SendTimeout   time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type OverdueConfig struct {
	Delay     time.Duration
	Tolerance time.Duration
	CatchUp   bool
}

type ReminderConfig struct {
	Window time.Duration
	Lead   time.Duration
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

type ServeConfig struct {
	Addr         string
	NotifySpec   string
	GenerateSpec string
	CleanupSpec  string
}

type RecipientConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Load reads configuration from path, or from taskminder.yaml in the usual
// locations when path is empty. A missing file is not an error; environment
// variables prefixed with TASKMINDER_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("taskminder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/taskminder/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{Path: v.GetString("database.path")},
		Timezone: v.GetString("timezone"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		BaseURL: v.GetString("base_url"),
		Mail: MailConfig{
			Driver:        strings.ToLower(v.GetString("mail.driver")),
			From:          v.GetString("mail.from"),
			PostmarkToken: v.GetString("mail.postmark_token"),
			SMTP: SMTPConfig{
				Host:     v.GetString("mail.smtp.host"),
				Port:     v.GetInt("mail.smtp.port"),
				Username: v.GetString("mail.smtp.username"),
				Password: v.GetString("mail.smtp.password"),
			},
			RatePerSecond: v.GetFloat64("mail.rate_per_second"),
			Burst:         v.GetInt("mail.burst"),
			SendTimeout:   v.GetDuration("mail.send_timeout"),
		},
		Overdue: OverdueConfig{
			Delay:     v.GetDuration("overdue.delay"),
			Tolerance: v.GetDuration("overdue.tolerance"),
			CatchUp:   v.GetBool("overdue.catch_up"),
		},
		Reminder: ReminderConfig{
			Window: v.GetDuration("reminder.window"),
			Lead:   v.GetDuration("reminder.lead"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  v.GetString("push.vapid_public_key"),
			VAPIDPrivateKey: v.GetString("push.vapid_private_key"),
			Subscriber:      v.GetString("push.subscriber"),
		},
		Serve: ServeConfig{
			Addr:         v.GetString("serve.addr"),
			NotifySpec:   v.GetString("serve.notify_spec"),
			GenerateSpec: v.GetString("serve.generate_spec"),
			CleanupSpec:  v.GetString("serve.cleanup_spec"),
		},
		Recipient: RecipientConfig{
			CacheSize: v.GetInt("recipient.cache_size"),
			CacheTTL:  v.GetDuration("recipient.cache_ttl"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "taskminder.db")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("base_url", "")

	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.postmark_token", "")
	v.SetDefault("mail.smtp.host", "")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.username", "")
	v.SetDefault("mail.smtp.password", "")
	v.SetDefault("mail.rate_per_second", 10)
	v.SetDefault("mail.burst", 5)
	v.SetDefault("mail.send_timeout", "15s")

	v.SetDefault("overdue.delay", "30m")
	v.SetDefault("overdue.tolerance", "5m")
	v.SetDefault("overdue.catch_up", false)

	v.SetDefault("reminder.window", "30m")
	v.SetDefault("reminder.lead", "2h")

	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.vapid_private_key", "")
	v.SetDefault("push.subscriber", "")

	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.notify_spec", "@every 1m")
	v.SetDefault("serve.generate_spec", "5 0 * * *")
	v.SetDefault("serve.cleanup_spec", "@hourly")

	v.SetDefault("recipient.cache_size", 256)
	v.SetDefault("recipient.cache_ttl", "5m")
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc

	switch c.Mail.Driver {
	case "log", "postmark", "smtp":
	default:
		return fmt.Errorf("invalid mail.driver %q: want log, postmark or smtp", c.Mail.Driver)
	}

	if c.Overdue.Delay <= 0 {
		return fmt.Errorf("overdue.delay must be positive, got %s", c.Overdue.Delay)
	}
	if c.Overdue.Tolerance < 0 {
		return fmt.Errorf("overdue.tolerance must not be negative, got %s", c.Overdue.Tolerance)
	}
	if c.Reminder.Window <= 0 {
		return fmt.Errorf("reminder.window must be positive, got %s", c.Reminder.Window)
	}
	if c.Reminder.Lead < 0 {
		return fmt.Errorf("reminder.lead must not be negative, got %s", c.Reminder.Lead)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	return nil
}
