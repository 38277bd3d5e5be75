package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Booking BookingConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BookingConfig carries the slot quantization constants. They are enforced
// identically by the client-side pre-check and the authoritative server
// check; only the server check matters for correctness.
type BookingConfig struct {
	// SlotMinutes is the quantization granularity of the booking grid.
	SlotMinutes int
	// MinLeadTime is the minimum interval between now and the earliest
	// bookable slot.
	MinLeadTime time.Duration
	// CacheTTL bounds how stale a cached availability view may be. It must
	// not exceed ReconcileInterval.
	CacheTTL time.Duration
	// ReconcileInterval is the client polling period.
	ReconcileInterval time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	slotMinutes := viper.GetInt("BOOKING_SLOT_MINUTES")
	if slotMinutes <= 0 {
		slotMinutes = 20
	}

	minLeadTime, err := time.ParseDuration(viper.GetString("BOOKING_MIN_LEAD_TIME"))
	if err != nil {
		minLeadTime = time.Hour
	}

	cacheTTL, err := time.ParseDuration(viper.GetString("AVAILABILITY_CACHE_TTL"))
	if err != nil {
		cacheTTL = 5 * time.Second
	}

	reconcileInterval, err := time.ParseDuration(viper.GetString("RECONCILE_INTERVAL"))
	if err != nil {
		reconcileInterval = 5 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Booking: BookingConfig{
			SlotMinutes:       slotMinutes,
			MinLeadTime:       minLeadTime,
			CacheTTL:          cacheTTL,
			ReconcileInterval: reconcileInterval,
		},
	}

	return config, nil
}
