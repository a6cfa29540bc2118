package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PayoutConfig struct {
	Env           string `yaml:"env"`
	HTTPServer    `yaml:"http_server"`
	PayoutDB      `yaml:"payout_db"`
	KafkaService  `yaml:"kafka-service"`
	Redis         `yaml:"redis"`
	SenderService `yaml:"sender-service"`
	LogConfig     `yaml:"log_config"`
	Disbursement  `yaml:"disbursement"`
	Eligibility   `yaml:"eligibility"`
	Referral      `yaml:"referral"`
	Watchdog      `yaml:"watchdog"`
}

type HTTPServer struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type PayoutDB struct {
	Dsn            string `yaml:"dsn" env:"PAYOUT_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"migrations"`
}

type KafkaService struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	OrderTopic  string `yaml:"order_topic" env-default:"order-events"`
	PayoutTopic string `yaml:"payout_topic" env-default:"payout-events"`
	AlertTopic  string `yaml:"alert_topic" env-default:"ops-alerts"`
	GroupID     string `yaml:"group_id" env-default:"linkmint-payout-core"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type SenderService struct {
	Address string `yaml:"address"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type Disbursement struct {
	BatchSize     int           `yaml:"batch_size" env-default:"200"`
	Interval      time.Duration `yaml:"interval" env-default:"5m"`
	Currency      string        `yaml:"currency" env-default:"PHP"`
	FloatLowWater int64         `yaml:"float_low_water_minor" env-default:"100000"`
}

type Eligibility struct {
	MinTrustScore int      `yaml:"min_trust_score" env-default:"50"`
	HoneymoonDays int      `yaml:"honeymoon_days" env-default:"30"`
	AllowList     []string `yaml:"allow_list"`
}

type Referral struct {
	InviteeShare  float64 `yaml:"invitee_share" env-default:"0.80"`
	ReferrerShare float64 `yaml:"referrer_share" env-default:"0.05"`
}

type Watchdog struct {
	Interval       time.Duration `yaml:"interval" env-default:"1m"`
	ErrorThreshold int64         `yaml:"error_threshold" env-default:"25"`
	ErrorWindow    time.Duration `yaml:"error_window" env-default:"10m"`
	SustainedTicks int           `yaml:"sustained_ticks" env-default:"3"`
	StuckTimeout   time.Duration `yaml:"stuck_timeout" env-default:"30m"`
	LogRetention   time.Duration `yaml:"log_retention" env-default:"2160h"`
}

func MustLoad() *PayoutConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYOUT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYOUT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg PayoutConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
