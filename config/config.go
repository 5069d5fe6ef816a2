package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server  ServerConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	JWT     JWTConfig
	SMTP    SMTPConfig
	Twilio  TwilioConfig
	Uploads UploadConfig

	// StrictStatusTransitions enforces the pending -> in-progress ->
	// resolved order on complaint updates. Off by default: the platform
	// historically allowed any transition, including re-opens.
	StrictStatusTransitions bool
}

type ServerConfig struct {
	Port        string
	FrontendURL string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Address  string
	Password string
}

type JWTConfig struct {
	Secret string
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

type UploadConfig struct {
	Dir              string
	ComplaintLimit   int // complaint creations per user per day
	MaxImageBytes    int64
	MaxImagesPerPost int
}

var AppConfig *Config

// Load reads configuration from the environment. Call once at startup,
// after godotenv has populated process env.
func Load() *Config {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:4200"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", ""),
			Database: getEnv("MONGODB_DATABASE", "civicpulse"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "noreply@civicpulse.com"),
		},
		Twilio: TwilioConfig{
			AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		Uploads: UploadConfig{
			Dir:              getEnv("UPLOAD_DIR", "uploads"),
			ComplaintLimit:   getEnvAsInt("COMPLAINT_DAILY_LIMIT", 20),
			MaxImageBytes:    int64(getEnvAsInt("MAX_IMAGE_BYTES", 5*1024*1024)),
			MaxImagesPerPost: getEnvAsInt("MAX_IMAGES_PER_COMPLAINT", 5),
		},
		StrictStatusTransitions: getEnvAsBool("STRICT_STATUS_TRANSITIONS", false),
	}
	return AppConfig
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
