package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Storage
	StoreDriver           string
	MongoURI              string
	MongoUser             string
	MongoPassword         string
	MongoCluster          string
	DBName                string
	DatabaseURL           string
	AppointmentCollection string
	BookingCollection     string
	UserCollection        string
	DoctorCollection      string

	// Auth
	AccessTokenSecret string
	AccessTokenTTL    time.Duration

	// Availability
	AvailabilityFallbackDate string

	// Mail
	MailProvider    string
	SendGridAPIKey  string
	MailFromEmail   string
	MailFromName    string
	MailQueue       string
	MailQueueBuffer int
	MailQueueKey    string
	MailQueueURL    string

	// AWS (SES, SQS)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// HTTP
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "5000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:           strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", "memory"))),
		MongoURI:              getEnv("MONGO_URI", ""),
		MongoUser:             getEnv("DB_USER", ""),
		MongoPassword:         getEnv("DB_PASS", ""),
		MongoCluster:          getEnv("DB_CLUSTER", ""),
		DBName:                getEnv("DB_NAME", "doctors_portal"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		AppointmentCollection: getEnv("APPOINTMENT_COLLECTION", "appointments"),
		BookingCollection:     getEnv("BOOKING_COLLECTION", "bookings"),
		UserCollection:        getEnv("USER_COLLECTION", "users"),
		DoctorCollection:      getEnv("DOCTOR_COLLECTION", "doctors"),

		AccessTokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
		AccessTokenTTL:    getEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour),

		AvailabilityFallbackDate: getEnv("AVAILABILITY_FALLBACK_DATE", ""),

		MailProvider:    strings.ToLower(strings.TrimSpace(getEnv("MAIL_PROVIDER", "auto"))),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		MailFromEmail:   getEnv("MAIL_FROM_EMAIL", ""),
		MailFromName:    getEnv("MAIL_FROM_NAME", "Doctors Portal"),
		MailQueue:       strings.ToLower(strings.TrimSpace(getEnv("MAIL_QUEUE", "memory"))),
		MailQueueBuffer: getEnvAsInt("MAIL_QUEUE_BUFFER", 128),
		MailQueueKey:    getEnv("MAIL_QUEUE_KEY", "doctors-portal:mail"),
		MailQueueURL:    getEnv("MAIL_QUEUE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

// Validate reports configuration that would leave the service unable to serve.
func (c *Config) Validate() error {
	var errs []error
	if c.AccessTokenSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	switch c.StoreDriver {
	case "memory":
	case "mongo":
		if c.MongoConnectionURI() == "" {
			errs = append(errs, errors.New("MONGO_URI or DB_USER/DB_PASS/DB_CLUSTER is required for the mongo store"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.MailQueue {
	case "memory", "redis":
	case "sqs":
		if c.MailQueueURL == "" {
			errs = append(errs, errors.New("MAIL_QUEUE_URL is required for the sqs mail queue"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_QUEUE %q", c.MailQueue))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

// MongoConnectionURI returns MONGO_URI, or an Atlas URI assembled from the
// DB_USER / DB_PASS / DB_CLUSTER triple.
func (c *Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	if c.MongoUser == "" || c.MongoPassword == "" || c.MongoCluster == "" {
		return ""
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(c.MongoUser), url.QueryEscape(c.MongoPassword), c.MongoCluster)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
