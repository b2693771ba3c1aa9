package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the storefront client configuration
type Config struct {
	Port            string
	Env             string
	APIBaseURL      string
	DefaultCurrency string
	RequestTimeout  time.Duration
	ProductPageSize int
	OrderPageSize   int

	RedisURL string
	CartTTL  time.Duration

	CORSOrigins       []string
	AuthRatePerMinute int
	AuthRateBurst     int

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string

	AWSEndpoint string
	S3Bucket    string
	S3Prefix    string

	// SecretName names a Secrets Manager secret whose keys override the
	// environment (see ApplySecrets).
	SecretName string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:            getEnv("PORT", "8090"),
		Env:             getEnv("APP_ENV", "development"),
		APIBaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "BRL")),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ProductPageSize: getEnvInt("PRODUCT_PAGE_SIZE", 40),
		OrderPageSize:   getEnvInt("ORDER_PAGE_SIZE", 4),

		RedisURL: getEnv("REDIS_URL", ""),
		CartTTL:  getEnvDuration("CART_TTL", 7*24*time.Hour),

		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		AuthRatePerMinute: getEnvInt("AUTH_RATE_PER_MINUTE", 30),
		AuthRateBurst:     getEnvInt("AUTH_RATE_BURST", 10),

		CloudWatchEnabled:   getEnvBool("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Storefront"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/storefront/client"),

		AWSEndpoint: getEnv("AWS_ENDPOINT", ""),
		S3Bucket:    getEnv("AWS_S3_BUCKET", ""),
		S3Prefix:    getEnv("AWS_S3_PREFIX", "products/"),

		SecretName: getEnv("CONFIG_SECRET_NAME", ""),
	}
}

// ApplySecrets overrides the settings that may be kept out of the
// environment. Unknown keys are ignored and empty values keep the current one.
func (c *Config) ApplySecrets(values map[string]string) {
	if v := values["API_BASE_URL"]; v != "" {
		c.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := values["REDIS_URL"]; v != "" {
		c.RedisURL = v
	}
	if v := values["AWS_S3_BUCKET"]; v != "" {
		c.S3Bucket = v
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, val, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, val, defaultVal)
		return defaultVal
	}
	return d
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
