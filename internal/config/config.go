package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIToken = "dev-token"

// Config holds all runtime settings for the server.
type Config struct {
	DBConnStr        string
	HTTPPort         string
	APIToken         string
	BaseCurrency     string
	PollInterval     time.Duration
	HTTPTimeout      time.Duration
	CoinGeckoBaseURL string
	YahooBaseURL     string
}

// Load reads configuration from the environment, falling back to a .env
// file when present and to built-in defaults otherwise.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	pollMinutes := getEnvInt("PRICE_POLL_MINUTES", 5)
	timeoutSeconds := getEnvInt("HTTP_TIMEOUT_SECONDS", 15)

	return Config{
		DBConnStr:        dbConnStr(),
		HTTPPort:         getEnv("HTTP_PORT", ":8080"),
		APIToken:         getEnv("API_TOKEN", defaultAPIToken),
		BaseCurrency:     getEnv("BASE_CCY", "GBP"),
		PollInterval:     time.Duration(pollMinutes) * time.Minute,
		HTTPTimeout:      time.Duration(timeoutSeconds) * time.Second,
		CoinGeckoBaseURL: getEnv("COINGECKO_BASE_URL", ""),
		YahooBaseURL:     getEnv("YAHOO_BASE_URL", ""),
	}
}

// dbConnStr returns DB_CONN_STR when set, otherwise assembles a connection
// string from the individual DB_* vars (Docker friendly).
func dbConnStr() string {
	if s := os.Getenv("DB_CONN_STR"); s != "" {
		return s
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "portfolio")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
