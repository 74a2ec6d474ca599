package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	defaultHeartbeatIntervalMs = 5000
	defaultReconnectBackoffMs  = 5000
	defaultDialTimeoutMs       = 5000

	// readTimeoutFactor keeps a single missed heartbeat from tripping the read deadline.
	readTimeoutFactor = 6
)

// Config holds the application's configuration values.
type Config struct {
	ServerHost           string        // Hostname or IP address of the game server
	ServerPort           int           // TCP port of the game server
	HeartbeatInterval    time.Duration // Interval between heartbeat lines
	ReadTimeout          time.Duration // Read deadline applied to every inbound line
	ReconnectBackoff     time.Duration // Wait before a new connection attempt
	DialTimeout          time.Duration // Timeout for a single TCP dial
	RequeueOnSendFailure bool          // Push a move back to the queue when sending it fails
	StatusAddr           string        // Listen address of the status API, empty disables it
	JWTSecret            string        // Secret key for status API tokens, empty leaves it open
	JWTIssuer            string        // Issuer claim for status API tokens
	LogFile              string        // Rotating log file path, empty logs to stdout only
}

// ServerAddr returns the host:port of the game server.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load reads the configuration from the environment.
// It loads environment variables from a .env file first when one exists.
func Load() (Config, error) {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	host, err := getEnv("SERVER_HOST")
	if err != nil {
		return Config{}, err
	}
	port, err := getEnvAsInt("SERVER_PORT")
	if err != nil {
		return Config{}, err
	}

	heartbeatMs, err := getEnvAsIntWithDefault("HEARTBEAT_INTERVAL_MS", defaultHeartbeatIntervalMs)
	if err != nil {
		return Config{}, err
	}
	readTimeoutMs, err := getEnvAsIntWithDefault("READ_TIMEOUT_MS", heartbeatMs*readTimeoutFactor)
	if err != nil {
		return Config{}, err
	}
	backoffMs, err := getEnvAsIntWithDefault("RECONNECT_BACKOFF_MS", defaultReconnectBackoffMs)
	if err != nil {
		return Config{}, err
	}
	dialMs, err := getEnvAsIntWithDefault("DIAL_TIMEOUT_MS", defaultDialTimeoutMs)
	if err != nil {
		return Config{}, err
	}
	requeue, err := strconv.ParseBool(getEnvWithDefault("REQUEUE_ON_SEND_FAILURE", "false"))
	if err != nil {
		return Config{}, errors.Wrap(err, "environment variable REQUEUE_ON_SEND_FAILURE must be a boolean")
	}

	if readTimeoutMs <= heartbeatMs {
		return Config{}, errors.Errorf("READ_TIMEOUT_MS (%d) must be larger than HEARTBEAT_INTERVAL_MS (%d)", readTimeoutMs, heartbeatMs)
	}

	return Config{
		ServerHost:           host,
		ServerPort:           port,
		HeartbeatInterval:    time.Duration(heartbeatMs) * time.Millisecond,
		ReadTimeout:          time.Duration(readTimeoutMs) * time.Millisecond,
		ReconnectBackoff:     time.Duration(backoffMs) * time.Millisecond,
		DialTimeout:          time.Duration(dialMs) * time.Millisecond,
		RequeueOnSendFailure: requeue,
		StatusAddr:           getEnvWithDefault("STATUS_ADDR", ""),
		JWTSecret:            getEnvWithDefault("STATUS_JWT_SECRET", ""),
		JWTIssuer:            getEnvWithDefault("STATUS_JWT_ISSUER", "vinom-client"),
		LogFile:              getEnvWithDefault("LOG_FILE", ""),
	}, nil
}

// getEnv retrieves the value of a required environment variable.
func getEnv(key string) (string, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return "", errors.Errorf("environment variable %s is not set", key)
	}
	return value, nil
}

// getEnvAsInt retrieves a required environment variable as an integer.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.Wrapf(err, "environment variable %s must be an integer", key)
	}
	return value, nil
}

// getEnvAsIntWithDefault retrieves an optional integer environment variable.
func getEnvAsIntWithDefault(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.Wrapf(err, "environment variable %s must be an integer", key)
	}
	if value <= 0 {
		return 0, errors.Errorf("environment variable %s must be positive", key)
	}
	return value, nil
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
