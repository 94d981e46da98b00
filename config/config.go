package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

type Config struct {
	ServerPort           string `json:"server_port"`
	DatabasePath         string `json:"database_path"`
	ServerSecret         string `json:"server_secret"`
	JWTSecret            string `json:"jwt_secret"`
	Production           bool   `json:"production"`
	SessionDurationHours int    `json:"session_duration_hours"`
	DefaultTimezone      string `json:"default_timezone"`

	// AI assistant settings. AIBaseURL points at a chat-completions style
	// endpoint; an empty URL disables the assistant and every caller falls
	// back to local heuristics.
	AIBaseURL        string `json:"ai_base_url"`
	AIAPIKey         string `json:"ai_api_key"`
	AIModel          string `json:"ai_model"`
	AITimeoutSeconds int    `json:"ai_timeout_seconds"`
}

var (
	instance *Config
	once     sync.Once
)

func generateSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}

func getConfigPath() string {
	configDir := os.Getenv("AURORA_CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			configDir = "."
		} else {
			configDir = filepath.Join(homeDir, ".aurora")
		}
	}
	return filepath.Join(configDir, "config.json")
}

func GetConfig() *Config {
	once.Do(func() {
		instance = &Config{
			ServerPort:   "8080",
			DatabasePath: "",
			ServerSecret: "",
			JWTSecret:    "",
			Production:   false,
		}

		configPath := getConfigPath()

		// Try to load existing config
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, instance); err != nil {
				// Config file is corrupted, will use defaults
			}
		}

		// Set defaults
		if instance.SessionDurationHours == 0 {
			instance.SessionDurationHours = 24
		}
		if instance.DefaultTimezone == "" {
			instance.DefaultTimezone = "UTC"
		}
		if instance.AIModel == "" {
			instance.AIModel = "gpt-4o-mini"
		}
		if instance.AITimeoutSeconds == 0 {
			instance.AITimeoutSeconds = 8
		}

		// Generate secrets if not set
		needsSave := false
		if instance.ServerSecret == "" {
			instance.ServerSecret = generateSecret(32)
			needsSave = true
		}
		if instance.JWTSecret == "" {
			instance.JWTSecret = generateSecret(32)
			needsSave = true
		}
		if instance.DatabasePath == "" {
			configDir := filepath.Dir(configPath)
			instance.DatabasePath = filepath.Join(configDir, "aurora.db")
			needsSave = true
		}

		// Override with environment variables
		if port := os.Getenv("AURORA_PORT"); port != "" {
			instance.ServerPort = port
		}
		if dbPath := os.Getenv("AURORA_DB_PATH"); dbPath != "" {
			instance.DatabasePath = dbPath
		}
		if os.Getenv("AURORA_PRODUCTION") == "true" {
			instance.Production = true
		}
		if url := os.Getenv("AURORA_AI_URL"); url != "" {
			instance.AIBaseURL = url
		}
		if key := os.Getenv("AURORA_AI_KEY"); key != "" {
			instance.AIAPIKey = key
		}
		if model := os.Getenv("AURORA_AI_MODEL"); model != "" {
			instance.AIModel = model
		}
		if timeout := os.Getenv("AURORA_AI_TIMEOUT"); timeout != "" {
			if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
				instance.AITimeoutSeconds = secs
			}
		}
		if tz := os.Getenv("AURORA_TIMEZONE"); tz != "" {
			instance.DefaultTimezone = tz
		}

		// Save config if we generated new secrets
		if needsSave {
			instance.Save()
		}
	})

	return instance
}

func (c *Config) Save() error {
	configPath := getConfigPath()

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}
