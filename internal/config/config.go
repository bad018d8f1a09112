package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		Debug          bool     `yaml:"debug"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		QuestionsPath    string `yaml:"questions_path"`
		CacheTTL         string `yaml:"cache_ttl"`
		Duration         string `yaml:"duration"`
		Tick             string `yaml:"tick"`
		MinQuestions     int    `yaml:"min_questions"`
		MaxWarnings      int    `yaml:"max_warnings"`
		SessionRetention string `yaml:"session_retention"`
	} `yaml:"quiz"`
	Leaderboard struct {
		Size    int `yaml:"size"`
		Display int `yaml:"display"`
	} `yaml:"leaderboard"`
}

// Defaults returns a config that runs entirely in memory.
func Defaults() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	cfg.Redis.TTL = "30m"
	cfg.Quiz.QuestionsPath = "questions.json"
	cfg.Quiz.CacheTTL = "10m"
	cfg.Quiz.Duration = "10m"
	cfg.Quiz.Tick = "1s"
	cfg.Quiz.MinQuestions = 10
	cfg.Quiz.MaxWarnings = 3
	cfg.Quiz.SessionRetention = "30m"
	cfg.Leaderboard.Size = 10
	cfg.Leaderboard.Display = 3
	return cfg
}

// Load reads YAML config from path on top of Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
