package config

import (
	"log"
	"os"
)

type Config struct {
	Port         string
	DBDSN        string
	LogFile      string
	DefaultGroup string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "backoffice.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./backoffice.log"
	}
	// Code of the customer group used for anonymous pricing lookups.
	group := os.Getenv("DEFAULT_GROUP")
	if group == "" {
		group = "b2c"
	}

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, DefaultGroup: group}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s DEFAULT_GROUP=%s", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.DefaultGroup)
	return cfg
}
