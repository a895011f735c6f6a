package main

import (
	"github.com/aptosedu/aptpay/ledger/store"
	"github.com/aptosedu/aptpay/logger"
)

// Yaml configuration reference
type Config struct {
	ListenAddress string `yaml:"listen-address"`
	DatabasePath  string `yaml:"database-path"`
	LogLevel      string `yaml:"log-level"`
}

func (c *Config) Compile() (*store.Store, logger.Logger, error) {
	log := logger.NewZapLogger(c.LogLevel)

	db, err := store.Open(c.DatabasePath, log)
	if err != nil {
		return nil, nil, err
	}
	return db, log, nil
}
