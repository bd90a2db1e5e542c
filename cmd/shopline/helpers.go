package main

import (
	"fmt"
	"os"

	"github.com/zulandar/shopline/internal/config"
	"github.com/zulandar/shopline/internal/db"
	"gorm.io/gorm"
)

const defaultConfigPath = "shopline.yaml"

// connectFromConfig loads the config file and opens the database.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg.MySQL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// actor returns the acting operator's ID for audit attribution, from
// SHOPLINE_ACTOR or the OS user.
func actor() string {
	if a := os.Getenv("SHOPLINE_ACTOR"); a != "" {
		return a
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
