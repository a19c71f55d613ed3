/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/snapshot"
	"github.com/suparena/unitofwork/snapshot/ddb"
)

// Environment variables read by Load.
const (
	EnvMetadataFile    = "UOW_METADATA_FILE"
	EnvLogLevel        = "UOW_LOG_LEVEL"
	EnvSnapshotBackend = "UOW_SNAPSHOT_BACKEND"
	EnvAWSAccessKey    = "AWS_ACCESS_KEY"
	EnvAWSSecretKey    = "AWS_SECRET_KEY"
	EnvAWSRegion       = "AWS_REGION"
	EnvDDBTable        = "AWS_DDB_TABLE"
)

// Snapshot backends.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// Config is the process configuration.
type Config struct {
	MetadataFile    string
	LogLevel        string
	SnapshotBackend string
	AWSAccessKey    string
	AWSSecretKey    string
	AWSRegion       string
	DDBTable        string
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing files are ignored; variables already set in the
// environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		MetadataFile:    os.Getenv(EnvMetadataFile),
		LogLevel:        getenv(EnvLogLevel, "info"),
		SnapshotBackend: strings.ToLower(getenv(EnvSnapshotBackend, BackendMemory)),
		AWSAccessKey:    os.Getenv(EnvAWSAccessKey),
		AWSSecretKey:    os.Getenv(EnvAWSSecretKey),
		AWSRegion:       os.Getenv(EnvAWSRegion),
		DDBTable:        os.Getenv(EnvDDBTable),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return errors.NewConfigurationError("config", fmt.Sprintf("invalid %s %q", EnvLogLevel, c.LogLevel))
	}
	switch c.SnapshotBackend {
	case BackendMemory:
	case BackendDynamoDB:
		var missing []string
		for name, v := range map[string]string{EnvAWSRegion: c.AWSRegion, EnvDDBTable: c.DDBTable} {
			if v == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return errors.NewConfigurationError("config", fmt.Sprintf("dynamodb backend requires %s", strings.Join(missing, ", ")))
		}
	default:
		return errors.NewConfigurationError("config", fmt.Sprintf("unknown %s %q", EnvSnapshotBackend, c.SnapshotBackend))
	}
	return nil
}

// Logger builds a production logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}

// SnapshotStore builds the configured snapshot store.
func (c *Config) SnapshotStore(ctx context.Context) (snapshot.Store, error) {
	if c.SnapshotBackend == BackendDynamoDB {
		return ddb.NewSnapshotStore(ctx, c.AWSAccessKey, c.AWSSecretKey, c.AWSRegion, c.DDBTable)
	}
	return snapshot.NewMemoryStore(), nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
