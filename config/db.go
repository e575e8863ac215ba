package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ethantanner/spotify-coding-challenge/models"
)

// tlsConfigName is the profile registered with the mysql driver when a CA
// certificate is configured; the DSN references it by name.
const tlsConfigName = "spotify-cache"

// OpenDB connects to MySQL, registers the TLS root certificate when one is
// configured, tunes the connection pool and synchronizes the schema with the
// model structs. There is no migration history; the schema follows the models.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUsername, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	if cfg.DBCACert != "" {
		if err := registerTLSConfig(cfg.DBCACert); err != nil {
			return nil, fmt.Errorf("registering database TLS config: %w", err)
		}
		dsn += "&tls=" + tlsConfigName
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&models.Track{}, &models.Artist{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return db, nil
}

func registerTLSConfig(caPEM string) error {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(caPEM)) {
		return errors.New("no certificates found in CA bundle")
	}
	return mysqldriver.RegisterTLSConfig(tlsConfigName, &tls.Config{RootCAs: pool})
}
