package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Session SessionConfig
	Catalog CatalogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// StoreConfig points at the hosted remote store.
type StoreConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

// SessionConfig carries the demo session identities used to scope
// notification and seller-stats fetches. The original hard-coded these; here
// they are configuration handed to the catalog controller.
type SessionConfig struct {
	BuyerID  string
	SellerID string
}

type CatalogConfig struct {
	PlaceholderImage string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("STORE_HOST", "localhost")
	viper.SetDefault("STORE_PORT", "5432")
	viper.SetDefault("STORE_SCHEMA", "public")
	viper.SetDefault("STORE_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60)
	viper.SetDefault("SESSION_BUYER_ID", "00000000-0000-0000-0000-000000000002")
	viper.SetDefault("SESSION_SELLER_ID", "00000000-0000-0000-0000-000000000004")
	viper.SetDefault("CATALOG_PLACEHOLDER_IMAGE", "https://images.unsplash.com/photo-1607305387299-a3d9611cd469?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Store: StoreConfig{
			Host:     viper.GetString("STORE_HOST"),
			Port:     viper.GetString("STORE_PORT"),
			User:     viper.GetString("STORE_USER"),
			Password: viper.GetString("STORE_PASSWORD"),
			Database: viper.GetString("STORE_DATABASE"),
			Schema:   viper.GetString("STORE_SCHEMA"),
			SSLMode:  viper.GetString("STORE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Session: SessionConfig{
			BuyerID:  viper.GetString("SESSION_BUYER_ID"),
			SellerID: viper.GetString("SESSION_SELLER_ID"),
		},
		Catalog: CatalogConfig{
			PlaceholderImage: viper.GetString("CATALOG_PLACEHOLDER_IMAGE"),
		},
	}
}
