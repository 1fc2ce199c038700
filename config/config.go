package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Auth         Auth
	GeminiApiKey string
	FrontendURL  string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Auth struct {
	JWTSecret string
	// EmailDomain is appended to usernames to form the login key the
	// identity layer stores; accounts have no real mailbox.
	EmailDomain string
	TokenTTLH   int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("ACCOUNT_EMAIL_DOMAIN", "techmilsolutions.co")
	viper.SetDefault("TOKEN_TTL_HOURS", 72)
	viper.SetDefault("SERVER_PORT", "8080")

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.EmailDomain = viper.GetString("ACCOUNT_EMAIL_DOMAIN")
	config.Auth.TokenTTLH = viper.GetInt("TOKEN_TTL_HOURS")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.FrontendURL = viper.GetString("FRONTEND_URL")

	log.Info().Str("port", config.Server.Port).Str("db", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
