package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                     string `mapstructure:"PORT"`
	DatabasePath             string `mapstructure:"DATABASE_PATH"`
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	UploadDir                string `mapstructure:"UPLOAD_DIR"`
	AWSRegion                string `mapstructure:"AWS_REGION"`
	MailFrom                 string `mapstructure:"MAIL_FROM"`
	MailEnabled              bool   `mapstructure:"MAIL_ENABLED"`
	DiscordBotToken          string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordAnnounceChannelID string `mapstructure:"DISCORD_ANNOUNCE_CHANNEL_ID"`
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "conference.db")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("AWS_REGION", "eu-central-1")
	viper.SetDefault("MAIL_FROM", "registration@conference.local")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("MAIL_ENABLED")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_ANNOUNCE_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
