package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type MQTTConfig struct {
	BrokerURL string `mapstructure:"broker_url"`
	ClientID  string `mapstructure:"client_id"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

type ConsulConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type Config struct {
	HTTPPort    int    `mapstructure:"http_port"`
	LogLevel    string `mapstructure:"log_level"`
	DatabaseURL string `mapstructure:"database_url"`
	ServiceName string `mapstructure:"service_name"`
	// Add JWT Secret Key here instead of hardcoding
	JwtSecret string       `mapstructure:"jwt_secret"`
	MQTT      MQTTConfig   `mapstructure:"mqtt"`
	Consul    ConsulConfig `mapstructure:"consul"`
}

var AppConfig Config

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable overrides
	viper.SetEnvPrefix("SMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("http_port", 8080)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("service_name", "sms-backend")
	viper.SetDefault("jwt_secret", "default-very-insecure-secret-key") // CHANGE THIS IN PRODUCTION
	viper.SetDefault("mqtt.broker_url", "tcp://localhost:1883")
	viper.SetDefault("mqtt.client_id", "sms-backend")
	viper.SetDefault("consul.enabled", false)
	viper.SetDefault("consul.address", "localhost:8500")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults and environment variables.")
		} else {
			panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		panic(fmt.Errorf("unable to decode config into struct: %w", err))
	}
}
