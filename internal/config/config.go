package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	Payment PaymentConfig
	OpenAI  OpenAIConfig
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type BackendConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type PaymentConfig struct {
	Network    string `mapstructure:"network"`
	ChainID    int64  `mapstructure:"chain_id"`
	RPCURL     string `mapstructure:"rpc_url"`
	USDCAsset  string `mapstructure:"usdc_asset"`
	PrivateKey string `mapstructure:"private_key"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("payment.network", "base-sepolia")
	v.SetDefault("payment.chain_id", 84532)
	v.SetDefault("payment.rpc_url", "https://sepolia.base.org")
	v.SetDefault("payment.usdc_asset", "0x036CbD53842c5426634e7929541eC2318f3dCF7e")
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("openai.model", "gpt-4-turbo-preview")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	_ = v.ReadInConfig()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit env bindings
	bindings := map[string]string{
		"server.port":         "PORT",
		"backend.url":         "BACKEND_URL",
		"redis.addr":          "REDIS_ADDR",
		"redis.password":      "REDIS_PASSWORD",
		"payment.network":     "PAYMENT_NETWORK",
		"payment.chain_id":    "CHAIN_ID",
		"payment.rpc_url":     "RPC_URL",
		"payment.usdc_asset":  "USDC_ASSET",
		"payment.private_key": "WALLET_PRIVATE_KEY",
		"openai.api_key":      "OPENAI_API_KEY",
		"openai.base_url":     "OPENAI_BASE_URL",
		"openai.model":        "OPENAI_MODEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// ValidateGateway checks the settings the HTTP gateway needs.
func (c *Config) ValidateGateway() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("required config missing: BACKEND_URL")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("required config missing: OPENAI_API_KEY")
	}
	return nil
}

// ValidateClient checks the settings the CLI chat client needs.
func (c *Config) ValidateClient() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("required config missing: BACKEND_URL")
	}
	if c.Payment.PrivateKey == "" {
		return fmt.Errorf("required config missing: WALLET_PRIVATE_KEY")
	}
	if c.Payment.ChainID == 0 {
		return fmt.Errorf("required config missing: CHAIN_ID")
	}
	return nil
}
