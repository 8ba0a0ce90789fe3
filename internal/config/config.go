package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// InitConfig initializes the application configuration using viper.
// If configPath is provided, it will use that specific file,
// otherwise it will look for 'local.yaml' in the config directory
func InitConfig(configPath string) {
	if configPath != "" {
		// Use specified config file
		viper.SetConfigFile(configPath)
	} else {
		// Default config location
		viper.AddConfigPath("config")
		viper.SetConfigName("local")
	}
	viper.SetConfigType("yaml")

	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	setDefaults()

	// Attempt to read the configuration file
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Can't read config: %s\n", err)
	}
}

func setDefaults() {
	viper.SetDefault("port", "8080")
	viper.SetDefault("defaultBlockchain", "ethereum")
	viper.SetDefault("sourceTimeout", "10s")
	viper.SetDefault("freeDailyScans", 5)
	viper.SetDefault("proDailyScans", 100)

	// Public endpoints; overridden in tests to point at local fakes.
	viper.SetDefault("coingeckoBaseUrl", "https://api.coingecko.com/api/v3")
	viper.SetDefault("geckoterminalBaseUrl", "https://api.geckoterminal.com/api/v2")
	viper.SetDefault("etherscanBaseUrl", "https://api.etherscan.io/api")
	viper.SetDefault("goplusBaseUrl", "https://api.gopluslabs.io")
	viper.SetDefault("defillamaBaseUrl", "https://api.llama.fi")
	viper.SetDefault("apifyBaseUrl", "https://api.apify.com")
	viper.SetDefault("apifyTwitterActor", "apidojo~twitter-user-scraper")
}

func GetPort() string {
	return viper.GetString("port")
}

func GetDatabaseURL() string {
	return viper.GetString("databaseUrl")
}

func GetSupabaseRealtimeURL() string {
	return viper.GetString("supabaseRealtimeUrl")
}

func GetSupabaseAnonKey() string {
	return viper.GetString("supabaseAnonKey")
}

func GetAuthUsername() string {
	return viper.GetString("adminUsername")
}

func GetAuthPassword() string {
	return viper.GetString("adminPassword")
}

func GetCoingeckoBaseURL() string {
	return viper.GetString("coingeckoBaseUrl")
}

func GetCoingeckoAPIKey() string {
	return viper.GetString("coingeckoApiKey")
}

func GetGeckoTerminalBaseURL() string {
	return viper.GetString("geckoterminalBaseUrl")
}

func GetEtherscanBaseURL() string {
	return viper.GetString("etherscanBaseUrl")
}

func GetEtherscanAPIKey() string {
	return viper.GetString("etherscanApiKey")
}

func GetGoPlusBaseURL() string {
	return viper.GetString("goplusBaseUrl")
}

func GetDefiLlamaBaseURL() string {
	return viper.GetString("defillamaBaseUrl")
}

func GetApifyBaseURL() string {
	return viper.GetString("apifyBaseUrl")
}

func GetApifyToken() string {
	return viper.GetString("apifyToken")
}

func GetApifyTwitterActor() string {
	return viper.GetString("apifyTwitterActor")
}

// GetDefaultBlockchain is the platform assumed for bare contract addresses.
func GetDefaultBlockchain() string {
	return viper.GetString("defaultBlockchain")
}

// GetSourceTimeout bounds each outbound HTTP call.
func GetSourceTimeout() time.Duration {
	return viper.GetDuration("sourceTimeout")
}

func GetFreeDailyScans() int {
	return viper.GetInt("freeDailyScans")
}

func GetProDailyScans() int {
	return viper.GetInt("proDailyScans")
}
