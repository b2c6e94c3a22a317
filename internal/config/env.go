package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the application.
// Every chain/API constant is overridable through the environment so the same
// binary serves devnet and mainnet deployments.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Chain and backend endpoints
	CompareAPIBaseURL string `envconfig:"COMPARE_API_BASE_URL" default:"http://localhost:5000"`
	BridgeRPCURL      string `envconfig:"BRIDGE_RPC_URL" default:"http://localhost:7545"`
	GraphQLURL        string `envconfig:"GRAPHQL_URL" default:"https://devnet.xian.org/graphql"`
	ChainWSURL        string `envconfig:"CHAIN_WS_URL" default:"ws://localhost:26657/websocket"`

	// Contract parameters
	ContractName string `envconfig:"SBT_CONTRACT" default:"con_sbtxian"`
	UpdateMethod string `envconfig:"UPDATE_METHOD" default:"update_traits"`
	StampLimit   uint64 `envconfig:"STAMP_LIMIT" default:"100"`

	// Tracked trait keys, in display order, and their chain-side field names
	TraitKeys     []string          `envconfig:"TRAIT_KEYS" default:"Score,Tier,Stake Duration,DEX Volume,Game Wins,Bots Created,Pulse Influence"`
	ChainFieldMap map[string]string `envconfig:"CHAIN_FIELD_MAP" default:"Score:score,Tier:tier,Stake Duration:stake_duration,DEX Volume:dex_volume,Game Wins:game_wins,Bots Created:bots_created,Pulse Influence:pulse_influence"`

	// Update pacing
	UpdateDebounceMS int `envconfig:"UPDATE_DEBOUNCE_MS" default:"800"`
	RecheckDelayMS   int `envconfig:"RECHECK_DELAY_MS" default:"1800"`

	// Monitor store and holder refresh
	MongoURI            string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB             string `envconfig:"MONGO_DB" default:"xian_monitor"`
	TraitsCollection    string `envconfig:"COLL_TRAITS" default:"traits"`
	ProcessedCollection string `envconfig:"COLL_PROCESSED" default:"processed"`
	HolderRefreshSecs   int    `envconfig:"SBT_REFRESH_SECS" default:"300"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetCompareAPIBaseURL returns the compare backend base URL from configuration
func GetCompareAPIBaseURL() string {
	return Get().CompareAPIBaseURL
}

// GetBridgeRPCURL returns the wallet bridge daemon URL from configuration
func GetBridgeRPCURL() string {
	return Get().BridgeRPCURL
}

// GetGraphQLURL returns the chain GraphQL endpoint from configuration
func GetGraphQLURL() string {
	return Get().GraphQLURL
}

// GetChainWSURL returns the CometBFT websocket endpoint from configuration
func GetChainWSURL() string {
	return Get().ChainWSURL
}

// GetContractName returns the SBT contract name from configuration
func GetContractName() string {
	return Get().ContractName
}

// GetUpdateMethod returns the batched trait update method name from configuration
func GetUpdateMethod() string {
	return Get().UpdateMethod
}

// GetStampLimit returns the transaction stamp limit from configuration
func GetStampLimit() uint64 {
	return Get().StampLimit
}

// GetTraitKeys returns the ordered tracked trait keys from configuration
func GetTraitKeys() []string {
	return Get().TraitKeys
}

// GetChainFieldMap returns the display-name to chain-field translation table
func GetChainFieldMap() map[string]string {
	return Get().ChainFieldMap
}

// GetUpdateDebounce returns the minimum gap between accepted update calls
func GetUpdateDebounce() time.Duration {
	return time.Duration(Get().UpdateDebounceMS) * time.Millisecond
}

// GetRecheckDelay returns the post-update re-compare delay
func GetRecheckDelay() time.Duration {
	return time.Duration(Get().RecheckDelayMS) * time.Millisecond
}

// GetHolderRefreshInterval returns how often the monitor refreshes the SBT holder set
func GetHolderRefreshInterval() time.Duration {
	return time.Duration(Get().HolderRefreshSecs) * time.Second
}
