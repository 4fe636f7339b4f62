package config

import (
	"github.com/multiversx/mx-chain-core-go/core"
)

// Config holds the complete configuration of the staking core
type Config struct {
	Staking        StakingConfig
	NTP            NTPConfig
	CommitteeCache CacheConfig
}

// StakingConfig holds the staking and epoch transition protocol parameters
type StakingConfig struct {
	// NumberOfShards is the fixed number of storage partitions distributed to the committee
	NumberOfShards uint32
	// EpochDurationSeconds is the wall-clock length of one epoch; parameter voting
	// closes at half of it
	EpochDurationSeconds uint32
	// ActiveSetMaxSize bounds the number of candidate nodes tracked by stake
	ActiveSetMaxSize uint32
	// ActiveSetThresholdStake is the minimum stake for entering the active set,
	// expressed as a decimal string
	ActiveSetThresholdStake string
}

// NTPConfig holds the configuration for NTP queries
type NTPConfig struct {
	Hosts               []string
	Port                int
	TimeoutMilliseconds int
	SyncPeriodSeconds   int
	Version             int
}

// CacheConfig holds the configuration of a cache
type CacheConfig struct {
	Type     string
	Capacity uint32
	Shards   uint32
}

// LoadConfig reads the toml file at filePath into a Config
func LoadConfig(filePath string) (*Config, error) {
	cfg := &Config{}
	err := core.LoadTomlFile(cfg, filePath)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
