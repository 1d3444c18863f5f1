package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ChainNetworkConfig one chain reachable through the messaging layer
type ChainNetworkConfig struct {
	ChainID      uint16 `yaml:"chain_id" json:"chain_id"` // messaging-layer chain id
	Name         string `yaml:"name" json:"name"`
	NativeSymbol string `yaml:"native_symbol" json:"native_symbol"`
	IsEVM        bool   `yaml:"is_evm" json:"is_evm"`
	Explorer     string `yaml:"explorer" json:"explorer"`
}

// ChainsConfig extra chain definitions, keyed by network name
type ChainsConfig struct {
	Version  string                        `yaml:"version" json:"version"`
	Networks map[string]ChainNetworkConfig `yaml:"networks" json:"networks"`
}

// LoadChainsFile reads a chains file referenced by hub.chainsFile
func LoadChainsFile(path string) (*ChainsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chains file: %w", err)
	}

	var cfg ChainsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse chains file: %w", err)
	}

	seen := make(map[uint16]string, len(cfg.Networks))
	for name, network := range cfg.Networks {
		if network.ChainID == 0 {
			return nil, fmt.Errorf("network %s: chain_id is required", name)
		}
		if other, dup := seen[network.ChainID]; dup {
			return nil, fmt.Errorf("networks %s and %s share chain_id %d", other, name, network.ChainID)
		}
		seen[network.ChainID] = name
	}
	return &cfg, nil
}

// Sorted returns the networks ordered by chain id, with Name defaulting to the map key
func (c *ChainsConfig) Sorted() []ChainNetworkConfig {
	out := make([]ChainNetworkConfig, 0, len(c.Networks))
	for name, network := range c.Networks {
		if network.Name == "" {
			network.Name = name
		}
		out = append(out, network)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}
