package config

import (
	"github.com/Dhanunjay2704/autostruct/pkg/layout"
)

type Service struct {
	config *Config
}

func NewService(cfg *Config) *Service {
	return &Service{config: cfg}
}

// PublicConfig is the subset of config exposed over the API so a frontend can
// mirror the server's formats, limits, and browsing roots.
type PublicConfig struct {
	Formats       []string `json:"formats"`
	AllowedRoots  []string `json:"allowed_roots"`
	MaxInputBytes int      `json:"max_input_bytes"`
	MaxNodes      int      `json:"max_nodes"`
	MaxDepth      int      `json:"max_depth"`
}

func (s *Service) RetrievePublicConfig() *PublicConfig {
	roots := s.config.AllowedRoots
	if roots == nil {
		// Serialize as [] instead of null.
		roots = []string{}
	}

	return &PublicConfig{
		Formats:       layout.Formats,
		AllowedRoots:  roots,
		MaxInputBytes: s.config.MaxInputBytes,
		MaxNodes:      s.config.MaxNodes,
		MaxDepth:      s.config.MaxDepth,
	}
}
