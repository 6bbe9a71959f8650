// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the settings of an evidence record validation run
// from a YAML file and ERS_ environment variables.
package config

import (
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/in-toto/go-ers"
	"github.com/in-toto/go-ers/cryptoutil"
	"github.com/in-toto/go-ers/log"
	"github.com/in-toto/go-ers/registry"
	"github.com/in-toto/go-ers/timestamp"
	"github.com/in-toto/go-ers/validation"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const EnvPrefix = "ERS"

// keyDelimiter replaces viper's "." so that profile names containing dots
// can be used as keys.
const keyDelimiter = "::"

type Config struct {
	// HashSortingMode applies to every profile that does not set its own.
	HashSortingMode string `mapstructure:"hash-sorting-mode"`
	DefaultProfile  string `mapstructure:"default-profile"`
	// Profiles holds option values per profile name, see validation.NewProfiles.
	Profiles              map[string]map[string]any `mapstructure:"profiles"`
	AlgorithmCatalog      string                    `mapstructure:"algorithm-catalog"`
	TSARoots              []string                  `mapstructure:"tsa-roots"`
	TSAIntermediates      []string                  `mapstructure:"tsa-intermediates"`
	TokenCacheTTL         time.Duration             `mapstructure:"token-cache-ttl"`
	CheckAdditionalHashes bool                      `mapstructure:"check-additional-hashes"`
}

func defaults() map[string]any {
	return map[string]any{
		"hash-sorting-mode":       validation.Unsorted.String(),
		"default-profile":         validation.DefaultProfile,
		"algorithm-catalog":       "",
		"tsa-roots":               []string{},
		"tsa-intermediates":       []string{},
		"token-cache-ttl":         10 * time.Minute,
		"check-additional-hashes": true,
	}
}

// Load reads the configuration file at path. An empty path yields the
// defaults, still overridden by the environment.
func Load(path string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path %v: %w", path, err)
		}

		v.SetConfigFile(expanded)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config from %v: %w", expanded, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// ProfileOptions returns the configured option values keyed by registered
// profile names. Configuration keys are matched case-insensitively since
// viper lower cases them.
func (c *Config) ProfileOptions(profiles registry.Registry[*validation.Profile]) map[string]map[string]any {
	opts := make(map[string]map[string]any, len(c.Profiles))
	for key, values := range c.Profiles {
		name, ok := profiles.Resolve(key)
		if !ok {
			log.Warnf("(config) ignoring options of unknown profile %v", key)
			continue
		}

		opts[name] = values
	}

	return opts
}

// Catalog loads the configured algorithm catalog, or returns the default one.
func (c *Config) Catalog() (*cryptoutil.AlgorithmCatalog, error) {
	if c.AlgorithmCatalog == "" {
		return cryptoutil.DefaultAlgorithmCatalog(), nil
	}

	f, err := openExpanded(c.AlgorithmCatalog)
	if err != nil {
		return nil, err
	}

	defer f.Close()
	catalog, err := cryptoutil.LoadAlgorithmCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load algorithm catalog %v: %w", c.AlgorithmCatalog, err)
	}

	return catalog, nil
}

// TokenVerifier returns a verifier trusting the configured TSA roots. It
// returns nil when no roots are configured.
func (c *Config) TokenVerifier() (*timestamp.TSPVerifier, error) {
	if len(c.TSARoots) == 0 {
		return nil, nil
	}

	roots, err := loadCertificates(c.TSARoots)
	if err != nil {
		return nil, err
	}

	intermediates, err := loadCertificates(c.TSAIntermediates)
	if err != nil {
		return nil, err
	}

	return timestamp.NewVerifier(
		timestamp.VerifyWithCerts(roots),
		timestamp.VerifyWithIntermediates(intermediates),
		timestamp.VerifyWithCacheTTL(c.TokenCacheTTL),
	), nil
}

// SchedulerOptions translates the configuration into options for ers.NewScheduler.
func (c *Config) SchedulerOptions() ([]ers.Option, error) {
	profiles := validation.NewProfiles()
	catalog, err := c.Catalog()
	if err != nil {
		return nil, err
	}

	opts := []ers.Option{
		ers.WithProfiles(profiles),
		ers.WithProfileOptions(c.ProfileOptions(profiles)),
		ers.WithHashSortingMode(validation.ParseHashSortingMode(c.HashSortingMode)),
		ers.WithCatalog(catalog),
		ers.WithAdditionalHashCheck(c.CheckAdditionalHashes),
	}

	verifier, err := c.TokenVerifier()
	if err != nil {
		return nil, err
	}

	if verifier != nil {
		opts = append(opts, ers.WithTokenVerifier(verifier))
	}

	return opts, nil
}

func loadCertificates(paths []string) ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, 0, len(paths))
	for _, path := range paths {
		f, err := openExpanded(path)
		if err != nil {
			return nil, err
		}

		loaded, err := cryptoutil.LoadCertificates(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load certificates from %v: %w", path, err)
		}

		certs = append(certs, loaded...)
	}

	return certs, nil
}

func openExpanded(path string) (*os.File, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %v: %w", path, err)
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v: %w", expanded, err)
	}

	return f, nil
}
