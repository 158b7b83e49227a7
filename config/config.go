// Copyright (c) 2019 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	uconfig "go.uber.org/config"

	"github.com/labornetwork/labor-node/chainspec"
	"github.com/labornetwork/labor-node/db"
	"github.com/labornetwork/labor-node/pkg/compress"
	"github.com/labornetwork/labor-node/pkg/log"
)

var (
	// Default is the default config
	Default = Config{
		Chain: Chain{
			Spec:   "dev",
			ForkID: "",
		},
		DB:      db.DefaultConfig,
		SubLogs: make(map[string]log.GlobalConfig),
	}

	// ErrInvalidCfg indicates the invalid config value
	ErrInvalidCfg = errors.New("invalid config value")

	// Validates is the collection config validation functions
	Validates = []Validate{
		ValidateChain,
		ValidateDB,
	}
)

type (
	// Chain is the config struct of the chain to build
	Chain struct {
		// Spec is a profile id, a parameter file or a snapshot file
		Spec string `yaml:"spec"`
		// ForkID is handed to the network bootstrap along with the spec
		ForkID string `yaml:"forkID"`
	}

	// Config is the root config struct, each package's config should be put as its sub struct
	Config struct {
		Chain   Chain                       `yaml:"chain"`
		DB      db.Config                   `yaml:"db"`
		Log     log.GlobalConfig            `yaml:"log"`
		SubLogs map[string]log.GlobalConfig `yaml:"subLogs"`
	}

	// Validate is the interface of validating the config
	Validate func(Config) error
)

// New creates a config instance. It first loads the default configs. If the config path is not empty, it will read from
// the file and override the default configs. By default, it will apply all validation functions. To bypass validation,
// use DoNotValidate instead.
func New(configPaths []string, validates ...Validate) (Config, error) {
	opts := make([]uconfig.YAMLOption, 0)
	opts = append(opts, uconfig.Static(Default))
	opts = append(opts, uconfig.Expand(os.LookupEnv))
	for _, path := range configPaths {
		if path != "" {
			opts = append(opts, uconfig.File(path))
		}
	}
	yaml, err := uconfig.NewYAML(opts...)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to init config")
	}

	var cfg Config
	if err := yaml.Get(uconfig.Root).Populate(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal YAML config to struct")
	}

	// By default, the config needs to pass all the validation
	if len(validates) == 0 {
		validates = Validates
	}
	for _, validate := range validates {
		if err := validate(cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to validate config")
		}
	}
	return cfg, nil
}

// ValidateChain validates the chain configs
func ValidateChain(cfg Config) error {
	known := false
	for _, id := range chainspec.ProfileIDs() {
		if cfg.Chain.Spec == id {
			known = true
			break
		}
	}
	switch strings.ToLower(filepath.Ext(cfg.Chain.Spec)) {
	case ".yaml", ".yml", ".json":
		known = true
	}
	if !known && cfg.Chain.Spec != "" {
		return errors.Wrapf(ErrInvalidCfg, "unknown chain spec %s", cfg.Chain.Spec)
	}
	if strings.IndexFunc(cfg.Chain.ForkID, unicode.IsSpace) >= 0 {
		return errors.Wrapf(ErrInvalidCfg, "fork id %q contains white space", cfg.Chain.ForkID)
	}
	return nil
}

// ValidateDB validates the db configs
func ValidateDB(cfg Config) error {
	if !compress.Supported(cfg.DB.Compressor) {
		return errors.Wrapf(ErrInvalidCfg, "unsupported compressor %s", cfg.DB.Compressor)
	}
	if cfg.DB.OpenTimeout < 0 {
		return errors.Wrap(ErrInvalidCfg, "db openTimeout should not be less than 0")
	}
	return nil
}

// DoNotValidate validates the given config
func DoNotValidate(cfg Config) error { return nil }
