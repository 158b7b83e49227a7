// Copyright (c) 2018 IoTeX
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg, err := New(nil)
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Chain.Spec)
	require.Equal(t, Default.DB.Compressor, cfg.DB.Compressor)
	require.Equal(t, Default.DB.NumRetries, cfg.DB.NumRetries)
	require.Equal(t, 5*time.Second, cfg.DB.OpenTimeout)
}

func TestNewConfigWithWrongConfigPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "wrong_path")})
	require.Error(t, err)
}

func TestNewConfigWithOverride(t *testing.T) {
	require := require.New(t)

	os.Setenv("LABOR_FORK_ID", "fork-2")
	defer os.Unsetenv("LABOR_FORK_ID")
	path := writeConfig(t, `
chain:
    spec: staging
    forkID: ${LABOR_FORK_ID}
db:
    dbPath: /var/data/spec.db
    compressor: Gzip
subLogs:
    genesis:
        zap:
            level: debug
`)
	cfg, err := New([]string{path})
	require.NoError(err)
	require.Equal("staging", cfg.Chain.Spec)
	require.Equal("fork-2", cfg.Chain.ForkID)
	require.Equal("/var/data/spec.db", cfg.DB.DbPath)
	require.Equal("Gzip", cfg.DB.Compressor)
	require.Equal(uint8(3), cfg.DB.NumRetries)
	require.Contains(cfg.SubLogs, "genesis")
}

func TestValidateChain(t *testing.T) {
	require := require.New(t)

	for _, spec := range []string{"dev", "local", "staging", "", "custom.yaml", "labor.json"} {
		cfg := Default
		cfg.Chain.Spec = spec
		require.NoError(ValidateChain(cfg), spec)
	}

	cfg := Default
	cfg.Chain.Spec = "mainnet"
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateChain(cfg)))

	cfg = Default
	cfg.Chain.ForkID = "fork 1"
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateChain(cfg)))

	_, err := New([]string{writeConfig(t, "chain:\n    spec: mainnet\n")})
	require.Equal(ErrInvalidCfg, errors.Cause(err))
	_, err = New([]string{writeConfig(t, "chain:\n    spec: mainnet\n")}, DoNotValidate)
	require.NoError(err)
}

func TestValidateDB(t *testing.T) {
	require := require.New(t)

	cfg := Default
	require.NoError(ValidateDB(cfg))
	cfg.DB.Compressor = "Lz4"
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateDB(cfg)))

	cfg = Default
	cfg.DB.OpenTimeout = -time.Second
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateDB(cfg)))
}
