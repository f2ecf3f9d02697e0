// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aurumproject/aurum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfig([]string{"--appdata", home})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, "logs"), cfg.LogDir)
	assert.Equal(t, defaultMaxOrphanTxs, cfg.MaxOrphanTxs)
	assert.Equal(t, defaultVerifyWorkers, cfg.VerifyWorkers)

	// The directories are created as part of loading.
	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfig([]string{
		"--appdata", home,
		"--maxorphantx", "7",
		"--minrelaytxfee", "0.0002",
		"--acceptnonstd",
		"--persistmempool",
		"--verifyworkers", "2",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxOrphanTxs)
	assert.True(t, cfg.AcceptNonStd)
	assert.True(t, cfg.PersistMempool)
	assert.Equal(t, 2, cfg.VerifyWorkers)

	fee, err := cfg.MinRelayTxFeeAmount()
	require.NoError(t, err)
	assert.Equal(t, types.Amount(20000), fee)
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	cfgFile := filepath.Join(home, "aurumd.conf")
	require.NoError(t, os.WriteFile(cfgFile,
		[]byte("maxorphantx=9\nnomempoolbar=1\n"), 0644))

	cfg, err := LoadConfig([]string{"--appdata", home})
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxOrphanTxs)
	assert.True(t, cfg.NoMempoolBar)

	// Command line options take precedence over the config file.
	cfg, err = LoadConfig([]string{"--appdata", home, "--maxorphantx", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxOrphanTxs)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	home := t.TempDir()

	_, err := LoadConfig([]string{"--appdata", home, "--debuglevel", "bogus"})
	assert.Error(t, err)

	_, err = LoadConfig([]string{"--appdata", home, "--verifyworkers", "0"})
	assert.Error(t, err)

	_, err = LoadConfig([]string{"--appdata", home, "--minrelaytxfee", "-1"})
	assert.Error(t, err)
}
