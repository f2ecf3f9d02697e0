// Copyright (c) 2019-2024 The aurum developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aurumproject/aurum/core/types"
	"github.com/aurumproject/aurum/log"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename   = "aurumd.conf"
	defaultDataDirname      = "data"
	defaultLogDirname       = "logs"
	defaultDebugLevel       = "info"
	defaultMaxOrphanTxs     = 100
	defaultMaxOrphanTxSize  = 5000
	defaultFreeTxRelayLimit = 15.0
	defaultMempoolExpiry    = 24 * time.Hour
	defaultVerifyWorkers    = 4
	defaultVerifyTimeout    = 10 * time.Second
)

// defaultMinRelayTxFee is in coins per kB; it matches the mempool policy
// default of 1e4 atoms per kB.
var defaultMinRelayTxFee = float64(1e4) / types.AtomsPerCoin

// Config defines the configuration options for the daemon.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	HomeDir          string        `short:"A" long:"appdata" description:"Path to application home directory"`
	ShowVersion      bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile       string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir          string        `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir           string        `long:"logdir" description:"Directory to log output."`
	NoFileLogging    bool          `long:"nofilelogging" description:"Disable file logging."`
	DebugLevel       string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	MaxOrphanTxs     int           `long:"maxorphantx" description:"Max number of orphan transactions to keep in memory"`
	MaxOrphanTxSize  int           `long:"maxorphantxsize" description:"Max size in bytes of a single orphan transaction"`
	MinRelayTxFee    float64       `long:"minrelaytxfee" description:"The minimum transaction fee in coin/kB to be considered a non-zero fee."`
	FreeTxRelayLimit float64       `long:"limitfreerelay" description:"Limit relay of transactions with no transaction fee to the given amount in thousands of bytes per minute"`
	AcceptNonStd     bool          `long:"acceptnonstd" description:"Accept and relay non-standard transactions to the network regardless of the default settings for the active network."`
	PersistMempool   bool          `long:"persistmempool" description:"Whether to save the mempool on stop and load on start"`
	NoMempoolBar     bool          `long:"nomempoolbar" description:"Whether to show progress bar when load mempool from file"`
	MempoolExpiry    time.Duration `long:"mempoolexpiry" description:"Do not keep transactions in the mempool more than mempoolexpiry"`
	VerifyWorkers    int           `long:"verifyworkers" description:"Number of script verification workers"`
	VerifyWorkerBin  string        `long:"verifyworkerbin" description:"Path to a worker binary for out-of-process script verification; empty runs workers in-process"`
	VerifyTimeout    time.Duration `long:"verifytimeout" description:"Time to wait for a verification verdict before declaring the worker lost"`
}

func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".aurumd")
}

func defaultConfig() *Config {
	home := defaultHomeDir()
	return &Config{
		HomeDir:          home,
		ConfigFile:       filepath.Join(home, defaultConfigFilename),
		DataDir:          filepath.Join(home, defaultDataDirname),
		LogDir:           filepath.Join(home, defaultLogDirname),
		DebugLevel:       defaultDebugLevel,
		MaxOrphanTxs:     defaultMaxOrphanTxs,
		MaxOrphanTxSize:  defaultMaxOrphanTxSize,
		MinRelayTxFee:    defaultMinRelayTxFee,
		FreeTxRelayLimit: defaultFreeTxRelayLimit,
		MempoolExpiry:    defaultMempoolExpiry,
		VerifyWorkers:    defaultVerifyWorkers,
		VerifyTimeout:    defaultVerifyTimeout,
	}
}

// MinRelayTxFeeAmount converts the configured coin/kB relay fee into atoms
// per kB.
func (c *Config) MinRelayTxFeeAmount() (types.Amount, error) {
	amount, err := types.NewAmount(c.MinRelayTxFee)
	if err != nil {
		return 0, fmt.Errorf("invalid minrelaytxfee: %v", err)
	}
	if amount < 0 {
		return 0, fmt.Errorf("minrelaytxfee must not be negative: %v", c.MinRelayTxFee)
	}
	return amount, nil
}

// LoadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig(args []string) (*Config, error) {
	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := defaultConfig()
	preParser := flags.NewParser(preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if preCfg.ShowVersion {
		return preCfg, nil
	}

	// Load additional config from file.
	cfg := defaultConfig()
	if preCfg.HomeDir != cfg.HomeDir {
		cfg.HomeDir = preCfg.HomeDir
		cfg.ConfigFile = filepath.Join(cfg.HomeDir, defaultConfigFilename)
		cfg.DataDir = filepath.Join(cfg.HomeDir, defaultDataDirname)
		cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
	}
	if preCfg.ConfigFile != "" {
		cfg.ConfigFile = preCfg.ConfigFile
	}

	parser := flags.NewParser(cfg, flags.Default)
	if fileExists(cfg.ConfigFile) {
		err = flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %v", cfg.ConfigFile, err)
		}
	}

	// Parse command line options again to ensure they take precedence.
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	// Validate the debug level before the logging subsystem consumes it.
	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, err
	}

	if cfg.MaxOrphanTxs < 0 {
		return nil, fmt.Errorf("maxorphantx must not be negative: %d", cfg.MaxOrphanTxs)
	}
	if cfg.VerifyWorkers < 1 {
		return nil, fmt.Errorf("verifyworkers must be at least 1: %d", cfg.VerifyWorkers)
	}
	if _, err := cfg.MinRelayTxFeeAmount(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}
	if !cfg.NoFileLogging {
		if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
	}

	return cfg, nil
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
