// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - ledger configuration file
//
// the file is a Lua script returning a single table; directories and
// files are relative to data_directory
package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/anonset"
	"github.com/bitmark-inc/tokenledger/dwb"
	"github.com/bitmark-inc/tokenledger/fault"
)

// ErrNotTable - the configuration file did not return a table
var ErrNotTable = fault.InvalidError("configuration did not return a table")

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file
	defaultDatabase      = "ledger.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "tokenledger.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// DatabaseType - ledger database location
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// GenesisType - initial balance
type GenesisType struct {
	Address string `gluamapper:"address" json:"address"`
	Amount  string `gluamapper:"amount" json:"amount"`
}

// TokenType - token parameters
type TokenType struct {
	Name           string        `gluamapper:"name" json:"name"`
	Symbol         string        `gluamapper:"symbol" json:"symbol"`
	Decimals       int           `gluamapper:"decimals" json:"decimals"`
	Denoms         []string      `gluamapper:"denoms" json:"denoms"`
	Minters        []string      `gluamapper:"minters" json:"minters"`
	EnableDeposit  bool          `gluamapper:"enable_deposit" json:"enable_deposit"`
	EnableRedeem   bool          `gluamapper:"enable_redeem" json:"enable_redeem"`
	EnableMint     bool          `gluamapper:"enable_mint" json:"enable_mint"`
	EnableBurn     bool          `gluamapper:"enable_burn" json:"enable_burn"`
	InitialBalance []GenesisType `gluamapper:"initial_balances" json:"initial_balances"`
}

// BufferType - delayed write buffer shape
type BufferType struct {
	SlotsPerBucket int `gluamapper:"slots_per_bucket" json:"slots_per_bucket"`
	MaxPending     int `gluamapper:"max_pending" json:"max_pending"`
}

// TrieType - anonymity set shape
type TrieType struct {
	ChunkBits      int `gluamapper:"chunk_bits" json:"chunk_bits"`
	BucketCapacity int `gluamapper:"bucket_capacity" json:"bucket_capacity"`
}

// Configuration - the whole file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Token         TokenType            `gluamapper:"token" json:"token"`
	Buffer        BufferType           `gluamapper:"buffer" json:"buffer"`
	Trie          TrieType             `gluamapper:"trie" json:"trie"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// Defaults - configuration before the file is applied
func Defaults() *Configuration {
	return &Configuration{
		DataDirectory: defaultDataDirectory,
		Database: DatabaseType{
			Directory: ".",
			Name:      defaultDatabase,
		},
		Token: TokenType{
			Name:          "Secret Token",
			Symbol:        "STKN",
			Decimals:      6,
			Denoms:        []string{},
			Minters:       []string{},
			EnableDeposit: false,
			EnableRedeem:  false,
			EnableMint:    false,
			EnableBurn:    false,
		},
		Buffer: BufferType{
			SlotsPerBucket: anonset.DefaultParameters.SlotsPerBucket,
			MaxPending:     dwb.DefaultMaxPending,
		},
		Trie: TrieType{
			ChunkBits:      anonset.DefaultParameters.ChunkBits,
			BucketCapacity: anonset.DefaultParameters.BucketCapacity,
		},
		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		},
	}
}

// Load - read, decode and verify the configuration
func Load(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := Defaults()
	if err := ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// fail if any of these are not simple file names
	for _, f := range []string{options.Logging.File, options.Database.Name} {
		switch filepath.Dir(f) {
		case "", ".":
		default:
			return nil, fmt.Errorf("file: %q is not plain name", f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Logging.Directory,
		&options.Database.Directory,
	} {
		*d = ensureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	if err := options.Validate(); nil != err {
		return nil, err
	}
	return options, nil
}

// Validate - check values that do not depend on the file system
func (c *Configuration) Validate() error {
	if err := c.Parameters().Validate(); nil != err {
		return err
	}
	if c.Buffer.MaxPending < 1 {
		return fmt.Errorf("buffer.max_pending: %d: %w", c.Buffer.MaxPending, fault.ErrMissingParameters)
	}
	if "" == strings.TrimSpace(c.Token.Symbol) {
		return fmt.Errorf("token.symbol: %w", fault.ErrMissingParameters)
	}
	if c.Token.EnableDeposit && 0 == len(c.Token.Denoms) {
		return fmt.Errorf("token.denoms: required for deposits: %w", fault.ErrMissingParameters)
	}
	if _, err := c.MinterAddresses(); nil != err {
		return err
	}
	if _, err := c.InitialBalances(); nil != err {
		return err
	}
	return nil
}

// DatabaseFile - absolute database path
func (c *Configuration) DatabaseFile() string {
	return filepath.Join(c.Database.Directory, c.Database.Name)
}

// Parameters - anonymity set shape
func (c *Configuration) Parameters() anonset.Parameters {
	return anonset.Parameters{
		ChunkBits:      c.Trie.ChunkBits,
		BucketCapacity: c.Trie.BucketCapacity,
		SlotsPerBucket: c.Buffer.SlotsPerBucket,
	}
}

// MinterAddresses - decoded minter list
func (c *Configuration) MinterAddresses() ([]account.Address, error) {
	minters := make([]account.Address, 0, len(c.Token.Minters))
	for _, s := range c.Token.Minters {
		a, err := account.AddressFromString(s)
		if nil != err {
			return nil, fmt.Errorf("minter: %q: %w", s, err)
		}
		minters = append(minters, a)
	}
	return minters, nil
}

// Balance - one decoded initial balance
type Balance struct {
	Address account.Address
	Amount  amount.Amount
}

// InitialBalances - decoded initial balances
func (c *Configuration) InitialBalances() ([]Balance, error) {
	balances := make([]Balance, 0, len(c.Token.InitialBalance))
	for _, g := range c.Token.InitialBalance {
		a, err := account.AddressFromString(g.Address)
		if nil != err {
			return nil, fmt.Errorf("initial balance: %q: %w", g.Address, err)
		}
		n, err := amount.Parse(g.Amount)
		if nil != err {
			return nil, fmt.Errorf("initial balance: %q: %w", g.Amount, err)
		}
		balances = append(balances, Balance{Address: a, Amount: n})
	}
	return balances, nil
}

// ensureAbsolute - if path is relative, prepend directory
func ensureAbsolute(directory string, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(directory, path)
	}
	return filepath.Clean(path)
}
