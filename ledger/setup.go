// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - confidential fungible token ledger
//
// Every call opens the single storage transaction, loads the ledger
// context, builds the anonymity set index, delayed write buffer,
// history log, allowance store and notification encoder over that
// transaction and either commits all of its writes or none of them.
package ledger

import (
	"fmt"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/anonset"
	"github.com/bitmark-inc/tokenledger/balance"
	"github.com/bitmark-inc/tokenledger/configuration"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/history"
	"github.com/bitmark-inc/tokenledger/secret"
	"github.com/bitmark-inc/tokenledger/storage"
)

// Settings - static token parameters
type Settings struct {
	Name          string
	Symbol        string
	Decimals      int
	Denoms        []string
	Minters       []account.Address
	EnableDeposit bool
	EnableRedeem  bool
	EnableMint    bool
	EnableBurn    bool
	Parameters    anonset.Parameters
	MaxPending    int
}

// NewSettings - extract the token settings from a configuration
func NewSettings(c *configuration.Configuration) (*Settings, error) {
	minters, err := c.MinterAddresses()
	if nil != err {
		return nil, err
	}
	s := &Settings{
		Name:          c.Token.Name,
		Symbol:        c.Token.Symbol,
		Decimals:      c.Token.Decimals,
		Denoms:        c.Token.Denoms,
		Minters:       minters,
		EnableDeposit: c.Token.EnableDeposit,
		EnableRedeem:  c.Token.EnableRedeem,
		EnableMint:    c.Token.EnableMint,
		EnableBurn:    c.Token.EnableBurn,
		Parameters:    c.Parameters(),
		MaxPending:    c.Buffer.MaxPending,
	}
	return s, s.Parameters.Validate()
}

func (s *Settings) isMinter(addr account.Address) bool {
	for _, m := range s.Minters {
		if m == addr {
			return true
		}
	}
	return false
}

func (s *Settings) isDenom(denom string) bool {
	for _, d := range s.Denoms {
		if d == denom {
			return true
		}
	}
	return false
}

// Ledger - token state over a database
type Ledger struct {
	log      *logger.L
	db       *storage.Database
	settings Settings
}

// InitialBalance - genesis allocation
type InitialBalance struct {
	Address account.Address
	Amount  amount.Amount
}

// New - create a ledger over an open database
func New(db *storage.Database, settings *Settings) (*Ledger, error) {
	if nil == db {
		return nil, fault.ErrDatabaseIsNotSet
	}
	if err := settings.Parameters.Validate(); nil != err {
		return nil, err
	}
	log := logger.New("ledger")
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}
	return &Ledger{
		log:      log,
		db:       db,
		settings: *settings,
	}, nil
}

// Initialise - store the master secret and the genesis balances
//
// genesis balances are written directly to the balance store
func (l *Ledger) Initialise(master []byte, balances []InitialBalance, env Env) error {
	trx, err := l.db.NewTransaction()
	if nil != err {
		return err
	}

	if trx.Has(l.db.Pool.Context, contextKey) {
		trx.Abort()
		return fault.ErrAlreadyInitialised
	}
	if _, err := secret.New(master); nil != err {
		trx.Abort()
		return err
	}

	context := &Context{
		Secret:       append([]byte{}, master...),
		TotalSupply:  amount.Zero,
		LegacySupply: amount.Zero,
	}

	err = l.run("initialise", trx, context, func(s *session) error {
		for _, b := range balances {
			total, err := s.context.TotalSupply.Add(b.Amount)
			if nil != err {
				return fmt.Errorf("initial balance: %s: %w", b.Address, err)
			}
			s.context.TotalSupply = total

			id, err := s.history.Store(&history.Tx{
				Action:      history.Mint,
				Recipient:   b.Address,
				Amount:      b.Amount,
				Denom:       l.settings.Symbol,
				BlockTime:   env.Now,
				BlockHeight: env.Height,
			})
			if nil != err {
				return err
			}
			if _, err := s.balances.ApplyDelta(b.Address, balance.Credit(b.Amount)); nil != err {
				return err
			}
			s.history.Append(b.Address, id)
		}
		return nil
	})
	if nil != err {
		return err
	}

	l.log.Infof("initialised: %s  accounts: %d", l.settings.Symbol, len(balances))
	return nil
}

// IsInitialised - true once a master secret is stored
func (l *Ledger) IsInitialised() (bool, error) {
	trx, err := l.db.NewTransaction()
	if nil != err {
		return false, err
	}
	defer trx.Abort()
	return trx.Has(l.db.Pool.Context, contextKey), nil
}
