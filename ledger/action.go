// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
)

// Env - values supplied by the host for one call
type Env struct {
	Now    int64  // block time, unix seconds
	Height uint64 // block height
	TxHash string // hash of the enclosing transaction
	Random []byte // per block randomness
}

// Coin - native funds sent with or paid out by a call
type Coin struct {
	Denom  string        `json:"denom"`
	Amount amount.Amount `json:"amount"`
}

// Action - one operation of a call
type Action interface {
	kind() string
}

// Transfer - move caller's tokens to a recipient
type Transfer struct {
	Recipient account.Address `json:"recipient"`
	Amount    amount.Amount   `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
}

// BatchTransfer - several transfers from the caller
type BatchTransfer struct {
	Actions []Transfer `json:"actions"`
}

// TransferFrom - move owner's tokens using the caller's allowance
type TransferFrom struct {
	Owner     account.Address `json:"owner"`
	Recipient account.Address `json:"recipient"`
	Amount    amount.Amount   `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
}

// BatchTransferFrom - several allowance transfers
type BatchTransferFrom struct {
	Actions []TransferFrom `json:"actions"`
}

// Mint - create new tokens for a recipient
type Mint struct {
	Recipient account.Address `json:"recipient"`
	Amount    amount.Amount   `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
}

// BatchMint - several mints
type BatchMint struct {
	Actions []Mint `json:"actions"`
}

// Burn - destroy caller's tokens
type Burn struct {
	Amount amount.Amount `json:"amount"`
	Memo   string        `json:"memo,omitempty"`
}

// BurnFrom - destroy owner's tokens using the caller's allowance
type BurnFrom struct {
	Owner  account.Address `json:"owner"`
	Amount amount.Amount   `json:"amount"`
	Memo   string          `json:"memo,omitempty"`
}

// Deposit - convert the funds sent with the call into tokens
type Deposit struct{}

// Redeem - convert tokens back to native funds
//
// Denom may be empty when only one denomination is supported
type Redeem struct {
	Amount amount.Amount `json:"amount"`
	Denom  string        `json:"denom,omitempty"`
}

// IncreaseAllowance - raise what spender may take from the caller
type IncreaseAllowance struct {
	Spender    account.Address `json:"spender"`
	Amount     amount.Amount   `json:"amount"`
	Expiration *int64          `json:"expiration,omitempty"`
}

// DecreaseAllowance - lower what spender may take from the caller
type DecreaseAllowance struct {
	Spender    account.Address `json:"spender"`
	Amount     amount.Amount   `json:"amount"`
	Expiration *int64          `json:"expiration,omitempty"`
}

// MigrateLegacyAccount - move the caller's legacy balance in
type MigrateLegacyAccount struct{}

func (Transfer) kind() string             { return "transfer" }
func (BatchTransfer) kind() string        { return "batch_transfer" }
func (TransferFrom) kind() string         { return "transfer_from" }
func (BatchTransferFrom) kind() string    { return "batch_transfer_from" }
func (Mint) kind() string                 { return "mint" }
func (BatchMint) kind() string            { return "batch_mint" }
func (Burn) kind() string                 { return "burn" }
func (BurnFrom) kind() string             { return "burn_from" }
func (Deposit) kind() string              { return "deposit" }
func (Redeem) kind() string               { return "redeem" }
func (IncreaseAllowance) kind() string    { return "increase_allowance" }
func (DecreaseAllowance) kind() string    { return "decrease_allowance" }
func (MigrateLegacyAccount) kind() string { return "migrate_legacy_account" }

// Event - one attribute emitted by a call
type Event struct {
	Label string `json:"label"`
	Data  []byte `json:"data"`
}

// Result - output of a successful call
type Result struct {
	Events  []Event `json:"events"`
	Payouts []Coin  `json:"payouts,omitempty"`
}
