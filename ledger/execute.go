// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"

	"github.com/bitmark-inc/tokenledger/account"
	"github.com/bitmark-inc/tokenledger/amount"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/history"
	"github.com/bitmark-inc/tokenledger/notification"
)

// state of one Execute
type call struct {
	*session
	env    Env
	caller account.Address
	funds  []Coin
	result *Result
}

// Execute - apply actions in order for caller
//
// funds are the coins sent with the call, only a Deposit consumes
// them.  Either every action succeeds and all writes are committed or
// the first failure is returned and nothing is written.
func (l *Ledger) Execute(env Env, caller account.Address, funds []Coin, actions ...Action) (*Result, error) {
	result := &Result{
		Events:  []Event{},
		Payouts: []Coin{},
	}
	err := l.update("execute", func(s *session) error {
		c := &call{
			session: s,
			env:     env,
			caller:  caller,
			funds:   funds,
			result:  result,
		}
		for i, action := range actions {
			if err := c.execute(action); nil != err {
				return fmt.Errorf("action: %d: %w", i, err)
			}
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	return result, nil
}

func (c *call) execute(action Action) error {
	switch a := action.(type) {
	case Transfer:
		return c.transfer(a)
	case BatchTransfer:
		return c.batchTransfer(a)
	case TransferFrom:
		return c.transferFrom(a)
	case BatchTransferFrom:
		return c.batchTransferFrom(a)
	case Mint:
		return c.mint(a)
	case BatchMint:
		return c.batchMint(a)
	case Burn:
		return c.burn(a)
	case BurnFrom:
		return c.burnFrom(a)
	case Deposit:
		return c.deposit()
	case Redeem:
		return c.redeem(a)
	case IncreaseAllowance:
		return c.increaseAllowance(a)
	case DecreaseAllowance:
		return c.decreaseAllowance(a)
	case MigrateLegacyAccount:
		return c.migrate(c.caller)
	default:
		return fault.ErrUnknownAction
	}
}

func (c *call) transfer(a Transfer) error {
	ownerBalance, err := c.move(c.caller, a.Recipient, a.Amount, a.Memo)
	if nil != err {
		return err
	}
	if err := c.direct(c.encoder.Receipt(a.Recipient, notification.Received{
		Amount: a.Amount,
		Sender: c.caller,
		Memo:   a.Memo,
	}, c.env.TxHash)); nil != err {
		return err
	}
	return c.direct(c.encoder.Spend(c.caller, notification.Spent{
		Amount:    a.Amount,
		Actions:   1,
		Recipient: a.Recipient,
		Balance:   ownerBalance,
	}, c.env.TxHash))
}

func (c *call) batchTransfer(a BatchTransfer) error {
	if 0 == len(a.Actions) {
		return nil
	}
	received := make([]notification.Participant, 0, len(a.Actions))
	total := amount.Zero
	ownerBalance := amount.Zero
	for _, t := range a.Actions {
		b, err := c.move(c.caller, t.Recipient, t.Amount, t.Memo)
		if nil != err {
			return err
		}
		ownerBalance = b
		total = total.SaturatingAdd(t.Amount)
		received = append(received, notification.Participant{
			Recipient:   t.Recipient,
			Counterpart: c.caller,
			Amount:      t.Amount,
			HasMemo:     "" != t.Memo,
		})
	}
	if err := c.groups(notification.ChannelMultiRecvd, received); nil != err {
		return err
	}
	return c.direct(c.encoder.Spend(c.caller, notification.Spent{
		Amount:    total,
		Actions:   uint64(len(a.Actions)),
		Recipient: a.Actions[0].Recipient,
		Balance:   ownerBalance,
	}, c.env.TxHash))
}

func (c *call) transferFrom(a TransferFrom) error {
	ownerBalance, err := c.moveFrom(a)
	if nil != err {
		return err
	}
	if err := c.direct(c.encoder.Receipt(a.Recipient, notification.Received{
		Amount: a.Amount,
		Sender: a.Owner,
		Memo:   a.Memo,
	}, c.env.TxHash)); nil != err {
		return err
	}
	return c.direct(c.encoder.Spend(a.Owner, notification.Spent{
		Amount:    a.Amount,
		Actions:   1,
		Recipient: a.Recipient,
		Balance:   ownerBalance,
	}, c.env.TxHash))
}

func (c *call) batchTransferFrom(a BatchTransferFrom) error {
	if 0 == len(a.Actions) {
		return nil
	}
	received := make([]notification.Participant, 0, len(a.Actions))
	spent := make([]notification.Participant, 0, len(a.Actions))
	for _, t := range a.Actions {
		ownerBalance, err := c.moveFrom(t)
		if nil != err {
			return err
		}
		received = append(received, notification.Participant{
			Recipient:   t.Recipient,
			Counterpart: t.Owner,
			Amount:      t.Amount,
			HasMemo:     "" != t.Memo,
		})
		spent = append(spent, notification.Participant{
			Recipient:   t.Owner,
			Counterpart: t.Recipient,
			Amount:      t.Amount,
			Balance:     ownerBalance,
			HasMemo:     "" != t.Memo,
		})
	}
	if err := c.groups(notification.ChannelMultiRecvd, received); nil != err {
		return err
	}
	return c.groups(notification.ChannelMultiSpent, spent)
}

func (c *call) mint(a Mint) error {
	minted, err := c.mintOne(a)
	if nil != err {
		return err
	}
	return c.direct(c.encoder.Receipt(a.Recipient, notification.Received{
		Amount: minted,
		Memo:   a.Memo,
	}, c.env.TxHash))
}

func (c *call) batchMint(a BatchMint) error {
	if 0 == len(a.Actions) {
		return nil
	}
	received := make([]notification.Participant, 0, len(a.Actions))
	for _, m := range a.Actions {
		minted, err := c.mintOne(m)
		if nil != err {
			return err
		}
		received = append(received, notification.Participant{
			Recipient: m.Recipient,
			Amount:    minted,
			HasMemo:   "" != m.Memo,
		})
	}
	return c.groups(notification.ChannelMultiRecvd, received)
}

func (c *call) burn(a Burn) error {
	if !c.ledger.settings.EnableBurn {
		return fault.ErrNotEnabled
	}
	ownerBalance, err := c.destroy(c.caller, a.Amount, a.Memo)
	if nil != err {
		return err
	}
	return c.direct(c.encoder.Spend(c.caller, notification.Spent{
		Amount:  a.Amount,
		Actions: 1,
		Balance: ownerBalance,
	}, c.env.TxHash))
}

func (c *call) burnFrom(a BurnFrom) error {
	if !c.ledger.settings.EnableBurn {
		return fault.ErrNotEnabled
	}
	if _, err := c.allowances.Consume(a.Owner, c.caller, a.Amount, c.env.Now); nil != err {
		return err
	}
	ownerBalance, err := c.destroy(a.Owner, a.Amount, a.Memo)
	if nil != err {
		return err
	}
	return c.direct(c.encoder.Spend(a.Owner, notification.Spent{
		Amount:  a.Amount,
		Actions: 1,
		Balance: ownerBalance,
	}, c.env.TxHash))
}

func (c *call) deposit() error {
	funds := c.funds
	c.funds = nil

	if 0 == len(funds) {
		return fault.ErrInvalidCoinsSent
	}
	total := amount.Zero
	for _, coin := range funds {
		if !c.ledger.settings.isDenom(coin.Denom) {
			return fmt.Errorf("denom: %q: %w", coin.Denom, fault.ErrInvalidCoinsSent)
		}
		t, err := total.Add(coin.Amount)
		if nil != err {
			return err
		}
		total = t
	}
	if total.IsZero() {
		return fault.ErrInvalidCoinsSent
	}
	if !c.ledger.settings.EnableDeposit {
		return fault.ErrNotEnabled
	}

	value := c.mintable(total)
	id, err := c.history.Store(&history.Tx{
		Action:      history.Deposit,
		Sender:      c.caller,
		Recipient:   c.caller,
		Amount:      value,
		Denom:       funds[0].Denom,
		BlockTime:   c.env.Now,
		BlockHeight: c.env.Height,
	})
	if nil != err {
		return err
	}
	if err := c.buffer.Credit(c.caller, value, id); nil != err {
		return err
	}
	c.context.TotalSupply = c.context.TotalSupply.SaturatingAdd(value)
	return nil
}

func (c *call) redeem(a Redeem) error {
	settings := &c.ledger.settings
	if !settings.EnableRedeem {
		return fault.ErrNotEnabled
	}

	denom := a.Denom
	switch {
	case "" == denom && 1 == len(settings.Denoms):
		denom = settings.Denoms[0]
	case "" == denom:
		return fault.ErrMissingParameters
	case !settings.isDenom(denom):
		return fmt.Errorf("denom: %q: %w", denom, fault.ErrUnsupportedDenom)
	}

	id, err := c.history.Store(&history.Tx{
		Action:      history.Redeem,
		From:        c.caller,
		Sender:      c.caller,
		Amount:      a.Amount,
		Denom:       denom,
		BlockTime:   c.env.Now,
		BlockHeight: c.env.Height,
	})
	if nil != err {
		return err
	}
	if _, err := c.buffer.Debit(c.caller, a.Amount, id); nil != err {
		return err
	}
	if err := c.reduceSupply(a.Amount); nil != err {
		return err
	}
	c.result.Payouts = append(c.result.Payouts, Coin{Denom: denom, Amount: a.Amount})
	return nil
}

func (c *call) increaseAllowance(a IncreaseAllowance) error {
	allowed, err := c.allowances.Increase(c.caller, a.Spender, a.Amount, a.Expiration, c.env.Now)
	if nil != err {
		return err
	}
	return c.grant(a.Spender, allowed.Amount, a.Expiration)
}

func (c *call) decreaseAllowance(a DecreaseAllowance) error {
	allowed, err := c.allowances.Decrease(c.caller, a.Spender, a.Amount, a.Expiration, c.env.Now)
	if nil != err {
		return err
	}
	return c.grant(a.Spender, allowed.Amount, a.Expiration)
}

func (c *call) grant(spender account.Address, allowed amount.Amount, expiration *int64) error {
	expires := int64(0)
	if nil != expiration {
		expires = *expiration
	}
	return c.direct(c.encoder.Grant(spender, notification.Allowance{
		Amount:     allowed,
		Allower:    c.caller,
		Expiration: expires,
	}, c.env.TxHash))
}

// record a transfer, debit owner, touch the acting spender and
// buffer the credit; returns owner's new balance
func (c *call) move(owner account.Address, recipient account.Address, value amount.Amount, memo string) (amount.Amount, error) {
	id, err := c.history.Store(&history.Tx{
		Action:      history.Transfer,
		From:        owner,
		Sender:      c.caller,
		Recipient:   recipient,
		Amount:      value,
		Denom:       c.ledger.settings.Symbol,
		Memo:        memo,
		BlockTime:   c.env.Now,
		BlockHeight: c.env.Height,
	})
	if nil != err {
		return amount.Zero, err
	}

	ownerBalance, err := c.buffer.Debit(owner, value, id)
	if nil != err {
		return amount.Zero, err
	}
	if c.caller != owner && c.caller != recipient {
		if _, err := c.buffer.Debit(c.caller, amount.Zero, id); nil != err {
			return amount.Zero, err
		}
	}
	if err := c.buffer.Credit(recipient, value, id); nil != err {
		return amount.Zero, err
	}
	return ownerBalance, nil
}

func (c *call) moveFrom(a TransferFrom) (amount.Amount, error) {
	if _, err := c.allowances.Consume(a.Owner, c.caller, a.Amount, c.env.Now); nil != err {
		return amount.Zero, err
	}
	return c.move(a.Owner, a.Recipient, a.Amount, a.Memo)
}

// mint one action, the amount is reduced so the total supply
// cannot overflow; returns the amount created
func (c *call) mintOne(a Mint) (amount.Amount, error) {
	settings := &c.ledger.settings
	if !settings.EnableMint {
		return amount.Zero, fault.ErrNotEnabled
	}
	if !settings.isMinter(c.caller) {
		return amount.Zero, fault.ErrNotMinter
	}

	value := c.mintable(a.Amount)
	id, err := c.history.Store(&history.Tx{
		Action:      history.Mint,
		Sender:      c.caller,
		Recipient:   a.Recipient,
		Amount:      value,
		Denom:       settings.Symbol,
		Memo:        a.Memo,
		BlockTime:   c.env.Now,
		BlockHeight: c.env.Height,
	})
	if nil != err {
		return amount.Zero, err
	}
	if c.caller != a.Recipient {
		if _, err := c.buffer.Debit(c.caller, amount.Zero, id); nil != err {
			return amount.Zero, err
		}
	}
	if err := c.buffer.Credit(a.Recipient, value, id); nil != err {
		return amount.Zero, err
	}
	c.context.TotalSupply = c.context.TotalSupply.SaturatingAdd(value)
	return value, nil
}

// record a burn, debit owner and reduce the supply
func (c *call) destroy(owner account.Address, value amount.Amount, memo string) (amount.Amount, error) {
	id, err := c.history.Store(&history.Tx{
		Action:      history.Burn,
		From:        owner,
		Sender:      c.caller,
		Amount:      value,
		Denom:       c.ledger.settings.Symbol,
		Memo:        memo,
		BlockTime:   c.env.Now,
		BlockHeight: c.env.Height,
	})
	if nil != err {
		return amount.Zero, err
	}
	ownerBalance, err := c.buffer.Debit(owner, value, id)
	if nil != err {
		return amount.Zero, err
	}
	if c.caller != owner {
		if _, err := c.buffer.Debit(c.caller, amount.Zero, id); nil != err {
			return amount.Zero, err
		}
	}
	return ownerBalance, c.reduceSupply(value)
}

func (c *call) mintable(value amount.Amount) amount.Amount {
	room := amount.Max.SaturatingSub(c.context.TotalSupply)
	if value.Cmp(room) > 0 {
		return room
	}
	return value
}

func (c *call) reduceSupply(value amount.Amount) error {
	total, err := c.context.TotalSupply.Sub(value)
	if nil != err {
		return err
	}
	c.context.TotalSupply = total
	return nil
}

func (c *call) direct(n *notification.Notification, err error) error {
	if nil != err {
		return err
	}
	c.result.Events = append(c.result.Events, Event{
		Label: n.Label(),
		Data:  n.Data,
	})
	return nil
}

func (c *call) groups(channel string, participants []notification.Participant) error {
	groups, err := c.encoder.Groups(channel, participants, c.env.TxHash, c.env.Random)
	if nil != err {
		return err
	}
	for _, g := range groups {
		c.result.Events = append(c.result.Events, Event{
			Label: g.Label(),
			Data:  g.Data,
		})
	}
	return nil
}
