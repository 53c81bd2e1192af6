// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/tokenledger/configuration"
	"github.com/bitmark-inc/tokenledger/fault"
	"github.com/bitmark-inc/tokenledger/ledger"
	"github.com/bitmark-inc/tokenledger/storage"
)

type metadata struct {
	config  *configuration.Configuration
	db      *storage.Database
	ledger  *ledger.Ledger
	clock   clockwork.Clock
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	// ensure exit handler is first
	defer exitwithstatus.Handler()

	app := cli.NewApp()
	app.Name = "tokenledger"
	app.Usage = "confidential token ledger"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "tokenledger.conf",
			Usage: " configuration `FILE`",
		},
		cli.StringSliceFlag{
			Name:  "define, D",
			Usage: " set a configuration variable `KEY=VALUE`",
		},
	}

	callerFlag := cli.StringFlag{
		Name:  "caller, a",
		Value: "",
		Usage: "*account performing the action `ADDRESS`",
	}
	memoFlag := cli.StringFlag{
		Name:  "memo, m",
		Value: "",
		Usage: " transfer memo `STRING`",
	}
	amountFlag := cli.StringFlag{
		Name:  "amount, n",
		Value: "",
		Usage: "*token amount `AMOUNT`",
	}
	pageFlags := []cli.Flag{
		cli.UintFlag{
			Name:  "page, p",
			Value: 0,
			Usage: " page number `COUNT`",
		},
		cli.UintFlag{
			Name:  "size, s",
			Value: 20,
			Usage: " entries per page `COUNT`",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "init",
			Usage:     "initialise the ledger database with the configured balances",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "secret, k",
					Value: "",
					Usage: " 32 byte master secret `HEX` (default is random)",
				},
			},
			Action: runInit,
		},
		{
			Name:      "address",
			Usage:     "derive a test account address from a label",
			ArgsUsage: "LABEL...",
			Action:    runAddress,
		},
		{
			Name:      "info",
			Usage:     "token information",
			ArgsUsage: " ",
			Action:    runInfo,
		},
		{
			Name:      "balance",
			Usage:     "balance of an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account `ADDRESS`",
				},
			},
			Action: runBalance,
		},
		{
			Name:      "history",
			Usage:     "transaction history of an account, newest first",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account `ADDRESS`",
				},
			}, pageFlags...),
			Action: runHistory,
		},
		{
			Name:      "transfer",
			Usage:     "transfer tokens to one or more recipients",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				callerFlag,
				cli.StringSliceFlag{
					Name:  "to, t",
					Usage: "*recipient and amount `ADDRESS:AMOUNT` (repeat for a batch)",
				},
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: " transfer from `ADDRESS` using an allowance",
				},
				memoFlag,
			},
			Action: runTransfer,
		},
		{
			Name:      "mint",
			Usage:     "create new tokens",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				callerFlag,
				cli.StringSliceFlag{
					Name:  "to, t",
					Usage: "*recipient and amount `ADDRESS:AMOUNT` (repeat for a batch)",
				},
				memoFlag,
			},
			Action: runMint,
		},
		{
			Name:      "burn",
			Usage:     "destroy tokens",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				callerFlag,
				amountFlag,
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: " burn from `ADDRESS` using an allowance",
				},
				memoFlag,
			},
			Action: runBurn,
		},
		{
			Name:      "deposit",
			Usage:     "convert native coins to tokens",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				callerFlag,
				cli.StringSliceFlag{
					Name:  "funds, f",
					Usage: "*coins sent `DENOM:AMOUNT`",
				},
			},
			Action: runDeposit,
		},
		{
			Name:      "redeem",
			Usage:     "convert tokens to native coins",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				callerFlag,
				amountFlag,
				cli.StringFlag{
					Name:  "denom, d",
					Value: "",
					Usage: " coin `DENOM` to receive",
				},
			},
			Action: runRedeem,
		},
		{
			Name:      "allow",
			Usage:     "increase the allowance of a spender",
			ArgsUsage: "\n   (* = required)",
			Flags:     allowanceFlags(callerFlag, amountFlag),
			Action:    runAllow,
		},
		{
			Name:      "disallow",
			Usage:     "decrease the allowance of a spender",
			ArgsUsage: "\n   (* = required)",
			Flags:     allowanceFlags(callerFlag, amountFlag),
			Action:    runDisallow,
		},
		{
			Name:      "allowance",
			Usage:     "allowance of a spender",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: "*owner `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "spender, s",
					Value: "",
					Usage: "*spender `ADDRESS`",
				},
			},
			Action: runAllowance,
		},
		{
			Name:      "allowances",
			Usage:     "allowances given or received by an account",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account `ADDRESS`",
				},
				cli.BoolFlag{
					Name:  "received, r",
					Usage: " list allowances received instead of given",
				},
			}, pageFlags...),
			Action: runAllowances,
		},
		{
			Name:      "import-legacy",
			Usage:     "add a legacy balance for an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account `ADDRESS`",
				},
				amountFlag,
			},
			Action: runImportLegacy,
		},
		{
			Name:      "migrate",
			Usage:     "move the caller's legacy balance into the ledger",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{callerFlag},
			Action:    runMigrate,
		},
		{
			Name:      "audit",
			Usage:     "check the total supply against all balances",
			ArgsUsage: " ",
			Action:    runAudit,
		},
		{
			Name:      "version",
			Usage:     "display tokenledger version",
			ArgsUsage: " ",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		switch command {
		case "", "help", "h", "version", "address":
			c.App.Metadata["config"] = &metadata{
				clock:   clockwork.NewRealClock(),
				verbose: verbose,
				e:       e,
				w:       w,
			}
			return nil
		}

		file := c.GlobalString("config-file")
		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		variables, err := parseVariables(c.GlobalStringSlice("define"))
		if nil != err {
			return err
		}
		config, err := configuration.Load(file, variables)
		if nil != err {
			return err
		}

		if err := logger.Initialise(config.Logging); nil != err {
			return err
		}
		if err := fault.Initialise(); nil != err {
			return err
		}

		db, err := storage.Open(config.DatabaseFile(), storage.ReadWrite)
		if nil != err {
			return err
		}

		settings, err := ledger.NewSettings(config)
		if nil != err {
			db.Close()
			return err
		}
		l, err := ledger.New(db, settings)
		if nil != err {
			db.Close()
			return err
		}

		c.App.Metadata["config"] = &metadata{
			config:  config,
			db:      db,
			ledger:  l,
			clock:   clockwork.NewRealClock(),
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok || nil == m.db {
			return nil
		}
		err := m.db.Close()
		fault.Finalise()
		logger.Finalise()
		return err
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		exitwithstatus.Exit(1)
	}
}

func allowanceFlags(callerFlag cli.Flag, amountFlag cli.Flag) []cli.Flag {
	return []cli.Flag{
		callerFlag,
		amountFlag,
		cli.StringFlag{
			Name:  "spender, s",
			Value: "",
			Usage: "*spender `ADDRESS`",
		},
		cli.Int64Flag{
			Name:  "expiration, x",
			Value: 0,
			Usage: " expiry time `UNIX_SECONDS` (0 = never)",
		},
	}
}
