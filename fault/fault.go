// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type EncodingError GenericError
type ExistsError GenericError
type InsufficientError GenericError
type IntegrityError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RangeError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised    = ExistsError("already initialised")
	ErrAlreadyMigrated       = ExistsError("account already migrated")
	ErrBucketIntegrity       = IntegrityError("bucket integrity error")
	ErrDatabaseIsNotSet      = ProcessError("database is not set")
	ErrInsufficientAllowance = InsufficientError("insufficient allowance")
	ErrInsufficientFunds     = InsufficientError("insufficient funds")
	ErrInvalidAddress        = InvalidError("invalid address")
	ErrInvalidAmount         = InvalidError("invalid amount")
	ErrInvalidChunkBits      = InvalidError("invalid trie chunk bits")
	ErrInvalidCoinsSent      = InvalidError("invalid coins sent")
	ErrInvalidCount          = InvalidError("invalid count")
	ErrInvalidCursor         = InvalidError("invalid cursor")
	ErrInvalidLoggerChannel  = InvalidError("invalid logger channel")
	ErrInvalidPageSize       = InvalidError("invalid page size")
	ErrInvalidRecord         = InvalidError("invalid record")
	ErrInvalidSecret         = InvalidError("invalid secret")
	ErrMissingParameters     = InvalidError("missing parameters")
	ErrNoLegacyBalance       = NotFoundError("no legacy balance")
	ErrNotEnabled            = InvalidError("operation is not enabled")
	ErrNotInitialised        = NotFoundError("not initialised")
	ErrNotMinter             = InvalidError("caller is not a minter")
	ErrNotificationEncoding  = EncodingError("notification encoding error")
	ErrOverflow              = RangeError("overflow")
	ErrTooManyParticipants   = InvalidError("too many group participants")
	ErrTransactionInUse      = ProcessError("transaction already in use")
	ErrTransactionNotStarted = ProcessError("transaction not started")
	ErrUnderflow             = RangeError("underflow")
	ErrUnknownAction         = InvalidError("unknown action")
	ErrUnsupportedDenom      = InvalidError("unsupported denomination")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e EncodingError) Error() string     { return string(e) }
func (e ExistsError) Error() string       { return string(e) }
func (e InsufficientError) Error() string { return string(e) }
func (e IntegrityError) Error() string    { return string(e) }
func (e InvalidError) Error() string      { return string(e) }
func (e NotFoundError) Error() string     { return string(e) }
func (e ProcessError) Error() string      { return string(e) }
func (e RangeError) Error() string        { return string(e) }

// determine the class of an error, wrapped errors are unwrapped
func IsErrEncoding(e error) bool     { var x EncodingError; return errors.As(e, &x) }
func IsErrExists(e error) bool       { var x ExistsError; return errors.As(e, &x) }
func IsErrInsufficient(e error) bool { var x InsufficientError; return errors.As(e, &x) }
func IsErrIntegrity(e error) bool    { var x IntegrityError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool      { var x InvalidError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool     { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool      { var x ProcessError; return errors.As(e, &x) }
func IsErrRange(e error) bool        { var x RangeError; return errors.As(e, &x) }
