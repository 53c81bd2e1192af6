// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
)

// time allowed for the log writer to drain before a panic
const panicDelay = 100 * time.Millisecond

var channel struct {
	sync.Mutex
	log *logger.L
}

// Initialise - open the log channel used for fatal messages
//
// the logger must already be initialised
func Initialise() error {
	channel.Lock()
	defer channel.Unlock()

	if nil != channel.log {
		return ErrAlreadyInitialised
	}
	channel.log = logger.New("fault")
	if nil == channel.log {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush and release the channel
func Finalise() {
	channel.Lock()
	defer channel.Unlock()

	if nil != channel.log {
		channel.log.Flush()
		channel.log = nil
	}
}

// Criticalf - log a formatted message prefixed by the caller's location
func Criticalf(format string, arguments ...interface{}) {
	criticalf(2, format, arguments...)
}

// Integrity - log an integrity failure and panic
//
// used when the stored state can no longer be trusted
func Integrity(operation string, err error) {
	if nil == err {
		return
	}
	message := fmt.Sprintf("%s: integrity failure: %v", operation, err)
	criticalf(2, "%s", message)
	time.Sleep(panicDelay)
	panic(message)
}

// PanicIfError - conditional panic
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	s := fmt.Sprintf("%s failed with error: %v", message, err)
	criticalf(2, "%s", s)
	time.Sleep(panicDelay)
	panic(s)
}

func criticalf(skip int, format string, arguments ...interface{}) {
	if _, file, line, ok := runtime.Caller(skip); ok {
		format = fmt.Sprintf("(%q:%d) ", file, line) + format
	}

	channel.Lock()
	log := channel.log
	channel.Unlock()

	if nil == log {
		fmt.Printf("*** "+format+"\n", arguments...)
		return
	}
	log.Criticalf(format, arguments...)
	log.Flush()
}
