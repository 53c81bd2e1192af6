// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secret

import (
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// fill out with HKDF(secret, salt, info)
func derive(h func() hash.Hash, secret []byte, salt []byte, info string, out []byte) error {
	_, err := io.ReadFull(hkdf.New(h, secret, salt, []byte(info)), out)
	return err
}
