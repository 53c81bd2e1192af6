// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tokenledger/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Context            *PoolHandle `prefix:"C"`
	Nodes              *PoolHandle `prefix:"N"`
	Buckets            *PoolHandle `prefix:"B"`
	Transactions       *PoolHandle `prefix:"T"`
	History            *PoolHandle `prefix:"H"`
	HistoryCount       *PoolHandle `prefix:"K"`
	Allowances         *PoolHandle `prefix:"A"`
	AllowancesReceived *PoolHandle `prefix:"R"`
	LegacyBalances     *PoolHandle `prefix:"L"`
	Migrated           *PoolHandle `prefix:"M"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Database - an open ledger database
type Database struct {
	sync.Mutex
	Pool pools

	log *logger.L
	db  *leveldb.DB
	trx *transaction
}

// Open - open or create a leveldb directory
func Open(fileName string, readOnly bool) (*Database, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(fileName, opt)
	if nil != err {
		return nil, err
	}
	return setup(db, readOnly)
}

// OpenMemory - a volatile database, used for testing
func OpenMemory() (*Database, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	return setup(db, ReadWrite)
}

func setup(db *leveldb.DB, readOnly bool) (*Database, error) {
	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	version, err := getVersion(db)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)
	}
	if 0 == version && !readOnly {
		err := putVersion(db, currentDBVersion)
		if nil != err {
			return nil, err
		}
		version = currentDBVersion
	}
	if version != currentDBVersion {
		return nil, fmt.Errorf("database version: %d  expected: %d", version, currentDBVersion)
	}

	d := &Database{
		log: logger.New("storage"),
		db:  db,
		trx: newTransaction(db, newCache()),
	}

	// this will be a struct type
	poolType := reflect.TypeOf(d.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&d.Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix: prefix,
			limit:  limit,
			db:     db,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	d.log.Infof("opened database version: 0x%x", version)

	ok = true // prevent db close
	return d, nil
}

// Close - release the database
func (d *Database) Close() error {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return fault.ErrDatabaseIsNotSet
	}
	if d.trx.InUse() {
		d.log.Warn("closing with an open transaction")
		d.trx.Abort()
	}
	err := d.db.Close()
	d.db = nil
	d.log.Info("closed")
	return err
}

// NewTransaction - start the single write session
//
// only one call can hold the transaction, a second begin fails
// until the first commits or aborts
func (d *Database) NewTransaction() (Transaction, error) {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return nil, fault.ErrDatabaseIsNotSet
	}
	err := d.trx.Begin()
	if nil != err {
		return nil, err
	}
	return d.trx, nil
}

func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
