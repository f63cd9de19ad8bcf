package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pornin/go-tiny-dsa/tinydsa"
)

const (
	// InMemorySQLiteDSN is a special DSN to create an ephemeral in-memory SQLite database.
	InMemorySQLiteDSN = ":memory:"

	// dbDirPermissions sets directory permissions to 750 (rwxr-x---).
	dbDirPermissions = 0o750
)

var (
	// ErrNotFound is returned when a named record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrExists is returned when a name is already taken.
	ErrExists = errors.New("store: name already in use")
)

var (
	gormConfig = &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	// schemaModels lists the structs to be auto-migrated into the database.
	schemaModels = []any{
		&ParamSet{},
		&KeyRecord{},
		&SignatureRecord{},
	}
)

// DB wraps a GORM client.
type DB struct {
	client *gorm.DB
}

// OpenFileDB opens (or creates) a file-backed SQLite database at path,
// creating the parent directory if needed, and migrates the schema.
func OpenFileDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dbDirPermissions); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory: %s", dir)
		}
	}
	return openSQLite(path)
}

// OpenInMemoryDB opens a non-persistent SQLite database in memory.
func OpenInMemoryDB() (*DB, error) {
	return openSQLite(InMemorySQLiteDSN)
}

func openSQLite(dsn string) (*DB, error) {
	if dsn != InMemorySQLiteDSN && !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}
	if err := db.AutoMigrate(schemaModels...); err != nil {
		return nil, errors.Wrap(err, "failed to auto-migrate database schema")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	// A single connection keeps an in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &DB{client: db}, nil
}

// Client returns the internal *gorm.DB instance for direct usage in queries.
func (d *DB) Client() *gorm.DB {
	return d.client
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to retrieve native sql.DB")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, "failed to close database connection")
	}
	return nil
}

// SaveParameters stores pp under name. The parameters are validated
// first; a taken name yields ErrExists.
func (d *DB) SaveParameters(name string, pp tinydsa.Parameters) (*ParamSet, error) {
	if err := pp.Validate(); err != nil {
		return nil, err
	}
	if _, err := d.ParamSet(name); err == nil {
		return nil, errors.Wrapf(ErrExists, "parameters %q", name)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	ps := &ParamSet{Name: name, P: pp.P, Q: pp.Q, G: pp.G}
	if err := d.client.Create(ps).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to save parameters %q", name)
	}
	return ps, nil
}

// ParamSet loads the parameter set stored under name.
func (d *DB) ParamSet(name string) (*ParamSet, error) {
	var ps ParamSet
	err := d.client.Where("name = ?", name).First(&ps).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "parameters %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load parameters %q", name)
	}
	return &ps, nil
}

// ParamSets lists all stored parameter sets, oldest first.
func (d *DB) ParamSets() ([]ParamSet, error) {
	var sets []ParamSet
	if err := d.client.Order("id").Find(&sets).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list parameters")
	}
	return sets, nil
}

// SaveKey stores the key pair of owner, bound to parameter set ps. The
// public key must match the private key.
func (d *DB) SaveKey(owner string, ps *ParamSet, kp tinydsa.KeyPair) (*KeyRecord, error) {
	y, err := tinydsa.PublicKey(ps.Parameters(), kp.Private)
	if err != nil {
		return nil, err
	}
	if y != kp.Public {
		return nil, errors.Wrapf(tinydsa.ErrInvalidKey, "public key mismatch for %q", owner)
	}
	if _, err := d.Key(owner); err == nil {
		return nil, errors.Wrapf(ErrExists, "key %q", owner)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	kr := &KeyRecord{
		Owner:      owner,
		ParamSetID: ps.ID,
		ParamSet:   *ps,
		Private:    kp.Private,
		Public:     kp.Public,
	}
	if err := d.client.Omit("ParamSet").Create(kr).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to save key %q", owner)
	}
	return kr, nil
}

// Key loads the key pair of owner, with its parameter set.
func (d *DB) Key(owner string) (*KeyRecord, error) {
	var kr KeyRecord
	err := d.client.Preload("ParamSet").Where("owner = ?", owner).First(&kr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "key %q", owner)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load key %q", owner)
	}
	return &kr, nil
}

// SaveSignature logs a signature issued with key kr.
func (d *DB) SaveSignature(kr *KeyRecord, message, hashMode, encoded string) (*SignatureRecord, error) {
	sr := &SignatureRecord{
		KeyRecordID: kr.ID,
		Message:     message,
		HashMode:    hashMode,
		Encoded:     encoded,
	}
	if err := d.client.Create(sr).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to save signature for %q", kr.Owner)
	}
	return sr, nil
}

// Signatures lists the signatures issued with key kr, oldest first.
func (d *DB) Signatures(kr *KeyRecord) ([]SignatureRecord, error) {
	var sigs []SignatureRecord
	err := d.client.Where("key_record_id = ?", kr.ID).Order("id").Find(&sigs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list signatures for %q", kr.Owner)
	}
	return sigs, nil
}
