// Package store persists named domain parameters, key pairs and issued
// signatures for the tinydsa command-line tool, in a GORM-backed SQLite
// database.
//
// Database structure (default file: tinydsa.db):
//
//	tinydsa.db
//	├── param_sets
//	├── key_records
//	└── signature_records
package store

import (
	"gorm.io/gorm"

	"github.com/pornin/go-tiny-dsa/tinydsa"
)

// ParamSet is a named set of shared domain parameters.
type ParamSet struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null"`
	P    uint64 `gorm:"not null"`
	Q    uint64 `gorm:"not null"`
	G    uint64 `gorm:"not null"`
}

// Parameters returns the domain parameters held by the record.
func (ps ParamSet) Parameters() tinydsa.Parameters {
	return tinydsa.Parameters{P: ps.P, Q: ps.Q, G: ps.G}
}

// KeyRecord is a participant's key pair, bound to a parameter set.
type KeyRecord struct {
	gorm.Model
	Owner      string `gorm:"uniqueIndex;not null"`
	ParamSetID uint   `gorm:"index;not null"`
	ParamSet   ParamSet
	Private    uint64 `gorm:"not null"`
	Public     uint64 `gorm:"not null"`
}

// KeyPair returns the key pair held by the record.
func (kr KeyRecord) KeyPair() tinydsa.KeyPair {
	return tinydsa.KeyPair{Private: kr.Private, Public: kr.Public}
}

// SignatureRecord logs a signature issued with a stored key.
type SignatureRecord struct {
	gorm.Model
	KeyRecordID uint   `gorm:"index;not null"`
	Message     string `gorm:"type:text"`
	HashMode    string // "chunks", "collapsed" or "shake"
	Encoded     string `gorm:"not null"` // base-36 signature text
}
