package storage

import (
	"errors"

	"github.com/ethereum/go-ethereum/rlp"
)

// State is the RLP-coded view of a Database that the native engines consume.
// Every durable record in the pool core round-trips through it.
type State struct {
	db Database
}

// NewState wraps the database with the RLP codec.
func NewState(db Database) *State {
	return &State{db: db}
}

// KVPut encodes the value with RLP and writes it under key.
func (s *State) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return s.db.Put(key, encoded)
}

// KVGet decodes the stored value into out. The boolean reports whether the
// key existed; decoding is skipped when out is nil.
func (s *State) KVGet(key []byte, out interface{}) (bool, error) {
	encoded, err := s.db.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, err
	}
	return true, nil
}
