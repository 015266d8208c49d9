// Package bolt is a BoltDB-backed store for named patterns and
// record type definitions, in their serialized (JSON) forms.
package bolt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/patmalib/patma/pat"

	bolt "go.etcd.io/bbolt"
)

var (
	patternsBucket = []byte("patterns")
	typesBucket    = []byte("types")
)

type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db

	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{patternsBucket, typesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

// PutPattern stores a pattern in its serialized form under the given
// name.  The pattern is parsed first, so a stored pattern is always
// well-formed with respect to the given registry.
func (s *Storage) PutPattern(name string, serialized interface{}, reg *pat.Registry) error {
	s.logf("PutPattern %s", name)

	if _, err := pat.ParsePattern(serialized, reg); err != nil {
		return err
	}
	js, err := json.Marshal(&serialized)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(patternsBucket).Put([]byte(name), js)
	})
}

// GetPattern fetches and parses a stored pattern.
func (s *Storage) GetPattern(name string, reg *pat.Registry) (pat.Pattern, error) {
	s.logf("GetPattern %s", name)

	var js []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if bs := tx.Bucket(patternsBucket).Get([]byte(name)); bs != nil {
			js = make([]byte, len(bs))
			copy(js, bs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if js == nil {
		return nil, fmt.Errorf("pattern '%s' not found", name)
	}

	x, err := decode(js)
	if err != nil {
		return nil, err
	}
	return pat.ParsePattern(x, reg)
}

// decode parses JSON with numbers as json.Number, so integer
// constants in stored patterns stay integers.
func decode(js []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return nil, err
	}
	return x, nil
}

// RemPattern removes a stored pattern.
func (s *Storage) RemPattern(name string) error {
	s.logf("RemPattern %s", name)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(patternsBucket).Delete([]byte(name))
	})
}

// Patterns ranges over the stored patterns in key order, giving the
// serialized form to f.
func (s *Storage) Patterns(f func(name string, serialized interface{}) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(patternsBucket).Cursor()
		for name, js := c.First(); name != nil; name, js = c.Next() {
			x, err := decode(js)
			if err != nil {
				return err
			}
			if err := f(string(name), x); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutType stores a record type definition: its name and field order.
func (s *Storage) PutType(name string, fields []string) error {
	s.logf("PutType %s %v", name, fields)

	js, err := json.Marshal(&fields)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(typesBucket).Put([]byte(name), js)
	})
}

// Registry makes a Registry containing all stored record types.
func (s *Storage) Registry() (*pat.Registry, error) {
	reg := pat.NewRegistry()
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(typesBucket).Cursor()
		for name, js := c.First(); name != nil; name, js = c.Next() {
			var fields []string
			if err := json.Unmarshal(js, &fields); err != nil {
				return err
			}
			reg.Record(string(name), fields...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}
