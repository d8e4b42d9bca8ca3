package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/terastudio-org/BaileysHelper/internal/nativeflow"
)

var templatesBucket = []byte("templates")

// ErrNotFound is returned when a template name has no entry.
var ErrNotFound = errors.New("template not found")

// Template is a reusable message: config plus the raw button list, kept
// in the caller's shape so sends go through the same normalization as
// ad-hoc messages.
type Template struct {
	Name      string                   `json:"name"`
	Config    nativeflow.MessageConfig `json:"config"`
	Buttons   []any                    `json:"buttons"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

type Store interface {
	SaveTemplate(t Template) error
	GetTemplate(name string) (*Template, error)
	DeleteTemplate(name string) error
	ListTemplates() ([]Template, error)
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(templatesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating templates bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveTemplate upserts by name. On update the original CreatedAt is
// kept; UpdatedAt always moves.
func (s *BoltStore) SaveTemplate(t Template) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(templatesBucket)

		now := time.Now().UTC()
		t.UpdatedAt = now
		t.CreatedAt = now
		if v := b.Get([]byte(t.Name)); v != nil {
			var prev Template
			if err := json.Unmarshal(v, &prev); err == nil {
				t.CreatedAt = prev.CreatedAt
			}
		}

		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return b.Put([]byte(t.Name), data)
	})
}

func (s *BoltStore) GetTemplate(name string) (*Template, error) {
	var t Template
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(templatesBucket).Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *BoltStore) DeleteTemplate(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(templatesBucket)
		if b.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(name))
	})
}

// ListTemplates returns every template in name order.
func (s *BoltStore) ListTemplates() ([]Template, error) {
	templates := []Template{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(templatesBucket).ForEach(func(k, v []byte) error {
			var t Template
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("decoding template %s: %w", k, err)
			}
			templates = append(templates, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
