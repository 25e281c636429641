package memory

import (
	"fmt"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/istore/storefront/common"
)

// Store implements the product, cart and ticket stores over one MemDB.
// Objects are copied on the way in and out, so callers never share memory
// with the database.
type Store struct {
	db *memdb.MemDB
}

// New creates an empty store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &Store{db: db}, nil
}

// Products returns the store as a catalog.
func (s *Store) Products() *Products { return &Products{db: s.db} }

// Carts returns the store as a cart store.
func (s *Store) Carts() *Carts { return &Carts{db: s.db} }

// Tickets returns the store as a ticket ledger.
func (s *Store) Tickets() *Tickets { return &Tickets{db: s.db} }

func storageErr(op string, err error) error {
	return common.NewStorageFailure(op, err)
}
