// Package memory keeps products, carts and tickets in a go-memdb database.
// It is the default backend and the store used by service tests.
package memory

import (
	memdb "github.com/hashicorp/go-memdb"
)

const (
	tableProducts = "products"
	tableCarts    = "carts"
	tableTickets  = "tickets"

	indexID        = "id"
	indexCode      = "code"
	indexPurchaser = "purchaser"
)

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProducts: {
				Name: tableProducts,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					indexCode: {
						Name:    indexCode,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Code"},
					},
				},
			},
			tableCarts: {
				Name: tableCarts,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
			tableTickets: {
				Name: tableTickets,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					indexCode: {
						Name:    indexCode,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Code"},
					},
					indexPurchaser: {
						Name:    indexPurchaser,
						Indexer: &memdb.StringFieldIndex{Field: "Purchaser"},
					},
				},
			},
		},
	}
}
