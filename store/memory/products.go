package memory

import (
	"context"
	"sort"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// Products is a domain.ProductStore.
type Products struct {
	db *memdb.MemDB
}

var _ domain.ProductStore = (*Products)(nil)

func productNotFound() error {
	return common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgProductNotFound)
}

func firstProduct(txn *memdb.Txn, index, value string) (*domain.Product, error) {
	raw, err := txn.First(tableProducts, index, value)
	if err != nil {
		return nil, storageErr("find product", err)
	}
	if raw == nil {
		return nil, nil
	}
	return raw.(*domain.Product), nil
}

// Get returns the product with the given id.
func (r *Products) Get(_ context.Context, id string) (*domain.Product, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	p, err := firstProduct(txn, indexID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, productNotFound()
	}
	return p.Clone(), nil
}

// DecrementStock reduces stock by n inside a write transaction. Write
// transactions are serialized, so the check and the update cannot interleave
// with another settlement.
func (r *Products) DecrementStock(_ context.Context, id string, n int) (*domain.Product, error) {
	if err := common.RequirePositive(n, common.ErrMsgQuantityPositive); err != nil {
		return nil, err
	}
	txn := r.db.Txn(true)
	defer txn.Abort()

	p, err := firstProduct(txn, indexID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, productNotFound()
	}
	if p.Stock < n {
		return nil, common.NewFailedPreconditionf(common.ReasonInsufficientStock,
			"%s: have %d, need %d", common.ErrMsgInsufficientStock, p.Stock, n)
	}

	updated := p.Clone()
	updated.Stock -= n
	if err := txn.Insert(tableProducts, updated); err != nil {
		return nil, storageErr("decrement stock", err)
	}
	txn.Commit()
	return updated.Clone(), nil
}

// Create inserts a new product. An empty ID is generated.
func (r *Products) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	created := p.Clone()
	if created.ID == "" {
		created.ID = common.NewID()
	}

	txn := r.db.Txn(true)
	defer txn.Abort()

	if existing, err := firstProduct(txn, indexID, created.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, common.NewFailedPrecondition(common.ReasonDuplicateCode, common.ErrMsgDuplicateCode)
	}
	if err := checkCodeFree(txn, created); err != nil {
		return nil, err
	}
	if err := txn.Insert(tableProducts, created); err != nil {
		return nil, storageErr("create product", err)
	}
	txn.Commit()
	return created.Clone(), nil
}

// Update applies patch to the current record inside a write transaction, so
// it serializes with DecrementStock and never restores a stale stock count.
func (r *Products) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := firstProduct(txn, indexID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, productNotFound()
	}
	updated := patch.ApplyTo(existing)
	if err := checkCodeFree(txn, updated); err != nil {
		return nil, err
	}
	if err := txn.Insert(tableProducts, updated); err != nil {
		return nil, storageErr("update product", err)
	}
	txn.Commit()
	return updated.Clone(), nil
}

// Delete removes a product. Carts referencing it are left alone.
func (r *Products) Delete(_ context.Context, id string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := firstProduct(txn, indexID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return productNotFound()
	}
	if err := txn.Delete(tableProducts, existing); err != nil {
		return storageErr("delete product", err)
	}
	txn.Commit()
	return nil
}

// List returns one page of products matching filter.
func (r *Products) List(_ context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	filter = filter.Normalized()

	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableProducts, indexID)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	var matched []*domain.Product
	for raw := it.Next(); raw != nil; raw = it.Next() {
		p := raw.(*domain.Product)
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.OnlyActive && !p.Status {
			continue
		}
		matched = append(matched, p.Clone())
	}

	switch filter.SortPrice {
	case "asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.LessThan(matched[j].Price) })
	case "desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.GreaterThan(matched[j].Price) })
	}

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return domain.NewProductPage(matched[start:end], total, filter), nil
}

// checkCodeFree enforces code uniqueness. The memdb unique index only keeps
// the last writer, so the check is explicit.
func checkCodeFree(txn *memdb.Txn, p *domain.Product) error {
	holder, err := firstProduct(txn, indexCode, p.Code)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != p.ID {
		return common.NewFailedPrecondition(common.ReasonDuplicateCode, common.ErrMsgDuplicateCode)
	}
	return nil
}
