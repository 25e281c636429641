package logic

import (
	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// HandleReplaceItems overwrites the cart's lines without consulting the
// catalog. Lines are still checked for shape: a product reference and a
// positive quantity. Repeated references are merged into the first
// occurrence so the one-line-per-product rule holds.
func (l *DefaultCartLogic) HandleReplaceItems(cart *domain.Cart, items []domain.LineItem) (*domain.Cart, error) {
	if cart == nil {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}

	merged := make([]domain.LineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if err := common.RequireID(item.ProductID, common.ErrMsgProductIDRequired); err != nil {
			return nil, err
		}
		if err := common.RequirePositive(item.Quantity, common.ErrMsgQuantityPositive); err != nil {
			return nil, err
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	updated := cart.Clone()
	updated.Items = merged
	return l.touch(updated), nil
}
