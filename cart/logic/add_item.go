package logic

import (
	"context"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// HandleAddItem adds quantity units of productID. An existing line becomes
// override when given, otherwise existing+quantity. A new line is appended
// with quantity.
func (l *DefaultCartLogic) HandleAddItem(ctx context.Context, cart *domain.Cart, productID string, quantity int, override *int) (*domain.Cart, error) {
	if cart == nil {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}
	if productID == "" {
		return nil, common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgProductIDRequired)
	}
	if err := common.RequirePositive(quantity, common.ErrMsgQuantityPositive); err != nil {
		return nil, err
	}
	if override != nil {
		if err := common.RequirePositive(*override, common.ErrMsgQuantityPositive); err != nil {
			return nil, err
		}
	}

	if _, err := l.catalog.Get(ctx, productID); err != nil {
		if common.HasReason(err, common.ReasonProductNotFound) {
			return nil, common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgProductNotFound)
		}
		return nil, err
	}

	updated := cart.Clone()
	if i := updated.IndexOf(productID); i >= 0 {
		if override != nil {
			updated.Items[i].Quantity = *override
		} else {
			updated.Items[i].Quantity += quantity
		}
	} else {
		updated.Items = append(updated.Items, domain.LineItem{ProductID: productID, Quantity: quantity})
	}
	return l.touch(updated), nil
}
