package logic

import (
	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// HandleRemoveQuantity takes quantity units off the line for productID, or
// sets it to override when given. A line that ends at zero or below is
// deleted rather than stored with a non-positive quantity.
func (l *DefaultCartLogic) HandleRemoveQuantity(cart *domain.Cart, productID string, quantity int, override *int) (*domain.Cart, error) {
	if cart == nil {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}
	if err := common.RequirePositive(quantity, common.ErrMsgQuantityPositive); err != nil {
		return nil, err
	}
	if override != nil {
		if err := common.RequireNonNegative(*override, common.ErrMsgQuantityPositive); err != nil {
			return nil, err
		}
	}

	i := cart.IndexOf(productID)
	if i < 0 {
		return nil, common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgItemNotInCart)
	}

	updated := cart.Clone()
	remaining := updated.Items[i].Quantity - quantity
	if override != nil {
		remaining = *override
	}
	if remaining <= 0 {
		updated.Items = append(updated.Items[:i], updated.Items[i+1:]...)
	} else {
		updated.Items[i].Quantity = remaining
	}
	return l.touch(updated), nil
}
