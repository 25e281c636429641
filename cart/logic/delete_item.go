package logic

import (
	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// HandleDeleteItem removes the whole line. The catalog is not consulted, so
// lines whose product was deleted can still be removed.
func (l *DefaultCartLogic) HandleDeleteItem(cart *domain.Cart, productID string) (*domain.Cart, error) {
	if cart == nil {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}

	i := cart.IndexOf(productID)
	if i < 0 {
		return nil, common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgItemNotInCart)
	}

	updated := cart.Clone()
	updated.Items = append(updated.Items[:i], updated.Items[i+1:]...)
	return l.touch(updated), nil
}
