package logic

import (
	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

func (l *DefaultCartLogic) HandleUpdateQuantity(cart *domain.Cart, productID string, newQuantity int) (*domain.Cart, error) {
	if cart == nil {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}
	if err := common.RequirePositive(newQuantity, common.ErrMsgQuantityPositive); err != nil {
		return nil, err
	}

	i := cart.IndexOf(productID)
	if i < 0 {
		return nil, common.NewNotFound(common.ReasonLineNotFound, common.ErrMsgItemNotInCart)
	}

	updated := cart.Clone()
	updated.Items[i].Quantity = newQuantity
	return l.touch(updated), nil
}
