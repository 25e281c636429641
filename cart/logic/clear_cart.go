package logic

import (
	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

func (l *DefaultCartLogic) HandleClearCart(cart *domain.Cart) (*domain.Cart, error) {
	if cart == nil {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}

	updated := cart.Clone()
	updated.Items = []domain.LineItem{}
	return l.touch(updated), nil
}
