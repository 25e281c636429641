package logic

import (
	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

func (l *DefaultCartLogic) HandleCreateCart(cartID string) (*domain.Cart, error) {
	if cartID == "" {
		cartID = common.NewID()
	}
	return domain.NewCart(cartID, l.now().UTC()), nil
}
