package logic

import (
	"context"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// Settle converts the cart's contents into a purchase record.
//
// Lines are attempted in cart order with a conditional stock decrement, so
// stock never goes negative and concurrent settlements cannot oversell.
// Decrements are not rolled back: once one has been applied, any later
// failure is reported as PARTIAL_SETTLEMENT so the caller can reconcile.
func (s *Settler) Settle(ctx context.Context, cartID string, purchaser domain.Purchaser) (*Settlement, error) {
	if cartID == "" {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartIDRequired)
	}
	if purchaser.ID == "" {
		return nil, common.NewInvalidArgument(common.ReasonMissingPurchaser, common.ErrMsgPurchaserRequired)
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := common.RequireNotEmpty(cart.Items, common.ReasonEmptyCart, common.ErrMsgCartEmpty); err != nil {
		return nil, err
	}

	var fulfilled []domain.TicketLine
	var unfulfilled []Unfulfilled
	for _, item := range cart.Items {
		product, err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity)
		switch {
		case err == nil:
			fulfilled = append(fulfilled, domain.TicketLine{
				ProductID: item.ProductID,
				Title:     product.Title,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		case common.HasReason(err, common.ReasonInsufficientStock),
			common.HasReason(err, common.ReasonProductNotFound):
			unfulfilled = append(unfulfilled, Unfulfilled{Item: item, Reason: common.ReasonOf(err)})
		case len(fulfilled) > 0:
			return nil, common.NewPartialSettlement("decrement stock", err)
		default:
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		ID:          s.newID(),
		Code:        s.newCode(),
		PurchasedAt: s.now().UTC(),
		Amount:      Total(fulfilled),
		Purchaser:   purchaser.ID,
		Lines:       fulfilled,
	}
	if ticket.Lines == nil {
		ticket.Lines = []domain.TicketLine{}
	}

	stored, err := s.tickets.Append(ctx, ticket)
	if err != nil {
		return nil, s.afterDecrement(fulfilled, "append ticket", err)
	}

	remaining := cart.Clone()
	remaining.Items = make([]domain.LineItem, 0, len(unfulfilled))
	for _, u := range unfulfilled {
		remaining.Items = append(remaining.Items, u.Item)
	}
	remaining.UpdatedAt = ticket.PurchasedAt

	savedCart, err := s.carts.Save(ctx, remaining)
	if err != nil {
		return nil, s.afterDecrement(fulfilled, "save cart", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyPurchase(ctx, domain.Purchase{
			Purchaser: purchaser,
			Ticket:    *stored.Clone(),
			Items:     append([]domain.TicketLine(nil), fulfilled...),
		})
	}

	return &Settlement{
		Ticket:      stored,
		Cart:        savedCart,
		Fulfilled:   fulfilled,
		Unfulfilled: unfulfilled,
	}, nil
}

func (s *Settler) afterDecrement(fulfilled []domain.TicketLine, step string, err error) error {
	if len(fulfilled) == 0 {
		return err
	}
	return common.NewPartialSettlement(step, err)
}
