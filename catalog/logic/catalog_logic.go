// Package logic holds catalog rules: which products are well formed, how
// partial updates apply and who may remove a listing.
package logic

import (
	"strings"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// ValidateNewProduct checks a product about to be created and returns a
// normalized copy. Products created by premium users are owned by them;
// everything else defaults to the admin owner.
func ValidateNewProduct(p *domain.Product, actor domain.Actor) (*domain.Product, error) {
	if p == nil {
		return nil, common.NewInvalidArgument(common.ReasonInvalidProduct, common.ErrMsgMandatoryFields)
	}
	out := p.Clone()
	out.Title = strings.TrimSpace(out.Title)
	out.Description = strings.TrimSpace(out.Description)
	out.Category = strings.TrimSpace(out.Category)
	out.Code = domain.NormalizeCode(out.Code)
	if out.Thumbnails == nil {
		out.Thumbnails = []string{}
	}

	switch {
	case out.Owner != "":
	case actor.Role == domain.RolePremium && actor.ID != "":
		out.Owner = actor.ID
	default:
		out.Owner = domain.DefaultOwner
	}

	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyUpdate returns a copy of p with the patch applied and checks the
// result. Code uniqueness is enforced by the store, which applies the same
// patch to its current record.
func ApplyUpdate(p *domain.Product, patch domain.ProductPatch) (*domain.Product, error) {
	if p == nil {
		return nil, common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgProductNotFound)
	}
	out := patch.ApplyTo(p)
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CanDelete reports whether actor may remove or edit p. Admins may touch
// anything, premium users only what they own.
func CanDelete(p *domain.Product, actor domain.Actor) bool {
	if p == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == domain.RolePremium && actor.ID != "" && p.Owner == actor.ID
}

// CanCreate reports whether actor may add products.
func CanCreate(actor domain.Actor) bool {
	return actor.IsAdmin() || (actor.Role == domain.RolePremium && actor.ID != "")
}

// RemovalFor builds the owner notice for a deleted product, or false when the
// product belongs to the admin owner and nobody needs telling.
func RemovalFor(p *domain.Product, actor domain.Actor) (domain.ProductRemoval, bool) {
	if p == nil || p.Owner == "" || p.Owner == domain.DefaultOwner || p.Owner == actor.ID {
		return domain.ProductRemoval{}, false
	}
	return domain.ProductRemoval{Product: *p.Clone(), Owner: p.Owner, By: actor.ID}, true
}

func validate(p *domain.Product) error {
	if p.Title == "" || p.Description == "" || p.Category == "" || p.Code == "" {
		return common.NewInvalidArgument(common.ReasonInvalidProduct, common.ErrMsgMandatoryFields)
	}
	if p.Price.IsNegative() {
		return common.NewInvalidArgument(common.ReasonInvalidProduct, common.ErrMsgPriceNegative)
	}
	if err := common.RequireNonNegative(p.Stock, common.ErrMsgStockNegative); err != nil {
		return err
	}
	return nil
}
