// Package domain holds the storefront entities and the contracts of the
// collaborators the cart engine and checkout settlement depend on.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// DefaultOwner owns products created without an explicit owner.
const DefaultOwner = "admin"

// Product is a catalog entry. Stock is only decremented by settlement.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Code        string          `json:"code"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      bool            `json:"status"`
	Owner       string          `json:"owner"`
	Thumbnails  []string        `json:"thumbnails,omitempty"`
}

// Clone returns a deep copy of the product.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.Thumbnails != nil {
		c.Thumbnails = append([]string(nil), p.Thumbnails...)
	}
	return &c
}

// NormalizeCode canonicalizes a product business key so that visually
// identical codes compare equal.
func NormalizeCode(code string) string {
	return norm.NFC.String(strings.TrimSpace(code))
}

// ProductPatch carries a partial product update. Nil fields are left as is.
type ProductPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Code        *string          `json:"code,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Status      *bool            `json:"status,omitempty"`
	Thumbnails  []string         `json:"thumbnails,omitempty"`
}

// Normalized trims text fields and canonicalizes the code.
func (patch ProductPatch) Normalized() ProductPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	out := patch
	out.Title = trim(patch.Title)
	out.Description = trim(patch.Description)
	out.Category = trim(patch.Category)
	if patch.Code != nil {
		code := NormalizeCode(*patch.Code)
		out.Code = &code
	}
	if patch.Thumbnails != nil {
		out.Thumbnails = append([]string(nil), patch.Thumbnails...)
	}
	return out
}

// ApplyTo returns a copy of p with the set fields of the patch written over
// it. Fields the patch leaves nil keep p's values, stock included.
func (patch ProductPatch) ApplyTo(p *Product) *Product {
	out := p.Clone()
	patch = patch.Normalized()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.Code != nil {
		out.Code = *patch.Code
	}
	if patch.Price != nil {
		out.Price = *patch.Price
	}
	if patch.Stock != nil {
		out.Stock = *patch.Stock
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Thumbnails != nil {
		out.Thumbnails = patch.Thumbnails
	}
	return out
}

// DefaultPageLimit is the page size used when a listing does not set one.
const DefaultPageLimit = 10

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Category   string `json:"category,omitempty"`
	OnlyActive bool   `json:"only_active,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Page       int    `json:"page,omitempty"`
	SortPrice  string `json:"sort_price,omitempty"` // "asc", "desc" or ""
}

// Normalized fills in the default page and limit.
func (f ProductFilter) Normalized() ProductFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.SortPrice != "asc" && f.SortPrice != "desc" {
		f.SortPrice = ""
	}
	return f
}

// Offset is the number of matching products skipped before this page.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products   []*Product `json:"products"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

// NewProductPage assembles a page from the products matched by filter.
func NewProductPage(products []*Product, total int, filter ProductFilter) *ProductPage {
	if products == nil {
		products = []*Product{}
	}
	pages := 0
	if filter.Limit > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}
	return &ProductPage{Products: products, Total: total, Page: filter.Page, Limit: filter.Limit, TotalPages: pages}
}

// HasNext reports whether a later page exists.
func (p *ProductPage) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p *ProductPage) HasPrev() bool {
	return p.Page > 1
}
