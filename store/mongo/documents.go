package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/istore/storefront/domain"
)

type productDoc struct {
	ID          string               `bson:"_id"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Category    string               `bson:"category"`
	Code        string               `bson:"code"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	Status      bool                 `bson:"status"`
	Owner       string               `bson:"owner"`
	Thumbnails  []string             `bson:"thumbnails"`
}

type lineDoc struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

type cartDoc struct {
	ID        string    `bson:"_id"`
	Items     []lineDoc `bson:"items"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type ticketLineDoc struct {
	ProductID string               `bson:"product_id"`
	Title     string               `bson:"title"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
}

type ticketDoc struct {
	ID          string               `bson:"_id"`
	Code        string               `bson:"code"`
	PurchasedAt time.Time            `bson:"purchased_at"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Purchaser   string               `bson:"purchaser"`
	Lines       []ticketLineDoc      `bson:"lines"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", v, err)
	}
	return d, nil
}

func newProductDoc(p *domain.Product) (*productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	thumbs := p.Thumbnails
	if thumbs == nil {
		thumbs = []string{}
	}
	return &productDoc{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Code:        p.Code,
		Price:       price,
		Stock:       p.Stock,
		Status:      p.Status,
		Owner:       p.Owner,
		Thumbnails:  thumbs,
	}, nil
}

// patchSet builds the $set document for the fields a patch carries.
func patchSet(patch domain.ProductPatch) (bson.M, error) {
	patch = patch.Normalized()
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Code != nil {
		set["code"] = *patch.Code
	}
	if patch.Price != nil {
		price, err := toDecimal128(*patch.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = price
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Thumbnails != nil {
		set["thumbnails"] = patch.Thumbnails
	}
	return set, nil
}

func (d *productDoc) toDomain() (*domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Code:        d.Code,
		Price:       price,
		Stock:       d.Stock,
		Status:      d.Status,
		Owner:       d.Owner,
		Thumbnails:  d.Thumbnails,
	}, nil
}

func newCartDoc(c *domain.Cart) *cartDoc {
	items := make([]lineDoc, len(c.Items))
	for i, item := range c.Items {
		items[i] = lineDoc{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return &cartDoc{ID: c.ID, Items: items, CreatedAt: c.CreatedAt.UTC(), UpdatedAt: c.UpdatedAt.UTC()}
}

func (d *cartDoc) toDomain() *domain.Cart {
	items := make([]domain.LineItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = domain.LineItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return &domain.Cart{ID: d.ID, Items: items, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC()}
}

func newTicketDoc(t *domain.Ticket) (*ticketDoc, error) {
	amount, err := toDecimal128(t.Amount)
	if err != nil {
		return nil, err
	}
	lines := make([]ticketLineDoc, len(t.Lines))
	for i, line := range t.Lines {
		price, err := toDecimal128(line.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines[i] = ticketLineDoc{ProductID: line.ProductID, Title: line.Title, Quantity: line.Quantity, UnitPrice: price}
	}
	return &ticketDoc{
		ID:          t.ID,
		Code:        t.Code,
		PurchasedAt: t.PurchasedAt.UTC(),
		Amount:      amount,
		Purchaser:   t.Purchaser,
		Lines:       lines,
	}, nil
}

func (d *ticketDoc) toDomain() (*domain.Ticket, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.TicketLine, len(d.Lines))
	for i, line := range d.Lines {
		price, err := fromDecimal128(line.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines[i] = domain.TicketLine{ProductID: line.ProductID, Title: line.Title, Quantity: line.Quantity, UnitPrice: price}
	}
	return &domain.Ticket{
		ID:          d.ID,
		Code:        d.Code,
		PurchasedAt: d.PurchasedAt.UTC(),
		Amount:      amount,
		Purchaser:   d.Purchaser,
		Lines:       lines,
	}, nil
}
