package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// Products is a domain.ProductStore backed by the products collection.
type Products struct {
	coll *mongo.Collection
}

var _ domain.ProductStore = (*Products)(nil)

func productNotFound() error {
	return common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgProductNotFound)
}

func duplicateCode() error {
	return common.NewFailedPrecondition(common.ReasonDuplicateCode, common.ErrMsgDuplicateCode)
}

// Get returns the product with the given id.
func (r *Products) Get(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, productNotFound()
	}
	if err != nil {
		return nil, storageErr("find product", err)
	}
	return doc.toDomain()
}

// DecrementStock applies a conditional $inc: the filter only matches while
// stock >= n, so concurrent settlements cannot drive stock negative.
func (r *Products) DecrementStock(ctx context.Context, id string, n int) (*domain.Product, error) {
	if err := common.RequirePositive(n, common.ErrMsgQuantityPositive); err != nil {
		return nil, err
	}
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": n}}
	update := bson.M{"$inc": bson.M{"stock": -n}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storageErr("decrement stock", err)
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, storageErr("decrement stock", err)
	}
	if count == 0 {
		return nil, productNotFound()
	}
	return nil, common.NewFailedPrecondition(common.ReasonInsufficientStock, common.ErrMsgInsufficientStock)
}

// Create inserts a new product. An empty ID is generated.
func (r *Products) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	created := p.Clone()
	if created.ID == "" {
		created.ID = common.NewID()
	}
	doc, err := newProductDoc(created)
	if err != nil {
		return nil, common.NewInvalidArgument(common.ReasonInvalidProduct, err.Error())
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateCode()
		}
		return nil, storageErr("create product", err)
	}
	return created, nil
}

// Update writes only the fields set in patch with $set, so stock moved by a
// concurrent DecrementStock is left alone unless the patch sets it.
func (r *Products) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	set, err := patchSet(patch)
	if err != nil {
		return nil, common.NewInvalidArgument(common.ReasonInvalidProduct, err.Error())
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, productNotFound()
	case mongo.IsDuplicateKeyError(err):
		return nil, duplicateCode()
	case err != nil:
		return nil, storageErr("update product", err)
	}
	return doc.toDomain()
}

// Delete removes a product document.
func (r *Products) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr("delete product", err)
	}
	if res.DeletedCount == 0 {
		return productNotFound()
	}
	return nil
}

// List returns one page of products matching filter.
func (r *Products) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	filter = filter.Normalized()
	query := listQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, storageErr("count products", err)
	}

	opts := options.Find().
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit)).
		SetSort(listSort(filter))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storageErr("list products", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, storageErr("decode product", err)
		}
		products = append(products, p)
	}
	return domain.NewProductPage(products, int(total), filter), nil
}

func listQuery(filter domain.ProductFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.OnlyActive {
		query["status"] = true
	}
	return query
}

func listSort(filter domain.ProductFilter) bson.D {
	switch filter.SortPrice {
	case "asc":
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case "desc":
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "_id", Value: 1}}
	}
}
