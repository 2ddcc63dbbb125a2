package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/apperror"
	"github.com/stockroom/backend/internal/models"
)

const itemsCollection = "items"

type MongoItemService struct {
	client  *mongo.Client
	items   *mongo.Collection
	timeout time.Duration
}

type mongoItemDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Quantity  int                `bson:"quantity"`
	Category  string             `bson:"category"`
	InStock   bool               `bson:"inStock"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// NewMongoItemService connects, pings and ensures the item indexes. A failure
// to build the unique name index is fatal since uniqueness depends on it.
func NewMongoItemService(ctx context.Context, mongoURI, dbName string, timeout time.Duration, logger *zap.Logger) (*MongoItemService, error) {
	opts := options.Client().ApplyURI(mongoURI)
	if strings.HasPrefix(mongoURI, "mongodb+srv://") {
		// Atlas SRV clusters are pinned to TLS 1.2.
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	items := client.Database(dbName).Collection(itemsCollection)
	if _, err := items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create item indexes: %w", err)
	}

	logger.Info("MongoDB connected", zap.String("db", dbName), zap.String("collection", itemsCollection))

	return &MongoItemService{
		client:  client,
		items:   items,
		timeout: timeout,
	}, nil
}

func (s *MongoItemService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func itemDocToModel(d mongoItemDoc) *models.Item {
	return &models.Item{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Quantity:  d.Quantity,
		Category:  d.Category,
		InStock:   d.InStock,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (s *MongoItemService) List(ctx context.Context) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.items.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, classifyStoreError("list items", err)
	}
	defer cur.Close(ctx)

	var docs []mongoItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classifyStoreError("list items", err)
	}

	out := make([]models.Item, 0, len(docs))
	for _, d := range docs {
		out = append(out, *itemDocToModel(d))
	}
	return out, nil
}

func (s *MongoItemService) Create(ctx context.Context, in models.CreateItemInput) (*models.Item, error) {
	// BSON dates hold milliseconds; match what later reads return.
	item := models.NewItem(in, time.Now().Truncate(time.Millisecond))
	if err := item.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc := mongoItemDoc{
		ID:        primitive.NewObjectID(),
		Name:      item.Name,
		Quantity:  item.Quantity,
		Category:  item.Category,
		InStock:   item.InStock,
		CreatedAt: item.CreatedAt,
	}
	if _, err := s.items.InsertOne(ctx, doc); err != nil {
		return nil, classifyStoreError("insert item", err)
	}

	return itemDocToModel(doc), nil
}

func (s *MongoItemService) GetByID(ctx context.Context, id string) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound(id)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc mongoItemDoc
	if err := s.items.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, classifyLookupError("find item", id, err)
	}
	return itemDocToModel(doc), nil
}

func (s *MongoItemService) Update(ctx context.Context, id string, in models.UpdateItemInput) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound(id)
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// Nothing to set; read the item instead.
	if in.IsEmpty() {
		return s.GetByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc mongoItemDoc
	err = s.items.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		buildItemUpdate(in),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, classifyLookupError("update item", id, err)
	}
	return itemDocToModel(doc), nil
}

func (s *MongoItemService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFound(id)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.items.FindOneAndDelete(ctx, bson.M{"_id": oid}).Err(); err != nil {
		return classifyLookupError("delete item", id, err)
	}
	return nil
}

// buildItemUpdate turns a partial update into a $set document. inStock is
// recomputed only when quantity is part of the update.
func buildItemUpdate(in models.UpdateItemInput) bson.M {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Quantity != nil {
		set["quantity"] = *in.Quantity
		set["inStock"] = *in.Quantity > 0
	}
	if in.Category != nil {
		set["category"] = *in.Category
	}
	return bson.M{"$set": set}
}

func classifyLookupError(op, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NotFound(id)
	}
	return classifyStoreError(op, err)
}

func classifyStoreError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict(err)
	}
	return apperror.Store(op, err)
}
