package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore serves collections from one MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri and selects database dbName. The client is shared by
// every collection for the life of the process.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("store: mongo uri required")
	}
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("store: connect mongo: %w", err)
	}
	return NewMongoStore(client, dbName), nil
}

// NewMongoStore wraps an existing client.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	if client == nil {
		panic("store: mongo client required")
	}
	return &MongoStore{client: client, db: client.Database(dbName)}
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("store: ping mongo: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	cur, err := c.coll.Find(ctx, toBSON(filter))
	if err != nil {
		return nil, fmt.Errorf("store: find %s: %w", c.coll.Name(), err)
	}
	defer cur.Close(ctx)

	out := make([]Document, 0)
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", c.coll.Name(), err)
		}
		out = append(out, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	var raw bson.M
	err := c.coll.FindOne(ctx, toBSON(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: find one %s: %w", c.coll.Name(), err)
	}
	return fromBSON(raw), nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc Document) (*InsertResult, error) {
	res, err := c.coll.InsertOne(ctx, toBSON(doc))
	if err != nil {
		return nil, fmt.Errorf("store: insert %s: %w", c.coll.Name(), err)
	}
	return &InsertResult{Acknowledged: true, InsertedID: plainValue(res.InsertedID)}, nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter Filter, set Document, opts UpdateOptions) (*UpdateResult, error) {
	update := bson.M{"$set": toBSON(withoutID(set))}
	res, err := c.coll.UpdateOne(ctx, toBSON(filter), update, options.Update().SetUpsert(opts.Upsert))
	if err != nil {
		return nil, fmt.Errorf("store: update %s: %w", c.coll.Name(), err)
	}
	return &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    plainValue(res.UpsertedID),
	}, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	res, err := c.coll.DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return nil, fmt.Errorf("store: delete %s: %w", c.coll.Name(), err)
	}
	return &DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// toBSON converts a filter or document to bson.M, turning hex _id strings
// back into ObjectIDs so lookups by id hit driver-assigned keys.
func toBSON(in map[string]any) bson.M {
	out := bson.M{}
	for k, v := range in {
		if k == IDField {
			if s, ok := v.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(s); err == nil {
					out[k] = oid
					continue
				}
			}
		}
		out[k] = v
	}
	return out
}

func fromBSON(in bson.M) Document {
	out := make(Document, len(in))
	for k, v := range in {
		out[k] = plainValue(v)
	}
	return out
}

// plainValue maps driver types onto JSON-friendly values.
func plainValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case bson.M:
		return map[string]any(fromBSON(t))
	case bson.D:
		return map[string]any(fromBSON(t.Map()))
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return v
	}
}
