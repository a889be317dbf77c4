package mongo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"p2p-backoffice/internal/domain/mirror"
)

var _ mirror.Source = (*Source)(nil)

const (
	usersCollection = "users"
	loansCollection = "loancontracts"
)

// Source reads wallets and loan contracts from the lending platform's document store.
type Source struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri, database string) (*Source, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Source{client: client, db: client.Database(database)}, nil
}

func (s *Source) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Source) Name() string { return "mongo" }

// walletPipeline sums usdtWallets.balance per user.
func walletPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "user_id", Value: bson.D{{Key: "$toString", Value: "$_id"}}},
			{Key: "balance", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$map", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$usdtWallets", bson.A{}}}}},
				{Key: "as", Value: "w"},
				{Key: "in", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$$w.balance", 0}}}},
			}}}}}},
		}}},
	}
}

func (s *Source) Wallets(ctx context.Context) ([]mirror.Document, error) {
	cur, err := s.db.Collection(usersCollection).Aggregate(ctx, walletPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate wallets: %w", err)
	}
	docs, err := drain(ctx, cur)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for _, d := range docs {
		d["currency"] = "USDT"
		d["updated_at"] = now
	}
	return docs, nil
}

func (s *Source) Loans(ctx context.Context) ([]mirror.Document, error) {
	cur, err := s.db.Collection(loansCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find loan contracts: %w", err)
	}
	return drain(ctx, cur)
}

func drain(ctx context.Context, cur *mongo.Cursor) ([]mirror.Document, error) {
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	out := make([]mirror.Document, 0, len(raw))
	for _, m := range raw {
		out = append(out, mirror.Document(Flatten(m).(map[string]any)))
	}
	return out, nil
}

// Flatten turns driver types into plain Go values: documents become
// map[string]any, arrays []any, ObjectIDs hex strings and DateTimes time.Time.
func Flatten(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Flatten(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Flatten(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = Flatten(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Flatten(val)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return t.String()
		}
		return f
	case int32:
		return int64(t)
	}
	return v
}
