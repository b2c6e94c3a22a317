package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TraitStore persists off-chain trait accrual: one document per address in
// the traits collection, one document per seen tx hash in the processed
// collection.
type TraitStore struct {
	client    *mongo.Client
	traits    *mongo.Collection
	processed *mongo.Collection
}

// NewTraitStore connects to MongoDB and prepares both collections
func NewTraitStore(ctx context.Context, uri, dbName, traitsColl, processedColl string) (*TraitStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &TraitStore{
		client:    client,
		traits:    db.Collection(traitsColl),
		processed: db.Collection(processedColl),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close disconnects the underlying client
func (s *TraitStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ensureIndexes creates the unique address and tx hash indexes
func (s *TraitStore) ensureIndexes(ctx context.Context) error {
	_, err := s.traits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "address", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create traits index: %w", err)
	}

	_, err = s.processed.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tx_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create processed index: %w", err)
	}
	return nil
}

// HasProcessed reports whether a tx hash was already scored
func (s *TraitStore) HasProcessed(ctx context.Context, txHash string) (bool, error) {
	err := s.processed.FindOne(ctx, bson.M{"tx_hash": txHash}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check processed tx: %w", err)
	}
	return true, nil
}

// MarkProcessed records a tx hash as seen. Duplicate-insert races with other
// monitor instances are ignored.
func (s *TraitStore) MarkProcessed(ctx context.Context, txHash string) error {
	_, err := s.processed.InsertOne(ctx, bson.M{
		"tx_hash": txHash,
		"ts":      time.Now().Unix(),
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to mark tx processed: %w", err)
	}
	return nil
}

// EnsureUser inserts the zero-valued trait document for an address
func (s *TraitStore) EnsureUser(ctx context.Context, address string) error {
	now := time.Now().Unix()
	_, err := s.traits.UpdateOne(ctx,
		bson.M{"address": address},
		bson.M{"$setOnInsert": bson.M{
			"address":            address,
			"score":              0,
			"amount":             0.0,
			"dex_volume":         0.0,
			"dex_swaps":          0,
			"stake_duration_sec": int64(0),
			"stake_active":       false,
			"stake_last_update":  int64(0),
			"total_sent_xian":    0.0,
			"updated_at":         now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user %s: %w", address, err)
	}
	return nil
}

// AddPoints increments an address's score and raw activity amount
func (s *TraitStore) AddPoints(ctx context.Context, address string, points int, amount float64) error {
	_, err := s.traits.UpdateOne(ctx,
		bson.M{"address": address},
		bson.M{
			"$inc": bson.M{"score": points, "amount": amount},
			"$set": bson.M{"updated_at": time.Now().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add points for %s: %w", address, err)
	}
	return nil
}

// IncTotalSent adds to the address's lifetime transfer volume
func (s *TraitStore) IncTotalSent(ctx context.Context, address string, amount float64) error {
	_, err := s.traits.UpdateOne(ctx,
		bson.M{"address": address},
		bson.M{
			"$inc": bson.M{"total_sent_xian": amount},
			"$set": bson.M{"updated_at": time.Now().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to track transfer for %s: %w", address, err)
	}
	return nil
}

// IncDexVolume adds one swap and its volume to the address's DEX counters
func (s *TraitStore) IncDexVolume(ctx context.Context, address string, volume float64) error {
	_, err := s.traits.UpdateOne(ctx,
		bson.M{"address": address},
		bson.M{
			"$inc": bson.M{"dex_volume": volume, "dex_swaps": 1},
			"$set": bson.M{"updated_at": time.Now().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to track swap for %s: %w", address, err)
	}
	return nil
}

// stakeState is the projection used by the staking transitions
type stakeState struct {
	StakeActive     bool  `bson:"stake_active"`
	StakeLastUpdate int64 `bson:"stake_last_update"`
}

// StakeStartOrRefresh marks staking active. If already active, the elapsed
// time since the last update is accrued first.
func (s *TraitStore) StakeStartOrRefresh(ctx context.Context, address string, now time.Time) error {
	nowSec := now.Unix()

	var state stakeState
	err := s.traits.FindOne(ctx, bson.M{"address": address},
		options.FindOne().SetProjection(bson.M{"stake_active": 1, "stake_last_update": 1}),
	).Decode(&state)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to read stake state for %s: %w", address, err)
	}

	if !state.StakeActive {
		_, err = s.traits.UpdateOne(ctx,
			bson.M{"address": address},
			bson.M{"$set": bson.M{
				"stake_active":      true,
				"stake_last_update": nowSec,
				"updated_at":        nowSec,
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to start stake for %s: %w", address, err)
		}
		return nil
	}

	elapsed := nowSec - state.StakeLastUpdate
	if state.StakeLastUpdate == 0 || elapsed < 0 {
		elapsed = 0
	}
	_, err = s.traits.UpdateOne(ctx,
		bson.M{"address": address},
		bson.M{
			"$inc": bson.M{"stake_duration_sec": elapsed},
			"$set": bson.M{"stake_last_update": nowSec, "updated_at": nowSec},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to refresh stake for %s: %w", address, err)
	}
	return nil
}

// StakeStop accrues the final staking interval and marks staking inactive
func (s *TraitStore) StakeStop(ctx context.Context, address string, now time.Time) error {
	nowSec := now.Unix()

	var state stakeState
	err := s.traits.FindOne(ctx, bson.M{"address": address},
		options.FindOne().SetProjection(bson.M{"stake_active": 1, "stake_last_update": 1}),
	).Decode(&state)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to read stake state for %s: %w", address, err)
	}

	var elapsed int64
	if state.StakeLastUpdate > 0 && nowSec > state.StakeLastUpdate {
		elapsed = nowSec - state.StakeLastUpdate
	}
	_, err = s.traits.UpdateOne(ctx,
		bson.M{"address": address},
		bson.M{
			"$inc": bson.M{"stake_duration_sec": elapsed},
			"$set": bson.M{
				"stake_active":      false,
				"stake_last_update": nowSec,
				"updated_at":        nowSec,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to stop stake for %s: %w", address, err)
	}
	return nil
}
