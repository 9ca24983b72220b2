package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/todosync/internal/model"
)

// mongoProfile は users コレクションのドキュメント。_id は認証基盤のユーザーID。
type mongoProfile struct {
	ID          string     `bson:"_id"`
	Email       string     `bson:"email,omitempty"`
	DisplayName string     `bson:"displayName,omitempty"`
	CreatedAt   *time.Time `bson:"createdAt,omitempty"`
}

// MongoProfileStore はMongoDBの users コレクションを使用したProfileStore。
type MongoProfileStore struct {
	c *mongo.Collection
}

// NewMongoProfileStore はMongoProfileStoreを生成する。
func NewMongoProfileStore(db *mongo.Database) *MongoProfileStore {
	return &MongoProfileStore{c: db.Collection("users")}
}

// Get は指定ユーザーのプロフィールを取得する。存在しない場合はnilを返す。
func (s *MongoProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var doc mongoProfile
	err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure(ctx, "profile.get", err)
	}

	p := &model.Profile{
		UserID:      doc.ID,
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
	}
	if doc.CreatedAt != nil {
		p.CreatedAt = doc.CreatedAt.UTC()
	}
	return p, nil
}

// Set はプロフィールを丸ごと書き込む。
func (s *MongoProfileStore) Set(ctx context.Context, profile *model.Profile) error {
	doc := mongoProfile{
		ID:          profile.UserID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
	}
	if !profile.CreatedAt.IsZero() {
		createdAt := profile.CreatedAt.UTC()
		doc.CreatedAt = &createdAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": profile.UserID}, doc, opts); err != nil {
		return storeFailure(ctx, "profile.set", err)
	}
	return nil
}

// UpdateDisplayName は既存プロフィールの表示名だけを更新する。
func (s *MongoProfileStore) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"displayName": displayName}},
	)
	if err != nil {
		return storeFailure(ctx, "profile.update", err)
	}
	if res.MatchedCount == 0 {
		return storeFailure(ctx, "profile.update", fmt.Errorf("profile not found: %s", userID))
	}
	return nil
}

// compile-time interface check
var _ ProfileStore = (*MongoProfileStore)(nil)
