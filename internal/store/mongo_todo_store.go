package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/todosync/internal/model"
)

// mongoTodo は todos コレクションのドキュメント。_id はObjectIDで採番する。
type mongoTodo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	UserID    string             `bson:"userId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *mongoTodo) toModel() *model.Todo {
	return &model.Todo{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Completed: d.Completed,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// MongoTodoStore はMongoDBの todos コレクションを使用したTodoStore。
type MongoTodoStore struct {
	c   *mongo.Collection
	now func() time.Time
}

// NewMongoTodoStore はMongoTodoStoreを生成する。
func NewMongoTodoStore(db *mongo.Database) *MongoTodoStore {
	return &MongoTodoStore{c: db.Collection("todos"), now: time.Now}
}

// Create はタスクを作成する。
func (s *MongoTodoStore) Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
	// BSONの日時はミリ秒精度のため、返却値と保存値を揃える
	now := s.now().UTC().Truncate(time.Millisecond)
	doc := mongoTodo{
		ID:        primitive.NewObjectID(),
		Title:     input.Title,
		Completed: false,
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return nil, storeFailure(ctx, "todo.create", err)
	}
	return doc.toModel(), nil
}

// GetByID は指定IDのタスクを取得する。ObjectIDとして不正なIDは存在しないものとして扱う。
func (s *MongoTodoStore) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc mongoTodo
	err = s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure(ctx, "todo.get", err)
	}
	return doc.toModel(), nil
}

// GetAll はタスクを作成日時の新しい順に返す。
func (s *MongoTodoStore) GetAll(ctx context.Context, userID string) ([]*model.Todo, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeFailure(ctx, "todo.list", err)
	}
	defer cur.Close(ctx)

	todos := []*model.Todo{}
	for cur.Next(ctx) {
		var doc mongoTodo
		if err := cur.Decode(&doc); err != nil {
			return nil, storeFailure(ctx, "todo.list", err)
		}
		todos = append(todos, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, storeFailure(ctx, "todo.list", err)
	}
	return todos, nil
}

// Update はパッチを適用して更新後のタスクを返す。
func (s *MongoTodoStore) Update(ctx context.Context, patch model.TodoPatch) (*model.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(patch.ID)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updatedAt": s.now().UTC()}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoTodo
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure(ctx, "todo.update", err)
	}
	return doc.toModel(), nil
}

// Delete は指定IDのタスクを削除する。
func (s *MongoTodoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return storeFailure(ctx, "todo.delete", err)
	}
	return nil
}

// compile-time interface check
var _ TodoStore = (*MongoTodoStore)(nil)

// EnsureMongoIndexes は todos コレクションの一覧取得用インデックスを作成する。
// 既に同じ定義のインデックスがある場合は何もしない。
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("todos").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("todos_user_created"),
	})
	if err != nil {
		return storeFailure(ctx, "todo.ensure_indexes", err)
	}
	return nil
}
