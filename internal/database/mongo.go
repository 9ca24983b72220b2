package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo はMongoDBクライアントを生成する。
// mongo.Connectはバックグラウンドで接続するため、疎通確認にはPingMongoを使用すること。
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("todosync"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	return client, nil
}

// PingMongo はプライマリへの疎通を確認する。
func PingMongo(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	return nil
}
