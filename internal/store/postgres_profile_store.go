package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/todosync/internal/model"
)

// PostgresProfileStore はPostgreSQLの users テーブルを使用したProfileStore。
type PostgresProfileStore struct {
	db *sql.DB
}

// NewPostgresProfileStore はPostgresProfileStoreを生成する。
func NewPostgresProfileStore(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

// Get は指定ユーザーのプロフィールを取得する。存在しない場合はnilを返す。
func (s *PostgresProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		p           = &model.Profile{}
		displayName sql.NullString
		createdAt   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&p.UserID, &p.Email, &displayName, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure(ctx, "profile.get", err)
	}

	p.DisplayName = displayName.String
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	return p, nil
}

// Set はプロフィールを丸ごと書き込む。
func (s *PostgresProfileStore) Set(ctx context.Context, profile *model.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET email = EXCLUDED.email,
		     display_name = EXCLUDED.display_name,
		     created_at = EXCLUDED.created_at`,
		profile.UserID, profile.Email, nullString(profile.DisplayName), nullTime(profile),
	)
	if err != nil {
		return storeFailure(ctx, "profile.set", err)
	}
	return nil
}

// UpdateDisplayName は既存プロフィールの表示名だけを更新する。
func (s *PostgresProfileStore) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET display_name = $2 WHERE id = $1`,
		userID, displayName,
	)
	if err != nil {
		return storeFailure(ctx, "profile.update", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeFailure(ctx, "profile.update", err)
	}
	if rowsAffected == 0 {
		return storeFailure(ctx, "profile.update", fmt.Errorf("profile not found: %s", userID))
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(p *model.Profile) sql.NullTime {
	return sql.NullTime{Time: p.CreatedAt, Valid: !p.CreatedAt.IsZero()}
}

// compile-time interface check
var _ ProfileStore = (*PostgresProfileStore)(nil)
