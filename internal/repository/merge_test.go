package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/model"
)

func TestMergeUser_DisplayNamePrecedence(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		authority string
		profile   *model.Profile
		want      string
	}{
		{"プロフィール優先", "A", &model.Profile{DisplayName: "B"}, "B"},
		{"プロフィールに表示名なし", "A", &model.Profile{}, "A"},
		{"プロフィールなし", "A", nil, "A"},
		{"どちらもなし", "", &model.Profile{}, "Usuario"},
		{"どちらもなし（プロフィールなし）", "", nil, "Usuario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			au := &identity.AuthorityUser{UID: "uid-1", Email: "a@x.com", DisplayName: tt.authority}

			got := MergeUser(au, tt.profile, now)

			if got.DisplayName != tt.want {
				t.Errorf("DisplayName = %q, want %q", got.DisplayName, tt.want)
			}
		})
	}
}

func TestMergeUser_CreatedAtPrecedence(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	authorityTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	profileTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		authority time.Time
		profile   *model.Profile
		want      time.Time
	}{
		{"プロフィール優先", authorityTime, &model.Profile{CreatedAt: profileTime}, profileTime},
		{"プロフィールに作成日時なし", authorityTime, &model.Profile{}, authorityTime},
		{"どちらもなし", time.Time{}, nil, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			au := &identity.AuthorityUser{UID: "uid-1", CreatedAt: tt.authority}

			got := MergeUser(au, tt.profile, now)

			if !got.CreatedAt.Equal(tt.want) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, tt.want)
			}
		})
	}
}

// id と email は常に認証基盤の値を使う
func TestMergeUser_IdentityFieldsFromAuthority(t *testing.T) {
	au := &identity.AuthorityUser{UID: "uid-1", Email: "a@x.com"}
	profile := &model.Profile{UserID: "other", Email: "stale@x.com", DisplayName: "B"}

	got := MergeUser(au, profile, time.Now())

	if got.ID != "uid-1" || got.Email != "a@x.com" {
		t.Errorf("user = %+v, want id/email from authority", got)
	}
}
