package repository

import (
	"time"

	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/model"
)

// MergeUser は認証基盤とプロフィールストアの値を1つのUserにまとめる。
//
//	id, email        : 認証基盤
//	displayName      : プロフィール → 認証基盤 → "Usuario"
//	createdAt        : プロフィール → 認証基盤 → now
//
// profileはnilでもよい。
func MergeUser(authority *identity.AuthorityUser, profile *model.Profile, now time.Time) model.User {
	user := model.User{
		ID:    authority.UID,
		Email: authority.Email,
	}

	switch {
	case profile != nil && profile.DisplayName != "":
		user.DisplayName = profile.DisplayName
	case authority.DisplayName != "":
		user.DisplayName = authority.DisplayName
	default:
		user.DisplayName = model.DefaultDisplayName
	}

	switch {
	case profile != nil && !profile.CreatedAt.IsZero():
		user.CreatedAt = profile.CreatedAt
	case !authority.CreatedAt.IsZero():
		user.CreatedAt = authority.CreatedAt
	default:
		user.CreatedAt = now
	}

	return user
}
