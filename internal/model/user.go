// Package model はドメインモデルを定義する。
package model

import "time"

// DefaultDisplayName は認証基盤にもプロフィールにも表示名がない場合の既定値。
const DefaultDisplayName = "Usuario"

// User はアプリケーション利用ユーザーを表す。
// 呼び出し側に返すUserは、認証基盤とプロフィールストアをマージした値である。
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Profile はドキュメントストアの users コレクションに保存される拡張プロフィール。
// 項目が未設定の場合はゼロ値のまま返り、マージ時にフォールバックされる。
type Profile struct {
	UserID      string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}
