package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はタスクタイトルや表示名からマークアップを除去する。
// 結果はプレーンテキストとして画面に表示される前提である。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はタグを一切許可しないポリシーでTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去したプレーンテキストを返す。
// bluemondayがエスケープした文字実体はアンエスケープして戻す。
// 前後の空白の扱いは呼び出し側の検証に任せるため、ここでは除去しない。
func (s *TextSanitizer) Sanitize(raw string) string {
	if raw == "" || !strings.ContainsAny(raw, "<>&") {
		return raw
	}
	return html.UnescapeString(s.policy.Sanitize(raw))
}
