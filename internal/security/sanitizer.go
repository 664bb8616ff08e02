// Package security はアプリケーションのセキュリティ機能を提供する。
//
// MetadataSanitizerService は外部プロバイダから取得した映画メタデータを
// 保存前にサニタイズし、応答に紛れ込んだマークアップの混入を防ぐ。
// bluemondayのStrictPolicyを使用してタグを一切通過させない。
package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MetadataSanitizerService は映画メタデータのサニタイズ機能のインターフェースを定義する。
// プロバイダ応答の保存前に使用される。
type MetadataSanitizerService interface {
	// SanitizeText はプロバイダ由来の文字列からHTMLタグを全て除去して返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string

	// SanitizePosterURL はポスターURLを検証して返す。
	// http/https以外のスキームや不正なURLの場合は空文字列を返す。
	SanitizePosterURL(raw string) string
}

// metadataSanitizer はMetadataSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type metadataSanitizer struct {
	policy *bluemonday.Policy
}

// NewMetadataSanitizer はMetadataSanitizerServiceの新しいインスタンスを生成する。
// タグを一切許可しないStrictPolicyを構築する。
func NewMetadataSanitizer() *metadataSanitizer {
	return &metadataSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はプロバイダ由来の文字列からHTMLタグを全て除去して返す。
func (s *metadataSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// SanitizePosterURL はポスターURLを検証して返す。
// スキームがhttp/https以外、またはパース不能な場合は空文字列を返す。
func (s *metadataSanitizer) SanitizePosterURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	return raw
}
