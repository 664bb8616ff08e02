// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 境界層がHTTPステータスと表示先を決めるための原因カテゴリを含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（そのまま利用者に表示される）
	Category string // カテゴリ: validation, user, movie, provider, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeMovieNotFound      = "MOVIE_NOT_FOUND"
	ErrCodeMovieNotRecognized = "MOVIE_NOT_RECOGNIZED"
	ErrCodeOMDbUnavailable    = "OMDB_UNAVAILABLE"
	ErrCodeOMDbMalformed      = "OMDB_MALFORMED"
	ErrCodeStorageFailed      = "STORAGE_FAILED"
)

// カテゴリ定数
const (
	CategoryValidation = "validation"
	CategoryUser       = "user"
	CategoryMovie      = "movie"
	CategoryProvider   = "provider"
	CategorySystem     = "system"
)

// NewValidationError は入力検証エラーを生成する。
// メッセージは境界層でそのまま利用者に表示される。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: CategoryValidation,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("User not found with ID: %d.", userID),
		Category: CategoryUser,
	}
}

// NewMovieNotFoundError は映画が見つからない場合のエラーを生成する。
func NewMovieNotFoundError(movieID int64) *APIError {
	return &APIError{
		Code:     ErrCodeMovieNotFound,
		Message:  fmt.Sprintf("Movie not found with ID: %d.", movieID),
		Category: CategoryMovie,
	}
}

// NewMovieNotRecognizedError はプロバイダがタイトルを解決できなかった場合の
// エラーを生成する。部分レコードは一切永続化されない。
func NewMovieNotRecognizedError(title string) *APIError {
	return &APIError{
		Code:     ErrCodeMovieNotRecognized,
		Message:  fmt.Sprintf("Movie '%s' not found in OMDb database.", title),
		Category: CategoryProvider,
	}
}

// NewOMDbUnavailableError はプロバイダへの接続失敗・非成功ステータスの
// エラーを生成する。
func NewOMDbUnavailableError(statusCode int) *APIError {
	return &APIError{
		Code:     ErrCodeOMDbUnavailable,
		Message:  fmt.Sprintf("Failed to connect to OMDb API (status %d).", statusCode),
		Category: CategoryProvider,
	}
}

// NewOMDbMalformedError はプロバイダ応答の正規化失敗エラーを生成する。
func NewOMDbMalformedError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeOMDbMalformed,
		Message:  fmt.Sprintf("OMDb API returned a malformed %s field.", field),
		Category: CategoryProvider,
	}
}

// NewStorageError はトランザクション内のデータベース操作失敗を表す
// エラーを生成する。ロールバック完了後にのみ生成されること。
func NewStorageError(op string, err error) *APIError {
	return &APIError{
		Code:     ErrCodeStorageFailed,
		Message:  fmt.Sprintf("Storage operation '%s' failed: %v.", op, err),
		Category: CategorySystem,
	}
}
