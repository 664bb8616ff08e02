// Package validation はフォーム入力の検証を提供する。
// すべての検証関数は状態を持たない純粋関数で、オーケストレーション層に
// 渡る前の境界で呼び出される。違反はVALIDATION_FAILEDエラーとして返し、
// メッセージはそのまま利用者に表示される。
package validation

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/hitoshi/moviweb/internal/model"
)

// UpdateMovieInput は検証済みの映画更新入力を表す。
// Ratingは省略可能なフィールドのため、未指定はnilで表現する。
type UpdateMovieInput struct {
	Name   string
	Year   int
	Rating *float64
}

// ValidateAddUser はユーザー追加入力を検証する。
// 名前は必須で、トリム後に空でなく、英字のみで構成されること。
// 空白・数字・記号を含む名前は拒否される（実名対応は既知の制限）。
func ValidateAddUser(name string) (string, *model.APIError) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", model.NewValidationError("Name is required and cannot be empty.")
	}

	for _, r := range trimmed {
		if !unicode.IsLetter(r) {
			return "", model.NewValidationError("Name must be a string containing only alphabetic characters.")
		}
	}

	return trimmed, nil
}

// ValidateAddMovie は映画追加入力を検証する。
// タイトルは必須で、トリム後に空でないこと。
func ValidateAddMovie(name string) (string, *model.APIError) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", model.NewValidationError("Movie name is required and cannot be empty.")
	}

	return trimmed, nil
}

// ValidateUpdateMovie は映画更新入力を検証する。
// 名前は必須で空でないこと。年は必須で数字ちょうど4桁であること。
// 評価は省略可能で、指定された場合は小数点のカンマ表記をピリオドに
// 正規化したうえで[0,10]の数値として解釈できること。
func ValidateUpdateMovie(name, year, rating string) (UpdateMovieInput, *model.APIError) {
	input := UpdateMovieInput{}

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return input, model.NewValidationError("Movie name is required and cannot be empty.")
	}
	input.Name = trimmedName

	trimmedYear := strings.TrimSpace(year)
	if !isFourDigits(trimmedYear) {
		return input, model.NewValidationError("Year must be a valid 4-digit number.")
	}
	y, err := strconv.Atoi(trimmedYear)
	if err != nil {
		return input, model.NewValidationError("Year must be a valid 4-digit number.")
	}
	input.Year = y

	trimmedRating := strings.TrimSpace(rating)
	if trimmedRating != "" {
		normalized := strings.ReplaceAll(trimmedRating, ",", ".")
		r, err := strconv.ParseFloat(normalized, 64)
		if err != nil || r < 0 || r > 10 {
			return input, model.NewValidationError("Rating must be a number between 0 and 10.")
		}
		input.Rating = &r
	}

	return input, nil
}

// isFourDigits は文字列が数字ちょうど4桁かを判定する。
func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
