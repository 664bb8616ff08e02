// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/moviweb/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create は新規ユーザーを作成し、採番されたIDを返す。
	Create(ctx context.Context, name string) (int64, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// List は全ユーザーを登録順（ID昇順）で返す。
	List(ctx context.Context) ([]model.User, error)

	// ListWithCounts は全ユーザーを映画数付きで返す。
	// 映画が1本もないユーザーはMovieCount=0で含まれる。
	ListWithCounts(ctx context.Context) ([]model.UserWithCount, error)
}

// MovieRepository は映画データの永続化インターフェース。
// 各書き込み操作は独立したトランザクションスコープで実行され、
// 失敗時はロールバック済みの状態でエラーを返す。
type MovieRepository interface {
	// Create は新規映画を作成する。
	// 名前が空、またはratingが[0,10]の範囲外の場合はDBに触れずに拒否する。
	Create(ctx context.Context, name string, year int, rating float64, userID int64) error

	// Update は指定IDの映画を部分更新する。
	// patchのnilフィールドは既存値を維持する。対象が存在しない場合は
	// 書き込みを行わずにMOVIE_NOT_FOUNDエラーを返す。
	Update(ctx context.Context, movieID int64, patch model.MoviePatch) error

	// Delete は指定IDの映画を削除する。
	// 対象が存在しない場合はMOVIE_NOT_FOUNDエラーを返す。
	Delete(ctx context.Context, movieID int64) error

	// FindByID は指定IDの映画を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Movie, error)

	// ListByUserID は指定ユーザーの映画一覧をID降順（新しい順）で返す。
	ListByUserID(ctx context.Context, userID int64) ([]model.Movie, error)

	// ListFavorites はユーザーごとに最高評価の映画を1本ずつ返す。
	// 同率の場合は映画IDが最小のものを決定的に選ぶ。
	ListFavorites(ctx context.Context) ([]model.Favorite, error)
}
