package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/moviweb/internal/model"
)

// SQLiteMovieRepo はSQLiteを使用した映画リポジトリ。
type SQLiteMovieRepo struct {
	db *sql.DB
}

// NewSQLiteMovieRepo はSQLiteMovieRepoを生成する。
func NewSQLiteMovieRepo(db *sql.DB) *SQLiteMovieRepo {
	return &SQLiteMovieRepo{db: db}
}

// Create は新規映画を作成する。
// 名前が空、またはratingが[0,10]の範囲外の場合はDBに触れずに拒否する。
// 範囲外の値はクランプせず、そのまま拒否する。
func (r *SQLiteMovieRepo) Create(ctx context.Context, name string, year int, rating float64, userID int64) error {
	if name == "" {
		return model.NewValidationError("Movie name is required and cannot be empty.")
	}
	if rating < 0 || rating > 10 {
		return model.NewValidationError("Rating must be between 0 and 10.")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (name, year, rating, user_id) VALUES (?, ?, ?, ?)`,
		name, year, rating, userID,
	)
	if err != nil {
		return model.NewStorageError("create movie", err)
	}

	return nil
}

// Update は指定IDの映画を部分更新する。
// 取得と上書きを同一トランザクションで行い、nilフィールドは既存値を維持する。
// 対象が存在しない場合は書き込みを行わずにMOVIE_NOT_FOUNDエラーを返す。
func (r *SQLiteMovieRepo) Update(ctx context.Context, movieID int64, patch model.MoviePatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStorageError("update movie", err)
	}
	defer tx.Rollback()

	movie := model.Movie{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, year, rating, user_id FROM movies WHERE id = ?`,
		movieID,
	).Scan(&movie.ID, &movie.Name, &movie.Year, &movie.Rating, &movie.UserID)

	if err == sql.ErrNoRows {
		return model.NewMovieNotFoundError(movieID)
	}
	if err != nil {
		return model.NewStorageError("update movie", err)
	}

	if patch.Name != nil {
		movie.Name = *patch.Name
	}
	if patch.Year != nil {
		movie.Year = *patch.Year
	}
	if patch.Rating != nil {
		movie.Rating = *patch.Rating
	}

	if movie.Name == "" {
		return model.NewValidationError("Movie name is required and cannot be empty.")
	}
	if movie.Rating < 0 || movie.Rating > 10 {
		return model.NewValidationError("Rating must be between 0 and 10.")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE movies SET name = ?, year = ?, rating = ? WHERE id = ?`,
		movie.Name, movie.Year, movie.Rating, movie.ID,
	)
	if err != nil {
		return model.NewStorageError("update movie", err)
	}

	if err := tx.Commit(); err != nil {
		return model.NewStorageError("update movie", err)
	}

	return nil
}

// Delete は指定IDの映画を削除する。
// 対象が存在しない場合はMOVIE_NOT_FOUNDエラーを返す（2回目の削除も安全）。
func (r *SQLiteMovieRepo) Delete(ctx context.Context, movieID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM movies WHERE id = ?`,
		movieID,
	)
	if err != nil {
		return model.NewStorageError("delete movie", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.NewStorageError("delete movie", err)
	}
	if rowsAffected == 0 {
		return model.NewMovieNotFoundError(movieID)
	}

	return nil
}

// FindByID は指定IDの映画を取得する。見つからない場合はnilを返す。
func (r *SQLiteMovieRepo) FindByID(ctx context.Context, id int64) (*model.Movie, error) {
	movie := &model.Movie{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, year, rating, user_id FROM movies WHERE id = ?`,
		id,
	).Scan(&movie.ID, &movie.Name, &movie.Year, &movie.Rating, &movie.UserID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStorageError("find movie", err)
	}

	return movie, nil
}

// ListByUserID は指定ユーザーの映画一覧をID降順（新しい順）で返す。
func (r *SQLiteMovieRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, year, rating, user_id FROM movies
		 WHERE user_id = ?
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, model.NewStorageError("list movies", err)
	}
	defer rows.Close()

	var movies []model.Movie
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Name, &m.Year, &m.Rating, &m.UserID); err != nil {
			return nil, model.NewStorageError("list movies", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list movies", err)
	}

	return movies, nil
}

// ListFavorites はユーザーごとに最高評価の映画を1本ずつ返す。
// 同率の場合は映画IDが最小のものを選ぶため、結果は決定的になる。
func (r *SQLiteMovieRepo) ListFavorites(ctx context.Context) ([]model.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.user_id, m.name, m.rating
		 FROM movies m
		 WHERE m.id = (
		     SELECT m2.id FROM movies m2
		     WHERE m2.user_id = m.user_id
		     ORDER BY m2.rating DESC, m2.id ASC
		     LIMIT 1
		 )
		 ORDER BY m.user_id`,
	)
	if err != nil {
		return nil, model.NewStorageError("list favorites", err)
	}
	defer rows.Close()

	var favorites []model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.UserID, &f.MovieName, &f.Rating); err != nil {
			return nil, model.NewStorageError("list favorites", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list favorites", err)
	}

	return favorites, nil
}

// compile-time interface check
var _ MovieRepository = (*SQLiteMovieRepo)(nil)
