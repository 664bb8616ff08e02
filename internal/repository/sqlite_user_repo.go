package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/moviweb/internal/model"
)

// SQLiteUserRepo はSQLiteを使用したユーザーリポジトリ。
type SQLiteUserRepo struct {
	db *sql.DB
}

// NewSQLiteUserRepo はSQLiteUserRepoを生成する。
func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

// Create は新規ユーザーを作成し、採番されたIDを返す。
func (r *SQLiteUserRepo) Create(ctx context.Context, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name) VALUES (?)`,
		name,
	)
	if err != nil {
		return 0, model.NewStorageError("create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, model.NewStorageError("create user", err)
	}

	return id, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLiteUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM users WHERE id = ?`,
		id,
	).Scan(&user.ID, &user.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStorageError("find user", err)
	}

	return user, nil
}

// List は全ユーザーを登録順（ID昇順）で返す。
func (r *SQLiteUserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, model.NewStorageError("list users", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, model.NewStorageError("list users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list users", err)
	}

	return users, nil
}

// ListWithCounts は全ユーザーを映画数付きで返す。
// LEFT JOINにより映画が1本もないユーザーもMovieCount=0で含まれる。
func (r *SQLiteUserRepo) ListWithCounts(ctx context.Context) ([]model.UserWithCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, COUNT(m.id)
		 FROM users u
		 LEFT JOIN movies m ON m.user_id = u.id
		 GROUP BY u.id, u.name
		 ORDER BY u.id`,
	)
	if err != nil {
		return nil, model.NewStorageError("list users with counts", err)
	}
	defer rows.Close()

	var users []model.UserWithCount
	for rows.Next() {
		var u model.UserWithCount
		if err := rows.Scan(&u.ID, &u.Name, &u.MovieCount); err != nil {
			return nil, model.NewStorageError("list users with counts", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list users with counts", err)
	}

	return users, nil
}

// compile-time interface check
var _ UserRepository = (*SQLiteUserRepo)(nil)
