package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open はSQLiteデータベース接続を開く。
// dbPathはデータベースファイルのパスを指定する（例: "data/moviweb.db"）。
// 外部キー制約を有効化し、ロック競合に備えてbusy_timeoutを設定する。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLiteは単一ライターのため、プールを1接続に制限して
	// SQLITE_BUSYの発生を抑える。
	db.SetMaxOpenConns(1)

	return db, nil
}
