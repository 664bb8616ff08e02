package model

// Movie はユーザーが登録した映画を表す。
// NameはOMDbでの解決に成功した場合、プロバイダの正規タイトルを反映する。
type Movie struct {
	ID     int64
	Name   string
	Year   int
	Rating float64
	UserID int64
}

// MoviePatch は映画の部分更新を表す。
// nilのフィールドは既存値を維持する。ゼロ値（year=0など）を明示的に
// 指定した場合は上書き対象として扱われ、未指定とは区別される。
type MoviePatch struct {
	Name   *string
	Year   *int
	Rating *float64
}

// MovieMetadata は外部プロバイダから取得した正規化済みの映画情報を表す。
type MovieMetadata struct {
	Title  string
	Year   int
	Rating float64
	Poster string // ポスター画像URL。提供がない場合は空文字列。
}

// Favorite はユーザーごとのお気に入り映画（最高評価の1本）を表す。
// 同率の場合は映画IDが最小のものが選ばれる。
type Favorite struct {
	UserID    int64
	MovieName string
	Rating    float64
}
