package model

// User はサービス利用ユーザーを表す。
// IDはストアが採番し、以後変更されない。
type User struct {
	ID   int64
	Name string
}

// UserWithCount はユーザーと登録済み映画数を結合した読み取り用モデル。
// 映画が1本もないユーザーはMovieCount=0で返る。
type UserWithCount struct {
	ID         int64
	Name       string
	MovieCount int
}
