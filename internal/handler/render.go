// Package handler はHTTP境界層を提供する。
// ルーティング、フォーム解析、HTMLテンプレート描画、および
// オーケストレーション層のエラーからHTTPステータスへの変換を担う。
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

// templates は埋め込みテンプレートを起動時に1回パースした結果。
var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// render は指定テンプレートを描画する。
// 描画自体が失敗した場合は最終手段としてプレーンな500を返す。
func render(w http.ResponseWriter, statusCode int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

// renderNotFound は専用の404ページを描画する。
func renderNotFound(w http.ResponseWriter) {
	render(w, http.StatusNotFound, "404.html", nil)
}

// renderErrorPage は未処理エラー向けの汎用エラーページを描画する。
// 詳細はログのみに記録し、利用者には一般的なメッセージを返す。
func renderErrorPage(w http.ResponseWriter) {
	render(w, http.StatusInternalServerError, "error.html", nil)
}
