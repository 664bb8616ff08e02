package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/moviweb/internal/model"
	"github.com/hitoshi/moviweb/internal/movie"
	"github.com/hitoshi/moviweb/internal/validation"
)

// MovieServiceInterface は映画ハンドラーが必要とするサービスインターフェース。
type MovieServiceInterface interface {
	ListUsersWithCounts(ctx context.Context) ([]model.UserWithCount, error)
	AddUser(ctx context.Context, name string) (int64, error)
	AddMovie(ctx context.Context, title string, userID int64) error
	UpdateMovie(ctx context.Context, movieID int64, newName *string, newYear *int, newRating *float64) error
	DeleteMovie(ctx context.Context, movieID int64) error
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	GetMovie(ctx context.Context, movieID int64) (*model.Movie, error)
	GetUserMovies(ctx context.Context, userID int64) ([]model.Movie, error)
	GetDashboard(ctx context.Context) (*movie.Dashboard, error)
}

// MovieHandler は映画・ユーザー管理のHTTPハンドラー。
type MovieHandler struct {
	service MovieServiceInterface
}

// NewMovieHandler はMovieHandlerを生成する。
func NewMovieHandler(service MovieServiceInterface) *MovieHandler {
	return &MovieHandler{
		service: service,
	}
}

// Home はダッシュボードを表示する。
// GET /
func (h *MovieHandler) Home(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context())
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}

	render(w, http.StatusOK, "index.html", dashboard)
}

// ListUsers はユーザー一覧を表示する。
// GET /users
func (h *MovieHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsersWithCounts(r.Context())
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}

	render(w, http.StatusOK, "users.html", struct {
		Users []model.UserWithCount
	}{Users: users})
}

// UserMovies は指定ユーザーの映画一覧を表示する。
// クエリパラメータmessage/statusはフラッシュメッセージとして表示される。
// GET /users/{userID}
func (h *MovieHandler) UserMovies(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(r, "userID")
	if !ok {
		renderNotFound(w)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	if user == nil {
		renderNotFound(w)
		return
	}

	movies, err := h.service.GetUserMovies(r.Context(), userID)
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}

	render(w, http.StatusOK, "user_movies.html", struct {
		User    *model.User
		Movies  []model.Movie
		Message string
		Status  string
	}{
		User:    user,
		Movies:  movies,
		Message: r.URL.Query().Get("message"),
		Status:  r.URL.Query().Get("status"),
	})
}

// AddUserForm はユーザー追加フォームを表示する。
// GET /users/add
func (h *MovieHandler) AddUserForm(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "add_user.html", struct {
		Name         string
		ErrorMessage string
	}{})
}

// AddUser はユーザー追加フォームの送信を処理する。
// 検証エラーはフォームを再描画してメッセージを表示する。
// POST /users/add
func (h *MovieHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("name")

	name, vErr := validation.ValidateAddUser(raw)
	if vErr != nil {
		slog.Warn("add user rejected",
			slog.String("reason", vErr.Message),
		)
		render(w, http.StatusOK, "add_user.html", struct {
			Name         string
			ErrorMessage string
		}{Name: raw, ErrorMessage: vErr.Message})
		return
	}

	if _, err := h.service.AddUser(r.Context(), name); err != nil {
		h.handlePageError(w, r, err)
		return
	}

	http.Redirect(w, r, "/users", http.StatusFound)
}

// AddMovieForm は映画追加フォームを表示する。
// GET /users/{userID}/add_movie
func (h *MovieHandler) AddMovieForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(r, "userID")
	if !ok {
		renderNotFound(w)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	if user == nil {
		renderNotFound(w)
		return
	}

	render(w, http.StatusOK, "add_movie.html", struct {
		UserID int64
	}{UserID: userID})
}

// AddMovie は映画追加フォームの送信を処理する。
// 成否にかかわらずユーザーページへリダイレクトし、結果を
// message/statusフラグで伝える。
// POST /users/{userID}/add_movie
func (h *MovieHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(r, "userID")
	if !ok {
		renderNotFound(w)
		return
	}

	name, vErr := validation.ValidateAddMovie(r.FormValue("name"))
	if vErr != nil {
		flashRedirect(w, r, userID, vErr.Message, "error")
		return
	}

	if err := h.service.AddMovie(r.Context(), name, userID); err != nil {
		flashRedirect(w, r, userID, flashMessage(err, fmt.Sprintf("Error adding movie '%s'.", name)), "error")
		return
	}

	flashRedirect(w, r, userID, fmt.Sprintf("Movie %q added successfully!", name), "success")
}

// UpdateMovieForm は映画更新フォームを表示する。
// GET /users/{userID}/update/{movieID}
func (h *MovieHandler) UpdateMovieForm(w http.ResponseWriter, r *http.Request) {
	userID, movieRecord, ok := h.resolveUserMovie(w, r)
	if !ok {
		return
	}

	render(w, http.StatusOK, "update_movie.html", struct {
		UserID int64
		Movie  *model.Movie
	}{UserID: userID, Movie: movieRecord})
}

// UpdateMovie は映画更新フォームの送信を処理する。
// 名前は必須のため常にOMDbで再解決され、年・評価は明示値が優先される。
// POST /users/{userID}/update/{movieID}
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	userID, movieRecord, ok := h.resolveUserMovie(w, r)
	if !ok {
		return
	}

	input, vErr := validation.ValidateUpdateMovie(
		r.FormValue("name"),
		r.FormValue("year"),
		r.FormValue("rating"),
	)
	if vErr != nil {
		flashRedirect(w, r, userID, vErr.Message, "error")
		return
	}

	err := h.service.UpdateMovie(r.Context(), movieRecord.ID, &input.Name, &input.Year, input.Rating)
	if err != nil {
		flashRedirect(w, r, userID, flashMessage(err, fmt.Sprintf("Error updating movie with ID %d.", movieRecord.ID)), "error")
		return
	}

	flashRedirect(w, r, userID, fmt.Sprintf("Movie '%s' updated successfully!", input.Name), "success")
}

// DeleteMovie は映画を削除する。
// POST /users/{userID}/delete/{movieID}
func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	userID, movieRecord, ok := h.resolveUserMovie(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMovie(r.Context(), movieRecord.ID); err != nil {
		flashRedirect(w, r, userID, flashMessage(err, fmt.Sprintf("Error deleting movie with ID %d.", movieRecord.ID)), "error")
		return
	}

	flashRedirect(w, r, userID, fmt.Sprintf("Movie with ID %d deleted successfully!", movieRecord.ID), "success")
}

// NotFound は未定義ルートへのアクセスに専用404ページを返す。
func (h *MovieHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	slog.Warn("page not found",
		slog.String("path", r.URL.Path),
	)
	renderNotFound(w)
}

// resolveUserMovie はURLのuserID/movieIDを解決し、両者が存在して
// 所有関係が正しいことを確認する。満たさない場合は404を描画してfalseを返す。
func (h *MovieHandler) resolveUserMovie(w http.ResponseWriter, r *http.Request) (int64, *model.Movie, bool) {
	userID, ok := parseID(r, "userID")
	if !ok {
		renderNotFound(w)
		return 0, nil, false
	}
	movieID, ok := parseID(r, "movieID")
	if !ok {
		renderNotFound(w)
		return 0, nil, false
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.handlePageError(w, r, err)
		return 0, nil, false
	}
	if user == nil {
		renderNotFound(w)
		return 0, nil, false
	}

	movieRecord, err := h.service.GetMovie(r.Context(), movieID)
	if err != nil {
		h.handlePageError(w, r, err)
		return 0, nil, false
	}
	if movieRecord == nil || movieRecord.UserID != userID {
		renderNotFound(w)
		return 0, nil, false
	}

	return userID, movieRecord, true
}

// handlePageError はページ表示系のエラーをHTTPレスポンスへ変換する。
// ユーザー・映画の未検出は404ページ、それ以外はログに記録のうえ
// 汎用エラーページ（500）を返す。プロセスは継続する。
func (h *MovieHandler) handlePageError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeUserNotFound, model.ErrCodeMovieNotFound:
			renderNotFound(w)
			return
		}
	}

	slog.Error("unhandled error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	renderErrorPage(w)
}

// flashMessage はエラーからフラッシュ表示用のメッセージを取り出す。
// 分類済みエラーはそのメッセージを、未分類エラーはfallbackを返す。
func flashMessage(err error, fallback string) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	slog.Error("unclassified error surfaced as flash",
		slog.String("error", err.Error()),
	)
	return fallback
}

// flashRedirect はユーザーページへmessage/statusフラグ付きで302リダイレクトする。
func flashRedirect(w http.ResponseWriter, r *http.Request, userID int64, message, status string) {
	target := fmt.Sprintf("/users/%d?message=%s&status=%s",
		userID, url.QueryEscape(message), url.QueryEscape(status))
	http.Redirect(w, r, target, http.StatusFound)
}

// parseID はURLパラメータを正のint64として解釈する。
func parseID(r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
