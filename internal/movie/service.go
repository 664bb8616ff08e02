// Package movie は映画・ユーザー管理のドメインロジックを提供する。
// ストアと外部メタデータプロバイダの調停はすべてこの層で行う。
package movie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/moviweb/internal/metrics"
	"github.com/hitoshi/moviweb/internal/model"
	"github.com/hitoshi/moviweb/internal/repository"
)

// MetadataProvider は外部メタデータ取得のインターフェース。
// omdb.Clientを抽象化してテスタビリティを向上させる。
type MetadataProvider interface {
	FetchMovieData(ctx context.Context, title string) (*model.MovieMetadata, error)
}

// Dashboard はホーム画面向けの集計結果を表す。
type Dashboard struct {
	TotalUsers  int
	TotalMovies int
	Favorites   []model.Favorite
	RecentUsers []model.UserWithCount
}

// recentUserCount はダッシュボードに表示する直近ユーザー数。
const recentUserCount = 5

// Service は映画・ユーザー管理のサービス層。
// ユーザー入力とプロバイダデータの統合、永続化の判断、集計を担う。
type Service struct {
	userRepo  repository.UserRepository
	movieRepo repository.MovieRepository
	provider  MetadataProvider
	metrics   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（収集なしで動作する）。
func NewService(
	userRepo repository.UserRepository,
	movieRepo repository.MovieRepository,
	provider MetadataProvider,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		userRepo:  userRepo,
		movieRepo: movieRepo,
		provider:  provider,
		metrics:   collector,
	}
}

// ListUsersWithCounts は全ユーザーを映画数付きで返す。
// 映画のないユーザーはMovieCount=0で含まれる。
func (s *Service) ListUsersWithCounts(ctx context.Context) ([]model.UserWithCount, error) {
	users, err := s.userRepo.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// AddUser は新規ユーザーを作成し、採番されたIDを返す。
func (s *Service) AddUser(ctx context.Context, name string) (int64, error) {
	id, err := s.userRepo.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user created",
		slog.Int64("user_id", id),
		slog.String("name", name),
	)

	return id, nil
}

// AddMovie は指定ユーザーに映画を追加する。
// プロバイダ解決に成功した場合のみ、正規タイトル・年・評価で永続化する。
// プロバイダがタイトルを解決できない場合は何も永続化せずエラーを返す。
// メタデータ取得はDBトランザクションの外で行われる。
func (s *Service) AddMovie(ctx context.Context, title string, userID int64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(userID)
	}

	meta, err := s.fetchMetadata(ctx, title)
	if err != nil {
		return err
	}

	if err := s.movieRepo.Create(ctx, meta.Title, meta.Year, meta.Rating, userID); err != nil {
		return fmt.Errorf("映画の作成に失敗しました: %w", err)
	}

	slog.Info("movie added",
		slog.Int64("user_id", userID),
		slog.String("title", meta.Title),
		slog.Int("year", meta.Year),
	)

	return nil
}

// UpdateMovie は指定IDの映画を更新する。
// newNameが指定された場合はプロバイダで再解決し、正規タイトルで上書きする。
// その際、呼び出し元が明示しなかった年・評価はプロバイダの値で補完する。
// newNameが未指定の場合はプロバイダを呼ばず、指定フィールドのみ更新する。
func (s *Service) UpdateMovie(ctx context.Context, movieID int64, newName *string, newYear *int, newRating *float64) error {
	existing, err := s.movieRepo.FindByID(ctx, movieID)
	if err != nil {
		return fmt.Errorf("映画の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return model.NewMovieNotFoundError(movieID)
	}

	patch := model.MoviePatch{
		Name:   newName,
		Year:   newYear,
		Rating: newRating,
	}

	if newName != nil {
		meta, err := s.fetchMetadata(ctx, *newName)
		if err != nil {
			return err
		}

		patch.Name = &meta.Title
		if patch.Year == nil {
			patch.Year = &meta.Year
		}
		if patch.Rating == nil {
			patch.Rating = &meta.Rating
		}
	}

	if err := s.movieRepo.Update(ctx, movieID, patch); err != nil {
		return fmt.Errorf("映画の更新に失敗しました: %w", err)
	}

	slog.Info("movie updated",
		slog.Int64("movie_id", movieID),
	)

	return nil
}

// DeleteMovie は指定IDの映画を削除する。
func (s *Service) DeleteMovie(ctx context.Context, movieID int64) error {
	if err := s.movieRepo.Delete(ctx, movieID); err != nil {
		return fmt.Errorf("映画の削除に失敗しました: %w", err)
	}

	slog.Info("movie deleted",
		slog.Int64("movie_id", movieID),
	)

	return nil
}

// GetUser は指定IDのユーザーを返す。見つからない場合はnilを返す。
func (s *Service) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// GetMovie は指定IDの映画を返す。見つからない場合はnilを返す。
func (s *Service) GetMovie(ctx context.Context, movieID int64) (*model.Movie, error) {
	return s.movieRepo.FindByID(ctx, movieID)
}

// GetUserMovies は指定ユーザーの映画一覧をID降順（新しい順）で返す。
// ユーザーが存在しない場合はUSER_NOT_FOUNDエラーを返す。
func (s *Service) GetUserMovies(ctx context.Context, userID int64) ([]model.Movie, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	movies, err := s.movieRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("映画一覧の取得に失敗しました: %w", err)
	}

	return movies, nil
}

// GetDashboard はホーム画面向けの集計を返す。
// 総ユーザー数、総映画数、ユーザーごとのお気に入り、直近ユーザーを含む。
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	users, err := s.userRepo.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	totalMovies := 0
	for _, u := range users {
		totalMovies += u.MovieCount
	}

	favorites, err := s.movieRepo.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("お気に入り一覧の取得に失敗しました: %w", err)
	}

	recent := users
	if len(recent) > recentUserCount {
		recent = recent[len(recent)-recentUserCount:]
	}

	return &Dashboard{
		TotalUsers:  len(users),
		TotalMovies: totalMovies,
		Favorites:   favorites,
		RecentUsers: recent,
	}, nil
}

// fetchMetadata はプロバイダからメタデータを取得し、結果を分類して記録する。
func (s *Service) fetchMetadata(ctx context.Context, title string) (*model.MovieMetadata, error) {
	meta, err := s.provider.FetchMovieData(ctx, title)
	if err != nil {
		var apiErr *model.APIError
		if s.metrics != nil {
			if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeMovieNotRecognized {
				s.metrics.RecordLookupNotFound()
			} else {
				s.metrics.RecordLookupFailure()
			}
		}
		return nil, fmt.Errorf("メタデータの取得に失敗しました（title=%s）: %w", title, err)
	}

	if s.metrics != nil {
		s.metrics.RecordLookupSuccess()
	}

	return meta, nil
}
