package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/moviweb/internal/model"
)

// newTestRepos はテスト用のユーザー・映画リポジトリと作成済みユーザーIDを返す。
func newTestRepos(t *testing.T) (*SQLiteUserRepo, *SQLiteMovieRepo, int64) {
	t.Helper()

	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db)
	movieRepo := NewSQLiteMovieRepo(db)

	userID, err := userRepo.Create(context.Background(), "Ada")
	if err != nil {
		t.Fatalf("user Create failed: %v", err)
	}

	return userRepo, movieRepo, userID
}

func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
}

func TestMovieRepo_CreateAndFindByID(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	if err := movieRepo.Create(ctx, "Inception", 2010, 8.8, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	movies, err := movieRepo.ListByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUserID failed: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("len(movies) = %d, want 1", len(movies))
	}

	movie, err := movieRepo.FindByID(ctx, movies[0].ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if movie == nil {
		t.Fatal("movie = nil, want non-nil")
	}
	if movie.Name != "Inception" || movie.Year != 2010 || movie.Rating != 8.8 || movie.UserID != userID {
		t.Errorf("movie = %+v", movie)
	}
}

func TestMovieRepo_Create_RejectsInvalidInput(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		title  string
		rating float64
	}{
		{name: "空の名前", title: "", rating: 8.0},
		{name: "評価が負", title: "Inception", rating: -0.1},
		{name: "評価が10超", title: "Inception", rating: 10.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := movieRepo.Create(ctx, tt.title, 2010, tt.rating, userID)
			assertErrCode(t, err, model.ErrCodeValidationFailed)
		})
	}

	// 拒否された入力は1件も永続化されていない
	movies, err := movieRepo.ListByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUserID failed: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("len(movies) = %d, want 0", len(movies))
	}
}

func TestMovieRepo_Create_AcceptsBoundaryRatings(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	if err := movieRepo.Create(ctx, "Zero", 2000, 0, userID); err != nil {
		t.Errorf("Create with rating 0 failed: %v", err)
	}
	if err := movieRepo.Create(ctx, "Ten", 2000, 10, userID); err != nil {
		t.Errorf("Create with rating 10 failed: %v", err)
	}
}

func TestMovieRepo_Update_PartialPatchPreservesOtherFields(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	if err := movieRepo.Create(ctx, "Inception", 2010, 8.8, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	movies, _ := movieRepo.ListByUserID(ctx, userID)
	movieID := movies[0].ID

	newName := "Inception Director's Cut"
	if err := movieRepo.Update(ctx, movieID, model.MoviePatch{Name: &newName}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	movie, err := movieRepo.FindByID(ctx, movieID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if movie.Name != newName {
		t.Errorf("Name = %q, want %q", movie.Name, newName)
	}
	if movie.Year != 2010 {
		t.Errorf("Year = %d, want 2010 (未指定フィールドは維持される)", movie.Year)
	}
	if movie.Rating != 8.8 {
		t.Errorf("Rating = %v, want 8.8 (未指定フィールドは維持される)", movie.Rating)
	}
}

func TestMovieRepo_Update_ExplicitZeroRating(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	if err := movieRepo.Create(ctx, "Inception", 2010, 8.8, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	movies, _ := movieRepo.ListByUserID(ctx, userID)
	movieID := movies[0].ID

	zero := 0.0
	if err := movieRepo.Update(ctx, movieID, model.MoviePatch{Rating: &zero}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	movie, _ := movieRepo.FindByID(ctx, movieID)
	if movie.Rating != 0 {
		t.Errorf("Rating = %v, want 0 (明示的なゼロは保持される)", movie.Rating)
	}
}

func TestMovieRepo_Update_NotFound(t *testing.T) {
	_, movieRepo, _ := newTestRepos(t)

	newName := "Dune"
	err := movieRepo.Update(context.Background(), 999, model.MoviePatch{Name: &newName})
	assertErrCode(t, err, model.ErrCodeMovieNotFound)
}

func TestMovieRepo_Update_RejectsOutOfRangeRating(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	if err := movieRepo.Create(ctx, "Inception", 2010, 8.8, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	movies, _ := movieRepo.ListByUserID(ctx, userID)
	movieID := movies[0].ID

	bad := 11.0
	err := movieRepo.Update(ctx, movieID, model.MoviePatch{Rating: &bad})
	assertErrCode(t, err, model.ErrCodeValidationFailed)

	// ロールバック済みで既存値はそのまま
	movie, _ := movieRepo.FindByID(ctx, movieID)
	if movie.Rating != 8.8 {
		t.Errorf("Rating = %v, want 8.8", movie.Rating)
	}
}

func TestMovieRepo_Delete_SecondDeleteReturnsNotFound(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	if err := movieRepo.Create(ctx, "Inception", 2010, 8.8, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	movies, _ := movieRepo.ListByUserID(ctx, userID)
	movieID := movies[0].ID

	if err := movieRepo.Delete(ctx, movieID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	err := movieRepo.Delete(ctx, movieID)
	assertErrCode(t, err, model.ErrCodeMovieNotFound)
}

func TestMovieRepo_ListByUserID_NewestFirst(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		if err := movieRepo.Create(ctx, title, 2000, 5.0, userID); err != nil {
			t.Fatalf("Create(%q) failed: %v", title, err)
		}
	}

	movies, err := movieRepo.ListByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUserID failed: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("len(movies) = %d, want 3", len(movies))
	}
	if movies[0].Name != "Third" || movies[2].Name != "First" {
		t.Errorf("unexpected order: %v", movies)
	}
}

func TestMovieRepo_ListFavorites_HighestRatedPerUser(t *testing.T) {
	userRepo, movieRepo, adaID := newTestRepos(t)
	ctx := context.Background()

	graceID, err := userRepo.Create(ctx, "Grace")
	if err != nil {
		t.Fatalf("user Create failed: %v", err)
	}

	if err := movieRepo.Create(ctx, "Inception", 2010, 7.5, adaID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := movieRepo.Create(ctx, "Interstellar", 2014, 9.0, adaID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := movieRepo.Create(ctx, "Dune", 2021, 8.0, graceID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	favorites, err := movieRepo.ListFavorites(ctx)
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(favorites) != 2 {
		t.Fatalf("len(favorites) = %d, want 2", len(favorites))
	}

	if favorites[0].UserID != adaID || favorites[0].MovieName != "Interstellar" || favorites[0].Rating != 9.0 {
		t.Errorf("favorites[0] = %+v", favorites[0])
	}
	if favorites[1].UserID != graceID || favorites[1].MovieName != "Dune" {
		t.Errorf("favorites[1] = %+v", favorites[1])
	}
}

func TestMovieRepo_ListFavorites_TieBreaksOnLowestID(t *testing.T) {
	_, movieRepo, userID := newTestRepos(t)
	ctx := context.Background()

	if err := movieRepo.Create(ctx, "First", 2000, 8.0, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := movieRepo.Create(ctx, "Second", 2001, 8.0, userID); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	favorites, err := movieRepo.ListFavorites(ctx)
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("len(favorites) = %d, want 1", len(favorites))
	}
	if favorites[0].MovieName != "First" {
		t.Errorf("MovieName = %q, want %q (同率はID最小を選ぶ)", favorites[0].MovieName, "First")
	}
}
