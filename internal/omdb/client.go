// Package omdb はOMDb APIによる映画メタデータ取得機能を提供する。
// タイトルによる検索と、正規化済みレコードへの変換を含む。
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/moviweb/internal/model"
	"github.com/hitoshi/moviweb/internal/security"
)

// defaultEndpoint はOMDb APIのエンドポイント。
const defaultEndpoint = "https://www.omdbapi.com/"

// defaultMaxBodySize はレスポンスボディの最大読み取りサイズ（1MB）。
const defaultMaxBodySize = 1024 * 1024

// ClientConfig はOMDbクライアントの設定を保持する。
type ClientConfig struct {
	// APIKey はOMDb APIの認証キー。起動時に1回読み込まれる。
	APIKey string
	// Endpoint はAPIエンドポイント。空の場合はデフォルトを使用する。
	Endpoint string
	// MaxBodySize はレスポンスボディの最大読み取りサイズ。
	// 0以下の場合はデフォルト値を使用する。
	MaxBodySize int64
}

// Client はOMDb APIのクライアント。
// タイトル検索エンドポイント（?t=）を使用して映画1件の情報を取得する。
// リトライやキャッシュは行わず、失敗は同期的に呼び出し元へ返す。
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	sanitizer   security.MetadataSanitizerService
	apiKey      string
	endpoint    string
	maxBodySize int64
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, sanitizer security.MetadataSanitizerService, cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	maxBodySize := cfg.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	return &Client{
		httpClient:  httpClient,
		logger:      logger,
		sanitizer:   sanitizer,
		apiKey:      cfg.APIKey,
		endpoint:    endpoint,
		maxBodySize: maxBodySize,
	}
}

// omdbResponse はOMDb APIの応答ペイロード。
type omdbResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	IMDbRating string `json:"imdbRating"`
	Poster     string `json:"Poster"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// FetchMovieData は指定タイトルの映画メタデータを取得する。
// 接続失敗・非成功ステータスはOMDB_UNAVAILABLE、該当なし応答は
// MOVIE_NOT_RECOGNIZEDとして分類される。成功時はタイトル・年・評価・
// ポスターURLを正規化して返す。
func (c *Client) FetchMovieData(ctx context.Context, title string) (*model.MovieMetadata, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "MoviWeb/1.0 Movie Tracker")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("OMDb APIの呼び出しに失敗しました",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, model.NewOMDbUnavailableError(0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OMDb APIがエラーステータスを返しました",
			slog.String("title", title),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewOMDbUnavailableError(resp.StatusCode)
	}

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var payload omdbResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("OMDb APIのレスポンスのパースに失敗しました",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, model.NewOMDbMalformedError("body")
	}

	// 構造的には成功だがペイロードが「該当なし」を示す場合
	if !strings.EqualFold(payload.Response, "True") {
		return nil, model.NewMovieNotRecognizedError(title)
	}

	year, err := parseYear(payload.Year)
	if err != nil {
		return nil, model.NewOMDbMalformedError("Year")
	}

	rating, err := strconv.ParseFloat(payload.IMDbRating, 64)
	if err != nil {
		return nil, model.NewOMDbMalformedError("imdbRating")
	}

	meta := &model.MovieMetadata{
		Title:  c.sanitizer.SanitizeText(payload.Title),
		Year:   year,
		Rating: rating,
		Poster: c.sanitizer.SanitizePosterURL(normalizePoster(payload.Poster)),
	}

	return meta, nil
}

// parseYear はOMDbのYear文字列から年を取り出す。
// シリーズ作品では"2010–2014"のような範囲表記になるため、
// 先頭の4桁連続数字を採用する。
func parseYear(raw string) (int, error) {
	run := 0
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if run == 0 {
				start = i
			}
			run++
			if run == 4 {
				return strconv.Atoi(raw[start : i+1])
			}
		} else {
			run = 0
		}
	}
	return 0, fmt.Errorf("no 4-digit year in %q", raw)
}

// normalizePoster はポスターURLを正規化する。提供なしを示す"N/A"は空文字列にする。
func normalizePoster(raw string) string {
	if raw == "N/A" {
		return ""
	}
	return raw
}
