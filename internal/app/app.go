// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/moviweb/internal/config"
	"github.com/hitoshi/moviweb/internal/database"
	"github.com/hitoshi/moviweb/internal/handler"
	"github.com/hitoshi/moviweb/internal/logger"
	"github.com/hitoshi/moviweb/internal/metrics"
	"github.com/hitoshi/moviweb/internal/middleware"
	"github.com/hitoshi/moviweb/internal/movie"
	"github.com/hitoshi/moviweb/internal/omdb"
	"github.com/hitoshi/moviweb/internal/repository"
	"github.com/hitoshi/moviweb/internal/security"
)

// dataDir はSQLiteデータベースファイルを配置するディレクトリ。
const dataDir = "data"

// Init はアプリケーションの初期化を行う。
// .envファイルを読み込み（存在しなくてもよい）、JSON構造化ログを
// セットアップし、環境変数からConfigを読み込む。
// API_KEYが未設定の場合はエラーを返す（致命的な起動条件）。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. .envの読み込み（ローカル開発用。本番では環境変数を直接使う）
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment")
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("db_name", cfg.DBName),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はWebサーバーモードで起動する。
// DB接続を開き、マイグレーションを適用し、全依存関係をワイヤリングして
// HTTPサーバーを起動する。SIGINTまたはSIGTERMシグナルを受信すると
// グレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	dbPath, err := ensureDBPath(cfg.DBName)
	if err != nil {
		return err
	}

	if err := database.RunMigrations(dbPath); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("db_path", dbPath),
	)

	// 2. リポジトリの初期化
	userRepo := repository.NewSQLiteUserRepo(db)
	movieRepo := repository.NewSQLiteMovieRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. OMDbクライアントの初期化
	sanitizer := security.NewMetadataSanitizer()
	omdbClient := omdb.NewClient(
		security.NewOutboundClient(cfg.FetchTimeout),
		slog.Default(),
		sanitizer,
		omdb.ClientConfig{
			APIKey:      cfg.OMDbAPIKey,
			Endpoint:    cfg.OMDbAPIURL,
			MaxBodySize: cfg.FetchMaxSize,
		},
	)

	// 5. ドメインサービスの初期化
	movieService := movie.NewService(userRepo, movieRepo, omdbClient, collector)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.DefaultRateLimiterConfig(cfg.RateLimitPerMinute),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Service:       movieService,
		HealthChecker: db,
		Logger:        slog.Default(),
		Collector:     collector,
		Gatherer:      registry,
		RateLimiter:   rateLimiter,
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	dbPath, err := ensureDBPath(cfg.DBName)
	if err != nil {
		return err
	}

	slog.Info("running database migrations",
		slog.String("db_path", dbPath),
	)

	if err := database.RunMigrations(dbPath); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// ensureDBPath はデータディレクトリを作成し、DBファイルのパスを返す。
func ensureDBPath(dbName string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(dataDir, dbName), nil
}
