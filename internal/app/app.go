// Package app は設定の読み込みから各層のワイヤリング、サブコマンドの実行までを担う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hitoshi/todosync/internal/config"
	"github.com/hitoshi/todosync/internal/database"
	"github.com/hitoshi/todosync/internal/handler"
	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/logger"
	"github.com/hitoshi/todosync/internal/metrics"
	"github.com/hitoshi/todosync/internal/middleware"
	"github.com/hitoshi/todosync/internal/model"
	"github.com/hitoshi/todosync/internal/repository"
	"github.com/hitoshi/todosync/internal/security"
	"github.com/hitoshi/todosync/internal/session"
	"github.com/hitoshi/todosync/internal/store"
	"github.com/hitoshi/todosync/internal/usecase"
)

const (
	defaultServerPort = "8787"
	connectTimeout    = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// .env から読み込んだログレベルを反映する
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, known := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = defaultServerPort
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if !known {
		slog.Warn("unknown command, falling back to serve", slog.String("arg", args[0]))
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("document_store", string(cfg.DocumentStoreKind)),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// stores はドキュメントストアのゲートウェイと、その接続を閉じる関数の組。
type stores struct {
	profiles store.ProfileStore
	todos    store.TodoStore
	close    func(ctx context.Context) error
}

// openStores は設定されたバックエンドに接続し、ゲートウェイを生成する。
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.DocumentStoreKind {
	case config.DocumentStoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.DocumentStoreURL)
		if err != nil {
			return nil, err
		}
		if err := database.PingMongo(ctx, client); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		slog.Info("document store connection established", slog.String("kind", "mongo"))
		return newMongoStores(client, cfg.DocumentStoreDatabase), nil

	default:
		db, err := database.Open(cfg.DocumentStoreURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := database.PingPostgres(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("document store connection established", slog.String("kind", "postgres"))
		return newPostgresStores(db), nil
	}
}

func newPostgresStores(db *sql.DB) *stores {
	return &stores{
		profiles: store.NewPostgresProfileStore(db),
		todos:    store.NewPostgresTodoStore(db),
		close:    func(context.Context) error { return db.Close() },
	}
}

func newMongoStores(client *mongo.Client, dbName string) *stores {
	mdb := client.Database(dbName)
	return &stores{
		profiles: store.NewMongoProfileStore(mdb),
		todos:    store.NewMongoTodoStore(mdb),
		close:    client.Disconnect,
	}
}

// newAuthority は認証基盤クライアントを生成する。
// エミュレーター指定時はローカルホストへの平文HTTPを許可し、
// それ以外はEgressGuardでベースURLと接続先IPを制限する。
func newAuthority(cfg *config.Config) (*identity.ToolkitClient, error) {
	if cfg.IdentityEmulatorHost != "" {
		slog.Warn("using identity emulator", slog.String("host", cfg.IdentityEmulatorHost))
		return identity.NewToolkitClient(identity.ToolkitConfig{
			APIKey:     cfg.IdentityAPIKey,
			BaseURL:    identity.EmulatorBaseURL(cfg.IdentityEmulatorHost),
			HTTPClient: &http.Client{Timeout: cfg.IdentityTimeout},
		}), nil
	}

	guard := security.NewEgressGuard()
	if err := guard.ValidateBaseURL(cfg.IdentityBaseURL); err != nil {
		return nil, fmt.Errorf("invalid IDENTITY_BASE_URL: %w", err)
	}
	return identity.NewToolkitClient(identity.ToolkitConfig{
		APIKey:     cfg.IdentityAPIKey,
		BaseURL:    cfg.IdentityBaseURL,
		HTTPClient: guard.NewSafeClient(cfg.IdentityTimeout),
	}), nil
}

// bridge はワイヤリング済みのHTTPハンドラーと、停止時に解放するリソース。
type bridge struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	authSub *identity.Subscription
}

// Close はレート制限のクリーンアップと認証状態の購読を停止する。
func (b *bridge) Close() {
	b.authSub.Unsubscribe()
	b.limiter.Stop()
}

// newBridge はゲートウェイからユースケース、ルーターまでを組み立てる。
func newBridge(cfg *config.Config, authority identity.Authority, sessions *session.Store, st *stores, reg *prometheus.Registry) *bridge {
	// 1. ゲートウェイとリポジトリ
	gateway := identity.NewGateway(authority, sessions)
	authRepo := repository.NewAuthRepository(gateway, st.profiles)
	todoRepo := repository.NewTodoRepository(st.todos)

	// 2. ユースケース
	getCurrentUser := usecase.NewGetCurrentUser(authRepo)
	observe := usecase.NewObserveAuthState(authRepo)

	// 3. メトリクスと認証状態の監視
	collector := metrics.NewCollector(reg)
	authSub := observe.Execute(func(u *model.User) {
		collector.RecordAuthStateChange(u != nil)
		if u == nil {
			slog.Info("auth state changed", slog.Bool("signed_in", false))
			return
		}
		slog.Info("auth state changed",
			slog.Bool("signed_in", true),
			slog.String("user_id", u.ID),
		)
	})

	// 4. ルーター
	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(cfg.RateLimitPerMin))
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,
		Collector:         collector,
		Gatherer:          reg,
		Sanitizer:         security.NewTextSanitizer(),
		Auth: handler.AuthUseCases{
			Register:       usecase.NewRegister(authRepo),
			Login:          usecase.NewLogin(authRepo),
			Logout:         usecase.NewLogout(authRepo),
			CurrentUser:    getCurrentUser,
			UpdateProfile:  usecase.NewUpdateProfile(authRepo),
			ResetPassword:  usecase.NewResetPassword(authRepo),
			RestoreSession: usecase.NewRestoreSession(authRepo),
		},
		ObserveAuthState: observe,
		Todos: handler.TodoUseCases{
			Create: usecase.NewCreateTodo(todoRepo),
			GetAll: usecase.NewGetAllTodos(todoRepo),
			Toggle: usecase.NewToggleTodo(todoRepo),
			Delete: usecase.NewDeleteTodo(todoRepo),
		},
	})

	return &bridge{handler: router, limiter: limiter, authSub: authSub}
}

// runServe はローカルAPIブリッジを起動する。
// ローカルセッション、認証基盤、ドキュメントストアを初期化し、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ローカルセッション
	kv, err := session.NewFileKV(cfg.SessionFile, cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	sessions := session.NewStore(kv)

	// 2. 認証基盤
	authority, err := newAuthority(cfg)
	if err != nil {
		return err
	}

	// 3. ドキュメントストア
	st, err := openStores(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to document store: %w", err)
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			slog.Warn("failed to close document store", slog.String("error", err.Error()))
		}
	}()

	if userID, ok := sessions.Load(context.Background()); ok {
		slog.Info("previous session found", slog.String("user_id", userID))
	}

	// 4. ワイヤリング
	b := newBridge(cfg, authority, sessions, st, prometheus.NewRegistry())
	defer b.Close()

	// 5. HTTPサーバーの起動
	// 認証状態のWebSocketは長時間接続のため、Read/WriteTimeoutは設定しない
	server := &http.Server{
		Addr:              "127.0.0.1:" + cfg.ServerPort,
		Handler:           b.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API bridge starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API bridge...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API bridge stopped gracefully")
	return nil
}

// runMigrate はドキュメントストアを初期化する。
// PostgreSQLは未適用マイグレーションを順番に適用し、MongoDBは必要なインデックスを作成する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running document store migrations",
		slog.String("kind", string(cfg.DocumentStoreKind)),
		slog.String("document_store_url", maskDatabaseURL(cfg.DocumentStoreURL)),
	)

	switch cfg.DocumentStoreKind {
	case config.DocumentStoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		client, err := database.ConnectMongo(ctx, cfg.DocumentStoreURL)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer client.Disconnect(context.Background())

		if err := store.EnsureMongoIndexes(ctx, client.Database(cfg.DocumentStoreDatabase)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

	default:
		version, err := database.RunMigrations(cfg.DocumentStoreURL)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		slog.Info("postgres schema is up to date", slog.Uint64("version", uint64(version)))
	}

	slog.Info("document store migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// 起動中のブリッジの /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://127.0.0.1:%s/health", port)
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

// maskDatabaseURL は接続URLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
