package main

import (
	"log"

	"taskapi/internal/config"
	"taskapi/internal/handlers"
	"taskapi/internal/jobs"
	"taskapi/internal/storage"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// .envファイルを読み込み（存在しない場合はスキップ）
	_ = godotenv.Load()

	cfg := config.Load()

	// ストアの初期化（DATABASE_PATH 指定時はSQLite、未指定はメモリ）
	var store storage.TaskStore
	if cfg.DatabasePath != "" {
		s, err := storage.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		store = s
		log.Printf("Using SQLite store: %s", cfg.DatabasePath)
	} else {
		store = storage.NewMemoryStore()
	}
	defer store.Close()

	// ジョブトラッカーの初期化
	tracker := jobs.NewTracker()
	defer tracker.Shutdown()

	// Echoインスタンスの作成
	e := echo.New()
	e.Debug = cfg.Debug

	// ミドルウェアの設定
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// ハンドラーの作成
	taskHandler := handlers.NewTaskHandler(store)
	jobHandler := handlers.NewJobHandler(tracker)
	systemHandler := handlers.NewSystemHandler(store, cfg)

	// ルートの登録
	e.GET("/", systemHandler.Root)
	e.GET("/health", systemHandler.Health)
	e.GET("/statistics", systemHandler.Statistics)

	e.GET("/tasks", taskHandler.List)
	e.POST("/tasks", taskHandler.Create)
	e.GET("/tasks/status/:status", taskHandler.ListByStatus)
	e.GET("/tasks/:id", taskHandler.Get)
	e.PUT("/tasks/:id", taskHandler.Update)
	e.DELETE("/tasks/:id", taskHandler.Delete)

	e.POST("/background-tasks", jobHandler.Submit)
	e.GET("/background-tasks", jobHandler.List)
	e.GET("/background-tasks/:id", jobHandler.Get)

	// サーバー起動
	log.Printf("Starting %s v%s on %s", cfg.AppName, cfg.Version, cfg.Addr())
	if err := e.Start(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
