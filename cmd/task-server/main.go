package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"path/filepath"

	server "task-manager"
	"task-manager/internal/config"
	"task-manager/internal/logger"
	"task-manager/internal/storage"
)

func main() {
	ctx := context.Background()

	configPath := flag.String("config", "config.toml", "путь к конфигу")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфига")
		os.Exit(1)
	}

	// Создаем директорию для БД, если её нет
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error(ctx, err, "Ошибка создания директории для БД")
		os.Exit(1)
	}

	dbStorage, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		logger.Error(ctx, err, "Ошибка инициализации SQLite хранилища")
		os.Exit(1)
	}
	defer dbStorage.Close()

	router := server.NewRouter(dbStorage)

	logger.Info(ctx, "🚀 Сервер запущен", "addr", cfg.ServerAddr)
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Error(ctx, err, "Сервер остановился с ошибкой")
		os.Exit(1)
	}
}
