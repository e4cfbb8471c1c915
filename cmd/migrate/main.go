package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func main() {
	dbPath := flag.String("db", "./data/taskmanager.db", "путь к базе данных")
	flag.Parse()

	log.Println("🔄 Создание базы данных...")

	// Убедимся что папка существует
	os.MkdirAll(filepath.Dir(*dbPath), 0755)

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatal("❌ Ошибка открытия БД:", err)
	}
	defer db.Close()

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("❌ Ошибка подключения:", err)
	}

	log.Println("✅ База данных открыта!")

	// Создаем таблицы
	tables := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			due TEXT,
			priority TEXT NOT NULL DEFAULT 'medium',
			checklist TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			avatar TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}

	for i, table := range tables {
		if _, err = db.Exec(table); err != nil {
			log.Fatal("❌ Ошибка создания таблицы:", err)
		}
		log.Printf("✅ Таблица %d создана", i+1)
	}

	// Профиль — единственная строка с id=1
	_, err = db.Exec(`INSERT INTO users (id, created_at, updated_at)
		SELECT 1, datetime('now'), datetime('now')
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE id = 1)`)
	if err != nil {
		log.Println("⚠️ Ошибка создания профиля:", err)
	} else {
		log.Println("✅ Профиль создан")
	}

	log.Println("🎉 Миграция завершена успешно!")
	log.Println("📁 База данных:", *dbPath)
}
