package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"task-manager/internal/logger"
	"task-manager/internal/models"
)

// SQLiteStorage — постоянное хранилище. Соединение одно на процесс,
// транзакций между read-modify-write нет (однопользовательский режим).
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %v", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %v", err)
	}

	// Создаем таблицы
	if err := createTables(db); err != nil {
		return nil, err
	}

	logger.Info(context.Background(), "SQLite база данных инициализирована", "path", dbPath)
	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	// Таблица задач: чеклист храним сериализованным JSON-массивом
	createTasksTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		due TEXT,
		priority TEXT NOT NULL DEFAULT 'medium',
		checklist TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`

	// Таблица профиля (одна запись)
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`

	if _, err := db.Exec(createTasksTable); err != nil {
		return fmt.Errorf("ошибка создания таблицы tasks: %v", err)
	}
	if _, err := db.Exec(createUsersTable); err != nil {
		return fmt.Errorf("ошибка создания таблицы users: %v", err)
	}

	// Профиль всегда одна строка с id=1
	_, err := db.Exec(`INSERT INTO users (id, created_at, updated_at)
		SELECT 1, datetime('now'), datetime('now')
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE id = 1)`)
	if err != nil {
		return fmt.Errorf("ошибка создания профиля: %v", err)
	}

	return nil
}

// Закрытие соединения
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) GetAllTasks() ([]models.Task, error) {
	query := `
	SELECT id, title, description, completed, due, priority, checklist
	FROM tasks ORDER BY id DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (s *SQLiteStorage) GetTask(id string) (*models.Task, error) {
	query := `
	SELECT id, title, description, completed, due, priority, checklist
	FROM tasks WHERE id = ?`

	row := s.db.QueryRow(query, id)
	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("задача с ID %s не найдена", id)
		}
		return nil, err
	}
	return task, nil
}

func (s *SQLiteStorage) CreateTask(req models.CreateTaskRequest) (string, error) {
	query := `
	INSERT INTO tasks (title, description, completed, due, priority, checklist, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))`

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	var due interface{}
	if req.Due != nil && *req.Due != "" {
		due = *req.Due
	}

	result, err := s.db.Exec(query,
		req.Title, req.Description, false, due,
		string(priority), models.MarshalChecklist(req.Checklist),
	)
	if err != nil {
		return "", err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SQLiteStorage) UpdateTask(id string, req models.UpdateTaskRequest) error {
	query := `
	UPDATE tasks
	SET title = ?, description = ?, completed = ?, due = ?, priority = ?, checklist = ?, updated_at = datetime('now')
	WHERE id = ?`

	var due interface{}
	if req.Due != nil && *req.Due != "" {
		due = *req.Due
	}

	result, err := s.db.Exec(query,
		req.Title, req.Description, req.Completed, due,
		string(req.Priority), models.MarshalChecklist(req.Checklist), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("задача с ID %s не найдена", id)
	}
	return nil
}

func (s *SQLiteStorage) DeleteTask(id string) error {
	result, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("задача с ID %s не найдена", id)
	}
	return nil
}

func (s *SQLiteStorage) GetProfile() (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(
		"SELECT name, email, phone, city, avatar FROM users WHERE id = 1",
	).Scan(&p.Name, &p.Email, &p.Phone, &p.City, &p.Avatar)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStorage) SaveProfile(p models.Profile) error {
	_, err := s.db.Exec(`
	UPDATE users
	SET name = ?, email = ?, phone = ?, city = ?, avatar = ?, updated_at = datetime('now')
	WHERE id = 1`,
		p.Name, p.Email, p.Phone, p.City, p.Avatar,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var id int64
	var due sql.NullString
	var priority string
	var checklistRaw string

	err := row.Scan(&id, &task.Title, &task.Description, &task.Completed, &due, &priority, &checklistRaw)
	if err != nil {
		return nil, err
	}

	task.ID = strconv.FormatInt(id, 10)
	task.Priority = models.Priority(priority)
	if due.Valid && due.String != "" {
		task.Due = &due.String
	}

	// Битый чеклист в одной строке не валит всю загрузку
	task.Checklist = models.ParseChecklist(checklistRaw)

	return &task, nil
}

// Вспомогательная функция для сканирования задач
func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
