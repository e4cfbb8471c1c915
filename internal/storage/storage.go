package storage

import (
	"fmt"
	"strconv"
	"sync"

	"task-manager/internal/models"
)

// Storage интерфейс для абстракции серверного хранилища
type Storage interface {
	// Tasks
	GetAllTasks() ([]models.Task, error)
	GetTask(id string) (*models.Task, error)
	CreateTask(req models.CreateTaskRequest) (string, error)
	UpdateTask(id string, req models.UpdateTaskRequest) error
	DeleteTask(id string) error

	// Profile
	GetProfile() (*models.Profile, error)
	SaveProfile(p models.Profile) error

	// Закрытие соединения
	Close() error
}

// MemoryStorage — хранилище в памяти для тестов и запуска без БД
type MemoryStorage struct {
	mu      sync.Mutex
	tasks   map[string]models.Task
	order   []string // новые ID в начале
	profile models.Profile
	nextID  int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:  make(map[string]models.Task),
		nextID: 1,
	}
}

func (m *MemoryStorage) GetAllTasks() ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]models.Task, 0, len(m.order))
	for _, id := range m.order {
		tasks = append(tasks, m.tasks[id])
	}
	return tasks, nil
}

func (m *MemoryStorage) GetTask(id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("задача с ID %s не найдена", id)
	}
	return &task, nil
}

func (m *MemoryStorage) CreateTask(req models.CreateTaskRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := strconv.FormatInt(m.nextID, 10)
	m.nextID++

	checklist := req.Checklist
	if checklist == nil {
		checklist = []models.ChecklistItem{}
	}

	m.tasks[id] = models.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		Due:         req.Due,
		Priority:    req.Priority,
		Checklist:   checklist,
	}
	m.order = append([]string{id}, m.order...)
	return id, nil
}

func (m *MemoryStorage) UpdateTask(id string, req models.UpdateTaskRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("задача с ID %s не найдена", id)
	}

	checklist := req.Checklist
	if checklist == nil {
		checklist = []models.ChecklistItem{}
	}

	m.tasks[id] = models.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Due:         req.Due,
		Priority:    req.Priority,
		Checklist:   checklist,
	}
	return nil
}

func (m *MemoryStorage) DeleteTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("задача с ID %s не найдена", id)
	}
	delete(m.tasks, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStorage) GetProfile() (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile := m.profile
	return &profile, nil
}

func (m *MemoryStorage) SaveProfile(p models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profile = p
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
