package manager

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"task-manager/internal/models"
	"task-manager/internal/notify"
)

var (
	addTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmanager_tasks_added_total",
			Help: "Total number of AddTask operations",
		},
		[]string{"status"},
	)

	toggleCompleteCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmanager_toggle_complete_total",
			Help: "Total number of ToggleComplete operations",
		},
		[]string{"status"},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskmanager_task_title_length_bytes",
			Help:    "Length distribution of task titles",
			Buckets: []float64{10, 50, 100, 500},
		},
	)
)

var (
	ErrEmptyTitle = errors.New("название задачи обязательно")

	// Причина отказа, когда в чеклисте остались незавершённые пункты
	ErrChecklistIncomplete = errors.New("incomplete checklist items")
)

// WarningIncompleteChecklist — текст всплывающего предупреждения
const WarningIncompleteChecklist = "⚠️ Невозможно завершить задачу: есть незавершённые пункты чеклиста"

// Filter — параметры выборки задач
type Filter struct {
	Query         string
	ShowCompleted bool
}

// TaskManager — локальное хранилище задач, единственный источник
// правды для отображения. Все мутации идут через его методы.
type TaskManager struct {
	mu       sync.Mutex
	tasks    []models.Task // новые задачи в начале
	notifier *notify.Notifier
}

func NewTaskManager(n *notify.Notifier) *TaskManager {
	return &TaskManager{notifier: n}
}

// ChecklistComplete проверяет чеклист-гейт: задачу можно завершить,
// только если все пункты выполнены или чеклист пуст.
func ChecklistComplete(t models.Task) bool {
	for _, item := range t.Checklist {
		if !item.Completed {
			return false
		}
	}
	return true
}

// AddTask создает задачу с временным локальным ID.
// Настоящий ID назначит сервер при синхронизации (см. sync.Client).
func (tm *TaskManager) AddTask(title, description string, due *string, priority models.Priority, checklist []models.ChecklistItem) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		addTaskCount.WithLabelValues("error").Inc()
		return models.Task{}, ErrEmptyTitle
	}

	if priority == "" {
		priority = models.PriorityMedium
	}
	if checklist == nil {
		checklist = []models.ChecklistItem{}
	}

	task := models.Task{
		ID:          uuid.NewString(), // временный ID до ответа сервера
		Title:       title,
		Description: strings.TrimSpace(description),
		Completed:   false,
		Due:         due,
		Priority:    priority,
		Checklist:   checklist,
		SyncStatus:  models.SyncPending,
	}

	tm.mu.Lock()
	tm.tasks = append([]models.Task{task}, tm.tasks...)
	tm.mu.Unlock()

	addTaskCount.WithLabelValues("success").Inc()
	taskTitleLength.Observe(float64(len(title)))

	return task, nil
}

// List возвращает задачи, чей заголовок содержит Query (без учета
// регистра). Выполненные скрыты, пока не запрошены ShowCompleted.
// Хранилище не мутируется, порядок — порядок вставки.
func (tm *TaskManager) List(f Filter) []models.Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	query := strings.ToLower(f.Query)
	result := make([]models.Task, 0, len(tm.tasks))
	for _, t := range tm.tasks {
		if t.Completed && !f.ShowCompleted {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// Get возвращает копию задачи по ID
func (tm *TaskManager) Get(id string) (*models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			task := tm.tasks[i]
			return &task, nil
		}
	}
	return nil, fmt.Errorf("задача с ID %s не найдена", id)
}

// Upsert заменяет задачу с тем же ID или добавляет новую в начало
func (tm *TaskManager) Upsert(task models.Task) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == task.ID {
			tm.tasks[i] = task
			return
		}
	}
	tm.tasks = append([]models.Task{task}, tm.tasks...)
}

// Remove удаляет задачу локально. Удаление мгновенное, подтверждения
// от сервера не ждем.
func (tm *TaskManager) Remove(id string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			tm.tasks = append(tm.tasks[:i], tm.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("задача с ID %s не найдена", id)
}

// ReplaceAll целиком заменяет хранилище (начальная загрузка с сервера)
func (tm *TaskManager) ReplaceAll(tasks []models.Task) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.tasks = tasks
}

// Rekey меняет временный ID на серверный. Дальше задача адресуется
// только новым ID.
func (tm *TaskManager) Rekey(oldID, newID string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == oldID {
			tm.tasks[i].ID = newID
			return nil
		}
	}
	return fmt.Errorf("задача с ID %s не найдена", oldID)
}

// SetSyncStatus помечает статус синхронизации задачи
func (tm *TaskManager) SetSyncStatus(id string, status models.SyncStatus) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			tm.tasks[i].SyncStatus = status
			return
		}
	}
}

// UpdateTask — полная замена редактируемых полей (title/description/
// due/priority/checklist), как в форме редактирования.
func (tm *TaskManager) UpdateTask(id string, req models.UpdateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			tm.tasks[i].Title = title
			tm.tasks[i].Description = strings.TrimSpace(req.Description)
			tm.tasks[i].Due = req.Due
			if req.Priority != "" {
				tm.tasks[i].Priority = req.Priority
			}
			if req.Checklist != nil {
				tm.tasks[i].Checklist = req.Checklist
			} else {
				tm.tasks[i].Checklist = []models.ChecklistItem{}
			}
			task := tm.tasks[i]
			return &task, nil
		}
	}
	return nil, fmt.Errorf("задача с ID %s не найдена", id)
}

// ToggleComplete переключает флаг выполнения с проверкой чеклист-гейта.
// Снятие отметки разрешено всегда. Завершение — только когда все пункты
// чеклиста выполнены; иначе задача не меняется, а пользователю уходит
// предупреждение.
func (tm *TaskManager) ToggleComplete(id string) (*models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID != id {
			continue
		}

		if !tm.tasks[i].Completed && !ChecklistComplete(tm.tasks[i]) {
			toggleCompleteCount.WithLabelValues("rejected").Inc()
			if tm.notifier != nil {
				tm.notifier.Notify(WarningIncompleteChecklist)
			}
			return nil, ErrChecklistIncomplete
		}

		tm.tasks[i].Completed = !tm.tasks[i].Completed
		toggleCompleteCount.WithLabelValues("success").Inc()
		task := tm.tasks[i]
		return &task, nil
	}

	toggleCompleteCount.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("задача с ID %s не найдена", id)
}

// ToggleChecklistItem переключает пункт чеклиста. Гейт здесь не
// проверяется: пункты можно переключать свободно, и уже завершённая
// задача завершённой и остаётся.
func (tm *TaskManager) ToggleChecklistItem(taskID, itemID string) (*models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID != taskID {
			continue
		}
		for j := range tm.tasks[i].Checklist {
			if tm.tasks[i].Checklist[j].ID == itemID {
				tm.tasks[i].Checklist[j].Completed = !tm.tasks[i].Checklist[j].Completed
				task := tm.tasks[i]
				return &task, nil
			}
		}
		return nil, fmt.Errorf("пункт чеклиста %s не найден в задаче %s", itemID, taskID)
	}
	return nil, fmt.Errorf("задача с ID %s не найдена", taskID)
}

// AddChecklistItem добавляет пункт в конец чеклиста (порядок вставки значим)
func (tm *TaskManager) AddChecklistItem(taskID, title string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == taskID {
			item := models.ChecklistItem{
				ID:        uuid.NewString(),
				Title:     title,
				Completed: false,
			}
			tm.tasks[i].Checklist = append(tm.tasks[i].Checklist, item)
			task := tm.tasks[i]
			return &task, nil
		}
	}
	return nil, fmt.Errorf("задача с ID %s не найдена", taskID)
}
