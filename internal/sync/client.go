package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"task-manager/internal/logger"
	"task-manager/internal/manager"
	"task-manager/internal/models"
)

var syncRequestCount = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "taskmanager_sync_requests_total",
		Help: "Total number of sync requests to the backend",
	},
	[]string{"op", "status"},
)

// Client — адаптер синхронизации с сервером. Локальное состояние
// обновляется оптимистично ДО сетевого вызова; при ошибке оно
// не откатывается, задача лишь помечается failed и пишется лог.
// Повторов нет.
type Client struct {
	baseURL string
	http    *http.Client
	tm      *manager.TaskManager
}

func NewClient(baseURL string, tm *manager.TaskManager) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		tm:      tm,
	}
}

// NewClientWithHTTP — для тестов
func NewClientWithHTTP(baseURL string, tm *manager.TaskManager, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, http: httpClient, tm: tm}
}

// Формат задачи в ответе GET /tasks. Чеклист разбираем отдельно:
// битое поле у одной задачи не должно валить всю загрузку.
type taskWire struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Due         *string         `json:"due"`
	Priority    models.Priority `json:"priority"`
	Checklist   json.RawMessage `json:"checklist"`
}

// Load — начальная загрузка: забираем весь список и целиком
// заменяем локальное хранилище.
func (c *Client) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		syncRequestCount.WithLabelValues("load", "error").Inc()
		logger.Error(ctx, err, "Ошибка загрузки задач с сервера")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		syncRequestCount.WithLabelValues("load", "error").Inc()
		err := fmt.Errorf("сервер вернул статус %d", resp.StatusCode)
		logger.Error(ctx, err, "Ошибка загрузки задач с сервера")
		return err
	}

	var wire []taskWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		syncRequestCount.WithLabelValues("load", "error").Inc()
		logger.Error(ctx, err, "Неверный формат списка задач")
		return err
	}

	tasks := make([]models.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, models.Task{
			ID:          w.ID,
			Title:       w.Title,
			Description: w.Description,
			Completed:   w.Completed,
			Due:         w.Due,
			Priority:    w.Priority,
			Checklist:   models.ParseChecklistRaw(w.Checklist),
			SyncStatus:  models.SyncSynced,
		})
	}

	c.tm.ReplaceAll(tasks)
	syncRequestCount.WithLabelValues("load", "success").Inc()
	logger.Info(ctx, "Задачи загружены с сервера", "count", len(tasks))
	return nil
}

// CreateTask отправляет новую задачу на сервер. При успехе временный
// ID заменяется серверным. При ошибке задача остаётся в хранилище
// как была, со статусом failed.
func (c *Client) CreateTask(ctx context.Context, task models.Task) error {
	body := models.CreateTaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Due:         task.Due,
		Priority:    task.Priority,
		Checklist:   task.Checklist,
	}

	var result models.CreateTaskResponse
	if err := c.doJSON(ctx, http.MethodPost, "/tasks", body, &result); err != nil {
		syncRequestCount.WithLabelValues("create", "error").Inc()
		c.tm.SetSyncStatus(task.ID, models.SyncFailed)
		logger.Error(ctx, err, "Не удалось создать задачу на сервере", "taskID", task.ID)
		return err
	}

	if err := c.tm.Rekey(task.ID, result.ID); err != nil {
		// Задачу успели удалить, пока шёл запрос
		logger.Error(ctx, err, "Задача исчезла до завершения создания", "serverID", result.ID)
		return nil
	}
	c.tm.SetSyncStatus(result.ID, models.SyncSynced)
	syncRequestCount.WithLabelValues("create", "success").Inc()
	logger.Info(ctx, "Задача создана на сервере", "localID", task.ID, "serverID", result.ID)
	return nil
}

// UpdateTask отправляет полное представление задачи по её ID.
// Локальная копия уже обновлена оптимистично; при ошибке она
// остаётся как есть (расхождение с сервером — принятый компромисс).
func (c *Client) UpdateTask(ctx context.Context, task models.Task) error {
	body := models.UpdateTaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Due:         task.Due,
		Priority:    task.Priority,
		Checklist:   task.Checklist,
	}

	var result models.UpdateTaskResponse
	if err := c.doJSON(ctx, http.MethodPut, "/tasks/"+task.ID, body, &result); err != nil {
		syncRequestCount.WithLabelValues("update", "error").Inc()
		c.tm.SetSyncStatus(task.ID, models.SyncFailed)
		logger.Error(ctx, err, "Не удалось обновить задачу на сервере", "taskID", task.ID)
		return err
	}

	c.tm.SetSyncStatus(task.ID, models.SyncSynced)
	syncRequestCount.WithLabelValues("update", "success").Inc()
	return nil
}

// DeleteTask удаляет задачу на сервере. Локально она уже удалена;
// при ошибке ничего не восстанавливаем, только логируем.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/tasks/"+id, nil, nil); err != nil {
		syncRequestCount.WithLabelValues("delete", "error").Inc()
		logger.Error(ctx, err, "Не удалось удалить задачу на сервере", "taskID", id)
		return err
	}
	syncRequestCount.WithLabelValues("delete", "success").Inc()
	return nil
}

// doJSON выполняет запрос с JSON-телом и разбирает JSON-ответ
func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("сервер вернул статус %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}
