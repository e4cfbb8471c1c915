package models

import "encoding/json"

// Priority — приоритет задачи
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// SyncStatus — статус синхронизации задачи с сервером.
// На сервер не отправляется, живет только на клиенте.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "failed"
)

// ChecklistItem — пункт чеклиста внутри задачи
type ChecklistItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task — основная структура задачи
type Task struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Due         *string         `json:"due"` // YYYY-MM-DD или null
	Priority    Priority        `json:"priority"`
	Checklist   []ChecklistItem `json:"checklist"`
	SyncStatus  SyncStatus      `json:"-"`
}

// Структуры для HTTP-запросов
type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Due         *string         `json:"due"`
	Priority    Priority        `json:"priority"`
	Checklist   []ChecklistItem `json:"checklist"`
}

type CreateTaskResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type UpdateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Due         *string         `json:"due"`
	Priority    Priority        `json:"priority"`
	Checklist   []ChecklistItem `json:"checklist"`
}

type UpdateTaskResponse struct {
	Success bool `json:"success"`
}

// Profile — профиль пользователя (одна запись)
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	City   string `json:"city"`
	Avatar string `json:"avatar"`
}

// MarshalChecklist сериализует чеклист в JSON-строку для хранения в БД.
// nil превращается в пустой массив, чтобы в базе не было null.
func MarshalChecklist(items []ChecklistItem) string {
	if items == nil {
		items = []ChecklistItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// ParseChecklist разбирает JSON-строку из БД.
// Битые или пустые данные не валят загрузку — возвращаем пустой чеклист.
func ParseChecklist(raw string) []ChecklistItem {
	if raw == "" {
		return []ChecklistItem{}
	}
	var items []ChecklistItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []ChecklistItem{}
	}
	if items == nil {
		items = []ChecklistItem{}
	}
	return items
}

// ParseChecklistRaw — то же самое для сырого JSON из ответа сервера
func ParseChecklistRaw(raw json.RawMessage) []ChecklistItem {
	if len(raw) == 0 {
		return []ChecklistItem{}
	}
	return ParseChecklist(string(raw))
}
