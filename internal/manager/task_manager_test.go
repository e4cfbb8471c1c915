package manager

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"task-manager/internal/models"
	"task-manager/internal/notify"
	"task-manager/internal/stage"
)

func newTestManager() (*TaskManager, *notify.Notifier) {
	n := notify.NewWithTiming(80*time.Millisecond, 20*time.Millisecond)
	return NewTaskManager(n), n
}

func TestAddTask(t *testing.T) {
	tm, _ := newTestManager()

	task, err := tm.AddTask("Купить молоко", "", nil, models.PriorityLow, nil)
	if err != nil {
		t.Fatalf("Ошибка при добавлении задачи: %v", err)
	}

	if task.ID == "" {
		t.Error("Задача должна получить временный ID")
	}
	if task.SyncStatus != models.SyncPending {
		t.Errorf("Новая задача должна быть pending, получено %s", task.SyncStatus)
	}
	if task.Checklist == nil {
		t.Error("Чеклист не должен быть nil")
	}

	if got := tm.List(Filter{ShowCompleted: true}); len(got) != 1 {
		t.Errorf("Ожидалась 1 задача, получено %d", len(got))
	}
}

func TestAddEmptyTask(t *testing.T) {
	tm, _ := newTestManager()

	if _, err := tm.AddTask("   ", "", nil, "", nil); err != ErrEmptyTitle {
		t.Errorf("Ожидалась ошибка пустого названия, получено %v", err)
	}
}

func TestNewestFirst(t *testing.T) {
	tm, _ := newTestManager()

	tm.AddTask("первая", "", nil, "", nil)
	tm.AddTask("вторая", "", nil, "", nil)

	tasks := tm.List(Filter{ShowCompleted: true})
	if len(tasks) != 2 {
		t.Fatalf("Ожидалось 2 задачи, получено %d", len(tasks))
	}
	if tasks[0].Title != "вторая" || tasks[1].Title != "первая" {
		t.Errorf("Новая задача должна быть первой: %s, %s", tasks[0].Title, tasks[1].Title)
	}
}

func TestListFilter(t *testing.T) {
	tm, _ := newTestManager()

	tm.AddTask("Купить молоко", "", nil, "", nil)
	tm.AddTask("Сдать отчет", "", nil, "", nil)
	done, _ := tm.AddTask("Погулять", "", nil, "", nil)
	tm.ToggleComplete(done.ID)

	t.Run("поиск без учета регистра", func(t *testing.T) {
		got := tm.List(Filter{Query: "МОЛОКО"})
		if len(got) != 1 || got[0].Title != "Купить молоко" {
			t.Errorf("Неверный результат поиска: %+v", got)
		}
	})

	t.Run("выполненные скрыты по умолчанию", func(t *testing.T) {
		for _, task := range tm.List(Filter{}) {
			if task.Completed {
				t.Errorf("Выполненная задача в выдаче: %s", task.Title)
			}
		}
	})

	t.Run("выполненные видны по запросу", func(t *testing.T) {
		if got := tm.List(Filter{ShowCompleted: true}); len(got) != 3 {
			t.Errorf("Ожидалось 3 задачи, получено %d", len(got))
		}
	})

	t.Run("повторный вызов дает тот же результат", func(t *testing.T) {
		first := tm.List(Filter{Query: "", ShowCompleted: true})
		second := tm.List(Filter{Query: "", ShowCompleted: true})
		if len(first) != len(second) {
			t.Fatalf("Разная длина: %d и %d", len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Errorf("Разный порядок на позиции %d", i)
			}
		}
	})
}

func TestToggleCompleteRejected(t *testing.T) {
	tm, n := newTestManager()

	task, _ := tm.AddTask("С чеклистом", "", nil, "", []models.ChecklistItem{
		{ID: "c1", Title: "step1", Completed: false},
	})

	_, err := tm.ToggleComplete(task.ID)
	if err != ErrChecklistIncomplete {
		t.Fatalf("Ожидался отказ по чеклисту, получено %v", err)
	}

	// Задача не изменилась
	got, _ := tm.Get(task.ID)
	if got.Completed {
		t.Error("Задача не должна завершиться при незавершённом чеклисте")
	}

	// Предупреждение активно
	if !n.Active() {
		t.Error("После отказа должно появиться предупреждение")
	}
	if n.Message() != WarningIncompleteChecklist {
		t.Errorf("Неверный текст предупреждения: %q", n.Message())
	}
}

func TestToggleCompleteEmptyChecklist(t *testing.T) {
	tm, _ := newTestManager()

	task, _ := tm.AddTask("Без чеклиста", "", nil, "", nil)
	got, err := tm.ToggleComplete(task.ID)
	if err != nil {
		t.Fatalf("Пустой чеклист не должен блокировать завершение: %v", err)
	}
	if !got.Completed {
		t.Error("Задача должна стать выполненной")
	}
}

func TestToggleCompleteAllItemsDone(t *testing.T) {
	tm, _ := newTestManager()

	task, _ := tm.AddTask("Готовый чеклист", "", nil, "", []models.ChecklistItem{
		{ID: "c1", Title: "a", Completed: true},
		{ID: "c2", Title: "b", Completed: true},
	})

	got, err := tm.ToggleComplete(task.ID)
	if err != nil {
		t.Fatalf("Полный чеклист не должен блокировать завершение: %v", err)
	}
	if !got.Completed {
		t.Error("Задача должна стать выполненной")
	}
}

func TestUncompleteHasNoGate(t *testing.T) {
	tm, _ := newTestManager()

	task, _ := tm.AddTask("Завершённая", "", nil, "", nil)
	tm.ToggleComplete(task.ID)

	// Добавляем незавершённый пункт в уже выполненную задачу
	tm.AddChecklistItem(task.ID, "новый пункт")

	// Снятие отметки проходит без проверок
	got, err := tm.ToggleComplete(task.ID)
	if err != nil {
		t.Fatalf("Снятие отметки не должно блокироваться: %v", err)
	}
	if got.Completed {
		t.Error("Задача должна стать невыполненной")
	}
}

func TestToggleChecklistItemUnconditional(t *testing.T) {
	tm, _ := newTestManager()

	task, _ := tm.AddTask("Задача", "", nil, "", []models.ChecklistItem{
		{ID: "c1", Title: "a", Completed: true},
	})
	tm.ToggleComplete(task.ID)

	// Пункт снимается свободно, а родительская задача остаётся выполненной.
	// Гейт проверяется только в момент ToggleComplete.
	got, err := tm.ToggleChecklistItem(task.ID, "c1")
	if err != nil {
		t.Fatalf("Переключение пункта не должно блокироваться: %v", err)
	}
	if got.Checklist[0].Completed {
		t.Error("Пункт должен сняться")
	}
	if !got.Completed {
		t.Error("Родительская задача не должна терять отметку выполнения")
	}
}

func TestRekey(t *testing.T) {
	tm, _ := newTestManager()

	task, _ := tm.AddTask("Локальная", "", nil, "", nil)
	if err := tm.Rekey(task.ID, "42"); err != nil {
		t.Fatalf("Rekey: %v", err)
	}

	if _, err := tm.Get(task.ID); err == nil {
		t.Error("Старый ID не должен находиться")
	}
	got, err := tm.Get("42")
	if err != nil {
		t.Fatalf("Задача должна находиться по новому ID: %v", err)
	}
	if got.Title != "Локальная" {
		t.Errorf("Неверная задача: %+v", got)
	}
}

func TestUpdateTaskFullReplace(t *testing.T) {
	tm, _ := newTestManager()

	task, _ := tm.AddTask("Старое название", "старое описание", nil, models.PriorityLow, []models.ChecklistItem{
		{ID: "c1", Title: "a", Completed: false},
	})

	due := "2024-03-01"
	got, err := tm.UpdateTask(task.ID, models.UpdateTaskRequest{
		Title:       "Новое название",
		Description: "новое описание",
		Due:         &due,
		Priority:    models.PriorityHigh,
		Checklist:   []models.ChecklistItem{{ID: "c2", Title: "b", Completed: true}},
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if got.Title != "Новое название" || got.Description != "новое описание" {
		t.Errorf("Поля не заменились: %+v", got)
	}
	if got.Due == nil || *got.Due != due {
		t.Errorf("Срок не заменился: %v", got.Due)
	}
	if len(got.Checklist) != 1 || got.Checklist[0].ID != "c2" {
		t.Errorf("Чеклист не заменился: %+v", got.Checklist)
	}

	if _, err := tm.UpdateTask(task.ID, models.UpdateTaskRequest{Title: ""}); err != ErrEmptyTitle {
		t.Errorf("Пустое название должно отклоняться, получено %v", err)
	}
}

func TestAddTaskMetrics(t *testing.T) {
	// Сохраняем оригинальные метрики
	originalAddTaskCount := addTaskCount
	originalToggleCount := toggleCompleteCount

	// Создаем новый регистр для тестов
	registry := prometheus.NewRegistry()

	testAddTaskCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmanager_tasks_added_total",
			Help: "Test counter",
		},
		[]string{"status"},
	)
	testToggleCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmanager_toggle_complete_total",
			Help: "Test counter",
		},
		[]string{"status"},
	)

	registry.MustRegister(testAddTaskCount)
	registry.MustRegister(testToggleCount)

	// Подменяем глобальные метрики
	addTaskCount = testAddTaskCount
	toggleCompleteCount = testToggleCount
	defer func() {
		addTaskCount = originalAddTaskCount
		toggleCompleteCount = originalToggleCount
	}()

	tm, _ := newTestManager()

	task, err := tm.AddTask("Valid task", "", nil, "", []models.ChecklistItem{
		{ID: "c1", Title: "step", Completed: false},
	})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if successCount := testutil.ToFloat64(testAddTaskCount.WithLabelValues("success")); successCount != 1 {
		t.Errorf("Expected 1 success, got %v", successCount)
	}

	_, err = tm.AddTask("", "", nil, "", nil)
	if err == nil {
		t.Error("Expected error for empty title")
	}
	if errCount := testutil.ToFloat64(testAddTaskCount.WithLabelValues("error")); errCount != 1 {
		t.Errorf("Expected 1 error, got %v", errCount)
	}

	tm.ToggleComplete(task.ID)
	if rejected := testutil.ToFloat64(testToggleCount.WithLabelValues("rejected")); rejected != 1 {
		t.Errorf("Expected 1 rejected toggle, got %v", rejected)
	}
}

func TestEndToEndBuyMilk(t *testing.T) {
	tm, _ := newTestManager()

	due := "2024-01-10"
	task, err := tm.AddTask("Buy milk", "", &due, models.PriorityLow, []models.ChecklistItem{})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	now, _ := time.Parse("2006-01-02", "2024-01-10")

	// Задача видна в колонке "Сегодня"
	grouped := stage.Group(tm.List(Filter{}), now, false)
	if len(grouped[stage.Today]) != 1 || grouped[stage.Today][0].Title != "Buy milk" {
		t.Fatalf("Задача должна попасть в Сегодня: %+v", grouped)
	}

	// Отмечаем выполненной — пустой чеклист не мешает
	if _, err := tm.ToggleComplete(task.ID); err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}

	// Без showCompleted задача исчезает из всех колонок
	if got := tm.List(Filter{}); len(got) != 0 {
		t.Errorf("Выполненная задача не должна быть видна: %+v", got)
	}

	// С showCompleted — возвращается в колонке Выполнено
	grouped = stage.Group(tm.List(Filter{ShowCompleted: true}), now, true)
	if len(grouped[stage.Done]) != 1 {
		t.Errorf("Задача должна попасть в Выполнено: %+v", grouped)
	}
}

func TestChecklistComplete(t *testing.T) {
	if !ChecklistComplete(models.Task{}) {
		t.Error("Пустой чеклист считается завершённым")
	}
	if ChecklistComplete(models.Task{Checklist: []models.ChecklistItem{{Completed: false}}}) {
		t.Error("Незавершённый пункт должен блокировать")
	}
	if !ChecklistComplete(models.Task{Checklist: []models.ChecklistItem{{Completed: true}, {Completed: true}}}) {
		t.Error("Все пункты завершены — чеклист завершён")
	}
}
