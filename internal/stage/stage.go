package stage

import (
	"time"

	"task-manager/internal/models"
)

// Stage — колонка доски, в которую попадает задача
type Stage string

const (
	Overdue   Stage = "overdue"
	Today     Stage = "today"
	Week1     Stage = "week1"
	Week2     Stage = "week2"
	Week3     Stage = "week3"
	NoDueDate Stage = "no_due_date"
	Done      Stage = "done"
)

const dueLayout = "2006-01-02"

// DisplayName возвращает заголовок колонки для отображения
func (s Stage) DisplayName() string {
	switch s {
	case Overdue:
		return "Просрочено"
	case Today:
		return "Сегодня"
	case Week1:
		return "1 неделя"
	case Week2:
		return "2 недели"
	case Week3:
		return "3 недели"
	case NoDueDate:
		return "Без срока"
	case Done:
		return "Выполнено"
	}
	return string(s)
}

// Columns возвращает колонки в фиксированном порядке отображения.
// Колонка "Выполнено" добавляется только при showCompleted.
func Columns(showCompleted bool) []Stage {
	cols := []Stage{Overdue, Today, Week1, Week2, Week3, NoDueDate}
	if showCompleted {
		cols = append(cols, Done)
	}
	return cols
}

// ForTask определяет стадию задачи относительно момента now.
// Чистая функция: зависит только от completed, due и календарной даты now.
func ForTask(t models.Task, now time.Time) Stage {
	if t.Completed {
		return Done
	}
	if t.Due == nil || *t.Due == "" {
		return NoDueDate
	}

	due, err := time.Parse(dueLayout, *t.Due)
	if err != nil {
		// Нечитаемую дату считаем отсутствующей
		return NoDueDate
	}

	// Сравниваем только календарные дни, время суток игнорируем
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if due.Equal(today) {
		return Today
	}

	diffDays := int(due.Sub(today).Hours() / 24)
	switch {
	case diffDays < 0:
		return Overdue
	case diffDays <= 7:
		return Week1
	case diffDays <= 14:
		return Week2
	default:
		// 15-21 день и всё что дальше — одна общая "далёкая" колонка
		return Week3
	}
}

// Group раскладывает задачи по колонкам. Момент now берется один раз
// на весь проход, чтобы все задачи сравнивались с одним и тем же "сейчас".
func Group(tasks []models.Task, now time.Time, showCompleted bool) map[Stage][]models.Task {
	cols := Columns(showCompleted)
	grouped := make(map[Stage][]models.Task, len(cols))
	for _, c := range cols {
		grouped[c] = []models.Task{}
	}

	for _, t := range tasks {
		s := ForTask(t, now)
		if _, ok := grouped[s]; !ok {
			continue // выполненные задачи при скрытой колонке Done
		}
		grouped[s] = append(grouped[s], t)
	}
	return grouped
}
