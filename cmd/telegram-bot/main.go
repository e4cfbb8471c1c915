package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"task-manager/internal/config"
	"task-manager/internal/logger"
	"task-manager/internal/manager"
	"task-manager/internal/models"
	"task-manager/internal/stage"
	"task-manager/internal/storage"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	storage storage.Storage
}

func NewBot(token string, st storage.Storage) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %v", err)
	}

	log.Printf("Авторизован как %s", bot.Self.UserName)

	return &Bot{
		api:     bot,
		storage: st,
	}, nil
}

func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		log.Fatalf("Ошибка получения updates: %v", err)
	}

	log.Println("Бот запущен и слушает сообщения...")

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx := context.Background()

	logger.Info(ctx, "Получено сообщение",
		"user", msg.From.UserName,
		"text", msg.Text,
	)

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// Обычный текст превращаем в задачу
	if strings.TrimSpace(msg.Text) != "" {
		b.addTaskFromText(msg.Chat.ID, msg.Text)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendWelcomeMessage(msg.Chat.ID)
	case "add":
		b.addTask(msg)
	case "list":
		b.listTasks(msg.Chat.ID)
	case "done":
		b.completeTask(msg)
	case "delete":
		b.deleteTask(msg)
	case "help":
		b.sendHelp(msg.Chat.ID)
	default:
		b.sendMessage(msg.Chat.ID, "Неизвестная команда. Используйте /help для списка команд.")
	}
}

func (b *Bot) sendWelcomeMessage(chatID int64) {
	text := `🎯 *Добро пожаловать в Task Manager!*

*Доступные команды:*
/add [задача] - Добавить задачу
/list - Показать задачи по колонкам
/done [ID] - Переключить выполнение задачи
/delete [ID] - Удалить задачу
/help - Помощь

*Примеры:*
/add Купить молоко @2024-01-10
/done 1`

	b.sendMessage(chatID, text)
}

func (b *Bot) addTask(msg *tgbotapi.Message) {
	args := msg.CommandArguments()
	if args == "" {
		b.sendMessage(msg.Chat.ID, "Укажите задачу после команды: /add Купить молоко")
		return
	}

	b.addTaskFromText(msg.Chat.ID, args)
}

func (b *Bot) addTaskFromText(chatID int64, text string) {
	// Срок можно указать в тексте через @YYYY-MM-DD
	var due *string
	title := text

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "@") {
			d := strings.TrimPrefix(word, "@")
			if _, err := time.Parse("2006-01-02", d); err == nil {
				due = &d
				title = strings.TrimSpace(strings.ReplaceAll(title, word, ""))
			}
			break
		}
	}

	if strings.TrimSpace(title) == "" {
		b.sendMessage(chatID, "❌ Ошибка: "+manager.ErrEmptyTitle.Error())
		return
	}

	id, err := b.storage.CreateTask(models.CreateTaskRequest{
		Title:     strings.TrimSpace(title),
		Priority:  models.PriorityMedium,
		Due:       due,
		Checklist: []models.ChecklistItem{},
	})
	if err != nil {
		b.sendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	response := fmt.Sprintf("✅ *Задача добавлена!*\n\nID: #%s\nЗадача: %s", id, strings.TrimSpace(title))
	if due != nil {
		response += fmt.Sprintf("\nСрок: %s", *due)
	}

	b.sendMessage(chatID, response)
}

func (b *Bot) listTasks(chatID int64) {
	tasks, err := b.storage.GetAllTasks()
	if err != nil {
		b.sendMessage(chatID, "❌ Ошибка: "+err.Error())
		return
	}

	if len(tasks) == 0 {
		b.sendMessage(chatID, "📭 Список задач пуст")
		return
	}

	// Группируем по колонкам, как на доске
	grouped := stage.Group(tasks, time.Now(), true)

	var response strings.Builder
	response.WriteString("📋 *Ваши задачи:*\n\n")

	for _, col := range stage.Columns(true) {
		if len(grouped[col]) == 0 {
			continue
		}
		response.WriteString(fmt.Sprintf("*%s*\n", col.DisplayName()))

		for _, task := range grouped[col] {
			status := "🟢"
			if task.Completed {
				status = "✅"
			}

			priorityEmoji := "⚪"
			switch task.Priority {
			case models.PriorityLow:
				priorityEmoji = "🔵"
			case models.PriorityMedium:
				priorityEmoji = "🟡"
			case models.PriorityHigh:
				priorityEmoji = "🔴"
			}

			response.WriteString(fmt.Sprintf("%s%s #%s: %s", status, priorityEmoji, task.ID, task.Title))
			if len(task.Checklist) > 0 {
				done := 0
				for _, item := range task.Checklist {
					if item.Completed {
						done++
					}
				}
				response.WriteString(fmt.Sprintf(" (%d/%d)", done, len(task.Checklist)))
			}
			response.WriteString("\n")
		}
		response.WriteString("\n")
	}

	b.sendMessage(chatID, response.String())
}

func (b *Bot) completeTask(msg *tgbotapi.Message) {
	args := msg.CommandArguments()
	if args == "" {
		b.sendMessage(msg.Chat.ID, "Укажите ID задачи: /done 1")
		return
	}

	id := strings.TrimSpace(args)
	task, err := b.storage.GetTask(id)
	if err != nil {
		b.sendMessage(msg.Chat.ID, "❌ Ошибка: "+err.Error())
		return
	}

	// Тот же чеклист-гейт, что и в приложении
	if !task.Completed && !manager.ChecklistComplete(*task) {
		b.sendMessage(msg.Chat.ID, manager.WarningIncompleteChecklist)
		return
	}

	err = b.storage.UpdateTask(id, models.UpdateTaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Completed:   !task.Completed,
		Due:         task.Due,
		Priority:    task.Priority,
		Checklist:   task.Checklist,
	})
	if err != nil {
		b.sendMessage(msg.Chat.ID, "❌ Ошибка: "+err.Error())
		return
	}

	if task.Completed {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("↩️ Задача #%s снова в работе", id))
	} else {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Задача #%s отмечена выполненной!", id))
	}
}

func (b *Bot) deleteTask(msg *tgbotapi.Message) {
	args := msg.CommandArguments()
	if args == "" {
		b.sendMessage(msg.Chat.ID, "Укажите ID задачи: /delete 1")
		return
	}

	id := strings.TrimSpace(args)
	if err := b.storage.DeleteTask(id); err != nil {
		b.sendMessage(msg.Chat.ID, "❌ Ошибка: "+err.Error())
		return
	}

	b.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑️ Задача #%s удалена!", id))
}

func (b *Bot) sendHelp(chatID int64) {
	helpText := `🤖 *Помощь по командам*

*/start* - Начать работу с ботом
*/add [задача]* - Добавить новую задачу (срок через @YYYY-MM-DD)
*/list* - Показать задачи по колонкам
*/done [ID]* - Переключить выполнение задачи
*/delete [ID]* - Удалить задачу
*/help* - Показать эту справку

*Примеры использования:*
/add Купить молоко @2024-01-10
/done 1
/list`

	b.sendMessage(chatID, helpText)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	_, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Ошибка отправки сообщения: %v", err)
	}
}

func main() {
	ctx := context.Background()
	logger.SetLevel(logger.LevelInfo)
	logger.Info(ctx, "Запуск Telegram-бота...")

	cfg, err := config.Load("config.toml")
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфига")
		return
	}

	token := cfg.TelegramToken
	if env := os.Getenv("TELEGRAM_BOT_TOKEN"); env != "" {
		token = env
	}
	if token == "" {
		logger.Error(ctx, nil, "Не задан токен бота (telegram_token в config.toml или TELEGRAM_BOT_TOKEN)")
		return
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error(ctx, err, "Ошибка создания директории для БД")
		return
	}

	dbStorage, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		logger.Error(ctx, err, "Ошибка инициализации SQLite хранилища")
		return
	}
	defer dbStorage.Close()

	logger.Info(ctx, "SQLite хранилище успешно инициализировано")

	bot, err := NewBot(token, dbStorage)
	if err != nil {
		logger.Error(ctx, err, "Ошибка создания бота")
		return
	}

	logger.Info(ctx, "Бот успешно инициализирован")
	bot.Start()
}
