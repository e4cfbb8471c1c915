package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/manager"
	"task-manager/internal/models"
	"task-manager/internal/notify"
	"task-manager/internal/stage"
	taskssync "task-manager/internal/sync"
)

type app struct {
	tm       *manager.TaskManager
	client   *taskssync.Client
	notifier *notify.Notifier
	cfg      config.Config
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if url := os.Getenv("TASKS_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}

	notifier := notify.New()
	tm := manager.NewTaskManager(notifier)
	a := &app{
		tm:       tm,
		client:   taskssync.NewClient(cfg.BaseURL, tm),
		notifier: notifier,
		cfg:      cfg,
	}

	ctx := context.Background()
	if err := a.client.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tasks from server: %v\n", err)
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "board":
		a.handleBoardCommand()
	case "add":
		a.handleAddCommand(ctx)
	case "list":
		a.handleListCommand()
	case "edit":
		a.handleEditCommand(ctx)
	case "complete":
		a.handleCompleteCommand(ctx)
	case "check":
		a.handleCheckCommand(ctx)
	case "delete":
		a.handleDeleteCommand(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printHelp()
		os.Exit(1)
	}
}

// board — колонки как на доске в мобильном приложении
func (a *app) handleBoardCommand() {
	boardCmd := flag.NewFlagSet("board", flag.ExitOnError)
	query := boardCmd.String("query", "", "Filter tasks by title")
	all := boardCmd.Bool("all", false, "Show completed tasks")
	boardCmd.Parse(os.Args[2:])

	showCompleted := *all || a.cfg.ShowCompleted
	tasks := a.tm.List(manager.Filter{Query: *query, ShowCompleted: showCompleted})

	// Момент "сейчас" берем один раз на весь вывод
	now := time.Now()
	grouped := stage.Group(tasks, now, showCompleted)

	for _, col := range stage.Columns(showCompleted) {
		fmt.Printf("== %s ==\n", col.DisplayName())
		for _, task := range grouped[col] {
			printTask(task)
		}
		fmt.Println()
	}
}

func (a *app) handleAddCommand(ctx context.Context) {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	title := addCmd.String("title", "", "Task title")
	desc := addCmd.String("desc", "", "Task description")
	due := addCmd.String("due", "", "Due date (YYYY-MM-DD)")
	priority := addCmd.String("priority", "medium", "Priority (low|medium|high)")
	check := addCmd.String("check", "", "Comma-separated checklist items")
	addCmd.Parse(os.Args[2:])

	if *title == "" {
		fmt.Fprintln(os.Stderr, "Error: --title is required")
		os.Exit(1)
	}

	var duePtr *string
	if *due != "" {
		duePtr = due
	}

	var checklist []models.ChecklistItem
	if *check != "" {
		for i, item := range strings.Split(*check, ",") {
			checklist = append(checklist, models.ChecklistItem{
				ID:    fmt.Sprintf("item-%d", i+1),
				Title: strings.TrimSpace(item),
			})
		}
	}

	task, err := a.tm.AddTask(*title, *desc, duePtr, models.Priority(*priority), checklist)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding task: %v\n", err)
		os.Exit(1)
	}

	// Задача уже видна локально; сервер догоняет и выдает постоянный ID
	if err := a.client.CreateTask(ctx, task); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: task kept locally, server sync failed: %v\n", err)
		return
	}

	saved := a.tm.List(manager.Filter{ShowCompleted: true})
	fmt.Printf("Added task %q (id %s)\n", task.Title, saved[0].ID)
}

func (a *app) handleListCommand() {
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	query := listCmd.String("query", "", "Filter tasks by title")
	all := listCmd.Bool("all", false, "Show completed tasks")
	listCmd.Parse(os.Args[2:])

	tasks := a.tm.List(manager.Filter{Query: *query, ShowCompleted: *all})
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return
	}
	for _, task := range tasks {
		printTask(task)
	}
}

func (a *app) handleEditCommand(ctx context.Context) {
	editCmd := flag.NewFlagSet("edit", flag.ExitOnError)
	id := editCmd.String("id", "", "Task ID")
	title := editCmd.String("title", "", "New title")
	desc := editCmd.String("desc", "", "New description")
	due := editCmd.String("due", "", "New due date (YYYY-MM-DD, empty clears)")
	priority := editCmd.String("priority", "", "New priority")
	editCmd.Parse(os.Args[2:])

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	current, err := a.tm.Get(*id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	req := models.UpdateTaskRequest{
		Title:       current.Title,
		Description: current.Description,
		Completed:   current.Completed,
		Due:         current.Due,
		Priority:    current.Priority,
		Checklist:   current.Checklist,
	}
	if *title != "" {
		req.Title = *title
	}
	if *desc != "" {
		req.Description = *desc
	}
	if *due != "" {
		req.Due = due
	}
	if *priority != "" {
		req.Priority = models.Priority(*priority)
	}

	task, err := a.tm.UpdateTask(*id, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating task: %v\n", err)
		os.Exit(1)
	}

	if err := a.client.UpdateTask(ctx, *task); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: local change kept, server sync failed: %v\n", err)
		return
	}
	fmt.Printf("Task %s updated\n", *id)
}

func (a *app) handleCompleteCommand(ctx context.Context) {
	completeCmd := flag.NewFlagSet("complete", flag.ExitOnError)
	id := completeCmd.String("id", "", "Task ID to toggle")
	completeCmd.Parse(os.Args[2:])

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	task, err := a.tm.ToggleComplete(*id)
	if err != nil {
		if err == manager.ErrChecklistIncomplete {
			// Гейт сработал — показываем то же предупреждение, что и приложение
			fmt.Println(a.notifier.Message())
			return
		}
		fmt.Fprintf(os.Stderr, "Error completing task: %v\n", err)
		os.Exit(1)
	}

	if err := a.client.UpdateTask(ctx, *task); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: local change kept, server sync failed: %v\n", err)
		return
	}

	if task.Completed {
		fmt.Printf("Task %s marked as completed\n", *id)
	} else {
		fmt.Printf("Task %s marked as pending\n", *id)
	}
}

func (a *app) handleCheckCommand(ctx context.Context) {
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	id := checkCmd.String("id", "", "Task ID")
	item := checkCmd.String("item", "", "Checklist item ID")
	add := checkCmd.String("add", "", "Add a new checklist item instead")
	checkCmd.Parse(os.Args[2:])

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	var task *models.Task
	var err error
	switch {
	case *add != "":
		task, err = a.tm.AddChecklistItem(*id, *add)
	case *item != "":
		task, err = a.tm.ToggleChecklistItem(*id, *item)
	default:
		fmt.Fprintln(os.Stderr, "Error: --item or --add is required")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := a.client.UpdateTask(ctx, *task); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: local change kept, server sync failed: %v\n", err)
		return
	}
	fmt.Printf("Task %s checklist updated\n", *id)
}

func (a *app) handleDeleteCommand(ctx context.Context) {
	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	id := deleteCmd.String("id", "", "Task ID to delete")
	deleteCmd.Parse(os.Args[2:])

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	// Локально удаляем сразу, сервер догоняет
	if err := a.tm.Remove(*id); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting task: %v\n", err)
		os.Exit(1)
	}
	if err := a.client.DeleteTask(ctx, *id); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: removed locally, server sync failed: %v\n", err)
		return
	}
	fmt.Printf("Task %s deleted\n", *id)
}

func printTask(task models.Task) {
	status := " "
	if task.Completed {
		status = "x"
	}

	line := fmt.Sprintf("[%s] %s: %s (%s)", status, task.ID, task.Title, task.Priority)
	if task.Due != nil {
		line += " due " + *task.Due
	}
	if task.SyncStatus == models.SyncFailed {
		line += " [sync failed]"
	}
	fmt.Println(line)

	for _, item := range task.Checklist {
		mark := "⬜"
		if item.Completed {
			mark = "✅"
		}
		fmt.Printf("    %s %s (%s)\n", mark, item.Title, item.ID)
	}
}

func printHelp() {
	fmt.Println(`Usage: task-manager <command> [flags]

Commands:
  board    [--query=...] [--all]                    Show tasks grouped by stage columns
  add      --title="..." [--desc=...] [--due=YYYY-MM-DD]
           [--priority=low|medium|high] [--check="a,b"]   Add new task
  list     [--query=...] [--all]                    List tasks
  edit     --id=ID [--title=...] [--desc=...] [--due=...] [--priority=...]
  complete --id=ID                                  Toggle task completion
  check    --id=ID --item=ITEM | --add="text"       Toggle or add checklist item
  delete   --id=ID                                  Delete task

Server:
  Tasks are synced with the backend from config.toml (base_url),
  or the TASKS_BASE_URL environment variable.`)
}
