package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Уровни логирования
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var currentLevel = LevelInfo

func SetLevel(l Level) {
	currentLevel = l
}

// Debug логирует отладочные сообщения (видны только при LevelDebug)
func Debug(ctx context.Context, msg string, fields ...interface{}) {
	if currentLevel > LevelDebug {
		return
	}
	log.Printf("[DEBUG] %s%s", msg, formatFields(fields))
}

// Info логирует информационные сообщения с полями key-value
func Info(ctx context.Context, msg string, fields ...interface{}) {
	if currentLevel > LevelInfo {
		return
	}
	log.Printf("[INFO] %s%s", msg, formatFields(fields))
}

// Error логирует ошибку; err может быть nil
func Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	if err != nil {
		log.Printf("[ERROR] %s: %v%s", msg, err, formatFields(fields))
		return
	}
	log.Printf("[ERROR] %s%s", msg, formatFields(fields))
}

// formatFields собирает пары key-value в строку " | k=v k=v"
func formatFields(fields []interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(" |")
	for i := 0; i < len(fields); i += 2 {
		key := fields[i]
		if i+1 < len(fields) {
			sb.WriteString(fmt.Sprintf(" %v=%v", key, fields[i+1]))
		} else {
			sb.WriteString(fmt.Sprintf(" %v", key))
		}
	}
	return sb.String()
}
