package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config — общие настройки клиента и сервера
type Config struct {
	// Сервер
	ServerAddr string `toml:"server_addr"`
	DBPath     string `toml:"db_path"`

	// Клиент
	BaseURL       string `toml:"base_url"`
	ShowCompleted bool   `toml:"show_completed"`

	// Telegram-бот
	TelegramToken string `toml:"telegram_token"`
}

func Default() Config {
	return Config{
		ServerAddr: ":3000",
		DBPath:     "./data/taskmanager.db",
		BaseURL:    "http://localhost:3000",
	}
}

// Load читает TOML-конфиг. Отсутствующий файл — не ошибка,
// возвращаются значения по умолчанию.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("ошибка чтения конфига %s: %v", path, err)
	}
	return cfg, nil
}
