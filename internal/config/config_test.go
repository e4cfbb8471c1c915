package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "нет-такого.toml"))
	if err != nil {
		t.Fatalf("Отсутствующий файл не должен давать ошибку: %v", err)
	}
	if cfg.ServerAddr != ":3000" || cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("Неверные значения по умолчанию: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
server_addr = ":8080"
db_path = "/tmp/tasks.db"
base_url = "http://example.com:8080"
show_completed = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerAddr != ":8080" || cfg.DBPath != "/tmp/tasks.db" ||
		cfg.BaseURL != "http://example.com:8080" || !cfg.ShowCompleted {
		t.Errorf("Конфиг прочитан неверно: %+v", cfg)
	}
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("это не toml ["), 0644)

	if _, err := Load(path); err == nil {
		t.Error("Битый конфиг должен давать ошибку")
	}
}
