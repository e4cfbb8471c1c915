package manager

import (
	"context"
	"strings"
	"sync"

	"task-manager/internal/logger"
	"task-manager/internal/models"
)

// ProfileStorage — часть хранилища, нужная профилю
type ProfileStorage interface {
	GetProfile() (*models.Profile, error)
	SaveProfile(p models.Profile) error
}

// ProfileManager обслуживает единственный профиль пользователя
type ProfileManager struct {
	mu      sync.Mutex
	storage ProfileStorage
}

func NewProfileManager(storage ProfileStorage) *ProfileManager {
	return &ProfileManager{storage: storage}
}

// GetProfile возвращает профиль пользователя
func (pm *ProfileManager) GetProfile() (*models.Profile, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.storage.GetProfile()
}

// SaveProfile сохраняет профиль. Поля не валидируются, кроме тримминга —
// профиль заполняется как есть.
func (pm *ProfileManager) SaveProfile(p models.Profile) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)

	if err := pm.storage.SaveProfile(p); err != nil {
		return err
	}
	logger.Info(context.Background(), "Профиль сохранён", "name", p.Name, "email", p.Email)
	return nil
}
