package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"task-manager/internal/logger"
	"task-manager/internal/manager"
	"task-manager/internal/models"
	"task-manager/internal/storage"
)

func NewRouter(st storage.Storage) *chi.Mux {
	pm := manager.NewProfileManager(st)

	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/tasks", getTasksHandler(st))
	r.Post("/tasks", createTaskHandler(st))
	r.Put("/tasks/{id}", updateTaskHandler(st))
	r.Delete("/tasks/{id}", deleteTaskHandler(st))

	r.Get("/profile", getProfileHandler(pm))
	r.Post("/profile", saveProfileHandler(pm))

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Логируем каждый входящий запрос
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.Context(), "Входящий запрос", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func getTasksHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := st.GetAllTasks()
		if err != nil {
			logger.Error(r.Context(), err, "Ошибка чтения задач")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func createTaskHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "неверное тело запроса")
			return
		}
		defer r.Body.Close()

		// Пустые названия отсекаем до записи в БД
		if strings.TrimSpace(req.Title) == "" {
			writeError(w, http.StatusBadRequest, "название задачи обязательно")
			return
		}

		id, err := st.CreateTask(req)
		if err != nil {
			logger.Error(r.Context(), err, "Ошибка создания задачи")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, models.CreateTaskResponse{Success: true, ID: id})
	}
}

func updateTaskHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.UpdateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "неверное тело запроса")
			return
		}
		defer r.Body.Close()

		if strings.TrimSpace(req.Title) == "" {
			writeError(w, http.StatusBadRequest, "название задачи обязательно")
			return
		}

		if err := st.UpdateTask(id, req); err != nil {
			logger.Error(r.Context(), err, "Ошибка обновления задачи", "taskID", id)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, models.UpdateTaskResponse{Success: true})
	}
}

func deleteTaskHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := st.DeleteTask(id); err != nil {
			logger.Error(r.Context(), err, "Ошибка удаления задачи", "taskID", id)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, models.UpdateTaskResponse{Success: true})
	}
}

func getProfileHandler(pm *manager.ProfileManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := pm.GetProfile()
		if err != nil {
			logger.Error(r.Context(), err, "Ошибка чтения профиля")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func saveProfileHandler(pm *manager.ProfileManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "неверное тело запроса")
			return
		}
		defer r.Body.Close()

		if err := pm.SaveProfile(p); err != nil {
			logger.Error(r.Context(), err, "Ошибка сохранения профиля")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, models.UpdateTaskResponse{Success: true})
	}
}
