package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/config"
	"github.com/confops/conference-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProceedingsHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewProceedingsHandler(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler) *ProceedingsHandler {
	return &ProceedingsHandler{db: db, cfg: cfg, authHandler: authHandler}
}

type ListProceedingsResponse struct {
	Body struct {
		Proceedings []models.Proceeding `json:"proceedings"`
	}
}

func (h *ProceedingsHandler) HandleList(ctx context.Context, input *struct{}) (*ListProceedingsResponse, error) {
	var proceedings []models.Proceeding
	if err := h.db.Order("id").Find(&proceedings).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list proceedings")
	}

	res := &ListProceedingsResponse{}
	res.Body.Proceedings = proceedings
	return res, nil
}

// HandleUpload accepts a multipart file from organizer tooling. Plain
// chi handler behind the auth middleware; huma operations are
// JSON-only.
func (h *ProceedingsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(auth.ParticipantIDKey).(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !h.authHandler.IsOrganizer(callerID) {
		http.Error(w, "Organizer access required", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		log.Printf("Failed to create upload dir: %v", err)
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	storedName := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(h.cfg.UploadDir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		log.Printf("Failed to create upload file: %v", err)
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("Failed to write upload file: %v", err)
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	proceeding := models.Proceeding{
		Title:    title,
		FileName: header.Filename,
		Path:     path,
	}
	if err := h.db.Create(&proceeding).Error; err != nil {
		log.Printf("Failed to record proceeding: %v", err)
		http.Error(w, "Failed to record proceeding", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(proceeding)
}

func (h *ProceedingsHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid proceeding ID", http.StatusBadRequest)
		return
	}

	var proceeding models.Proceeding
	if err := h.db.First(&proceeding, uint(id)).Error; err != nil {
		http.Error(w, "Proceeding not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, proceeding.Path)
}
