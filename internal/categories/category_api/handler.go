package category_api

import (
	"fmt"
	"net/http"

	categories "charity-events/internal/categories/service"
	"charity-events/internal/logger"
	"charity-events/internal/models"
	"charity-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CategoryService *categories.CategoryService
	Logger          *logger.Logger
}

func NewHandler(svc *categories.CategoryService, log *logger.Logger) *Handler {
	return &Handler{CategoryService: svc, Logger: log}
}

// RegisterRoutes mounts the category routes on r. Mutations go through admin.
func (h *Handler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	withCounts := r.URL.Query().Get("with_counts") == "true"
	list, err := h.CategoryService.List(r.Context(), withCounts)
	if err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d categories found", len(list)), list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	category, err := h.CategoryService.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Category retrieved", category)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	id, err := h.CategoryService.Create(r.Context(), in)
	if err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Category created", map[string]int64{"id": id})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	var in models.CategoryInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	if err := h.CategoryService.Update(r.Context(), id, in); err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Category updated", map[string]int64{"id": id})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	if err := h.CategoryService.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, h.Logger, "CATEGORY", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Category deleted", nil)
}
