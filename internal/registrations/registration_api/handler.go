package registration_api

import (
	"fmt"
	"net/http"
	"strconv"

	"charity-events/internal/logger"
	"charity-events/internal/models"
	registrations "charity-events/internal/registrations/service"
	"charity-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	RegistrationService *registrations.RegistrationService
	Logger              *logger.Logger
}

func NewHandler(svc *registrations.RegistrationService, log *logger.Logger) *Handler {
	return &Handler{RegistrationService: svc, Logger: log}
}

// RegisterRoutes mounts the registration routes. Listing and lookup by id go
// through admin; the pass needs the registered email.
func (h *Handler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/", h.Create)
	r.Post("/verify", h.Verify)
	r.Get("/{id}/pass", h.Pass)

	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.RegistrationInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	res, err := h.RegistrationService.Create(r.Context(), in)
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Registration successful", res)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := utils.QueryID(r, "event_id")
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	list, err := h.RegistrationService.List(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d registrations found", len(list)), list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	reg, err := h.RegistrationService.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Registration retrieved", reg)
}

// Pass serves the registration's QR pass as image/png.
//
//	GET /registrations/{id}/pass?email=ann@example.com
func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	png, err := h.RegistrationService.Pass(r.Context(), id, r.URL.Query().Get("email"))
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	if body.Token == "" {
		utils.WriteError(w, h.Logger, "REGISTER", fmt.Errorf("%w: token is required", models.ErrValidation))
		return
	}
	reg, err := h.RegistrationService.VerifyPass(r.Context(), body.Token)
	if err != nil {
		utils.WriteError(w, h.Logger, "REGISTER", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Pass is valid", reg)
}
