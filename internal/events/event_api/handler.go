package event_api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	events "charity-events/internal/events/service"
	"charity-events/internal/listing"
	"charity-events/internal/logger"
	"charity-events/internal/models"
	"charity-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
	PageSize     int
}

func NewHandler(svc *events.EventService, log *logger.Logger, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = listing.DefaultPageSize
	}
	return &Handler{EventService: svc, Logger: log, PageSize: pageSize}
}

// RegisterRoutes mounts the event routes on r. Mutations go through admin.
func (h *Handler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/browse", h.Browse)
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
	list, err := h.EventService.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d events found", len(list)), list)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.EventService.Search(r.Context(), events.SearchParams{
		Name:     q.Get("name"),
		Date:     q.Get("date"),
		Location: q.Get("location"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
	})
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d events found", len(list)), list)
}

// Browse serves one filtered page of the event list.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	criteria, page, size, err := h.browseParams(r)
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}

	all, err := h.EventService.List(r.Context(), "")
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}

	view := listing.NewState(all, size).
		WithCriteria(criteria).
		WithPage(page).
		View()
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("page %d of %d", view.Page, view.TotalPages), view)
}

func (h *Handler) browseParams(r *http.Request) (listing.Criteria, int, int, error) {
	q := r.URL.Query()
	c := listing.Criteria{Keyword: strings.TrimSpace(q.Get("keyword"))}

	if raw := q.Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, 0, 0, fmt.Errorf("%w: invalid category %q", models.ErrValidation, raw)
		}
		c.CategoryID = id
	}
	if raw := q.Get("status"); raw != "" {
		st, ok := models.ParseEventStatus(raw)
		if !ok {
			return c, 0, 0, fmt.Errorf("%w: invalid status %q", models.ErrValidation, raw)
		}
		c.Status = st
	}
	if raw := q.Get("date"); raw != "" {
		day, err := utils.ParseDay(raw)
		if err != nil {
			return c, 0, 0, err
		}
		c.Date = &day
	}

	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		return c, 0, 0, err
	}
	size, err := intParam(q.Get("page_size"), h.PageSize)
	if err != nil {
		return c, 0, 0, err
	}
	return c, page, size, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number %q", models.ErrValidation, raw)
	}
	return v, nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	event, err := h.EventService.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event retrieved", event)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	id, err := h.EventService.Create(r.Context(), in)
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Event created", map[string]int64{"id": id})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	var in models.EventInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	if err := h.EventService.Update(r.Context(), id, in); err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event updated", map[string]int64{"id": id})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	if err := h.EventService.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, h.Logger, "EVENT", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event deleted", nil)
}
