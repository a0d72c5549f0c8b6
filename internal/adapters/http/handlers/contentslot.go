package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contentslots/internal/adapters/http/dto"
	"github.com/jsamuelsen/contentslots/internal/app"
)

// ContentSlotHandler handles content slot endpoints.
type ContentSlotHandler struct {
	service *app.ContentSlotService
}

// NewContentSlotHandler creates a new content slot handler.
func NewContentSlotHandler(service *app.ContentSlotService) *ContentSlotHandler {
	return &ContentSlotHandler{
		service: service,
	}
}

// Create handles POST /api/v1/contentslots
//
// @Summary Create a content slot
// @Tags contentslots
// @Accept json
// @Produce json
// @Param body body dto.ContentSlotRequest true "Slot"
// @Success 201 {object} dto.IDResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/contentslots [post]
func (h *ContentSlotHandler) Create(c *gin.Context) {
	var req dto.ContentSlotRequest
	if !bindRequest(c, &req) {
		return
	}

	id, err := h.service.Create(c.Request.Context(), req.ToDomain(0))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// Get handles GET /api/v1/contentslots/:id
//
// @Summary Get a content slot with its options
// @Tags contentslots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {object} dto.ContentSlotResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/contentslots/{id} [get]
func (h *ContentSlotHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	slot, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewContentSlotResponse(slot))
}

// Update handles PUT /api/v1/contentslots/:id
// A request that changes nothing answers 404, the same as a missing slot.
//
// @Summary Replace a content slot and its options
// @Tags contentslots
// @Accept json
// @Produce json
// @Param id path int true "Slot ID"
// @Param body body dto.ContentSlotRequest true "Slot"
// @Success 200 {object} dto.IDResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/contentslots/{id} [put]
func (h *ContentSlotHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ContentSlotRequest
	if !bindRequest(c, &req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), req.ToDomain(id))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.IDResponse{ID: updated})
}

// Delete handles DELETE /api/v1/contentslots/:id
//
// @Summary Delete a content slot
// @Tags contentslots
// @Param id path int true "Slot ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/contentslots/{id} [delete]
func (h *ContentSlotHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListByComponentType handles GET /api/v1/contentslots?componentType=
// Results are paged by slot id and carry no options.
//
// @Summary List slots rendering a component type
// @Tags contentslots
// @Produce json
// @Param componentType query string true "Component type"
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.PaginatedResponse[dto.ContentSlotResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/contentslots [get]
func (h *ContentSlotHandler) ListByComponentType(c *gin.Context) {
	var query dto.ComponentTypeQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		respondBindError(c, err)
		return
	}

	slots, err := h.service.ListByComponentType(c.Request.Context(), query.ComponentType)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	page, err := dto.PaginateSlots(slots, query.Cursor, query.GetLimit())
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "invalid cursor")
		return
	}

	c.JSON(http.StatusOK, page)
}

// ListByView handles GET /api/v1/views/:viewId/contentslots
//
// @Summary List the slots of a view with their options
// @Tags views
// @Produce json
// @Param viewId path int true "View ID"
// @Success 200 {object} dto.ContentSlotListResponse
// @Router /api/v1/views/{viewId}/contentslots [get]
func (h *ContentSlotHandler) ListByView(c *gin.Context) {
	viewID, ok := pathID(c, "viewId")
	if !ok {
		return
	}

	slots, err := h.service.ListByView(c.Request.Context(), viewID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ContentSlotListResponse{Items: dto.NewContentSlotResponses(slots)})
}

// ListByViews handles GET /api/v1/views?ids=1,2,3
//
// @Summary Load the slots of several views
// @Tags views
// @Produce json
// @Param ids query string true "Comma-separated view ids"
// @Success 200 {object} dto.ViewsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/views [get]
func (h *ContentSlotHandler) ListByViews(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		dto.RespondWithValidationErrors(c, map[string]string{"ids": err.Error()})
		return
	}

	byView, err := h.service.ListByViews(c.Request.Context(), ids)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewViewsResponse(byView))
}

// RegisterContentSlotRoutes registers the slot and view routes on rg.
// writeGuards run before every mutating route.
func (h *ContentSlotHandler) RegisterContentSlotRoutes(rg *gin.RouterGroup, writeGuards ...gin.HandlerFunc) {
	slots := rg.Group("/contentslots")
	slots.GET("", h.ListByComponentType)
	slots.GET("/:id", h.Get)

	writes := slots.Group("", writeGuards...)
	writes.POST("", h.Create)
	writes.PUT("/:id", h.Update)
	writes.DELETE("/:id", h.Delete)

	views := rg.Group("/views")
	views.GET("", h.ListByViews)
	views.GET("/:viewId/contentslots", h.ListByView)
}

func bindRequest(c *gin.Context, v any) bool {
	if err := dto.BindAndValidate(c, v); err != nil {
		respondBindError(c, err)
		return false
	}

	return true
}

func respondBindError(c *gin.Context, err error) {
	if errors.Is(err, dto.ErrBinding) {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "malformed request")
		return
	}

	dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		dto.RespondWithValidationErrors(c, map[string]string{name: "must be a positive integer"})
		return 0, false
	}

	return id, true
}

var errIDList = errors.New("must be a comma-separated list of positive integers")

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("this field is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, errIDList
		}

		ids = append(ids, id)
	}

	return ids, nil
}
