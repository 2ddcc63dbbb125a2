package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/models"
	"github.com/stockroom/backend/internal/services"
	"github.com/stockroom/backend/internal/validation"
)

type ItemHandler struct {
	items  services.ItemService
	logger *zap.Logger
}

func NewItemHandler(items services.ItemService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, logger: logger}
}

// ValidateID checks the {id} path parameter before any lookup.
func ValidateID() Stage {
	return Stage{Name: "validateId", Run: func(ex *Exchange) error {
		id, err := validation.ID(chi.URLParam(ex.Request, "id"))
		if err != nil {
			return err
		}
		ex.ID = id
		return nil
	}}
}

func ValidateCreate() Stage {
	return Stage{Name: "validateItem", Run: func(ex *Exchange) error {
		body, err := readBody(ex.Writer, ex.Request)
		if err != nil {
			return err
		}
		in, err := validation.Create(body)
		if err != nil {
			return err
		}
		ex.Create = in
		return nil
	}}
}

func ValidateUpdate() Stage {
	return Stage{Name: "validateItemUpdate", Run: func(ex *Exchange) error {
		body, err := readBody(ex.Writer, ex.Request)
		if err != nil {
			return err
		}
		in, err := validation.Update(body)
		if err != nil {
			return err
		}
		ex.Update = in
		return nil
	}}
}

// ListItems godoc
// @Summary      Get all items
// @Description  Retrieve a list of all items from the database, newest first
// @Tags         Items
// @Produce      json
// @Success      200  {array}   models.Item
// @Failure      401  {object}  models.APIResponse  "Session required when REQUIRE_AUTH is on"
// @Failure      500  {object}  models.APIResponse
// @Router       /api/items [get]
func (h *ItemHandler) ListItems(ex *Exchange) error {
	items, err := h.items.List(ex.Request.Context())
	if err != nil {
		return err
	}
	writeJSON(ex.Writer, http.StatusOK, items)
	return nil
}

// CreateItem godoc
// @Summary      Create a new item
// @Tags         Items
// @Accept       json
// @Produce      json
// @Param        item  body      models.CreateItemInput  true  "Item to create"
// @Success      201   {object}  models.Item
// @Failure      400   {object}  models.APIResponse  "Validation failed or duplicate name"
// @Failure      401   {object}  models.APIResponse
// @Router       /api/items [post]
func (h *ItemHandler) CreateItem(ex *Exchange) error {
	item, err := h.items.Create(ex.Request.Context(), ex.Create)
	if err != nil {
		return err
	}
	h.logger.Info("Item created", zap.String("id", item.ID), zap.String("name", item.Name))
	writeJSON(ex.Writer, http.StatusCreated, item)
	return nil
}

// GetItem godoc
// @Summary      Get a single item by ID
// @Tags         Items
// @Produce      json
// @Param        id   path      string  true  "The item ID"
// @Success      200  {object}  models.Item
// @Failure      400  {object}  models.APIResponse  "Invalid ID format"
// @Failure      404  {object}  models.APIResponse  "Item not found"
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetItem(ex *Exchange) error {
	item, err := h.items.GetByID(ex.Request.Context(), ex.ID)
	if err != nil {
		return err
	}
	writeJSON(ex.Writer, http.StatusOK, item)
	return nil
}

// UpdateItem godoc
// @Summary      Update an item
// @Description  Partially updates an item. Omitted fields keep their value; inStock follows quantity.
// @Tags         Items
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "The item ID"
// @Param        item  body      models.UpdateItemInput  true  "Fields to change"
// @Success      200   {object}  models.Item
// @Failure      400   {object}  models.APIResponse
// @Failure      404   {object}  models.APIResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) UpdateItem(ex *Exchange) error {
	item, err := h.items.Update(ex.Request.Context(), ex.ID, ex.Update)
	if err != nil {
		return err
	}
	writeJSON(ex.Writer, http.StatusOK, item)
	return nil
}

// DeleteItem godoc
// @Summary      Delete an item
// @Tags         Items
// @Produce      json
// @Param        id   path      string  true  "The item ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      400  {object}  models.APIResponse
// @Failure      404  {object}  models.APIResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) DeleteItem(ex *Exchange) error {
	if err := h.items.Delete(ex.Request.Context(), ex.ID); err != nil {
		return err
	}
	h.logger.Info("Item deleted", zap.String("id", ex.ID))
	writeJSON(ex.Writer, http.StatusOK, models.MessageResponse{Message: "Item deleted successfully"})
	return nil
}
