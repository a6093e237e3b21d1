package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/repository"
)

type orderHandler struct {
	orders   OrderService
	validate *Validator
	logger   *zap.Logger
}

func (h *orderHandler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *orderHandler) byCustomer(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetByCustomer(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *orderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if order == nil {
		writeError(w, r, h.logger, notFoundError(repository.EntityOrder, "GetByID", id))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *orderHandler) create(w http.ResponseWriter, r *http.Request) {
	var order model.Order
	if err := decode(w, r, &order); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Validate(order); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	added, err := h.orders.Add(r.Context(), order)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("order added",
		zap.Int("id", added.ID),
		zap.String("customer", added.CustomerName),
	)
	writeJSON(w, http.StatusCreated, added)
}

func (h *orderHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var order model.Order
	if err := decode(w, r, &order); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	order.ID = id
	if err := h.validate.Validate(order); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	previous, err := h.orders.Update(r.Context(), order)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if previous == nil {
		writeError(w, r, h.logger, notFoundError(repository.EntityOrder, "Update", id))
		return
	}
	writeJSON(w, http.StatusOK, previous)
}

func (h *orderHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("order deleted", zap.Int("id", id))
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}
