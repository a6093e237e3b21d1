package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/repository"
)

type basketHandler struct {
	baskets  BasketService
	validate *Validator
	logger   *zap.Logger
}

func (h *basketHandler) list(w http.ResponseWriter, r *http.Request) {
	baskets, err := h.baskets.GetAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, baskets)
}

func (h *basketHandler) byCustomer(w http.ResponseWriter, r *http.Request) {
	baskets, err := h.baskets.GetByCustomer(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, baskets)
}

func (h *basketHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	basket, err := h.baskets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if basket == nil {
		writeError(w, r, h.logger, notFoundError(repository.EntityBasket, "GetByID", id))
		return
	}
	writeJSON(w, http.StatusOK, basket)
}

func (h *basketHandler) create(w http.ResponseWriter, r *http.Request) {
	var basket model.Basket
	if err := decode(w, r, &basket); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Validate(basket); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	added, err := h.baskets.Add(r.Context(), basket)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("basket added",
		zap.Int("id", added.ID),
		zap.String("customer", added.CustomerName),
	)
	writeJSON(w, http.StatusCreated, added)
}

func (h *basketHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var basket model.Basket
	if err := decode(w, r, &basket); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	basket.ID = id
	if err := h.validate.Validate(basket); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	previous, err := h.baskets.Update(r.Context(), basket)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if previous == nil {
		writeError(w, r, h.logger, notFoundError(repository.EntityBasket, "Update", id))
		return
	}
	writeJSON(w, http.StatusOK, previous)
}

func (h *basketHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.baskets.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("basket deleted", zap.Int("id", id))
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}
