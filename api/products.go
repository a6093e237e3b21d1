package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jacentio/justine/model"
	"github.com/jacentio/justine/repository"
)

type productHandler struct {
	products ProductService
	validate *Validator
	logger   *zap.Logger
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if product == nil {
		writeError(w, r, h.logger, notFoundError(repository.EntityProduct, "GetByID", id))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := decode(w, r, &product); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if product.ID < 1 {
		writeError(w, r, h.logger, fmt.Errorf("%w: id is required", ErrInvalidRequest))
		return
	}
	if err := h.validate.Validate(product); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	added, err := h.products.Add(r.Context(), product)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("product added", zap.Int("id", added.ID))
	writeJSON(w, http.StatusCreated, added)
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var product model.Product
	if err := decode(w, r, &product); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	product.ID = id
	if err := h.validate.Validate(product); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	previous, err := h.products.Update(r.Context(), product)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if previous == nil {
		writeError(w, r, h.logger, notFoundError(repository.EntityProduct, "Update", id))
		return
	}
	writeJSON(w, http.StatusOK, previous)
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("product deleted", zap.Int("id", id))
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}
