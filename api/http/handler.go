package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pairbook/custody"
	"pairbook/domain/book"
	"pairbook/domain/registry"
	"pairbook/service"
)

// Handler adapts the engine to the JSON API.
type Handler struct {
	engine   *service.Engine
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(engine *service.Engine, log *zap.Logger) *Handler {
	return &Handler{
		engine:   engine,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterPair handles POST /api/v1/pairs.
func (h *Handler) RegisterPair(w http.ResponseWriter, r *http.Request) {
	var req registerPairRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.engine.RegisterPair(r.Context(), custody.AssetID(req.Base), custody.AssetID(req.Quote))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusCreated, registerPairResponse{
		Key:   string(entry.Key),
		Base:  string(entry.Base),
		Quote: string(entry.Quote),
	})
}

// Pairs handles GET /api/v1/pairs.
func (h *Handler) Pairs(w http.ResponseWriter, r *http.Request) {
	entries := h.engine.Pairs()
	resp := pairsResponse{
		PairsSupported: h.engine.PairsSupported(),
		Pairs:          make([]registerPairResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Pairs = append(resp.Pairs, registerPairResponse{
			Key:   string(e.Key),
			Base:  string(e.Base),
			Quote: string(e.Quote),
		})
	}
	h.respond(w, http.StatusOK, resp)
}

// Lookup handles GET /api/v1/pairs/lookup?asset_a=X&asset_b=Y.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("asset_a")
	b := r.URL.Query().Get("asset_b")
	if a == "" || b == "" {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "asset_a and asset_b are required"})
		return
	}

	entry, ok := h.engine.LookupBook(custody.AssetID(a), custody.AssetID(b))
	if !ok {
		h.respond(w, http.StatusOK, lookupResponse{Found: false})
		return
	}
	h.respond(w, http.StatusOK, lookupResponse{
		Found: true,
		Key:   string(entry.Key),
		Base:  string(entry.Base),
		Quote: string(entry.Quote),
	})
}

// PlaceOrder handles POST /api/v1/books/{assetA}/{assetB}/orders.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	a, b := pairParams(r)

	var req placeOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	side, err := book.ParseSide(req.Side)
	if err != nil {
		h.fail(w, err)
		return
	}

	o, err := h.engine.Place(r.Context(), a, b, book.ParticipantID(req.Participant), side, req.Price, req.Quantity)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusCreated, orderResponse{
		Participant: req.Participant,
		Side:        side.String(),
		Price:       o.Price,
		Quantity:    o.Quantity,
		PlacedAt:    o.PlacedAt,
	})
}

// CancelOrder handles DELETE /api/v1/books/{assetA}/{assetB}/orders/{side}.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	a, b := pairParams(r)

	side, err := book.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		h.fail(w, err)
		return
	}
	participant := r.URL.Query().Get("participant")
	if participant == "" {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "participant is required"})
		return
	}

	o, err := h.engine.Cancel(r.Context(), a, b, book.ParticipantID(participant), side)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, orderResponse{
		Participant: participant,
		Side:        side.String(),
		Price:       o.Price,
		Quantity:    o.Quantity,
		PlacedAt:    o.PlacedAt,
	})
}

// Side handles GET /api/v1/books/{assetA}/{assetB}/side/{side}.
func (h *Handler) Side(w http.ResponseWriter, r *http.Request) {
	a, b := pairParams(r)

	side, err := book.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		h.fail(w, err)
		return
	}
	levels, err := h.engine.Side(a, b, side)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := sideResponse{
		Side:         side.String(),
		Count:        len(levels),
		Participants: make([]string, 0, len(levels)),
		Prices:       make([]uint64, 0, len(levels)),
		Quantities:   make([]uint64, 0, len(levels)),
	}
	for _, lvl := range levels {
		resp.Participants = append(resp.Participants, string(lvl.Participant))
		resp.Prices = append(resp.Prices, lvl.Price)
		resp.Quantities = append(resp.Quantities, lvl.Quantity)
	}
	h.respond(w, http.StatusOK, resp)
}

// Best handles GET /api/v1/books/{assetA}/{assetB}/best/{side}.
func (h *Handler) Best(w http.ResponseWriter, r *http.Request) {
	a, b := pairParams(r)

	side, err := book.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		h.fail(w, err)
		return
	}
	o, participant, err := h.engine.Best(a, b, side)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, orderResponse{
		Participant: string(participant),
		Side:        side.String(),
		Price:       o.Price,
		Quantity:    o.Quantity,
		PlacedAt:    o.PlacedAt,
	})
}

// Spread handles GET /api/v1/books/{assetA}/{assetB}/spread.
func (h *Handler) Spread(w http.ResponseWriter, r *http.Request) {
	a, b := pairParams(r)

	spread, err := h.engine.Spread(a, b)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, spreadResponse{Spread: spread})
}

// ---- helpers ----

func pairParams(r *http.Request) (custody.AssetID, custody.AssetID) {
	return custody.AssetID(chi.URLParam(r, "assetA")), custody.AssetID(chi.URLParam(r, "assetB"))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	h.respond(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("response encode failed", zap.Error(err))
	}
}

// statusOf maps domain error kinds to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, book.ErrInvalidParameters):
		return http.StatusBadRequest
	case errors.Is(err, book.ErrDuplicateOrder), errors.Is(err, registry.ErrPairExists):
		return http.StatusConflict
	case errors.Is(err, book.ErrNoSuchOrder), errors.Is(err, registry.ErrUnknownPair), errors.Is(err, book.ErrEmptySide):
		return http.StatusNotFound
	case errors.Is(err, custody.ErrTransferFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
