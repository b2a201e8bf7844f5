package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kbridge/internal/bridge"
	"kbridge/internal/domain"
)

// Server serves the bridge HTTP API.
type Server struct {
	bridge *bridge.Bridge
	log    *slog.Logger
}

// NewServer creates a Server over the given bridge.
func NewServer(b *bridge.Bridge, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{bridge: b, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /order", s.handleOrder)
	mux.HandleFunc("POST /balance", s.handleBalance)
	mux.HandleFunc("POST /price", s.handlePrice)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	res, err := s.bridge.HandleOrder(r.Context(), domain.OrderIntent{
		AccountNo: req.AccountNo,
		Code:      req.Code,
		Qty:       req.Qty,
		Price:     req.Price,
		Kind:      domain.OrderKind(req.Type),
	})
	if err != nil {
		s.log.Warn("order failed", "accno", req.AccountNo, "code", req.Code, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.log.Info("order handled",
		"accno", req.AccountNo, "code", req.Code, "qty", req.Qty,
		"status", res.Status, "took", time.Since(start))
	writeJSON(w, res)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	var req BalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	bal, err := s.bridge.HandleBalance(r.Context(), req.AccountNo)
	if err != nil {
		s.log.Warn("balance failed", "accno", req.AccountNo, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	// Flat response: cash alongside one entry per held code.
	resp := make(map[string]int64, len(bal.Holdings)+1)
	resp["cash"] = bal.Cash
	for code, qty := range bal.Holdings {
		resp[code] = qty
	}
	writeJSON(w, resp)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code required")
		return
	}

	q, err := s.bridge.HandleQuote(r.Context(), req.Code)
	if err != nil {
		s.log.Warn("price failed", "code", req.Code, "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, PriceResponse{Name: q.Name, Price: q.Price, Volume: q.Volume})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "pending_quotes": s.bridge.PendingQuotes()})
}

// statusForError maps bridge errors to HTTP status codes.
func statusForError(err error) int {
	var brokerErr *domain.BrokerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedOrderKind):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuoteTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &brokerErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
