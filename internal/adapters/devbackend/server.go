package devbackend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/models"
)

// apiError is the error body the REST surface returns.
type apiError struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details"`
	Hint    *string `json:"hint"`
}

// amountCall is the argument body of the amount procedures.
type amountCall struct {
	DebtID    string          `json:"in_debt_id,omitempty"`
	AssetID   string          `json:"in_asset_id,omitempty"`
	NewAmount decimal.Decimal `json:"in_new_amount"`
	Note      string          `json:"in_note"`
}

type debtInsert struct {
	models.NewDebt
	UserID string `json:"user_id"`
}

type assetInsert struct {
	models.NewAsset
	UserID string `json:"user_id"`
}

// Server serves the REST surface over a Store.
type Server struct {
	store  *Store
	apiKey string
	logger *slog.Logger
}

// NewServer creates a server. A non-empty apiKey is required on every
// request under /rest.
func NewServer(store *Store, apiKey string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, apiKey: apiKey, logger: logger}
}

// Handler wires the routes into a router and exposes a health check.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/rest/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)

		r.Get("/debts", s.listDebts)
		r.Post("/debts", s.createDebt)
		r.Patch("/debts", s.updateDebt)
		r.Delete("/debts", s.deleteDebt)
		r.Post("/rpc/update_debt_amount", s.updateDebtAmount)

		r.Get("/assets", s.listAssets)
		r.Post("/assets", s.createAsset)
		r.Patch("/assets", s.updateAsset)
		r.Delete("/assets", s.deleteAsset)
		r.Post("/rpc/update_asset_amount", s.updateAssetAmount)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("apikey") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "401", "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listDebts(w http.ResponseWriter, r *http.Request) {
	owner, ok := eqFilter(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "PGRST100", "user_id filter is required")
		return
	}
	debts, err := s.store.ListDebts(r.Context(), owner)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) createDebt(w http.ResponseWriter, r *http.Request) {
	rows, ok := decodeInsert[debtInsert](w, r)
	if !ok {
		return
	}
	created := make([]models.Debt, 0, len(rows))
	for _, row := range rows {
		d, err := s.store.InsertDebt(r.Context(), row.UserID, row.NewDebt)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		created = append(created, *d)
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateDebt(w http.ResponseWriter, r *http.Request) {
	id, fields, ok := decodePatch(w, r)
	if !ok {
		return
	}
	d, err := s.store.PatchDebt(r.Context(), id, fields)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusOK, []models.Debt{})
		return
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, []models.Debt{*d})
}

func (s *Server) deleteDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := eqFilter(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "21000", "DELETE requires a WHERE clause")
		return
	}
	if err := s.store.DeleteDebt(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateDebtAmount(w http.ResponseWriter, r *http.Request) {
	var call amountCall
	if !decodeBody(w, r, &call) {
		return
	}
	if err := s.store.SetDebtAmount(r.Context(), call.DebtID, call.NewAmount, call.Note); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	owner, ok := eqFilter(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "PGRST100", "user_id filter is required")
		return
	}
	assets, err := s.store.ListAssets(r.Context(), owner)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	rows, ok := decodeInsert[assetInsert](w, r)
	if !ok {
		return
	}
	created := make([]models.Asset, 0, len(rows))
	for _, row := range rows {
		a, err := s.store.InsertAsset(r.Context(), row.UserID, row.NewAsset)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		created = append(created, *a)
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	id, fields, ok := decodePatch(w, r)
	if !ok {
		return
	}
	a, err := s.store.PatchAsset(r.Context(), id, fields)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusOK, []models.Asset{})
		return
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, []models.Asset{*a})
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := eqFilter(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "21000", "DELETE requires a WHERE clause")
		return
	}
	if err := s.store.DeleteAsset(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateAssetAmount(w http.ResponseWriter, r *http.Request) {
	var call amountCall
	if !decodeBody(w, r, &call) {
		return
	}
	if err := s.store.SetAssetAmount(r.Context(), call.AssetID, call.NewAmount, call.Note); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError maps store failures onto the backend's error codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var (
		columnErr *ColumnError
		sqliteErr sqlite3.Error
	)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "P0002", err.Error())
	case errors.As(err, &columnErr):
		writeError(w, http.StatusBadRequest, "PGRST204", columnErr.Error())
	case errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		writeError(w, http.StatusBadRequest, "23514", sqliteErr.Error())
	default:
		s.logger.Error("store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "XX000", err.Error())
	}
}

// eqFilter reads a "column=eq.value" query filter.
func eqFilter(r *http.Request, column string) (string, bool) {
	v, ok := strings.CutPrefix(r.URL.Query().Get(column), "eq.")
	return v, ok && v != ""
}

// decodeBody decodes the request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", "Empty or invalid json")
		return false
	}
	return true
}

// decodeInsert decodes an insert body, which may be a single object or an
// array of objects.
func decodeInsert[T any](w http.ResponseWriter, r *http.Request) ([]T, bool) {
	var raw json.RawMessage
	if !decodeBody(w, r, &raw) {
		return nil, false
	}
	if isObject(raw) {
		var row T
		if err := json.Unmarshal(raw, &row); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
			return nil, false
		}
		return []T{row}, true
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
		return nil, false
	}
	return rows, true
}

func decodePatch(w http.ResponseWriter, r *http.Request) (string, map[string]any, bool) {
	id, ok := eqFilter(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "21000", "UPDATE requires a WHERE clause")
		return "", nil, false
	}
	var fields map[string]any
	if !decodeBody(w, r, &fields) {
		return "", nil, false
	}
	return id, fields, true
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}
