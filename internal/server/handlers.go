package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/allegro/bigcache/v3"
	"github.com/chrisdamba/orderpulse/internal/analytics"
	"github.com/chrisdamba/orderpulse/internal/models"
	"go.uber.org/zap"
)

var errBadParam = errors.New("invalid query parameter")

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "orders": len(s.orders)})
	}
}

func (s *Server) listStores() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.stores)
	}
}

func (s *Server) storeComparison() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseFilters(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, analytics.StoreComparison(analytics.ApplyFilters(s.orders, filters)))
	}
}

func (s *Server) series() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseDashboardQuery(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, analytics.IncomeSeries(analytics.ApplyFilters(s.orders, q.Filters), q.Grouping))
	}
}

func (s *Server) dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseDashboardQuery(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		key := cacheKey(q)
		if s.cache != nil {
			if body, err := s.cache.Get(key); err == nil {
				w.Header().Set("X-Cache", "HIT")
				s.writeRaw(w, http.StatusOK, body)
				return
			} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
				s.log.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
			}
		}

		body, err := json.Marshal(analytics.BuildDashboard(s.orders, s.stores, q))
		if err != nil {
			s.writeError(w, err)
			return
		}
		if s.cache != nil {
			if err := s.cache.Set(key, body); err != nil {
				s.log.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
			}
			w.Header().Set("X-Cache", "MISS")
		}
		s.writeRaw(w, http.StatusOK, body)
	}
}

func (s *Server) orderTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseFilters(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		tq, err := parseTableQuery(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, analytics.QueryTable(analytics.ApplyFilters(s.orders, filters), tq))
	}
}

func parseFilters(r *http.Request) (models.Filters, error) {
	query := r.URL.Query()
	var f models.Filters

	if store := query.Get("store"); store != "" {
		f.Store = &store
	}
	if raw := query.Get("include_canceled"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("%w: include_canceled=%q", errBadParam, raw)
		}
		f.IncludeCanceled = include
	}
	return f, nil
}

func parseDashboardQuery(r *http.Request) (models.DashboardQuery, error) {
	filters, err := parseFilters(r)
	if err != nil {
		return models.DashboardQuery{}, err
	}
	grouping, err := models.ParseTimeGrouping(r.URL.Query().Get("grouping"))
	if err != nil {
		return models.DashboardQuery{}, err
	}
	return models.DashboardQuery{Filters: filters, Grouping: grouping}, nil
}

func parseTableQuery(r *http.Request) (models.TableQuery, error) {
	query := r.URL.Query()
	var tq models.TableQuery

	col, err := models.ParseSortColumn(query.Get("sort"))
	if err != nil {
		return tq, err
	}
	tq.SortBy = col

	switch strings.ToLower(query.Get("dir")) {
	case "", "desc":
	case "asc":
		tq.Ascending = true
	default:
		return tq, fmt.Errorf("%w: dir=%q", errBadParam, query.Get("dir"))
	}

	tq.Search = query.Get("q")
	if tq.Offset, err = nonNegative(query, "offset"); err != nil {
		return tq, err
	}
	if tq.Limit, err = nonNegative(query, "limit"); err != nil {
		return tq, err
	}
	return tq, nil
}

func nonNegative(query url.Values, name string) (int, error) {
	values := query[name]
	if len(values) == 0 || values[0] == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(values[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", errBadParam, name, values[0])
	}
	return n, nil
}

func cacheKey(q models.DashboardQuery) string {
	store := "*"
	if q.Store != nil {
		store = "=" + *q.Store
	}
	return fmt.Sprintf("dashboard|%s|%t|%s", q.Grouping, q.IncludeCanceled, store)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadParam),
		errors.Is(err, models.ErrUnknownGrouping),
		errors.Is(err, models.ErrUnknownSortColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeRaw(w, status, body)
}

func (s *Server) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.log.Debug("write response", zap.Error(err))
	}
}
