package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jmarbas/lupon-cms/services/case-service/internal/listquery"
)

// The UI expects a {success, data|message} envelope on every endpoint.

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": msg,
	})
}

// parseListOptions maps the list-screen query params onto engine options.
// Unknown values pass through: the engine treats unknown sorts as the
// id-descending fallback and unknown statuses as exact-match filters.
func parseListOptions(r *http.Request) listquery.Options {
	q := r.URL.Query()
	opts := listquery.Options{
		Query:  q.Get("q"),
		Status: q.Get("status"),
		Dates:  listquery.DateRange(q.Get("dates")),
		Sort:   listquery.SortKey(q.Get("sort")),
	}
	if opts.Status == "" {
		opts.Status = "all"
	}
	if opts.Dates == "" {
		opts.Dates = listquery.DatesAll
	}
	return opts
}
