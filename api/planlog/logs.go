package planlog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/core/planlog"
)

// NewLogHandler returns an HTTP handler exposing plan logs via GET /api/plans/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store planlog.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []planlog.LogRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(r *http.Request) (planlog.LogQuery, error) {
	values := r.URL.Query()
	q := planlog.LogQuery{Unit: values.Get("unit")}
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"start", &q.Start}, {"end", &q.End}} {
		s := values.Get(p.key)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("invalid %s: %w", p.key, err)
		}
		*p.dst = t
	}
	if s := values.Get("status"); s != "" {
		st, ok := model.ParsePlanStatus(s)
		if !ok {
			return q, fmt.Errorf("invalid status %q", s)
		}
		q.Status = st.String()
	}
	return q, nil
}
