package runtime

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ReadyCheck is a named dependency probe reported on /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

// NewBaseMuxWithReady returns a mux pre-wired with /healthz (liveness, always
// ok) and /readyz (503 listing each failing dependency).
func NewBaseMuxWithReady(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		var failing []string
		for _, rc := range checks {
			if rc.Check == nil {
				continue
			}
			probeCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := rc.Check(probeCtx)
			cancel()
			if err != nil {
				name := rc.Name
				if name == "" {
					name = "dependency"
				}
				failing = append(failing, name+": "+err.Error())
			}
		}
		if len(failing) > 0 {
			http.Error(w, strings.Join(failing, "; "), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
