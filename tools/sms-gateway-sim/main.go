// sms-gateway-sim is a local stand-in for an SMS aggregator webhook. It
// accepts the payload notification-service posts, prints it, and returns 202.
// Point SMS_WEBHOOK_URL at it during development.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
)

func main() {
	var (
		addr  = flag.String("addr", getenv("ADDR", ":9090"), "listen address")
		token = flag.String("token", getenv("SMS_WEBHOOK_TOKEN", ""), "expected bearer token (empty = no auth)")
	)
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		if *token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != *token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		var payload struct {
			To   string `json:"to"`
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		fmt.Printf("sms to=%s\n%s\n---\n", payload.To, payload.Body)
		w.WriteHeader(http.StatusAccepted)
	})

	fmt.Printf("sms gateway simulator listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
