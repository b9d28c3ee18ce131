package export

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter serves the metrics gathered from g and the latest record of e.
func NewRouter(e *Exporter, g prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/reading", e.serveReading).Methods("GET")

	return r
}

func (e *Exporter) serveReading(w http.ResponseWriter, req *http.Request) {
	rec, ok := e.Latest()
	if !ok {
		http.Error(w, "no measurement yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		lg.Debugf("write reading: %v", err)
	}
}
