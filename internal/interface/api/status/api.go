package status

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prBot/internal/app/events"
	"prBot/internal/domain"
	"prBot/internal/usecase/commands"
)

type apiHandlers struct {
	commands   *commands.Service
	extensions func() []domain.Extension
	gatherer   prometheus.Gatherer
}

func (a *apiHandlers) register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/commands", a.handleCommands)

	gatherer := a.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

type healthResponse struct {
	Status     string                `json:"status"`
	Extensions []events.ExtensionDTO `json:"extensions"`
	Commands   []commands.CommandDTO `json:"commands"`
}

func (a *apiHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := healthResponse{Status: "ok", Extensions: []events.ExtensionDTO{}}
	if a.extensions != nil {
		for _, ext := range a.extensions() {
			if ext.State == domain.ExtensionFailed {
				resp.Status = "degraded"
			}
			resp.Extensions = append(resp.Extensions, events.NewExtensionDTO(ext))
		}
	}

	list, err := a.commands.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp.Commands = list
	if resp.Commands == nil {
		resp.Commands = []commands.CommandDTO{}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *apiHandlers) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	list, err := a.commands.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []commands.CommandDTO{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
