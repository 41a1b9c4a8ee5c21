package common

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/matst80/slask-catalogue/pkg/logging"
	"go.uber.org/zap"
)

const RequestIdHeader = "X-Request-Id"

var api = sonic.ConfigStd

// JsonHandler answers preflight requests, tags the request with an id and
// hands the handler a sonic stream encoder. A returned error is logged,
// the handler is responsible for the status code.
func JsonHandler(logger *zap.Logger, fn func(w http.ResponseWriter, r *http.Request, enc sonic.Encoder) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		requestId := r.Header.Get(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		log := logger.With(zap.String("request_id", requestId))
		r = r.WithContext(logging.WithLogger(r.Context(), log))

		w.Header().Set(RequestIdHeader, requestId)
		w.Header().Set("Content-Type", "application/json")
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		if err := fn(w, r, api.NewEncoder(w)); err != nil {
			log.Error("error handling request", zap.String("path", r.URL.Path), zap.Error(err))
		}
	}
}

// WriteError writes a json error body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) error {
	w.WriteHeader(status)
	body, err := api.Marshal(map[string]string{"error": message})
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
