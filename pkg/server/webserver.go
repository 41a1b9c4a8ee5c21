package server

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-catalogue/pkg/catalogue"
	"github.com/matst80/slask-catalogue/pkg/common"
	"github.com/matst80/slask-catalogue/pkg/logging"
	"github.com/matst80/slask-catalogue/pkg/metadata"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type WebServer struct {
	Logger   *zap.Logger
	Products *catalogue.Service
	Events   *catalogue.Service
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, metadata.ErrRubricNotFound):
		return http.StatusNotFound, "rubric not found"
	case errors.Is(err, catalogue.ErrUnavailable):
		return http.StatusServiceUnavailable, "catalogue unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (ws *WebServer) catalogueHandler(service *catalogue.Service, scoped bool) func(w http.ResponseWriter, r *http.Request, enc sonic.Encoder) error {
	return func(w http.ResponseWriter, r *http.Request, enc sonic.Encoder) error {
		rubric := ""
		if scoped {
			rubric = r.PathValue("rubric")
		}
		req, err := requestFromHttp(r, rubric)
		if err != nil {
			logging.FromContext(r.Context()).Debug("ignoring malformed query", zap.Error(err))
		}
		payload, err := service.GetCatalogue(r.Context(), req)
		if err != nil {
			status, message := statusFor(err)
			if writeErr := common.WriteError(w, status, message); writeErr != nil {
				return writeErr
			}
			if status == http.StatusInternalServerError {
				return err
			}
			return nil
		}
		w.Header().Set("Cache-Control", "public, stale-while-revalidate=120")
		w.WriteHeader(http.StatusOK)
		return enc.Encode(payload)
	}
}

func (ws *WebServer) Categories(w http.ResponseWriter, r *http.Request, enc sonic.Encoder) error {
	query := CatalogueQuery{}
	_ = decoder.Decode(&query, r.URL.Query())
	nodes, err := ws.Products.CategoryTree(r.Context(), r.PathValue("rubric"), query.Locale)
	if err != nil {
		status, message := statusFor(err)
		return common.WriteError(w, status, message)
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(nodes)
}

func (ws *WebServer) Handle() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv.Handle("GET /metrics", promhttp.Handler())

	route := func(pattern string, fn func(w http.ResponseWriter, r *http.Request, enc sonic.Encoder) error) {
		srv.HandleFunc(pattern, common.JsonHandler(ws.Logger, fn))
	}
	products := ws.catalogueHandler(ws.Products, true)
	route("GET /api/catalogue/{rubric}", products)
	route("GET /api/catalogue/{rubric}/{filters...}", products)
	if ws.Events != nil {
		events := ws.catalogueHandler(ws.Events, true)
		route("GET /api/events/{rubric}", events)
		route("GET /api/events/{rubric}/{filters...}", events)
	}
	search := ws.catalogueHandler(ws.Products, false)
	route("GET /api/search", search)
	route("GET /api/search/{filters...}", search)
	route("GET /api/rubrics/{rubric}/categories", ws.Categories)
	return srv
}
