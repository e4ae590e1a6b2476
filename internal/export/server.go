package export

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	"github.com/janekbaraniewski/stackarea/internal/source"
)

const shutdownTimeout = 5 * time.Second

// Server serves the current document as an HTML chart and as JSON. The
// document can be replaced while serving, e.g. from a file watcher.
type Server struct {
	mu   sync.RWMutex
	doc  source.Document
	opts Options
	log  *log.Entry
}

func NewServer(doc source.Document, opts Options) *Server {
	return &Server{
		doc:  doc,
		opts: opts,
		log:  log.WithField("component", "server"),
	}
}

func (s *Server) SetDocument(doc source.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	s.log.WithField("metrics", len(doc.Metrics)).Info("document replaced")
}

func (s *Server) Document() source.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/", s.chart)
	router.GET("/data", s.data)
	router.GET("/metrics/:name", s.metric)
	return router
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start := time.Now()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := HTML(w, s.Document(), s.opts); err != nil {
		s.log.WithError(err).Error("render chart")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.WithFields(log.Fields{
		"elapsed": time.Since(start),
		"path":    r.URL.Path,
	}).Debug("chart request")
}

func (s *Server) data(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, s.Document())
}

// metric returns the points of a single metric, looked up by name.
func (s *Server) metric(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	name := params.ByName("name")
	doc := s.Document()
	for i, m := range doc.Metrics {
		if m == name && i < len(doc.Series) {
			writeJSON(w, doc.Series[i])
			return
		}
	}
	http.Error(w, "unknown metric "+name, http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode response")
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
