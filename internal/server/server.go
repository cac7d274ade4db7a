package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	pathpkg "path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"podlocalsync/internal/models"
)

// FeedPath is the URL path of the rendered feed document.
const FeedPath = "/feed.rss"

// Snapshot is the state rendered once at startup. It is never modified while
// the server runs.
type Snapshot struct {
	Feed     *models.Feed
	Document []byte
}

type episodeView struct {
	Number int `json:"number"`
	models.Episode
}

type serverHandler struct {
	root     string
	snapshot Snapshot
	logger   *logrus.Logger
	requests *prometheus.CounterVec
	registry *prometheus.Registry
}

// New creates the HTTP handler that serves the feed snapshot and the files of
// the workspace rooted at root.
func New(root string, snapshot Snapshot, logger *logrus.Logger) http.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	cleanRoot := filepath.Clean(root)
	absRoot, err := filepath.Abs(cleanRoot)
	if err != nil {
		logger.Warnf("unable to resolve absolute workspace root %q: %v", root, err)
		absRoot = cleanRoot
	}

	if snapshot.Feed == nil {
		snapshot.Feed = &models.Feed{}
	}

	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podlocalsync_http_requests_total",
		Help: "HTTP requests served, partitioned by route and status code.",
	}, []string{"route", "code"})
	registry.MustRegister(requests)

	h := &serverHandler{
		root:     absRoot,
		snapshot: snapshot,
		logger:   logger,
		requests: requests,
		registry: registry,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/episodes", h.handleEpisodes)
	mux.HandleFunc(FeedPath, h.handleFeed)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", h.handleFile)

	return h.logRequests(mux)
}

func (h *serverHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *serverHandler) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	views := make([]episodeView, 0, len(h.snapshot.Feed.Episodes))
	for i, ep := range h.snapshot.Feed.Episodes {
		views = append(views, episodeView{Number: i + 1, Episode: ep})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		h.logger.Errorf("failed to encode episodes: %v", err)
	}
}

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(h.snapshot.Document)))
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(h.snapshot.Document); err != nil {
		h.logger.Errorf("failed to write RSS feed: %v", err)
	}
}

func (h *serverHandler) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rel := pathpkg.Clean("/" + r.URL.Path)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	target := filepath.Join(h.root, filepath.FromSlash(rel))
	resolved, err := filepath.Abs(target)
	if err != nil {
		h.logger.Errorf("failed to resolve path %s: %v", target, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !pathWithinRoot(h.root, resolved) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Errorf("failed to stat file %s: %v", resolved, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f, err := os.Open(resolved)
	if err != nil {
		h.logger.Errorf("failed to open file %s: %v", resolved, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (h *serverHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		duration := time.Since(start)

		h.requests.WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(sw.status)).Inc()
		h.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"bytes":    sw.size,
			"duration": duration,
		}).Info("request")
	})
}

// routeLabel keeps metric cardinality bounded: every workspace file counts
// as "file".
func routeLabel(path string) string {
	switch path {
	case "/health", "/episodes", "/metrics", FeedPath:
		return path
	default:
		return "file"
	}
}

func pathWithinRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}
