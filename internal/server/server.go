// Package server serves an analysis result over HTTP: a Mermaid viewer page
// plus the DOT, Mermaid, text report and JSON renderings.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/olehluchkiv/javadeps/internal/analysis"
	"github.com/olehluchkiv/javadeps/internal/diagram"
	"github.com/olehluchkiv/javadeps/internal/diagram/split"
	"github.com/olehluchkiv/javadeps/internal/report"
)

// Options controls what the viewer renders.
type Options struct {
	Title   string
	Diagram diagram.DiagramOptions
	Slides  diagram.SlideOptions
	Split   split.Options
	DOT     diagram.DOTOptions
}

// DefaultOptions returns the viewer defaults.
func DefaultOptions() Options {
	return Options{
		Title:   "Type Dependencies",
		Diagram: diagram.DefaultDiagramOptions(),
		Slides:  diagram.DefaultSlideOptions(),
		Split:   split.DefaultOptions(),
		DOT:     diagram.DefaultDOTOptions(),
	}
}

// Viewer renders one analysis result. It is read-only after New and safe
// for concurrent requests.
type Viewer struct {
	res    *analysis.Result
	opts   Options
	slides []diagram.Slide
	tmpl   *template.Template
	logger *slog.Logger
}

type slideEntry struct {
	Index   int
	Title   string
	Mermaid string
}

type pageData struct {
	Title      string
	TypeCount  int
	EdgeCount  int
	Slides     []slideEntry
	SlideCount int
	Titles     []string
	Sources    []string
}

// New prepares the slides for res.
func New(res *analysis.Result, opts Options, logger *slog.Logger) (*Viewer, error) {
	tmpl, err := template.New("viewer").Parse(viewerTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML template: %w", err)
	}
	slides := diagram.BuildSlides(res.Types, res.Graph, opts.Diagram, split.NewHubAndSpoke(opts.Split), opts.Slides)
	return &Viewer{
		res:    res,
		opts:   opts,
		slides: slides,
		tmpl:   tmpl,
		logger: logger.With("component", "server"),
	}, nil
}

// Slides returns the prepared slides.
func (v *Viewer) Slides() []diagram.Slide {
	return v.slides
}

// Handler returns the HTTP routes of the viewer.
func (v *Viewer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", v.handleIndex)
	mux.HandleFunc("GET /graph.mmd", v.handleMermaid)
	mux.HandleFunc("GET /graph.dot", v.handleDOT)
	mux.HandleFunc("GET /report.txt", v.handleReport)
	mux.HandleFunc("GET /api/types", v.handleTypes)
	return v.logRequests(mux)
}

func (v *Viewer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.logger.Debug("request received", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (v *Viewer) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:      v.opts.Title,
		TypeCount:  len(v.res.Types),
		EdgeCount:  v.res.Graph.Len(),
		SlideCount: len(v.slides),
	}
	for i, s := range v.slides {
		data.Slides = append(data.Slides, slideEntry{Index: i, Title: s.Title, Mermaid: s.Mermaid})
		data.Titles = append(data.Titles, s.Title)
		data.Sources = append(data.Sources, s.Mermaid)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := v.tmpl.Execute(w, data); err != nil {
		v.logger.Error("failed to render template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleMermaid serves the full diagram, one slide (?slide=N), or the
// neighbourhood of a comma-separated list of identities (?focus=a.B,c.D).
func (v *Viewer) handleMermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	q := r.URL.Query()

	if focus := q.Get("focus"); focus != "" {
		decls, g := diagram.FilterBySelection(v.res.Types, v.res.Graph, splitList(focus))
		_, _ = w.Write([]byte(diagram.GenerateMermaid(decls, g, v.opts.Diagram)))
		return
	}
	if s := q.Get("slide"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n >= len(v.slides) {
			http.Error(w, fmt.Sprintf("slide must be between 0 and %d", len(v.slides)-1), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(v.slides[n].Mermaid))
		return
	}
	_, _ = w.Write([]byte(diagram.GenerateMermaid(v.res.Types, v.res.Graph, v.opts.Diagram)))
}

func (v *Viewer) handleDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if err := diagram.WriteDOT(w, v.res.Graph, v.opts.DOT); err != nil {
		v.logger.Error("failed to write DOT", "error", err)
	}
}

func (v *Viewer) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := report.WriteSummary(w, v.res.Units); err != nil {
		v.logger.Error("failed to write report", "error", err)
		return
	}
	if err := report.WriteTypes(w, v.res.Types); err != nil {
		v.logger.Error("failed to write report", "error", err)
	}
}

func (v *Viewer) handleTypes(w http.ResponseWriter, r *http.Request) {
	data := diagram.PrepareInteractiveData(v.res.Types, v.res.Graph, v.opts.Diagram)
	data.RepoAddress = v.res.Root

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		v.logger.Error("failed to encode types", "error", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Serve starts the HTTP server on port. It blocks until the context is
// cancelled or the server fails.
func (v *Viewer) Serve(ctx context.Context, port int, openBrowser bool) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           v.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d", port)
	v.logger.Info("starting HTTP server", "addr", url, "slides", len(v.slides))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(errCh)
	}()

	if openBrowser {
		openInBrowser(url, v.logger)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		v.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return nil
	}
}

// openInBrowser opens the given URL in the default system browser.
func openInBrowser(url string, logger *slog.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		logger.Warn("unsupported platform for opening browser", "os", runtime.GOOS)
		return
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("failed to open browser", "error", err)
	}
}
