package cmd

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/config"
	"github.com/zalepa/commutemap/dataset"
	"github.com/zalepa/commutemap/metrics"
	"github.com/zalepa/commutemap/render"
)

//go:embed web.html
var htmlContent embed.FS

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive map dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m := metrics.NewMetrics()
		start := time.Now()
		d, err := loadDataset(ctx)
		if err != nil {
			m.LoadErrors.Inc()
			return err
		}
		m.LoadDuration.Observe(time.Since(start).Seconds())
		m.RowsLoaded.Add(float64(d.Index.Len()))
		m.CitywideTotal.Set(float64(d.CitywideTotal))

		pal, err := loadPalette()
		if err != nil {
			return err
		}
		s, err := newServer(d, pal, m, cfg.Render)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           s.routes(prometheus.DefaultGatherer, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("communities", len(d.Boundaries.Features)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "serving on http://localhost:%d\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server holds the precomputed dashboard payloads.
type server struct {
	d       *dataset.Dataset
	pal     *render.Palette
	m       *metrics.Metrics
	width   int
	height  int
	results map[classify.Mode]*classify.Result
	views   map[classify.Mode]regionsResponse
}

type labelValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

type metaResponse struct {
	Modes         []labelValue `json:"modes"`
	Categories    []labelValue `json:"categories"`
	Designated    labelValue   `json:"designated"`
	CitywideTotal int          `json:"citywideTotal"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	Caption       string       `json:"caption"`
}

type regionsResponse struct {
	Mode    classify.Mode   `json:"mode"`
	Title   []string        `json:"title"`
	Legend  []labelValue    `json:"legend"`
	Regions []render.Region `json:"regions"`
}

type communityResponse struct {
	Code     string                  `json:"code"`
	Name     string                  `json:"name"`
	HasData  bool                    `json:"hasData"`
	Total    int                     `json:"total"`
	Counts   map[census.Category]int `json:"counts"`
	Dominant census.Category         `json:"dominant,omitempty"`
	Count    int                     `json:"count"`
	Percent  float64                 `json:"percent"`
	Bucket   string                  `json:"bucket"`
}

// newServer classifies d in every mode and projects the regions once.
func newServer(d *dataset.Dataset, pal *render.Palette, m *metrics.Metrics, rc config.RenderConfig) (*server, error) {
	s := &server{
		d:       d,
		pal:     pal,
		m:       m,
		width:   rc.Width,
		height:  rc.Height,
		results: make(map[classify.Mode]*classify.Result, len(classify.Modes)),
		views:   make(map[classify.Mode]regionsResponse, len(classify.Modes)),
	}
	for _, mode := range classify.Modes {
		res, err := d.Classify(mode)
		if err != nil {
			return nil, err
		}
		m.ObserveResult(res)
		s.results[mode] = res

		legend := make([]labelValue, 0)
		for _, st := range pal.Legend(mode, d.Categories) {
			legend = append(legend, labelValue{Value: st.Label, Label: st.Label, Color: render.Hex(st.Color)})
		}
		s.views[mode] = regionsResponse{
			Mode:    mode,
			Title:   render.LegendTitle(mode, d.Designated),
			Legend:  legend,
			Regions: render.Regions(d, res, pal, float64(rc.Width), float64(rc.Height)),
		}
	}
	return s, nil
}

func (s *server) routes(gatherer prometheus.Gatherer, sc config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleMeta)
		r.Get("/regions", s.handleRegions)
		r.Get("/locate", s.handleLocate)
		r.Get("/communities/{code}", s.handleCommunity)
	})
	return r
}

// instrument records request counts and latency by route pattern.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data, err := htmlContent.ReadFile("web.html")
	if err != nil {
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	modes := make([]labelValue, len(classify.Modes))
	for i, m := range classify.Modes {
		modes[i] = labelValue{Value: string(m), Label: string(m)}
	}
	cats := make([]labelValue, len(s.d.Categories))
	for i, c := range s.d.Categories {
		cats[i] = labelValue{Value: string(c), Label: render.CategoryLabel(c)}
		if st, ok := s.pal.Categories[c]; ok {
			cats[i].Color = render.Hex(st.Color)
		}
	}
	writeJSON(w, http.StatusOK, metaResponse{
		Modes:         modes,
		Categories:    cats,
		Designated:    labelValue{Value: string(s.d.Designated), Label: render.CategoryLabel(s.d.Designated)},
		CitywideTotal: s.d.CitywideTotal,
		Width:         s.width,
		Height:        s.height,
		Caption:       render.Caption,
	})
}

func (s *server) handleRegions(w http.ResponseWriter, r *http.Request) {
	modeParam := r.URL.Query().Get("mode")
	if modeParam == "" {
		modeParam = string(classify.ModeDominant)
	}
	mode, err := classify.ParseMode(modeParam)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.views[mode])
}

func (s *server) handleLocate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	if errLon != nil || errLat != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lon and lat must be numbers"})
		return
	}

	f, ok := s.d.Boundaries.Locate(lon, lat)
	if !ok {
		s.m.LocateLookups.WithLabelValues("miss").Inc()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no community at that point"})
		return
	}
	s.m.LocateLookups.WithLabelValues("hit").Inc()
	writeJSON(w, http.StatusOK, s.community(f.Code))
}

func (s *server) handleCommunity(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, ok := s.d.Boundaries.Find(code); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown community %q", code)})
		return
	}
	writeJSON(w, http.StatusOK, s.community(code))
}

func (s *server) community(code string) communityResponse {
	dom := s.results[classify.ModeDominant].Get(code)
	pct := s.results[classify.ModePercentage].Get(code)
	return communityResponse{
		Code:     code,
		Name:     s.d.Name(code),
		HasData:  dom.HasData,
		Total:    dom.Record.Total,
		Counts:   dom.Record.Counts,
		Dominant: dom.Dominant,
		Count:    pct.Count,
		Percent:  pct.Percent,
		Bucket:   pct.Bucket.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
