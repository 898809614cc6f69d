// Package server wires the map, REST and catalog handlers into one
// http.Handler.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-japanmap/internal/api"
	"github.com/joeblew999/plat-japanmap/internal/api/mapui"
	"github.com/joeblew999/plat-japanmap/internal/db"
	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/logger"
	"github.com/joeblew999/plat-japanmap/internal/page"
	"github.com/joeblew999/plat-japanmap/internal/service"
	"github.com/joeblew999/plat-japanmap/internal/session"
	"github.com/joeblew999/plat-japanmap/internal/templates"
	"github.com/joeblew999/plat-japanmap/web"
)

// DefaultSessionTTL is how long an idle map session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Config holds the server configuration.
type Config struct {
	Host         string
	Port         string
	DataDir      string // catalog database and default geometry location
	WebDir       string // optional web/ directory overriding the embedded assets
	GeometryFile string // TopoJSON or GeoJSON; defaults to DataDir/japan.topojson
	ObjectKey    string // TopoJSON object name
	StyleFile    string // optional page style YAML
	SingleSelect bool
	BaseScale    float64
	MinZoom      float64
	MaxZoom      float64
	SessionTTL   time.Duration
	Logger       *slog.Logger
}

// Server is the map HTTP server.
type Server struct {
	config   Config
	logger   *slog.Logger
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	db       *sql.DB
	data     *geometry.Dataset
	pageCfg  page.Config
	services *api.Services
	bus      *service.EventBus
	renderer *templates.Renderer
	webFS    fs.FS

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a new map server. Missing geometry is logged and served as
// an empty state; a broken style file or template set is an error.
func New(cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.GeometryFile == "" {
		cfg.GeometryFile = filepath.Join(cfg.DataDir, "japan.topojson")
	}

	pageCfg, err := page.LoadConfig(cfg.StyleFile)
	if err != nil {
		return nil, err
	}
	if cfg.SingleSelect {
		pageCfg.MultiSelect = false
	}

	webFS := fs.FS(web.FS)
	if cfg.WebDir != "" {
		webFS = os.DirFS(cfg.WebDir)
	}
	renderer, err := templates.NewFS(webFS, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	data, err := geometry.Load(cfg.GeometryFile, cfg.ObjectKey)
	if err != nil {
		log.Warn("prefecture geometry unavailable", "file", cfg.GeometryFile, "error", err)
		data = nil
	} else {
		log.Info("loaded prefecture geometry", "file", cfg.GeometryFile, "prefectures", data.Len())
	}

	s := &Server{
		config:   cfg,
		logger:   log,
		mux:      http.NewServeMux(),
		data:     data,
		pageCfg:  pageCfg,
		bus:      service.NewEventBus(),
		renderer: renderer,
		webFS:    webFS,
		stop:     make(chan struct{}),
	}

	pageLog := log.With("component", "page")
	s.services = &api.Services{
		Regions: service.NewRegionService(data, pageCfg),
		Sessions: session.NewStore(func() *page.Page {
			return page.New(data, pageCfg, page.Options{
				BaseScale: cfg.BaseScale,
				MinZoom:   cfg.MinZoom,
				MaxZoom:   cfg.MaxZoom,
			}, pageLog)
		}),
	}

	s.openCatalog()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-japanmap API", api.Version)
	humaConfig.Info.Description = "Interactive choropleth of Japan's prefectures: catalog, styles and Datastar map sessions."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())
	s.humaAPI = humago.New(s.mux, humaConfig)

	s.routes()
	s.handler = logger.AccessMiddleware(log)(s.mux)

	go s.sweep()
	return s, nil
}

func (s *Server) openCatalog() {
	conn, err := db.Open(db.Config{DataDir: s.config.DataDir, DBName: "japanmap"})
	if err != nil {
		s.logger.Warn("catalog database unavailable", "error", err)
		return
	}
	regions := s.services.Regions
	if err := db.LoadCatalog(context.Background(), conn, regions.List(), regions.Groups()); err != nil {
		s.logger.Warn("catalog load failed", "error", err)
		conn.Close()
		return
	}
	s.db = conn
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close stops the session sweeper and closes the catalog.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.config.DataDir, s.config.GeometryFile, s.services.Regions.Len(), s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Map SSE routes using Huma + Datastar SDK
	mapHandler := mapui.NewHandler(s.services.Sessions, s.bus, s.renderer, s.logger.With("component", "mapui"))
	mapHandler.RegisterRoutes(s.humaAPI)

	// Static files and page shell
	if static, err := fs.Sub(s.webFS, "static"); err == nil {
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}
	if s.config.WebDir != "" {
		s.mux.HandleFunc("/", s.reloading(mapHandler.ServePage))
	} else {
		s.mux.HandleFunc("/", mapHandler.ServePage)
	}
}

// reloading re-parses templates from the web directory before each page
// load, so edits show up on refresh. A parse error keeps the last good set.
func (s *Server) reloading(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.renderer.Reload(); err != nil {
			s.logger.Warn("template reload failed", "dir", s.config.WebDir, "error", err)
		}
		next(w, r)
	}
}

// sweep drops idle sessions until Close.
func (s *Server) sweep() {
	interval := max(s.config.SessionTTL/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.services.Sessions.Sweep(s.config.SessionTTL); n > 0 {
				s.logger.Debug("swept idle sessions", "removed", n)
			}
		}
	}
}
