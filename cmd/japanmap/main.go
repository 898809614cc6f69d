package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/logger"
	"github.com/joeblew999/plat-japanmap/internal/page"
	"github.com/joeblew999/plat-japanmap/internal/server"
	"github.com/joeblew999/plat-japanmap/internal/tui"
)

// Options defines all CLI flags and env vars for the map server.
// Flags: --host, --port, --data-dir, --geometry, --style-file, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_GEOMETRY, ...
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir      string `doc:"Directory for the catalog database and default geometry" default:".data"`
	WebDir       string `doc:"Serve templates and static files from this web/ directory instead of the embedded copy"`
	Geometry     string `doc:"TopoJSON or GeoJSON prefecture file (default <data-dir>/japan.topojson)"`
	ObjectKey    string `doc:"TopoJSON object holding the prefectures" default:"japan"`
	StyleFile    string `doc:"YAML file overriding the page styles and region groups"`
	SingleSelect bool   `doc:"Allow at most one selected prefecture"`
	BaseScale    string `doc:"Projection scale at a 600px short side" default:"1600"`
	MinZoom      string `doc:"Minimum zoom level, fractions allowed" default:"1"`
	MaxZoom      string `doc:"Maximum zoom level, fractions allowed" default:"8"`
	SessionTTL   int    `doc:"Minutes an idle map session is kept" default:"30"`
	LogLevel     string `doc:"Log level: debug, info, warn, error" default:"info"`
	LogFormat    string `doc:"Log format: text or json" default:"text"`
}

func (o *Options) geometryFile() string {
	if o.Geometry != "" {
		return o.Geometry
	}
	return filepath.Join(o.DataDir, "japan.topojson")
}

// view parses the projection and zoom flags. humacli binds no float flags,
// so they arrive as strings.
func (o *Options) view() (page.Options, error) {
	var (
		v   page.Options
		err error
	)
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"base-scale", o.BaseScale, &v.BaseScale},
		{"min-zoom", o.MinZoom, &v.MinZoom},
		{"max-zoom", o.MaxZoom, &v.MaxZoom},
	} {
		if *f.dst, err = strconv.ParseFloat(f.raw, 64); err != nil || *f.dst <= 0 {
			return page.Options{}, fmt.Errorf("--%s must be a positive number, got %q", f.name, f.raw)
		}
	}
	if v.MinZoom > v.MaxZoom {
		return page.Options{}, fmt.Errorf("--min-zoom %v exceeds --max-zoom %v", v.MinZoom, v.MaxZoom)
	}
	return v, nil
}

func newServer(opts *Options, log *slog.Logger) (*server.Server, error) {
	v, err := opts.view()
	if err != nil {
		return nil, err
	}
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataDir:      opts.DataDir,
		WebDir:       opts.WebDir,
		GeometryFile: opts.geometryFile(),
		ObjectKey:    opts.ObjectKey,
		StyleFile:    opts.StyleFile,
		SingleSelect: opts.SingleSelect,
		BaseScale:    v.BaseScale,
		MinZoom:      v.MinZoom,
		MaxZoom:      v.MaxZoom,
		SessionTTL:   time.Duration(opts.SessionTTL) * time.Minute,
		Logger:       log,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := logger.Setup(opts.LogLevel, opts.LogFormat)

		var (
			srv        *server.Server
			httpServer *http.Server
		)

		hooks.OnStart(func() {
			var err error
			srv, err = newServer(opts, log)
			if err != nil {
				log.Error("server setup failed", "error", err)
				os.Exit(1)
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-japanmap server starting...\n")
			fmt.Printf("  Map:      %s/\n", baseURL)
			fmt.Printf("  Geometry: %s\n", opts.geometryFile())
			fmt.Println()
			fmt.Printf("  Docs:     %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI:  %s/openapi.json\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv}
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if httpServer != nil {
				httpServer.Shutdown(ctx)
			}
			if srv != nil {
				srv.Close()
			}
		})
	})

	cli.Root().Use = "japanmap"
	cli.Root().Short = "Interactive, styleable choropleth of Japan's prefectures"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, err := newServer(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// tui subcommand: the same map in the terminal
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the prefecture map in the terminal",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			if err := runTUI(opts); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	cli.Root().AddCommand(tuiCmd)

	cli.Run()
}

func runTUI(opts *Options) error {
	v, err := opts.view()
	if err != nil {
		return err
	}
	cfg, err := page.LoadConfig(opts.StyleFile)
	if err != nil {
		return err
	}
	if opts.SingleSelect {
		cfg.MultiSelect = false
	}

	data, err := geometry.Load(opts.geometryFile(), opts.ObjectKey)
	if err != nil {
		// the model renders an empty state
		data = nil
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := page.New(data, cfg, v, quiet)
	defer p.Close()

	_, err = tea.NewProgram(tui.New(p, data), tea.WithAltScreen()).Run()
	return err
}
