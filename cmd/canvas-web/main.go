package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"promptcanvas/internal/agent"
	"promptcanvas/internal/auth"
	"promptcanvas/internal/config"
	"promptcanvas/internal/history"
	"promptcanvas/internal/logging"
	"promptcanvas/internal/studio"
)

//go:embed all:static
var staticFS embed.FS

// CLI flags
var (
	portFlag    int
	backendFlag string
)

var rootCmd = &cobra.Command{
	Use:   "canvas-web",
	Short: "Web UI for AI image generation and prompt enhancement",
	Long: `Canvas Web starts a local web server where you describe an image in plain
language and get back either a generated image or an enhanced prompt with
style, size, and quality recommendations. Past generations are kept in a
rolling local history with a demo mode for trying the UI without an agent.

Examples:
  canvas-web
  canvas-web --port 9090
  canvas-web --backend gemini`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides CANVAS_PORT)")
	rootCmd.Flags().StringVar(&backendFlag, "backend", "", "Agent backend: http or gemini (overrides AGENT_BACKEND)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	start := time.Now()
	logging.Init()

	if backendFlag != "" {
		os.Setenv("AGENT_BACKEND", backendFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if portFlag > 0 {
		cfg.Port = portFlag
	}

	ctx := context.Background()
	backend := buildBackend(ctx, cfg)

	store := history.NewStore(cfg.HistoryFile)
	store.Load()

	srv := &server{
		svc:   studio.New(backend, store),
		store: store,
	}

	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/generate", srv.handleGenerate)
	mux.HandleFunc("/api/enhance", srv.handleEnhance)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.HandleFunc("/api/history/sample", srv.handleSampleMode)
	mux.HandleFunc("/api/params", srv.handleParams)
	mux.HandleFunc("/api/download", srv.handleDownload)

	// Frontend static files (SPA fallback)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to access embedded frontend")
	}
	fileServer := http.FileServer(http.FS(staticSub))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:; style-src 'self' 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// SPA fallback: if the file doesn't exist, serve index.html
		path := r.URL.Path
		if path != "/" {
			f, err := staticSub.Open(strings.TrimPrefix(path, "/"))
			if err != nil {
				r.URL.Path = "/"
			} else {
				f.Close()
			}
		}
		fileServer.ServeHTTP(w, r)
	})

	handler := withLogging(withCORS(mux))

	logging.NewStartupLogger("canvas-web").
		Config("port", fmt.Sprintf("%d", cfg.Port)).
		Config("backend", cfg.AgentBackend).
		Config("historyFile", cfg.HistoryFile).
		Config("geminiModel", cfg.GeminiModel).
		Feature("sampleMode", store.SampleMode()).
		InitDuration(time.Since(start)).
		Log()

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	log.Info().Int("port", cfg.Port).Msg("Starting web server")
	fmt.Printf("\n  Prompt Canvas: http://localhost:%d\n\n", cfg.Port)

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// buildBackend constructs the agent backend selected by configuration. For
// the Gemini backend the API key is validated up front so a bad key fails at
// startup rather than on the first generation.
func buildBackend(ctx context.Context, cfg config.Config) agent.Backend {
	switch cfg.AgentBackend {
	case config.BackendGemini:
		apiKey := cfg.GeminiAPIKey
		if apiKey == "" {
			key, err := auth.GetAPIKey()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to get API key")
			}
			apiKey = key
		}

		backend, err := agent.NewGeminiBackend(ctx, apiKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini backend")
		}
		if err := auth.ValidateAPIKey(ctx, backend.Client(), cfg.GeminiModel); err != nil {
			handleValidationError(err)
		}
		return backend

	default:
		return agent.NewHTTPBackend(cfg.AgentEndpoint, cfg.AgentAPIKey, cfg.AgentTimeout)
	}
}

func handleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	}
	log.Fatal().Err(err).Msg("Unexpected error during API key validation")
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins; this server is a local tool.
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
