package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardgen-server/collection"
	"cardgen-server/core"
	"cardgen-server/generation"
	"cardgen-server/handlers/api/cards"
	"cardgen-server/handlers/api/exports"
	"cardgen-server/handlers/api/generate"
	"cardgen-server/handlers/websocket"
	"cardgen-server/ingest"
	"cardgen-server/stores"
	"cardgen-server/workspace"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(ws *workspace.Workspace, store core.ExportStore) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Export-Id"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"message": "Backend is working!"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cards.HandleList(ws))
			r.Post("/", cards.HandleAppend(ws))
			r.Delete("/", cards.HandleClear(ws))
			r.Get("/export", cards.HandleExport(ws))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cards.HandleGet(ws))
				r.Patch("/", cards.HandleUpdate(ws))
				r.Delete("/", cards.HandleDelete(ws))
				r.Put("/text", cards.HandleEditText(ws))
				r.Post("/move", cards.HandleMove(ws))
			})
		})

		r.Post("/generate", generate.HandleGenerate(ws))
		r.Post("/upload", generate.HandleUpload(ws))
		r.Get("/status", generate.HandleStatus(ws))

		r.Route("/exports", func(r chi.Router) {
			r.Get("/latest", exports.HandleLatest(store))
			r.Get("/{id}", exports.HandleGet(store))
		})
	})

	return r
}

// exportFilename reads EXPORT_FILENAME, accepting the current and the legacy name.
func exportFilename() string {
	switch name := os.Getenv("EXPORT_FILENAME"); name {
	case "", collection.ExportFilename:
		return collection.ExportFilename
	case collection.LegacyExportFilename:
		return collection.LegacyExportFilename
	default:
		logrus.WithField("filename", name).Warn("Unknown EXPORT_FILENAME, using default")
		return collection.ExportFilename
	}
}

func waitForShutdown(srv *http.Server, ioo *socketio.Server) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signalC

	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ioo.Close(nil)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ctx := context.Background()

	store, err := stores.GetStore(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up storage")
	}

	gen, err := generation.FromEnv(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up generation backend")
	}

	ws := workspace.New(workspace.Options{
		Generator:      gen,
		Uploader:       ingest.FromEnv(),
		Exports:        store,
		ExportFilename: exportFilename(),
	})

	ioo := websocket.SetupSocketIO(ws.List)
	ws.SetNotifier(websocket.NewBroadcaster(ioo))

	r := setupRouter(ws, store)
	r.Mount("/socket.io/", ioo.ServeHandler(nil))

	srv := &http.Server{Addr: *listenAddress, Handler: r}
	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(srv, ioo)
}
