package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"builder/internal/config"
	mcpserver "builder/internal/mcp"
	"builder/internal/server"
	"builder/internal/service"
	"builder/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP stdio mode.
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config file overlaying env vars")
		mcpMode    = flag.Bool("mcp", false, "serve the MCP server on stdin/stdout instead of HTTP")
	)
	flag.Parse()

	cfg := config.Load()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	projectStore := storage.NewProjectStore(db)
	if err := projectStore.EnsureDefault(); err != nil {
		log.Fatalf("Failed to ensure default project: %v", err)
	}

	var emitter service.EventEmitter = noopEmitter{}
	elements := service.NewElementService(storage.NewElementStore(db), emitter)
	projects := service.NewProjectService(projectStore)

	if *mcpMode {
		s := mcpserver.New(mcpserver.Deps{Elements: elements, Projects: projects})
		if err := s.ServeStdio(); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}
		return
	}

	snapshots := service.NewSnapshotService(projectStore, storage.NewElementStore(db), emitter, cfg.SnapshotDir)
	if err := snapshots.Start(ctx, cfg.SnapshotCron); err != nil {
		log.Fatalf("Failed to start snapshot scheduler: %v", err)
	}
	defer snapshots.Stop()

	srv := server.New(cfg, elements, projects)

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(fresh *config.Config) {
				srv.ApplyConfig(fresh)
			})
			if err != nil && ctx.Err() == nil {
				log.Printf("config watcher stopped: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting builder API on %s (env: %s)", addr, cfg.Environment)
	if err := srv.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
