package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Samhitha-07/F1GPT/api"
	"github.com/Samhitha-07/F1GPT/chat"
	"github.com/Samhitha-07/F1GPT/config"
	"github.com/Samhitha-07/F1GPT/database"
	"github.com/Samhitha-07/F1GPT/embeddings"
	"github.com/Samhitha-07/F1GPT/ingestion"
	"github.com/Samhitha-07/F1GPT/llm"
	"github.com/Samhitha-07/F1GPT/scraper"
	"github.com/Samhitha-07/F1GPT/vectorstore"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	dataDir := flags.String("dir", "", "also ingest local documents from this directory")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	embedder, err := embeddings.NewEmbedder(cfg, logger)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	svc := ingestion.NewService(
		vectorstore.New(pgPool),
		scraper.New(cfg.ScrapeTimeout),
		embedder,
		logger,
		ingestion.Options{
			Collection: cfg.Collection,
			Dimension:  cfg.Embeddings.Dimension,
			Metric:     cfg.Metric,
		},
	)

	logger.Printf("ingesting %d sources into %s using %s embeddings", len(ingestion.SourceURLs), cfg.Collection, cfg.Embeddings.Model)
	if err := svc.Run(ctx, ingestion.SourceURLs); err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}

	if *dataDir != "" {
		if err := svc.IngestDirectory(ctx, *dataDir); err != nil {
			logger.Fatalf("directory ingestion failed: %v", err)
		}
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.HTTPAddr, "listen address")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, pgPool, err := buildChatService(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("chat service setup: %v", err)
	}
	defer pgPool.Close()

	server := &http.Server{
		Addr:    *addr,
		Handler: api.New(svc, logger),
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	question := flags.String("question", "", "question to ask")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, pgPool, err := buildChatService(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("chat service setup: %v", err)
	}
	defer pgPool.Close()

	conversation := []llm.Message{{Role: llm.RoleUser, Content: *question}}
	streamFn := func(delta string) error {
		_, err := fmt.Print(delta)
		return err
	}

	if err := svc.Answer(ctx, conversation, streamFn); err != nil {
		logger.Fatalf("ask failed: %v", err)
	}
	fmt.Println()
}

func clearCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	collection := flags.String("collection", cfg.Collection, "collection to drop")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse clear flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	if err := vectorstore.New(pgPool).Drop(ctx, *collection); err != nil {
		logger.Fatalf("drop collection: %v", err)
	}
	logger.Printf("dropped collection %s", *collection)
}

func buildChatService(ctx context.Context, cfg config.Config, logger *log.Logger) (*chat.Service, interface{ Close() }, error) {
	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres connection: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg, logger)
	if err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("embedder setup: %w", err)
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("llm setup: %w", err)
	}

	svc := chat.NewService(
		vectorstore.New(pgPool),
		embedder,
		llmClient,
		logger,
		chat.Options{Collection: cfg.Collection, TopK: cfg.TopK},
	)

	return svc, pgPool, nil
}

func printUsage() {
	fmt.Println("Usage: f1gpt <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  ingest   Scrape the source pages and load them into the vector collection (use --dir for local documents)")
	fmt.Println("  serve    Run the HTTP API for the chat UI")
	fmt.Println("  ask      Ask a one-shot question from the terminal")
	fmt.Println("  clear    Drop the vector collection and its registry entry")
}
