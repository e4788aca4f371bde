package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"search-rag/internal/chromemdb"
	"search-rag/internal/config"
	"search-rag/internal/db"
	"search-rag/internal/embedding"
	"search-rag/internal/extractor"
	"search-rag/internal/fetcher"
	"search-rag/internal/helper"
	"search-rag/internal/llmservice"
	"search-rag/internal/rag"
	"search-rag/internal/scraper"
	"search-rag/internal/search"
	"search-rag/internal/sources"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment as is")
	}

	query := flag.String("query", "", "Query to research and answer")
	urls := flag.String("urls", "", "Comma-separated URLs to index instead of searching")
	session := flag.String("session", "", "Session ID to reuse; a new one is generated when empty")
	drop := flag.Bool("drop", false, "Drop the session's sources and exit")
	dryRun := flag.Bool("dry-run", false, "Fetch and extract only, do not embed or store")
	flag.Parse()

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	sessionID := *session
	if sessionID == "" {
		sessionID, err = helper.GenerateSessionID()
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating session ID")
		}
		log.Info().Str("session", sessionID).Msg("Started new session")
	}

	ctx := context.Background()

	if *dryRun {
		if *urls == "" {
			log.Fatal().Msg("Please provide URLs with the -urls flag for a dry run")
		}
		dryRunScrape(ctx, cfg, splitURLs(*urls))
		return
	}

	pipeline, cleanup := buildPipeline(ctx, cfg)
	defer cleanup()

	if *drop {
		if err := pipeline.Drop(ctx, sessionID); err != nil {
			log.Fatal().Err(err).Msg("Error dropping session")
		}
		log.Info().Str("session", sessionID).Msg("Session dropped")
		return
	}

	if *query == "" {
		log.Fatal().Msg("Please provide a query using the -query flag")
	}

	if *urls != "" {
		indexURLs(ctx, pipeline, sessionID, splitURLs(*urls))
	} else {
		hits, err := pipeline.Research(ctx, sessionID, *query)
		if err != nil {
			log.Fatal().Err(err).Msg("Error researching query")
		}
		log.Info().Int("links", len(hits)).Msg("Indexed search results")
	}

	response, err := pipeline.Answer(ctx, sessionID, *query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering query")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Query)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for _, src := range response.Sources {
		fmt.Printf("%.3f  %s\n", src.Similarity, src.Link)
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*rag.Pipeline, func()) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	gateway := embedding.NewGateway(embedder, cfg.RAG.EmbeddingDim)

	backend, cleanup := buildBackend(ctx, cfg)
	store := sources.New(backend, gateway, cfg.RAG.RecencyWindow)

	scr := buildScraper(cfg)
	prev := cleanup
	cleanup = func() {
		scr.Close()
		prev()
	}

	llm, err := llmservice.NewModel(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}

	searchClient := search.NewClient(&cfg.Search)
	return rag.NewPipeline(searchClient, scr, store, gateway, llm, cfg), cleanup
}

func buildBackend(ctx context.Context, cfg *config.Config) (sources.Backend, func()) {
	switch cfg.Storage.Backend {
	case "chromem":
		store, err := chromemdb.NewStore(cfg.Storage.Path, false)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening vector database")
		}
		return store, func() {}
	default:
		dbClient, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		dbInstance := db.NewDB(dbClient, cfg.Database.Debug)
		if err := db.InitDB(ctx, dbInstance); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		return db.NewStore(dbInstance), func() { dbInstance.Close() }
	}
}

func buildScraper(cfg *config.Config) *scraper.Scraper {
	f := fetcher.New(cfg.Scraper.FetchTimeout())
	r := fetcher.NewRenderer(cfg.Scraper.RenderTimeout())
	e := extractor.New(cfg.Scraper.MaxContent)
	scr, err := scraper.New(f, r, e, cfg.Scraper.Concurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing scraper")
	}
	return scr
}

func indexURLs(ctx context.Context, pipeline *rag.Pipeline, sessionID string, urls []string) {
	docs := pipeline.Acquire(ctx, urls)
	entries := rag.EntriesFromDocuments(docs)
	if err := pipeline.Index(ctx, sessionID, entries); err != nil {
		log.Warn().Err(err).Msg("Some sources were not indexed")
	}
	log.Info().Int("urls", len(urls)).Msg("Indexed URLs")
}

func dryRunScrape(ctx context.Context, cfg *config.Config, urls []string) {
	scr := buildScraper(cfg)
	defer scr.Close()

	docs := scr.ScrapeAll(ctx, urls)
	helper.PrettyPrint(docs)
}

func splitURLs(s string) []string {
	parts := strings.Split(s, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}
