package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"compliance-rag/internal/classifier"
	"compliance-rag/internal/config"
	"compliance-rag/internal/embedding"
	"compliance-rag/internal/ingest"
	"compliance-rag/internal/llmservice"
	"compliance-rag/internal/rag"
	"compliance-rag/internal/server"
	"compliance-rag/internal/vectorindex"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to the document file to ingest")
	query := flag.String("query", "", "Question to be answered")
	serve := flag.Bool("serve", false, "Start the HTTP server")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	switch {
	case *filePath != "":
		ingestDocument(context.Background(), cfg, *filePath)
	case *query != "":
		answerQuestion(context.Background(), cfg, *query)
	case *serve:
		serveHTTP(cfg)
	default:
		log.Fatal().Msg("Please provide a document file using -file, a question using -query, or -serve to start the HTTP server")
	}
}

func ingestDocument(ctx context.Context, cfg *config.Config, filePath string) {
	embedder, err := embedding.NewOpenAIEmbedder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	index, closeIndex, err := buildIndex(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing vector index")
	}
	defer closeIndex()

	pipeline := ingest.NewPipeline(embedder, index, cfg.RAG.ChunkSize)
	report, err := pipeline.Ingest(ctx, filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}

	log.Info().
		Int("chunks", report.ChunkCount).
		Int("vectors", report.VectorCount).
		Msg("Ingestion complete")
}

func answerQuestion(ctx context.Context, cfg *config.Config, question string) {
	pipeline, closeIndex, err := buildQueryPipeline(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building query pipeline")
	}
	defer closeIndex()

	answer := pipeline.Answer(ctx, question)

	log.Info().Msg("Question:")
	fmt.Printf("%s\n\n", question)
	log.Info().Msg("Assistant:")
	fmt.Printf("%s\n\n", answer)
}

func serveHTTP(cfg *config.Config) {
	pipeline, closeIndex, err := buildQueryPipeline(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building query pipeline")
	}
	defer closeIndex()

	timeout := time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second
	srv := server.New(pipeline, timeout)

	log.Info().Str("addr", cfg.Server.Addr).Msg("Starting HTTP server")
	if err := srv.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
}

func buildQueryPipeline(ctx context.Context, cfg *config.Config) (*rag.Pipeline, func(), error) {
	embedder, err := embedding.NewOpenAIEmbedder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing embedder: %w", err)
	}

	generator, err := llmservice.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.InferenceModel)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing generation client: %w", err)
	}

	index, closeIndex, err := buildIndex(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing vector index: %w", err)
	}

	cls := classifier.New(generator)
	pipeline := rag.NewPipeline(cls, embedder, index, generator, cfg.RAG.TopK)
	return pipeline, closeIndex, nil
}

func buildIndex(ctx context.Context, cfg *config.Config) (vectorindex.Index, func(), error) {
	switch cfg.Vector.Backend {
	case "chromem":
		index, err := vectorindex.NewChromemIndex(cfg.Vector.Path, cfg.Vector.Namespace, false)
		if err != nil {
			return nil, nil, err
		}
		return index, func() {}, nil
	case "postgres":
		index := vectorindex.NewPostgresIndex(cfg.Vector.DSN, cfg.Vector.Password, cfg.Vector.Namespace, cfg.Vector.Debug)
		if err := index.Init(ctx); err != nil {
			return nil, nil, err
		}
		return index, func() { _ = index.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector backend: %s", cfg.Vector.Backend)
	}
}
