package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	docuquery "github.com/docuquery/docuquery"
	"github.com/docuquery/docuquery/ai"
	"github.com/docuquery/docuquery/ai/cohere"
	"github.com/docuquery/docuquery/ai/openai"
	"github.com/docuquery/docuquery/config"
	"github.com/docuquery/docuquery/core"
	"github.com/docuquery/docuquery/ingestion"
)

func main() {
	app := &cli.App{
		Name:  "docuquery",
		Usage: "Question answering over your documents with citations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index a document or directory in the background",
				ArgsUsage: "<path>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Folder id to scope the document to",
					},
					&cli.StringFlag{
						Name:  "document-id",
						Usage: "Stable document id; re-indexing replaces the previous version",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Block until indexing finishes",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Ask a single question",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Restrict sources to a folder id",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full answer as JSON",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive question-answering session",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Restrict sources to a folder id",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the state of an indexing task",
				ArgsUsage: "<task-id>",
				Action:    statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newService(c *cli.Context) (*docuquery.Service, *config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.LLM.Host),
		ai.WithAPIKey(cfg.LLMAPIKey()),
		ai.WithEmbeddingModel(cfg.LLM.EmbeddingModel),
		ai.WithCompletionModel(cfg.LLM.CompletionModel),
		ai.WithTimeout(cfg.LLMTimeout()),
	)

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	opts := []docuquery.ServiceOption{
		docuquery.WithTopK(cfg.Retrieval.TopK),
		docuquery.WithRerankTopK(cfg.Retrieval.RerankTopK),
		docuquery.WithVectorWeight(cfg.Retrieval.VectorWeight),
		docuquery.WithRelevanceThreshold(cfg.Retrieval.RelevanceThreshold),
		docuquery.WithHistoryBound(cfg.Retrieval.HistoryBound),
	}

	if key := cfg.RerankAPIKey(); key != "" {
		reranker, err := cohere.NewReranker(key, cohere.WithModel(cfg.Rerank.Model))
		if err != nil {
			provider.Close()
			return nil, nil, fmt.Errorf("failed to create reranker: %w", err)
		}
		opts = append(opts, docuquery.WithReranker(reranker))
	}

	svc, err := docuquery.NewService(cfg.Storage.DataDir, provider, opts...)
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	return svc, cfg, nil
}

func indexCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("path to a document or directory is required")
	}

	svc, _, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	id, err := svc.CreateIndexingTask(ctx, path, ingestion.IngestOptions{
		FolderID:   c.String("folder"),
		DocumentID: c.String("document-id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexing task: %w", err)
	}

	fmt.Printf("task %s created\n", id)
	if !c.Bool("wait") {
		// Without --wait the process would exit before the background job
		// finishes; tell the user how to follow up.
		fmt.Println("run 'docuquery status " + id + "' to check progress")
	}

	for {
		task, err := svc.GetTaskStatus(ctx, id)
		if err != nil {
			return err
		}
		if task.Status.Terminal() {
			printTask(task)
			return nil
		}
		if !c.Bool("wait") {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func queryCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("a question is required")
	}

	svc, _, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	answer, err := svc.RetrieveAndAnswer(context.Background(), question, "", c.String("folder"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	printAnswer(answer)
	return nil
}

func chatCommand(c *cli.Context) error {
	svc, _, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Println("Ask questions about your documents. Type 'exit' to quit, 'clear' to reset the conversation.")

	var sessionID string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "clear":
			if sessionID != "" {
				if err := svc.ClearSession(sessionID); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
				sessionID = ""
			}
			fmt.Println("conversation cleared")
			continue
		}

		answer, err := svc.RetrieveAndAnswer(context.Background(), question, sessionID, c.String("folder"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		sessionID = answer.SessionID

		fmt.Println()
		printAnswer(answer)
		fmt.Println()
	}
}

func statusCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("task id is required")
	}

	svc, _, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	task, err := svc.GetTaskStatus(context.Background(), id)
	if err != nil {
		return err
	}
	printTask(task)
	return nil
}

func printAnswer(answer *docuquery.Answer) {
	fmt.Println(answer.Answer)
	for i, src := range answer.Sources {
		if src.Page > 0 {
			fmt.Printf("  [%d] %s (page %d, score %.4f)\n", i+1, src.Document, src.Page, src.Score)
		} else {
			fmt.Printf("  [%d] %s (score %.4f)\n", i+1, src.Document, src.Score)
		}
	}
}

func printTask(task *core.IndexTask) {
	fmt.Printf("task %s: %s\n", task.Id, task.Status)
	fmt.Printf("  file: %s\n", task.FileName)
	switch task.Status {
	case core.TaskStatusCompleted:
		fmt.Printf("  chunks: %d, pages: %d\n", task.ChunkCount, task.PageCount)
	case core.TaskStatusFailed:
		fmt.Printf("  error: %s\n", task.Error)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := c.String("log-level")
	if levelStr == "" {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return err
		}
		levelStr = cfg.LogLevel
	}

	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
