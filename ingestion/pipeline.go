package ingestion

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/docuquery/docuquery/core"
	"github.com/docuquery/docuquery/index"
	"github.com/docuquery/docuquery/search"
	"github.com/docuquery/docuquery/storage"
)

const (
	// DefaultPoolSize bounds concurrent indexing jobs.
	DefaultPoolSize = 4

	// DefaultStaleTimeout is how long a task may sit in processing before
	// startup recovery marks it failed.
	DefaultStaleTimeout = 30 * time.Minute
)

// Pipeline runs document indexing as background tasks. A submission
// immediately persists a processing task record and returns its id; a
// worker then loads, chunks, embeds, and stores the document, and drives
// the record to completed or failed. Task state lives in storage, so status
// polling works across restarts.
type Pipeline struct {
	tasks     storage.TaskRepository
	chunks    storage.ChunkRepository
	vector    index.VectorIndex
	retriever *search.HybridRetriever
	chunker   *Chunker
	pool      *ants.Pool
	logger    *slog.Logger
}

// PipelineOption is a functional option for configuring a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	poolSize     int
	staleTimeout time.Duration
	logger       *slog.Logger
}

// WithPoolSize sets the number of concurrent indexing workers.
func WithPoolSize(size int) PipelineOption {
	return func(c *pipelineConfig) {
		if size > 0 {
			c.poolSize = size
		}
	}
}

// WithStaleTimeout sets the processing age after which startup recovery
// fails a task.
func WithStaleTimeout(d time.Duration) PipelineOption {
	return func(c *pipelineConfig) {
		if d > 0 {
			c.staleTimeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// IngestOptions carries optional metadata applied to every chunk of a
// submission.
type IngestOptions struct {
	// FolderID scopes the document to a folder for filtered retrieval.
	FolderID string

	// DocumentID identifies the document across re-uploads. When set,
	// previously indexed chunks of the same document are replaced.
	DocumentID string

	// OriginalFileName overrides the on-disk name in chunk metadata,
	// useful when the file arrives via a temp path.
	OriginalFileName string
}

// NewPipeline creates a pipeline and runs stale-task recovery: processing
// records older than the stale timeout are failed, since no worker can
// still be driving them after a restart.
func NewPipeline(
	tasks storage.TaskRepository,
	chunks storage.ChunkRepository,
	vector index.VectorIndex,
	retriever *search.HybridRetriever,
	chunker *Chunker,
	opts ...PipelineOption,
) (*Pipeline, error) {
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if vector == nil {
		return nil, ErrVectorIndexRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if chunker == nil {
		return nil, ErrSegmenterRequired
	}

	cfg := &pipelineConfig{
		poolSize:     DefaultPoolSize,
		staleTimeout: DefaultStaleTimeout,
		logger:       slog.Default().With("component", "ingestion-pipeline"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := ants.NewPool(cfg.poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		tasks:     tasks,
		chunks:    chunks,
		vector:    vector,
		retriever: retriever,
		chunker:   chunker,
		pool:      pool,
		logger:    cfg.logger,
	}

	recovered, err := tasks.FailStale(context.Background(), cfg.staleTimeout)
	if err != nil {
		pool.Release()
		return nil, err
	}
	if recovered > 0 {
		p.logger.Warn("failed stale indexing tasks from previous run", "count", recovered)
	}

	return p, nil
}

// CreateTask persists a processing task for the file and schedules the
// indexing job. The returned task id is immediately pollable via GetTask.
func (p *Pipeline) CreateTask(ctx context.Context, path string, opts IngestOptions) (string, error) {
	fileName := opts.OriginalFileName
	if fileName == "" {
		fileName = path
	}

	task := &core.IndexTask{
		Id:       uuid.NewString(),
		FileName: fileName,
		Status:   core.TaskStatusProcessing,
	}
	if err := p.tasks.CreateTask(ctx, task); err != nil {
		return "", err
	}

	submitErr := p.pool.Submit(func() {
		// Detached from the request context: the job outlives the
		// submission call.
		p.process(context.Background(), task.Id, path, opts)
	})
	if submitErr != nil {
		if _, err := p.tasks.FailTask(ctx, task.Id, "failed to schedule indexing job"); err != nil {
			p.logger.Error("failed to mark unschedulable task", "task", task.Id, "err", err)
		}
		return "", submitErr
	}

	p.logger.Info("indexing task created", "task", task.Id, "file", fileName)
	return task.Id, nil
}

// GetTask returns the current state of a task record.
func (p *Pipeline) GetTask(ctx context.Context, id string) (*core.IndexTask, error) {
	return p.tasks.GetTask(ctx, id)
}

// Release stops the worker pool. In-flight jobs finish; queued jobs that
// never ran are recovered as stale on the next startup.
func (p *Pipeline) Release() {
	p.pool.Release()
}

// process runs one indexing job end to end and records the outcome on the
// task. Failing the task is the last action, so any error short-circuits
// into FailTask with the error text as the user-visible reason.
func (p *Pipeline) process(ctx context.Context, taskID, path string, opts IngestOptions) {
	if err := p.index(ctx, taskID, path, opts); err != nil {
		p.logger.Error("indexing failed", "task", taskID, "file", path, "err", err)
		if _, ferr := p.tasks.FailTask(ctx, taskID, err.Error()); ferr != nil {
			p.logger.Error("failed to record task failure", "task", taskID, "err", ferr)
		}
	}
}

func (p *Pipeline) index(ctx context.Context, taskID, path string, opts IngestOptions) error {
	docs, err := loadSource(path)
	if err != nil {
		return err
	}

	if opts.OriginalFileName != "" {
		for i := range docs {
			docs[i].FileName = opts.OriginalFileName
		}
	}

	chunks, err := p.chunker.Chunk(ctx, docs)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return ErrEmptyDocument
	}

	for _, chunk := range chunks {
		chunk.DocumentID = opts.DocumentID
		chunk.FolderID = opts.FolderID
	}

	// Re-uploads replace the previous version of the document everywhere.
	if opts.DocumentID != "" {
		if err := p.vector.DeleteByDocument(ctx, opts.DocumentID); err != nil {
			return err
		}
		if err := p.chunks.DeleteChunksByDocument(ctx, opts.DocumentID); err != nil {
			return err
		}
		p.retriever.RemoveDocument(opts.DocumentID)
	}

	if err := p.vector.Upsert(ctx, chunks...); err != nil {
		return err
	}
	if err := p.chunks.AddChunks(ctx, chunks...); err != nil {
		return err
	}
	p.retriever.AddChunks(chunks...)

	pages := countPages(docs)
	if pages < 1 {
		pages = len(chunks)
	}

	if _, err := p.tasks.CompleteTask(ctx, taskID, len(chunks), pages); err != nil {
		return err
	}

	p.logger.Info("indexing completed",
		"task", taskID, "file", docs[0].FileName, "chunks", len(chunks), "pages", pages)
	return nil
}

// loadSource loads a single file, or every supported file under a
// directory.
func loadSource(path string) ([]SourceDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadDirectory(path)
	}
	return Load(path)
}

// countPages sums each file's page count, counting every file once.
func countPages(docs []SourceDocument) int {
	seen := make(map[string]bool)
	total := 0
	for _, doc := range docs {
		if seen[doc.FileName] {
			continue
		}
		seen[doc.FileName] = true
		total += doc.TotalPages
	}
	return total
}
