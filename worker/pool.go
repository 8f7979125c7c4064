// Package worker runs split and chunk jobs on a fixed set of goroutines.
// Each submitted request gets a correlation id and a private result channel,
// so concurrent jobs for different files can never receive each other's
// results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oarkflow/log"
	"golang.org/x/sync/errgroup"

	"github.com/oarkflow/sqlkit/splitter"
	"github.com/oarkflow/sqlkit/validation"
)

var (
	// ErrNotStarted is returned by Submit before Start.
	ErrNotStarted = errors.New("worker: pool not started")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("worker: pool closed")
)

// Kind selects what a Request does.
type Kind string

const (
	KindSplit      Kind = "split"
	KindChunkSize  Kind = "chunk-size"
	KindChunkCount Kind = "chunk-count"
)

// Request is one unit of work.
type Request struct {
	Kind   Kind   `json:"kind"`
	SQL    string `json:"sql"`
	Header string `json:"header"`
	// MaxBytes is the byte budget of KindChunkSize and the optional size
	// ceiling of KindChunkCount.
	MaxBytes int `json:"max_bytes"`
	MaxDML   int `json:"max_dml"`
	// Fallback names chunks without an INTO target.
	Fallback string `json:"fallback"`
}

// NamedChunk is a chunk with the output file name derived from it.
type NamedChunk struct {
	splitter.Chunk
	BaseName string `json:"base_name"`
	FileName string `json:"file_name"`
}

// Response carries the result of a Request, tagged with its id.
type Response struct {
	ID         string        `json:"id"`
	Kind       Kind          `json:"kind"`
	Statements []string      `json:"statements"`
	Chunks     []NamedChunk  `json:"chunks,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Validate checks the request parameters its kind depends on.
func (r Request) Validate() error {
	v := validation.NewValidator()
	v.ValidateOneOf("kind", string(r.Kind), string(KindSplit), string(KindChunkSize), string(KindChunkCount))
	switch r.Kind {
	case KindChunkSize:
		v.ValidatePositive("max_bytes", r.MaxBytes)
	case KindChunkCount:
		v.ValidatePositive("max_dml", r.MaxDML)
		if r.MaxBytes < 0 {
			v.AddError("max_bytes", fmt.Sprintf("%d", r.MaxBytes), "must not be negative")
		}
	}
	return v.Error()
}

// Process runs req on the calling goroutine.
func Process(id string, req Request) Response {
	start := time.Now()
	resp := Response{ID: id, Kind: req.Kind, Statements: splitter.Split(req.SQL)}
	var chunks []splitter.Chunk
	switch req.Kind {
	case KindChunkSize:
		chunks = splitter.ChunkBySize(resp.Statements, req.MaxBytes, req.Header)
	case KindChunkCount:
		chunks = splitter.ChunkByCount(resp.Statements, req.MaxDML, req.Header, req.MaxBytes)
	}
	namer := splitter.NewNamer()
	for i, c := range chunks {
		base := splitter.BaseName(c.Content, i, req.Fallback)
		resp.Chunks = append(resp.Chunks, NamedChunk{
			Chunk:    c,
			BaseName: base,
			FileName: namer.ChunkFileName(base, i, len(chunks)),
		})
	}
	resp.Elapsed = time.Since(start)
	return resp
}

type outcome struct {
	resp Response
	err  error
}

type job struct {
	ctx  context.Context
	id   string
	req  Request
	done chan outcome
}

// Ticket is the handle of a submitted request.
type Ticket struct {
	ID   string
	done chan outcome
}

// Wait blocks until the result arrives or ctx is done. Abandoning a ticket is
// safe: the worker still completes into the ticket's buffered channel.
func (t *Ticket) Wait(ctx context.Context) (Response, error) {
	select {
	case o := <-t.done:
		return o.resp, o.err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Pool executes requests on a fixed number of workers.
type Pool struct {
	workers   int
	queueSize int
	logger    *log.Logger

	mu      sync.RWMutex
	queue   chan job
	group   *errgroup.Group
	ctx     context.Context
	stop    chan struct{}
	once    sync.Once
	started bool
	closed  bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger makes the pool log job completion at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithQueueSize sets how many submitted requests may wait for a worker.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		p.queueSize = n
	}
}

// NewPool creates a pool of workers goroutines, at least one.
func NewPool(workers int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{workers: workers, queueSize: workers * 4}
	for _, opt := range opts {
		opt(p)
	}
	if p.queueSize < 0 {
		p.queueSize = 0
	}
	return p
}

// Start launches the workers. They stop when ctx is cancelled or Close is
// called; jobs still queued at cancellation are answered with the context
// error.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.queue = make(chan job, p.queueSize)
	p.stop = make(chan struct{})
	p.group, p.ctx = errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		p.group.Go(func() error {
			return p.run(i)
		})
	}
	p.group.Go(p.watch)
}

// watch closes the queue when the pool context ends. Workers then answer
// every job still queued with the context error and exit.
func (p *Pool) watch() error {
	select {
	case <-p.stop:
		return nil
	case <-p.ctx.Done():
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	return nil
}

func (p *Pool) run(worker int) error {
	for j := range p.queue {
		p.handle(worker, j)
	}
	return nil
}

func (p *Pool) handle(worker int, j job) {
	if err := p.ctx.Err(); err != nil {
		j.done <- outcome{err: err}
		return
	}
	if err := j.ctx.Err(); err != nil {
		j.done <- outcome{err: err}
		return
	}
	resp := Process(j.id, j.req)
	if p.logger != nil {
		p.logger.Debug().
			Str("id", j.id).
			Str("kind", string(j.req.Kind)).
			Int("worker", worker).
			Int("statements", len(resp.Statements)).
			Int("chunks", len(resp.Chunks)).
			Msg("job done")
	}
	j.done <- outcome{resp: resp}
}

// Submit validates req and queues it. It blocks while the queue is full,
// until ctx is done.
func (p *Pool) Submit(ctx context.Context, req Request) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.started {
		return nil, ErrNotStarted
	}
	if p.closed || p.ctx.Err() != nil {
		return nil, ErrClosed
	}
	t := &Ticket{ID: uuid.New().String(), done: make(chan outcome, 1)}
	select {
	case p.queue <- job{ctx: ctx, id: t.ID, req: req, done: t.done}:
		return t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrClosed
	}
}

// Do submits req and waits for its response.
func (p *Pool) Do(ctx context.Context, req Request) (Response, error) {
	t, err := p.Submit(ctx, req)
	if err != nil {
		return Response{}, err
	}
	return t.Wait(ctx)
}

// Close stops accepting requests, lets queued ones finish and waits for the
// workers to exit.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.started {
		p.closed = true
		p.mu.Unlock()
		return nil
	}
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.once.Do(func() { close(p.stop) })
	return p.group.Wait()
}
