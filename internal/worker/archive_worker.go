package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/blueskyzii/Latihan-PPKN/internal/config"
)

// ArchiveWorker consumes archive_results_queue and inserts finished exam
// results into PostgreSQL. Archiving is fire-and-forget from the session's
// point of view: the queue decouples the exam flow from database health.
type ArchiveWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewArchiveWorker creates a new ArchiveWorker.
func NewArchiveWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ArchiveWorker {
	return &ArchiveWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "archive_worker").Logger(),
	}
}

type resultPayload struct {
	ClientID   string `json:"client_id"`
	QuizID     string `json:"quiz_id"`
	Correct    int    `json:"correct"`
	Wrong      int    `json:"wrong"`
	Total      int    `json:"total"`
	Score      int    `json:"score"`
	Forced     bool   `json:"forced"`
	FinishedAt int64  `json:"finished_at"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ArchiveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ArchiveWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.ArchiveResultsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload resultPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		// Malformed JSON cannot be retried. Log and discard.
		w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed payload")
		return
	}

	if err := w.persistResult(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("client_id", payload.ClientID).
			Str("quiz_id", payload.QuizID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.ArchiveResultsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *ArchiveWorker) persistResult(ctx context.Context, p *resultPayload) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO exam_results (client_id, quiz_id, correct_count, wrong_count, total_questions, score_percent, forced, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ClientID, p.QuizID, p.Correct, p.Wrong, p.Total, p.Score, p.Forced, time.Unix(p.FinishedAt, 0),
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *ArchiveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.ArchiveResultsQueue).Result()
		if err != nil {
			break
		}

		var payload resultPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistResult(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.ArchiveResultsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
