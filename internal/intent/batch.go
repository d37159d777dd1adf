package intent

import (
	"context"
	"sync"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
)

// Batch classifies posts in parallel with a fixed worker pool. Results keep
// the input order. A classifier failure downgrades that post to a LOW
// zero-confidence assessment instead of failing the batch.
type Batch struct {
	classifier  Classifier
	concurrency int
	log         logger.Logger
}

func NewBatch(classifier Classifier, concurrency int, log logger.Logger) *Batch {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Batch{classifier: classifier, concurrency: concurrency, log: log}
}

// Classify scores every post against the query keywords.
func (b *Batch) Classify(ctx context.Context, posts []domain.Post, keywords []string) []domain.ScoredPost {
	if len(posts) == 0 {
		return nil
	}

	start := time.Now()
	scored := make([]domain.ScoredPost, len(posts))
	jobs := make(chan int, len(posts))

	var wg sync.WaitGroup
	var failures int64
	var mu sync.Mutex

	for w := 0; w < b.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					scored[i] = domain.ScoredPost{Post: posts[i], Assessment: b.fallback(ctx.Err())}
					continue
				default:
				}

				assessment, err := b.classifier.Classify(ctx, posts[i].Content, keywords)
				if err != nil {
					b.log.Warn("Classification failed",
						logger.String("external_id", posts[i].ExternalID),
						logger.Error(err),
					)
					mu.Lock()
					failures++
					mu.Unlock()
					assessment = b.fallback(err)
				}
				scored[i] = domain.ScoredPost{Post: posts[i], Assessment: assessment}
			}
		}()
	}

	for i := range posts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	b.log.Info("Batch classification complete",
		logger.Int("posts", len(posts)),
		logger.Int64("failures", failures),
		logger.String("strategy", b.classifier.Strategy()),
		logger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return scored
}

// fallback is the assessment used when the classifier errors out. LOW with
// zero confidence keeps the post visible without promoting it, and the
// signal tells the user why the score is a placeholder.
func (b *Batch) fallback(err error) domain.Assessment {
	signal := "classification failed"
	if err != nil {
		signal += ": " + err.Error()
	}
	return domain.Assessment{
		Label:      domain.IntentLow,
		Confidence: 0,
		Signals:    []string{signal},
		Strategy:   b.classifier.Strategy(),
	}
}
