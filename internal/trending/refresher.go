// Package trending periodically re-runs popular searches and pushes the
// freshest postings to connected clients as best-effort job:new events.
package trending

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"jobpulse/internal/domain"

	"github.com/robfig/cron/v3"
)

type Aggregator interface {
	SearchJobs(ctx context.Context, req domain.SearchRequest) []domain.JobRecord
}

type Broadcaster interface {
	Broadcast(message []byte)
}

const pushPerKeyword = 3

type Refresher struct {
	cron     *cron.Cron
	agg      Aggregator
	hub      Broadcaster
	keywords []string
	spec     string
	logger   *log.Logger
}

func New(agg Aggregator, hub Broadcaster, spec string, keywords []string, logger *log.Logger) *Refresher {
	return &Refresher{
		cron:     cron.New(),
		agg:      agg,
		hub:      hub,
		keywords: keywords,
		spec:     spec,
		logger:   logger,
	}
}

// Start registers the cron entry. A refresher with no spec or no keywords is
// inert; Start is then a no-op.
func (r *Refresher) Start() error {
	if r == nil || r.spec == "" || len(r.keywords) == 0 {
		return nil
	}
	if _, err := r.cron.AddFunc(r.spec, r.refresh); err != nil {
		return err
	}
	r.cron.Start()
	if r.logger != nil {
		r.logger.Printf("trending: started | spec=%q keywords=%d", r.spec, len(r.keywords))
	}
	return nil
}

func (r *Refresher) Stop() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Stop()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, kw := range r.keywords {
		jobs := r.agg.SearchJobs(ctx, domain.SearchRequest{Query: kw, Limit: pushPerKeyword})
		if len(jobs) > pushPerKeyword {
			jobs = jobs[:pushPerKeyword]
		}
		for _, job := range jobs {
			env, err := domain.NewEnvelope(domain.EventJobNew, "", job)
			if err != nil {
				continue
			}
			b, err := json.Marshal(env)
			if err != nil {
				continue
			}
			r.hub.Broadcast(b)
		}
		if r.logger != nil {
			r.logger.Printf("trending: refreshed | keyword=%q pushed=%d", kw, len(jobs))
		}
	}
}
