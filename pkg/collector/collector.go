// Package collector drives authenticated browsing sessions over the
// platform's results feeds and turns visible posts into deduplicated
// records, one bounded pagination loop per topic tag.
package collector

import (
	"context"
	"sort"
	"time"

	"tagsignal/internal/dispatch"
	"tagsignal/pkg/browser"
	"tagsignal/pkg/config"
	"tagsignal/pkg/feed"
	"tagsignal/pkg/logger"
)

// Result is one full collection run: every admitted record plus the
// per-tag accounting.
type Result struct {
	Records  []feed.Record
	Stats    []TagStats
	Started  time.Time
	Finished time.Time
}

// Total returns the number of records collected across all tags.
func (r *Result) Total() int {
	return len(r.Records)
}

type tagOutcome struct {
	records []feed.Record
	stats   TagStats
}

// Orchestrator runs the per-tag collectors concurrently, each on its own
// exclusive session, and aggregates their output. A single goroutine (the
// caller of Run) owns the merged result, so aggregation needs no locking.
type Orchestrator struct {
	cfg     *config.Config
	factory browser.Factory
	creds   browser.Credentials
	log     logger.Logger
}

// NewOrchestrator wires an orchestrator over a session factory and the
// credentials every session authenticates with.
func NewOrchestrator(cfg *config.Config, factory browser.Factory, creds browser.Credentials, log logger.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, factory: factory, creds: creds, log: log}
}

// Run collects every configured tag and returns the merged result. A tag
// whose session fails loses only its own remainder; the run keeps whatever
// every tag managed to collect. Falling short of the overall target is a
// warning, not an error.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	seen := NewSeenSet()
	parser := NewRecordParser(o.log)
	tagc := NewTagCollector(&o.cfg.Collect, parser, seen, o.log)
	target := o.cfg.Collect.PerTagTarget()

	o.log.InfoWithFields("collection run starting", map[string]interface{}{
		"tags":           o.cfg.Collect.Tags,
		"min_records":    o.cfg.Collect.MinRecords,
		"per_tag_target": target,
		"max_sessions":   o.cfg.Collect.MaxSessions,
		"time_window":    o.cfg.Collect.TimeWindow(),
	})

	result := &Result{Started: time.Now()}

	pool := dispatch.NewPool(o.cfg.Collect.MaxSessions, func(ctx context.Context, tag string) tagOutcome {
		return o.collectTag(ctx, tagc, tag, target)
	}, o.log)
	pool.Start(ctx)

	go func() {
		for _, tag := range o.cfg.Collect.Tags {
			pool.Submit(tag)
		}
		pool.Close()
	}()

	for out := range pool.Results() {
		result.Records = append(result.Records, out.records...)
		result.Stats = append(result.Stats, out.stats)
		if out.stats.Err != nil {
			o.log.WithField("tag", out.stats.Tag).WithError(out.stats.Err).
				Warn("tag pass ended early, keeping partial records")
		}
	}
	result.Finished = time.Now()

	sort.Slice(result.Stats, func(i, j int) bool {
		return result.Stats[i].Tag < result.Stats[j].Tag
	})

	for _, st := range result.Stats {
		if st.Err == nil && st.Collected < st.Target {
			o.log.WarnWithFields("tag fell short of its target", map[string]interface{}{
				"tag":       st.Tag,
				"collected": st.Collected,
				"target":    st.Target,
			})
		}
	}
	if result.Total() < o.cfg.Collect.MinRecords {
		o.log.WarnWithFields("run fell short of the overall target", map[string]interface{}{
			"collected": result.Total(),
			"target":    o.cfg.Collect.MinRecords,
		})
	}

	o.log.InfoWithFields("collection run finished", map[string]interface{}{
		"records":  result.Total(),
		"duration": result.Finished.Sub(result.Started),
	})

	return result, ctx.Err()
}

// collectTag owns one session for the lifetime of one tag pass. The
// session closes on every exit path.
func (o *Orchestrator) collectTag(ctx context.Context, tagc *TagCollector, tag string, target int) tagOutcome {
	log := o.log.WithField("tag", tag)

	sess, err := o.factory.Open(ctx)
	if err != nil {
		log.WithError(err).Error("failed to open session")
		return tagOutcome{stats: TagStats{Tag: tag, Target: target, Err: err}}
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.WithError(cerr).Warn("session close failed")
		}
	}()

	if err := sess.Authenticate(o.creds); err != nil {
		log.WithError(err).Error("authentication failed")
		return tagOutcome{stats: TagStats{Tag: tag, Target: target, Err: err}}
	}

	records, stats, err := tagc.Collect(ctx, sess, tag, target)
	stats.Err = err
	return tagOutcome{records: records, stats: stats}
}
