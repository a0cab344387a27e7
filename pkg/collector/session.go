package collector

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"tagsignal/pkg/browser"
	"tagsignal/pkg/config"
	"tagsignal/pkg/feed"
	"tagsignal/pkg/logger"
	"tagsignal/pkg/retry"
)

// TagStats summarizes one tag's collection pass.
type TagStats struct {
	Tag        string
	Target     int
	Collected  int
	Duplicates int
	// Attempts counts loop iterations that produced nothing new: extraction
	// faults, empty node sets, and all-duplicate pages. Monotonic.
	Attempts int
	// Stalls counts scrolls after which the page extent did not grow.
	// Monotonic; the exit condition uses the consecutive run, which resets
	// on growth.
	Stalls int
	Err    error
}

// TagCollector runs the pagination loop for a single tag against an
// already-authenticated session. Safe for concurrent use across tags; the
// shared dedup store does the cross-tag arbitration.
type TagCollector struct {
	cfg    *config.CollectConfig
	parser *RecordParser
	seen   *SeenSet
	log    logger.Logger
}

// NewTagCollector wires a collector over the shared parser and dedup store.
func NewTagCollector(cfg *config.CollectConfig, parser *RecordParser, seen *SeenSet, log logger.Logger) *TagCollector {
	return &TagCollector{cfg: cfg, parser: parser, seen: seen, log: log}
}

// searchURL builds the live results-view URL for a tag. English-language
// results only; mixed-script bodies defeat the downstream text pipeline.
func (c *TagCollector) searchURL(tag string) string {
	query := url.QueryEscape(tag + " lang:en")
	return strings.ReplaceAll(c.cfg.SearchURL, "{query}", query)
}

// Collect paginates the tag's results feed until the target is met, the
// attempt or stall bound trips, or the context is cancelled. Records
// admitted before an error are always returned alongside it.
func (c *TagCollector) Collect(ctx context.Context, sess browser.Session, tag string, target int) ([]feed.Record, TagStats, error) {
	stats := TagStats{Tag: tag, Target: target}
	log := c.log.WithField("tag", tag)

	navCfg := retry.DefaultConfig()
	navCfg.Context = ctx
	navCfg.Logger = log
	if err := retry.Do(func() error {
		return sess.Navigate(c.searchURL(tag))
	}, navCfg); err != nil {
		stats.Err = err
		return nil, stats, err
	}

	if err := c.settle(ctx, c.cfg.Settle.InitialMin, c.cfg.Settle.InitialMax); err != nil {
		stats.Err = err
		return nil, stats, err
	}

	extent, err := sess.MeasureExtent()
	if err != nil {
		extent = 0
	}

	var records []feed.Record
	stallRun := 0

	for stats.Attempts < c.cfg.AttemptLimit && stallRun < c.cfg.StallLimit && stats.Collected < target {
		if err := ctx.Err(); err != nil {
			stats.Err = err
			return records, stats, err
		}

		nodes, err := sess.FindAll(browser.SelPost)
		if err != nil {
			stats.Attempts++
			log.WithError(err).Warn("extraction failed, backing off")
			if werr := c.settle(ctx, c.cfg.Settle.FaultMin, c.cfg.Settle.FaultMax); werr != nil {
				stats.Err = werr
				return records, stats, werr
			}
			continue
		}

		if len(nodes) == 0 {
			stats.Attempts++
			log.Debug("no posts visible yet")
			if werr := c.settle(ctx, c.cfg.Settle.MissMin, c.cfg.Settle.MissMax); werr != nil {
				stats.Err = werr
				return records, stats, werr
			}
			continue
		}

		admitted := 0
		for _, node := range nodes {
			rec, ok := c.parser.Parse(node)
			if !ok {
				continue
			}
			if !c.seen.Admit(rec) {
				stats.Duplicates++
				continue
			}
			rec.SourceTag = tag
			records = append(records, *rec)
			stats.Collected++
			admitted++
			if stats.Collected >= target {
				break
			}
		}
		if admitted == 0 {
			stats.Attempts++
		}

		log.DebugWithFields("page extracted", map[string]interface{}{
			"visible":   len(nodes),
			"admitted":  admitted,
			"collected": stats.Collected,
			"target":    target,
		})

		if err := sess.ScrollToEnd(); err != nil {
			stats.Attempts++
			log.WithError(err).Warn("scroll failed, backing off")
			if werr := c.settle(ctx, c.cfg.Settle.FaultMin, c.cfg.Settle.FaultMax); werr != nil {
				stats.Err = werr
				return records, stats, werr
			}
			continue
		}
		if werr := c.settle(ctx, c.cfg.Settle.ScrollMin, c.cfg.Settle.ScrollMax); werr != nil {
			stats.Err = werr
			return records, stats, werr
		}

		next, err := sess.MeasureExtent()
		if err != nil {
			stats.Attempts++
			if werr := c.settle(ctx, c.cfg.Settle.FaultMin, c.cfg.Settle.FaultMax); werr != nil {
				stats.Err = werr
				return records, stats, werr
			}
			continue
		}
		if next <= extent {
			stallRun++
			stats.Stalls++
		} else {
			stallRun = 0
			extent = next
		}
	}

	log.InfoWithFields("tag pass finished", map[string]interface{}{
		"collected":  stats.Collected,
		"duplicates": stats.Duplicates,
		"attempts":   stats.Attempts,
		"stalls":     stats.Stalls,
		"target":     target,
	})

	return records, stats, nil
}

// settle sleeps a random duration in [min, max] seconds, or returns early
// when the context is cancelled.
func (c *TagCollector) settle(ctx context.Context, min, max float64) error {
	span := max - min
	if span < 0 {
		span = 0
	}
	d := time.Duration((min + rand.Float64()*span) * float64(time.Second))
	return retry.Wait(ctx, d)
}
