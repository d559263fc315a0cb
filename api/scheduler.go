/*
scheduler.go - Scheduled report digest

PURPOSE:
  On the first of each month, computes the previous month's profitability
  report and logs its summary. This is the hook downstream digest delivery
  attaches to; delivery itself (email) is an external effect invoked with
  the already-computed report and is out of scope here.
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/warp/margin-engine/engine"
)

// DigestScheduler runs the monthly report job.
type DigestScheduler struct {
	Handler *Handler
	Log     zerolog.Logger

	cron *cron.Cron
}

func NewDigestScheduler(h *Handler, log zerolog.Logger) *DigestScheduler {
	return &DigestScheduler{
		Handler: h,
		Log:     log.With().Str("component", "digest").Logger(),
		cron:    cron.New(),
	}
}

// Start registers the monthly job and starts the cron runner.
func (ds *DigestScheduler) Start() error {
	_, err := ds.cron.AddFunc("@monthly", ds.runDigest)
	if err != nil {
		return err
	}
	ds.cron.Start()
	ds.Log.Info().Msg("monthly digest scheduled")
	return nil
}

// Stop halts the cron runner, waiting for a running job to finish.
func (ds *DigestScheduler) Stop() {
	ctx := ds.cron.Stop()
	<-ctx.Done()
}

// runDigest computes last month's report and logs the summary line the
// digest pipeline consumes.
func (ds *DigestScheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	prev := engine.Today().AddMonths(-1)
	period := engine.MonthPeriod(prev.Year(), prev.Month())

	input, err := ds.Handler.assembleInput(ctx, period)
	if err != nil {
		ds.Log.Error().Err(err).Str("period", period.String()).Msg("digest input assembly failed")
		return
	}
	report := ds.Handler.Engine.BuildReport(*input)

	ds.Log.Info().
		Str("period", period.String()).
		Str("revenue", report.Totals.Revenue.StringFixed(2)).
		Str("cost", report.Totals.Cost.StringFixed(2)).
		Str("profit", report.Totals.Profit.StringFixed(2)).
		Int("clients", len(report.Clients)).
		Int("advisories", len(report.Advisories)).
		Msg("monthly profitability digest")
}
