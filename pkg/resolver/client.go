// Package resolver calls the external email-discovery and email-validation
// webhooks and maps their answers onto terminal records.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/person"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/redact"
)

// Client resolves person queries against the email-discovery webhook.
type Client struct {
	t      *transport
	source string
	logger zerolog.Logger
	now    func() time.Time
}

type findRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Domain    string `json:"domain"`
	Source    string `json:"source"`
}

// New builds a Client. It fails only when cfg.Endpoint is not a usable URL.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	t, err := newTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	return &Client{
		t:      t,
		source: cfg.Source,
		logger: logger.With().Str("component", "resolver").Logger(),
		now:    time.Now,
	}, nil
}

// Resolve makes a single call for q and never fails: transport errors,
// timeouts and non-2xx responses become an ERROR record.
func (c *Client) Resolve(ctx context.Context, q person.Query) outcome.Record {
	c.logger.Debug().
		Str("first_name", q.FirstName).
		Str("last_name", q.LastName).
		Str("domain", q.Domain).
		Msg("searching email")

	start := time.Now()
	f, err := c.t.postJSON(ctx, findRequest{
		FirstName: q.FirstName,
		LastName:  q.LastName,
		Domain:    q.Domain,
		Source:    c.source,
	})
	resolverRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		class := Classify(err)
		resolverErrorsTotal.WithLabelValues(string(class)).Inc()
		resolverRequestsTotal.WithLabelValues(string(outcome.StatusError)).Inc()
		msg := redact.Secrets(err.Error())
		c.logger.Warn().
			Str("first_name", q.FirstName).
			Str("last_name", q.LastName).
			Str("domain", q.Domain).
			Str("error_class", string(class)).
			Str("error", msg).
			Msg("email search failed")
		return outcome.Failure(q, errors.New(msg), c.now())
	}

	rec := merge(q, f, c.now())
	resolverRequestsTotal.WithLabelValues(string(rec.Status)).Inc()
	return rec
}

// merge lays the known response fields over q; the response wins on name and
// domain collisions. status and timestamp are owned by the record and dropped.
func merge(q person.Query, f fields, at time.Time) outcome.Record {
	merged := q
	if v, ok := f.str("firstName"); ok {
		merged.FirstName = v
	}
	if v, ok := f.str("lastName"); ok {
		merged.LastName = v
	}
	if v, ok := f.str("domain"); ok {
		merged.Domain = v
	}

	rec := outcome.Record{
		Query:     &merged,
		Status:    outcome.StatusNotFound,
		Timestamp: at.UTC(),
	}
	if email, ok := f.str("email"); ok && email != "" {
		rec.Email = &email
		rec.Status = outcome.StatusFound
	}

	certainty, hasCertainty := f.number("certainty")
	score, hasScore := f.number("score")
	switch {
	case hasCertainty:
		rec.Certainty = certainty
	case hasScore:
		rec.Certainty = score
	}

	f.take("status")
	f.take("timestamp")
	rec.Attributes = f.rest()
	return rec
}
