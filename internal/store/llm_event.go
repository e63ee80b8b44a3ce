package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// eventRepo implements EventRepo on sqlx and the global sequence counter.
type eventRepo struct {
	db  *sqlx.DB
	seq *sequenceCounter
}

// llmEventRow is the stored shape of an LLMEvent. Timestamps are kept as
// Unix nanoseconds.
type llmEventRow struct {
	ID        int   `db:"id"`
	Sequence  int64 `db:"sequence"`
	Timestamp int64 `db:"timestamp"`
	LLMRequestEventData
}

func (r llmEventRow) event() LLMEvent {
	return LLMEvent{
		ID:                  r.ID,
		Sequence:            r.Sequence,
		Timestamp:           time.Unix(0, r.Timestamp).UTC(),
		LLMRequestEventData: r.LLMRequestEventData,
	}
}

const insertLLMEvent = `INSERT INTO llm_request_events (
	sequence, timestamp, provider, model, purpose, batch_id, slot,
	input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body
) VALUES (
	:sequence, :timestamp, :provider, :model, :purpose, :batch_id, :slot,
	:input_tokens, :output_tokens, :latency_ms, :success, :error_message, :request_body, :response_body
)`

const selectLLMEvents = `SELECT id, sequence, timestamp, provider, model, purpose, batch_id, slot,
	input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body
	FROM llm_request_events`

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	row := llmEventRow{
		Sequence:            seqNum,
		Timestamp:           time.Now().UTC().UnixNano(),
		LLMRequestEventData: data,
	}
	if _, err := r.db.NamedExecContext(ctx, insertLLMEvent, row); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.Purpose != "" {
		where = append(where, "purpose = ?")
		args = append(args, opts.Purpose)
	}
	if opts.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, opts.BatchID)
	}

	q := selectLLMEvents
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []llmEventRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	events := make([]LLMEvent, len(rows))
	for i, row := range rows {
		events[i] = row.event()
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	var row llmEventRow
	err := r.db.GetContext(ctx, &row, selectLLMEvents+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	e := row.event()
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var out []PurposeUsage
	err := r.db.SelectContext(ctx, &out, `SELECT purpose,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens,
		CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER) AS avg_latency_ms
		FROM llm_request_events GROUP BY purpose ORDER BY purpose`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var out []ModelUsage
	err := r.db.SelectContext(ctx, &out, `SELECT model,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens
		FROM llm_request_events GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}
