package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	slotKey    contextKey = "llm_slot"
	batchKey   contextKey = "llm_batch"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithSlot records which batch slot a call belongs to.
func WithSlot(ctx context.Context, slot int) context.Context {
	return context.WithValue(ctx, slotKey, slot)
}

// SlotFrom returns the batch slot, or -1 for calls outside a batch.
func SlotFrom(ctx context.Context) int {
	if v, ok := ctx.Value(slotKey).(int); ok {
		return v
	}
	return -1
}

// WithBatchID tags every call made on behalf of one batch.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchKey, id)
}

// BatchIDFrom returns the batch ID or "" when there is none.
func BatchIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(batchKey).(string)
	return v
}
