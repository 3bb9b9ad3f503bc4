package storage

import (
	"context"
	"fmt"
)

// LLMCallRecord is one completion call, kept for audit and cost review.
type LLMCallRecord struct {
	CallID       string
	Operation    string
	RunID        string
	DocID        string
	ProviderName string
	Model        string
	Status       string
	ErrorType    string
	DurationMS   int64
}

type LLMAuditRepo struct {
	db *DB
}

func NewLLMAuditRepo(db *DB) *LLMAuditRepo {
	return &LLMAuditRepo{db: db}
}

func (r *LLMAuditRepo) Insert(ctx context.Context, rec LLMCallRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO llm_calls(call_id, operation, run_id, doc_id, provider_name, model, status, error_type, duration_ms)
VALUES (COALESCE(NULLIF($1,'')::uuid, gen_random_uuid()), $2, NULLIF($3,''), NULLIF($4,''), $5, $6, $7, NULLIF($8,''), $9)`,
		rec.CallID, rec.Operation, rec.RunID, rec.DocID, rec.ProviderName, rec.Model, rec.Status, rec.ErrorType, rec.DurationMS)
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}
