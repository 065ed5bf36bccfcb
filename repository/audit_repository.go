package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kedoo/db"
	"kedoo/model"
)

// AuditRepository persists and queries moderation decisions.
type AuditRepository struct {
	DB *sql.DB
}

// NewAuditRepository creates an AuditRepository over the global handle.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{DB: db.DB}
}

// RecordDecision inserts one moderation decision.
func (r *AuditRepository) RecordDecision(ctx context.Context, entry model.AuditEntry) error {
	query := "INSERT INTO moderation_audit (id, moderator_id, release_id, verdict, reason, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	stmt, err := r.DB.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare audit insert statement: %w", err)
	}
	defer stmt.Close()

	var reason sql.NullString
	if entry.Reason != "" {
		reason = sql.NullString{String: entry.Reason, Valid: true}
	}

	_, err = stmt.ExecContext(ctx, entry.ID, entry.ModeratorID, entry.ReleaseID, entry.Verdict, reason, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListDecisions returns the most recent decisions, newest first.
func (r *AuditRepository) ListDecisions(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, moderator_id, release_id, verdict, reason, created_at
		FROM moderation_audit
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		var reason sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.ModeratorID,
			&entry.ReleaseID,
			&entry.Verdict,
			&reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}

		if reason.Valid {
			entry.Reason = reason.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit rows: %w", err)
	}
	return entries, nil
}

// ListDecisionsForRelease returns the decision history of one release.
func (r *AuditRepository) ListDecisionsForRelease(ctx context.Context, releaseID string) ([]model.AuditEntry, error) {
	query := `SELECT id, moderator_id, release_id, verdict, reason, created_at
		FROM moderation_audit
		WHERE release_id = ?
		ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, releaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries for release %s: %w", releaseID, err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		var reason sql.NullString

		if err := rows.Scan(&entry.ID, &entry.ModeratorID, &entry.ReleaseID, &entry.Verdict, &reason, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if reason.Valid {
			entry.Reason = reason.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit rows: %w", err)
	}
	return entries, nil
}
