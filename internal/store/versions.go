package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"toxedit/internal/models"
)

// ErrVersionNotFound is returned when a requested version does not exist.
var ErrVersionNotFound = errors.New("version not found")

// Save appends a new immutable version for v.ThreadID, assigning the next
// version number. The number is computed and the row written inside one
// transaction under the per-thread lock, so concurrent writers on the same
// thread can never produce gaps or repeats.
func (s *Store) Save(v *models.Version) (*models.Version, error) {
	if v.ThreadID == "" {
		return nil, fmt.Errorf("save version: empty thread id")
	}

	lock := s.threadLock(v.ThreadID)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.Marshal(v.Record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	var patchOps []byte
	if len(v.PatchOps) > 0 {
		patchOps, err = json.Marshal(v.PatchOps)
		if err != nil {
			return nil, fmt.Errorf("marshal patch operations: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM record_versions WHERE thread_id = ?",
		v.ThreadID,
	).Scan(&current)
	if err != nil {
		return nil, fmt.Errorf("read current version: %w", err)
	}

	saved := *v
	saved.Version = current + 1
	saved.CreatedAt = time.Now().UTC()

	res, err := tx.Exec(`
		INSERT INTO record_versions
			(thread_id, version, inci_name, data, summary, instruction,
			 patch_ops, batch_id, is_batch_item, fallback_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ThreadID, saved.Version, saved.INCIName, string(data),
		saved.Summary, saved.Instruction, nullableString(patchOps),
		nullIfEmpty(saved.BatchID), saved.IsBatchItem, saved.FallbackUsed,
		saved.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit version: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		saved.ID = id
	}
	return &saved, nil
}

// Current returns the latest version for a thread, or nil if none exists.
func (s *Store) Current(threadID string) (*models.Version, error) {
	row := s.db.QueryRow(versionSelect+
		" WHERE thread_id = ? ORDER BY version DESC LIMIT 1", threadID)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// GetVersion returns one specific version of a thread.
func (s *Store) GetVersion(threadID string, version int) (*models.Version, error) {
	row := s.db.QueryRow(versionSelect+
		" WHERE thread_id = ? AND version = ?", threadID, version)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: thread %s version %d", ErrVersionNotFound, threadID, version)
	}
	return v, err
}

// History returns the version summaries for a thread in ascending order.
func (s *Store) History(threadID string) ([]models.VersionSummary, error) {
	rows, err := s.db.Query(`
		SELECT version, inci_name, summary, patch_ops, batch_id, fallback_used, created_at
		FROM record_versions WHERE thread_id = ? ORDER BY version ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.VersionSummary
	for rows.Next() {
		var (
			sum       models.VersionSummary
			inci      sql.NullString
			patchOps  sql.NullString
			batchID   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&sum.Version, &inci, &sum.Summary, &patchOps,
			&batchID, &sum.FallbackUsed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		sum.INCIName = inci.String
		sum.BatchID = batchID.String
		sum.CreatedAt = parseTimestamp(createdAt)
		if patchOps.Valid && patchOps.String != "" {
			var ops []models.PatchOperation
			if err := json.Unmarshal([]byte(patchOps.String), &ops); err == nil {
				sum.PatchCount = len(ops)
			}
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// ByBatch returns all versions written by one batch call, in insertion order.
func (s *Store) ByBatch(batchID string) ([]*models.Version, error) {
	return s.queryVersions(versionSelect+" WHERE batch_id = ? ORDER BY id ASC", batchID)
}

// ByIngredient returns all versions tagged with an ingredient name, newest
// first across threads.
func (s *Store) ByIngredient(inciName string) ([]*models.Version, error) {
	return s.queryVersions(versionSelect+
		" WHERE inci_name = ? ORDER BY id DESC", inciName)
}

const versionSelect = `
	SELECT id, thread_id, version, inci_name, data, summary, instruction,
	       patch_ops, batch_id, is_batch_item, fallback_used, created_at
	FROM record_versions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*models.Version, error) {
	var (
		v           models.Version
		inci        sql.NullString
		data        string
		instruction sql.NullString
		patchOps    sql.NullString
		batchID     sql.NullString
		createdAt   string
	)
	err := row.Scan(&v.ID, &v.ThreadID, &v.Version, &inci, &data, &v.Summary,
		&instruction, &patchOps, &batchID, &v.IsBatchItem, &v.FallbackUsed, &createdAt)
	if err != nil {
		return nil, err
	}

	v.INCIName = inci.String
	v.Instruction = instruction.String
	v.BatchID = batchID.String
	v.CreatedAt = parseTimestamp(createdAt)

	if err := json.Unmarshal([]byte(data), &v.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record snapshot: %w", err)
	}
	if patchOps.Valid && patchOps.String != "" {
		if err := json.Unmarshal([]byte(patchOps.String), &v.PatchOps); err != nil {
			return nil, fmt.Errorf("unmarshal patch operations: %w", err)
		}
	}
	return &v, nil
}

func (s *Store) queryVersions(query string, args ...any) ([]*models.Version, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []*models.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
