// Package history persists scoring runs in a local sqlite database so past
// evaluations can be listed and compared.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sohv/scorj/internal/scoring"
)

//go:embed migrations/001_initial.sql
var initialMigration string

// Entry is one recorded scoring run.
type Entry struct {
	RequestID      string         `json:"request_id"`
	CreatedAt      time.Time      `json:"created_at"`
	JobTitle       string         `json:"job_title,omitempty"`
	FinalScore     int            `json:"final_score"`
	BaseScore      int            `json:"base_score"`
	ConsensusLevel string         `json:"consensus_level"`
	IntentBonus    float64        `json:"intent_bonus"`
	JudgeScores    map[string]int `json:"judge_scores,omitempty"`
	ElapsedMS      int64          `json:"elapsed_ms"`
}

// Store wraps the sqlite connection. A nil *Store is valid and records
// nothing.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// sqlite does not support concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(initialMigration); err != nil {
		db.Close()
		return nil, fmt.Errorf("run initial migration: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the connection. Safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores one completed scoring run. A nil store drops the record
// silently so callers can run without history configured.
func (s *Store) Record(ctx context.Context, jobTitle string, report *scoring.Report) error {
	if s == nil || s.db == nil || report == nil {
		return nil
	}

	judgeScores := "{}"
	if report.Consensus != nil && len(report.Consensus.Scores) > 0 {
		encoded, err := json.Marshal(report.Consensus.Scores)
		if err != nil {
			return fmt.Errorf("encode judge scores: %w", err)
		}
		judgeScores = string(encoded)
	}

	level := ""
	if report.Consensus != nil {
		level = string(report.Consensus.Level)
	}

	intentBonus := 0.0
	if report.Intent != nil {
		intentBonus = report.Intent.TotalBonus
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scoring_runs
			(request_id, created_at, job_title, final_score, base_score,
			 consensus_level, intent_bonus, judge_scores, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RequestID, report.CreatedAt, jobTitle, report.FinalScore,
		report.BaseScore, level, intentBonus, judgeScores,
		report.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record scoring run: %w", err)
	}

	return nil
}

// Recent lists the most recent scoring runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, created_at, job_title, final_score, base_score,
		       consensus_level, intent_bonus, judge_scores, elapsed_ms
		FROM scoring_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scoring runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var judgeScores string
		if err := rows.Scan(&entry.RequestID, &entry.CreatedAt, &entry.JobTitle,
			&entry.FinalScore, &entry.BaseScore, &entry.ConsensusLevel,
			&entry.IntentBonus, &judgeScores, &entry.ElapsedMS); err != nil {
			return nil, fmt.Errorf("scan scoring run: %w", err)
		}
		if judgeScores != "" && judgeScores != "{}" {
			if err := json.Unmarshal([]byte(judgeScores), &entry.JudgeScores); err != nil {
				return nil, fmt.Errorf("decode judge scores: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
