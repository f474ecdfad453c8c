package db

import (
	"database/sql"
	"fmt"

	"github.com/lucasnoah/detektlint/internal/lint"
)

// LintRun represents a row in the lint_runs table.
type LintRun struct {
	ID           int64
	Path         string
	Format       string
	ExitCode     int
	DurationMs   int
	TimedOut     bool
	FindingCount int
	Timestamp    string
}

// LogRun records one detekt invocation and its findings in a single
// transaction and returns the run ID.
func (d *DB) LogRun(run LintRun, findings []lint.Finding) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(d.rebind(
		`INSERT INTO lint_runs (path, format, exit_code, duration_ms, timed_out, finding_count)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		run.Path, run.Format, run.ExitCode, run.DurationMs, run.TimedOut, len(findings),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("log lint run: %w", err)
	}

	insert := d.rebind(
		`INSERT INTO findings (run_id, seq, path, line, col, code, rule_id, severity, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, f := range findings {
		if _, err := tx.Exec(insert,
			id, i, f.Path, f.Line, f.Column, f.Code, f.RuleID, f.Severity.String(), f.Message,
		); err != nil {
			return 0, fmt.Errorf("log finding %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit lint run: %w", err)
	}
	return id, nil
}

// GetRunFindings returns the findings of a run in their original order.
func (d *DB) GetRunFindings(runID int64) ([]lint.Finding, error) {
	rows, err := d.conn.Query(d.rebind(
		`SELECT path, line, col, code, rule_id, severity, message
		 FROM findings WHERE run_id = ? ORDER BY seq ASC`),
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get run findings: %w", err)
	}
	defer rows.Close()

	var findings []lint.Finding
	for rows.Next() {
		var f lint.Finding
		var severity string
		var message sql.NullString
		if err := rows.Scan(&f.Path, &f.Line, &f.Column, &f.Code, &f.RuleID, &severity, &message); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.Severity = lint.ParseSeverity(severity)
		f.Message = message.String
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

const runColumns = `id, path, format, exit_code, duration_ms, timed_out, finding_count, timestamp`

// GetHistory returns the most recent runs, newest first. An empty path
// returns runs for every path. limit <= 0 means no limit.
func (d *DB) GetHistory(path string, limit int) ([]LintRun, error) {
	query := `SELECT ` + runColumns + ` FROM lint_runs`
	var args []interface{}
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.conn.Query(d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	var runs []LintRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lint run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns a single run by ID, or nil if it does not exist.
func (d *DB) GetRun(runID int64) (*LintRun, error) {
	row := d.conn.QueryRow(d.rebind(`SELECT `+runColumns+` FROM lint_runs WHERE id = ?`), runID)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// GetLatestRun returns the newest run for path, or nil if there is none.
func (d *DB) GetLatestRun(path string) (*LintRun, error) {
	runs, err := d.GetHistory(path, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*LintRun, error) {
	var r LintRun
	var exitCode, durationMs sql.NullInt64
	if err := s.Scan(&r.ID, &r.Path, &r.Format, &exitCode, &durationMs, &r.TimedOut, &r.FindingCount, &r.Timestamp); err != nil {
		return nil, err
	}
	r.ExitCode = int(exitCode.Int64)
	r.DurationMs = int(durationMs.Int64)
	return &r, nil
}
