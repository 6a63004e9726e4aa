package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mbolis/poll-creator/model"
)

const DefaultSubmissionLimit = 100

// Submissions is the audit log of polls submitted to the Poll API.
type Submissions struct {
	db *sql.DB
}

func NewSubmissions(db *sql.DB) *Submissions {
	return &Submissions{db}
}

func (s *Submissions) RecordSubmission(ctx context.Context, sub *model.Submission) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO submission (workspace_id, poll_id, title, status, error, time)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		sub.WorkspaceID,
		sub.PollID,
		sub.Title,
		sub.Status,
		sub.Error,
		sub.Time.UTC(),
	).Scan(&sub.ID)
}

type SubmissionFilter struct {
	WorkspaceID string
	Status      string
	Limit       int
}

// List returns the most recent submissions first.
func (s *Submissions) List(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error) {
	var where []string
	var args []any
	if filter.WorkspaceID != "" {
		where = append(where, "workspace_id = ?")
		args = append(args, filter.WorkspaceID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSubmissionLimit
	}

	query := `
		SELECT id, workspace_id, poll_id, title, status, error, time
		FROM submission`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY time DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		sub := model.Submission{}
		err = rows.Scan(&sub.ID, &sub.WorkspaceID, &sub.PollID, &sub.Title, &sub.Status, &sub.Error, &sub.Time)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}
