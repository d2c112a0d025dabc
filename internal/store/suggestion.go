package store

import (
	"context"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const suggestionColumns = `id, client_id, project_id, title, body, status, admin_response, responded_by,
	responded_at, created_at, updated_at`

type suggestionStore struct {
	q db.Querier
}

func newSuggestionStore(q db.Querier) SuggestionStore {
	return &suggestionStore{q: q}
}

func (s *suggestionStore) GetByID(ctx context.Context, id int64) (*model.Suggestion, error) {
	sg, err := scanSuggestion(s.q.QueryRow(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &sg, nil
}

func (s *suggestionStore) List(ctx context.Context, filter model.SuggestionFilter) ([]model.Suggestion, error) {
	var status *string
	if filter.Status != "" {
		v := string(filter.Status)
		status = &v
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+suggestionColumns+` FROM suggestions
		WHERE ($1::bigint IS NULL OR client_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC`,
		filter.ClientID, status,
	)
	return collect(rows, err, scanSuggestion)
}

func (s *suggestionStore) Create(ctx context.Context, sg *model.Suggestion) error {
	created, err := scanSuggestion(s.q.QueryRow(ctx, `
		INSERT INTO suggestions (id, client_id, project_id, title, body, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+suggestionColumns,
		sg.ID, sg.ClientID, sg.ProjectID, sg.Title, sg.Body, sg.Status,
	))
	if err != nil {
		return mapErr(err)
	}
	*sg = created
	return nil
}

func (s *suggestionStore) Respond(ctx context.Context, sg *model.Suggestion) error {
	updated, err := scanSuggestion(s.q.QueryRow(ctx, `
		UPDATE suggestions
		SET status = $2, admin_response = $3, responded_by = $4, responded_at = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+suggestionColumns,
		sg.ID, sg.Status, sg.AdminResponse, sg.RespondedBy, sg.RespondedAt,
	))
	if err != nil {
		return mapErr(err)
	}
	*sg = updated
	return nil
}

func (s *suggestionStore) CountByStatus(ctx context.Context, status model.SuggestionStatus) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `SELECT count(*) FROM suggestions WHERE status = $1`, status).Scan(&n)
	return n, err
}

func scanSuggestion(row scanner) (model.Suggestion, error) {
	var sg model.Suggestion
	err := row.Scan(&sg.ID, &sg.ClientID, &sg.ProjectID, &sg.Title, &sg.Body, &sg.Status, &sg.AdminResponse,
		&sg.RespondedBy, &sg.RespondedAt, &sg.CreatedAt, &sg.UpdatedAt)
	return sg, err
}
