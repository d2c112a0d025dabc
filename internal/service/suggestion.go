package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devtrack.app/api/common/id"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

type SuggestionInput struct {
	ProjectID *int64
	Title     string
	Body      string
}

type SuggestionService interface {
	Submit(ctx context.Context, actor *model.User, in SuggestionInput) (*model.Suggestion, error)
	Get(ctx context.Context, actor *model.User, id int64) (*model.Suggestion, error)
	List(ctx context.Context, actor *model.User, status model.SuggestionStatus) ([]model.Suggestion, error)
	// Respond accepts any status except pending; there is no transition guard.
	Respond(ctx context.Context, actor *model.User, id int64, status model.SuggestionStatus, response *string) (*model.Suggestion, error)
}

type suggestionService struct {
	suggestionStore store.SuggestionStore
	userStore       store.UserStore
	access          projectAccess
	notifier        Notifier
	now             func() time.Time
}

func NewSuggestionService(
	suggestionStore store.SuggestionStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	permStore store.PermissionStore,
	notifier Notifier,
) SuggestionService {
	return &suggestionService{
		suggestionStore: suggestionStore,
		userStore:       userStore,
		access:          projectAccess{projects: projectStore, permissions: permStore},
		notifier:        notifier,
		now:             time.Now,
	}
}

func (s *suggestionService) Submit(ctx context.Context, actor *model.User, in SuggestionInput) (*model.Suggestion, error) {
	if actor.Role != model.RoleClient {
		return nil, ErrForbidden
	}
	if in.ProjectID != nil {
		if _, err := s.access.viewable(ctx, actor, *in.ProjectID); err != nil {
			return nil, err
		}
	}

	sg := &model.Suggestion{
		ID:        id.New(),
		ClientID:  actor.ID,
		ProjectID: in.ProjectID,
		Title:     strings.TrimSpace(in.Title),
		Body:      in.Body,
		Status:    model.SuggestionStatusPending,
	}
	if err := s.suggestionStore.Create(ctx, sg); err != nil {
		slog.ErrorContext(ctx, "failed to create suggestion", "error", err, "client_id", actor.ID)
		return nil, fmt.Errorf("creating suggestion: %w", err)
	}

	slog.InfoContext(ctx, "suggestion submitted", "suggestion_id", sg.ID, "client_id", actor.ID)
	return sg, nil
}

func (s *suggestionService) Get(ctx context.Context, actor *model.User, id int64) (*model.Suggestion, error) {
	sg, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleClient && sg.ClientID != actor.ID {
		return nil, ErrSuggestionNotFound
	}
	return sg, nil
}

// List scopes clients to their own suggestions.
func (s *suggestionService) List(ctx context.Context, actor *model.User, status model.SuggestionStatus) ([]model.Suggestion, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	filter := model.SuggestionFilter{Status: status}
	if actor.Role == model.RoleClient {
		filter.ClientID = &actor.ID
	} else {
		ok, err := s.access.has(ctx, actor, model.PermSuggestionsRespond)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	suggestions, err := s.suggestionStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}
	return suggestions, nil
}

func (s *suggestionService) Respond(ctx context.Context, actor *model.User, id int64, status model.SuggestionStatus, response *string) (*model.Suggestion, error) {
	if !status.Valid() || status == model.SuggestionStatusPending {
		return nil, ErrInvalidStatus
	}
	sg, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sg.Status = status
	sg.RespondedBy = &actor.ID
	sg.RespondedAt = &now
	if response != nil {
		if trimmed := strings.TrimSpace(*response); trimmed != "" {
			sg.AdminResponse = &trimmed
		}
	}

	if err := s.suggestionStore.Respond(ctx, sg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("responding to suggestion: %w", err)
	}

	s.notifyClient(ctx, sg)

	slog.InfoContext(ctx, "suggestion answered",
		"suggestion_id", sg.ID,
		"status", status,
		"by", actor.ID,
	)
	return sg, nil
}

func (s *suggestionService) get(ctx context.Context, id int64) (*model.Suggestion, error) {
	sg, err := s.suggestionStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("getting suggestion: %w", err)
	}
	return sg, nil
}

func (s *suggestionService) notifyClient(ctx context.Context, sg *model.Suggestion) {
	client, err := s.userStore.GetByID(ctx, sg.ClientID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load client for notification", "error", err, "suggestion_id", sg.ID)
		return
	}

	data := map[string]string{
		"title":  sg.Title,
		"status": strings.ReplaceAll(string(sg.Status), "_", " "),
	}
	if sg.AdminResponse != nil {
		data["response"] = *sg.AdminResponse
	}
	s.notifier.Notify(ctx, model.Notification{
		Type: model.NotificationSuggestionResponded,
		To:   client.Email,
		Name: client.Name,
		Data: data,
	})
}
