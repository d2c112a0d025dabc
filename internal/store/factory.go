package store

import "devtrack.app/api/core/db"

type Stores struct {
	q db.Querier
}

// NewStores binds every store to q, which may be the pool or a transaction.
func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.q)
}

func (s *Stores) Sessions() SessionStore {
	return newSessionStore(s.q)
}

func (s *Stores) OTPs() OTPStore {
	return newOTPStore(s.q)
}

func (s *Stores) Permissions() PermissionStore {
	return newPermissionStore(s.q)
}

func (s *Stores) Projects() ProjectStore {
	return newProjectStore(s.q)
}

func (s *Stores) Sprints() SprintStore {
	return newSprintStore(s.q)
}

func (s *Stores) Tasks() TaskStore {
	return newTaskStore(s.q)
}

func (s *Stores) Bugs() BugStore {
	return newBugStore(s.q)
}

func (s *Stores) Suggestions() SuggestionStore {
	return newSuggestionStore(s.q)
}

func (s *Stores) Activities() ActivityStore {
	return newActivityStore(s.q)
}
