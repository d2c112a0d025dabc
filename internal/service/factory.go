package service

import (
	"devtrack.app/api/core/config"
	"devtrack.app/api/internal/archive"
	"devtrack.app/api/internal/report"
	"devtrack.app/api/internal/store"
)

type Services struct {
	stores   *store.Stores
	txRunner TxRunner
	notifier Notifier
	sso      SSOProvider
	archive  archive.Archive
	renderer *report.Renderer
	cfg      config.Config
}

func NewServices(
	stores *store.Stores,
	txRunner TxRunner,
	notifier Notifier,
	arch archive.Archive,
	cfg config.Config,
) *Services {
	return &Services{
		stores:   stores,
		txRunner: txRunner,
		notifier: notifier,
		sso:      NewWorkOSProvider(cfg.WorkOS),
		archive:  arch,
		renderer: report.NewRenderer(cfg.SMTP.AppName),
		cfg:      cfg,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.stores.Sessions(), s.sso, s.cfg.Auth.SessionTTL)
}

func (s *Services) PasswordReset() PasswordResetService {
	return NewPasswordResetService(
		s.stores.Users(),
		s.stores.OTPs(),
		s.txRunner,
		s.notifier,
		OTPConfig{TTL: s.cfg.Auth.OTPTTL, MaxAttempts: s.cfg.Auth.OTPMaxAttempts},
	)
}

func (s *Services) Users() UserService {
	return NewUserService(s.stores.Users(), s.stores.Sessions(), s.notifier, s.cfg.DashboardURL)
}

func (s *Services) Permissions() PermissionService {
	return NewPermissionService(s.stores.Permissions(), s.stores.Users(), s.notifier)
}

func (s *Services) Projects() ProjectService {
	return NewProjectService(s.stores.Projects(), s.stores.Users(), s.stores.Permissions())
}

func (s *Services) Sprints() SprintService {
	return NewSprintService(s.stores.Sprints(), s.stores.Projects(), s.stores.Permissions(), s.txRunner)
}

func (s *Services) Tasks() TaskService {
	return NewTaskService(
		s.stores.Tasks(),
		s.stores.Sprints(),
		s.stores.Projects(),
		s.stores.Users(),
		s.stores.Permissions(),
		s.notifier,
		s.cfg.DashboardURL,
	)
}

func (s *Services) Bugs() BugService {
	return NewBugService(
		s.stores.Bugs(),
		s.stores.Tasks(),
		s.stores.Projects(),
		s.stores.Users(),
		s.stores.Permissions(),
		s.notifier,
		s.cfg.DashboardURL,
	)
}

func (s *Services) Suggestions() SuggestionService {
	return NewSuggestionService(
		s.stores.Suggestions(),
		s.stores.Projects(),
		s.stores.Users(),
		s.stores.Permissions(),
		s.notifier,
	)
}

func (s *Services) Activity() ActivityService {
	return NewActivityService(s.stores.Activities(), s.stores.Tasks(), s.stores.Projects(), s.stores.Permissions())
}

func (s *Services) Payments() PaymentService {
	return NewPaymentService(s.stores.Activities(), s.stores.Projects(), s.stores.Permissions())
}

func (s *Services) Reports() ReportService {
	return NewReportService(s.Activity(), s.Payments(), s.stores.Permissions(), s.renderer, s.archive)
}

func (s *Services) Dashboard() DashboardService {
	return NewDashboardService(
		s.stores.Projects(),
		s.stores.Sprints(),
		s.stores.Tasks(),
		s.stores.Bugs(),
		s.stores.Suggestions(),
		s.stores.Activities(),
	)
}
