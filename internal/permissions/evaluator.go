package permissions

import (
	"context"
	"log/slog"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/observability"
)

// Repository defines the data-layer reads the evaluator depends on. The
// rule functions live server-side in PostgreSQL; the evaluator only relays
// their boolean verdicts.
type Repository interface {
	CanCreateActivities(ctx context.Context, userID int64) (bool, error)
	HasAppAccess(ctx context.Context, userID int64) (bool, error)
	CountCaregiverLinks(ctx context.Context, email string) (int, error)
}

// Evaluator answers capability questions by combining role membership,
// ownership and relationship data. Every data-layer failure resolves to
// deny, never to allow.
type Evaluator struct {
	repo    Repository
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(repo Repository, metrics *observability.Metrics, logger *slog.Logger) *Evaluator {
	return &Evaluator{repo: repo, metrics: metrics, logger: logger}
}

// CanCreateActivities grants admins immediately; everyone else gets the
// verdict of the app_can_create_activities rule function. Checks run
// against the EFFECTIVE identity, so an impersonating admin sees exactly
// what the impersonated user would.
func (e *Evaluator) CanCreateActivities(ctx context.Context, actor *identity.Actor) Decision {
	return e.evaluate(ctx, "can_create_activities", actor, func(ctx context.Context) (bool, error) {
		return e.repo.CanCreateActivities(ctx, actor.EffectiveUserID())
	})
}

// HasAppAccess relays the app_has_app_access rule function, with the same
// admin shortcut.
func (e *Evaluator) HasAppAccess(ctx context.Context, actor *identity.Actor) Decision {
	return e.evaluate(ctx, "has_app_access", actor, func(ctx context.Context) (bool, error) {
		return e.repo.HasAppAccess(ctx, actor.EffectiveUserID())
	})
}

// HasCaregiversAccess is an OR of two independent authorization paths:
// holding the professional role, or having at least one caregiver
// relationship registered against the effective email. Either suffices.
func (e *Evaluator) HasCaregiversAccess(ctx context.Context, actor *identity.Actor) Decision {
	epoch := actor.Epoch()
	if !actor.Authenticated() {
		return e.record("has_caregivers_access", denied(epoch))
	}
	if actor.HasEffectiveRole(identity.RoleProfessional) {
		return e.record("has_caregivers_access", granted(epoch))
	}
	count, err := e.repo.CountCaregiverLinks(ctx, actor.EffectiveEmail())
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("caregiver access check", slog.Any("error", err))
		}
		return e.record("has_caregivers_access", errored(epoch, err))
	}
	if count > 0 {
		return e.record("has_caregivers_access", granted(epoch))
	}
	return e.record("has_caregivers_access", denied(epoch))
}

// AccessibleItems filters a listing for display. The repository query that
// produced the input already scoped rows to what the effective identity may
// see, so for anyone signed in this is a pass-through; it only hides rows
// from an anonymous caller that should never have reached a listing at all.
// The real boundary is the repository WHERE clause, not this function.
func AccessibleItems[T any](actor *identity.Actor, all []T) []T {
	if !actor.Authenticated() {
		return nil
	}
	return all
}

func (e *Evaluator) evaluate(ctx context.Context, check string, actor *identity.Actor, rule func(context.Context) (bool, error)) Decision {
	epoch := actor.Epoch()
	if !actor.Authenticated() {
		return e.record(check, denied(epoch))
	}
	if actor.HasEffectiveRole(identity.RoleAdmin) {
		return e.record(check, granted(epoch))
	}
	ok, err := rule(ctx)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("permission rule", slog.String("check", check), slog.Any("error", err))
		}
		return e.record(check, errored(epoch, err))
	}
	if ok {
		return e.record(check, granted(epoch))
	}
	return e.record(check, denied(epoch))
}

func (e *Evaluator) record(check string, d Decision) Decision {
	if e.metrics != nil {
		e.metrics.PermissionDecision(check, string(d.Outcome))
	}
	return d
}
