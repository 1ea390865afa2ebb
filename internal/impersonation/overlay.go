package impersonation

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/observability"
	"github.com/capria-app/capria/internal/shared"
)

// Overlay lets an administrator act through another principal's identity for
// the rest of the session. The overlay is the single writer of the session's
// impersonation state; everything else only reads it through the actor.
type Overlay struct {
	resolver *identity.Resolver
	audit    shared.AuditRecorder
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewOverlay constructs an Overlay.
func NewOverlay(resolver *identity.Resolver, audit shared.AuditRecorder, metrics *observability.Metrics, logger *slog.Logger) *Overlay {
	return &Overlay{
		resolver: resolver,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins impersonating the target user. Only the ORIGINAL principal's
// adminship counts: an already-impersonating admin re-targets from their real
// identity, so chained impersonation can never escalate privileges. A
// non-admin attempt returns shared.ErrNotAllowed with zero state mutation and
// an audit record of the rejection.
func (o *Overlay) Start(ctx context.Context, sess *shared.Session, actor *identity.Actor, targetUserID int64) (identity.State, error) {
	if !actor.Authenticated() {
		return actor.Impersonation, shared.ErrNotAllowed
	}
	if !actor.IsRealAdmin() {
		o.recordEvent(ctx, actor.RealUserID(), shared.AuditActionImpersonateDenied, targetUserID, nil)
		if o.logger != nil {
			o.logger.Warn("impersonation denied",
				slog.Int64("actor_id", actor.RealUserID()),
				slog.Int64("target_id", targetUserID))
		}
		return actor.Impersonation, shared.ErrNotAllowed
	}
	if targetUserID == actor.RealUserID() {
		// Impersonating yourself is a no-op request, not an error worth auditing.
		return actor.Impersonation, shared.ErrNotAllowed
	}

	target, err := o.resolver.Resolve(ctx, targetUserID)
	if err != nil {
		return actor.Impersonation, err
	}

	state := identity.State{
		Active:             true,
		OriginalUserID:     actor.RealUserID(),
		ImpersonatedUserID: target.Principal.ID,
		ImpersonatedEmail:  target.Principal.Email,
		ImpersonatedRoles:  target.Roles,
		Epoch:              actor.Impersonation.Epoch + 1,
		StartedAt:          o.now().UTC(),
	}
	if err := persist(sess, state); err != nil {
		return actor.Impersonation, err
	}
	actor.Impersonation = state

	o.recordEvent(ctx, state.OriginalUserID, shared.AuditActionImpersonateStart, state.ImpersonatedUserID, map[string]any{
		"impersonated_email": state.ImpersonatedEmail,
		"epoch":              state.Epoch,
	})
	return state, nil
}

// Stop clears the overlay. Calling it while not impersonating is a no-op, so
// the acting admin can never be locked into a stuck state. The epoch is
// bumped so permission checks issued before the stop discard themselves.
func (o *Overlay) Stop(ctx context.Context, sess *shared.Session, actor *identity.Actor) identity.State {
	if actor == nil || !actor.Impersonation.Active {
		if actor == nil {
			return identity.State{}
		}
		return actor.Impersonation
	}

	previous := actor.Impersonation
	state := identity.State{Epoch: previous.Epoch + 1}
	if err := persist(sess, state); err != nil && o.logger != nil {
		o.logger.Error("persist impersonation stop", slog.Any("error", err))
	}
	actor.Impersonation = state

	o.recordEvent(ctx, previous.OriginalUserID, shared.AuditActionImpersonateStop, previous.ImpersonatedUserID, map[string]any{
		"epoch": state.Epoch,
	})
	return state
}

// Restore reads the persisted state from the session at the start of a
// request. A malformed or inconsistent payload is discarded silently: the
// caller continues as not-impersonating, never with an error.
func Restore(sess *shared.Session, logger *slog.Logger) identity.State {
	if sess == nil {
		return identity.State{}
	}
	raw := sess.Impersonation()
	if len(raw) == 0 {
		return identity.State{}
	}
	var state identity.State
	if err := json.Unmarshal(raw, &state); err != nil {
		if logger != nil {
			logger.Debug("discard malformed impersonation state", slog.Any("error", err))
		}
		return identity.State{}
	}
	if !state.WellFormed() {
		if logger != nil {
			logger.Debug("discard inconsistent impersonation state")
		}
		return identity.State{Epoch: state.Epoch}
	}
	return state
}

func persist(sess *shared.Session, state identity.State) error {
	if sess == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	sess.SetImpersonation(raw)
	return nil
}

func (o *Overlay) recordEvent(ctx context.Context, actorID int64, action string, targetID int64, meta map[string]any) {
	if o.metrics != nil {
		o.metrics.ImpersonationEvent(action)
	}
	if o.audit == nil {
		return
	}
	err := o.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(targetID, 10),
		Meta:     meta,
	})
	if err != nil && o.logger != nil {
		o.logger.Warn("audit impersonation", slog.String("action", action), slog.Any("error", err))
	}
}
