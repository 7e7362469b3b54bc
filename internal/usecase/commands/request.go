package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/request"
	reqdto "affiliate-notify/internal/handler/dto/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidRequest = errs.New("invalid shopping request")
	ErrRequestAccess  = errs.New("request access denied")
	ErrRequestClosed  = errs.New("request is no longer active")
	ErrRequestBusy    = errs.New("request was modified concurrently")

	ErrIdempotencyInProgress  = errs.New("idempotency in progress")
	ErrIdempotencyKeyReused   = errs.New("idempotency key reused with a different body")
	ErrIdempotencyCheckFailed = errs.New("idempotency check failed")
)

const submitEndpoint = "POST /requests"

type SubmitResult struct {
	RequestID uuid.UUID
	Match     MatchResult
	Replayed  bool
}

type RequestCommands interface {
	Submit(ctx context.Context, req reqdto.SubmitRequest, userID, idempotencyKey uuid.UUID) (*SubmitResult, error)
	Cancel(ctx context.Context, requestID, actorID uuid.UUID) error
	Delete(ctx context.Context, requestID uuid.UUID) error
	DeleteAll(ctx context.Context, status *request.Status) (int64, error)
}

type requestCommandsImpl struct {
	uow    shared.UnitOfWork
	engine MatchEngine
	clock  clock.Clock
	cfg    config.MatchConfig
}

func NewRequestCommands(uow shared.UnitOfWork, engine MatchEngine, clk clock.Clock, cfg config.Config) RequestCommands {
	return &requestCommandsImpl{
		uow:    uow,
		engine: engine,
		clock:  clk,
		cfg:    cfg.Match,
	}
}

// Submit stores the request with its parsed intent and matches it against
// the catalog right away. A failed match run does not fail the submission;
// the request stays ACTIVE and later catalog changes can still match it.
//
// A non-nil idempotencyKey makes the call replayable: a retry with the same
// key and body returns the request created first, without matching again.
func (c *requestCommandsImpl) Submit(ctx context.Context, in reqdto.SubmitRequest, userID, idempotencyKey uuid.UUID) (*SubmitResult, error) {
	owner, err := c.uow.CommandReads().UserByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !owner.IsActive {
		return nil, ErrUserInactive
	}

	parsed := intent.Parse(in.Query)
	metrics.IntentsParsedTotal.WithLabelValues("http", categorizedLabel(parsed)).Inc()

	now := c.clock.Now()
	req, err := request.NewRequest(owner.ID, owner.Email, in.Query, parsed, now, c.cfg.RequestTTL)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	var replayed *uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if idempotencyKey != uuid.Nil {
			key := shared.NewIdempotencyKey{
				Key:         idempotencyKey,
				UserID:      owner.ID,
				Endpoint:    submitEndpoint,
				RequestHash: requestHash(in),
				ExpiresAt:   now.Add(c.cfg.IdempotencyTTL),
			}
			prior, err := claimIdempotencyKey(ctx, tx, key)
			if err != nil || prior != nil {
				replayed = prior
				return err
			}
		}
		if err := tx.Requests().Create(ctx, tx.DB(), req); err != nil {
			return err
		}
		if idempotencyKey != uuid.Nil {
			return tx.Idempotency().Complete(ctx, tx.DB(), idempotencyKey, owner.ID, req.ID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		slog.Info("shopping request replayed", "request_id", *replayed, "idempotency_key", idempotencyKey)
		return &SubmitResult{RequestID: *replayed, Replayed: true}, nil
	}

	result := &SubmitResult{RequestID: req.ID()}
	match, err := c.engine.MatchNewRequest(ctx, req.ID())
	if err != nil {
		slog.Warn("initial match failed", "request_id", req.ID(), "error", err.Error())
		return result, nil
	}
	result.Match = *match
	return result, nil
}

// claimIdempotencyKey returns the id of the request an earlier call created
// under the same key, or nil when this call owns the key.
func claimIdempotencyKey(ctx context.Context, tx shared.Tx, key shared.NewIdempotencyKey) (*uuid.UUID, error) {
	claimed, err := tx.Idempotency().TryInsert(ctx, tx.DB(), key)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if claimed {
		return nil, nil
	}

	existing, err := tx.Idempotency().Get(ctx, tx.DB(), key.Key, key.UserID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if existing.Endpoint != key.Endpoint || existing.RequestHash != key.RequestHash {
		return nil, ErrIdempotencyKeyReused
	}
	if existing.Status != shared.IdempotencyCompleted {
		return nil, ErrIdempotencyInProgress
	}
	if existing.ResultRequestID == nil {
		return nil, ErrRequestNotFound
	}
	return existing.ResultRequestID, nil
}

func requestHash(in reqdto.SubmitRequest) string {
	data, _ := json.Marshal(in)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Cancel closes an ACTIVE request on behalf of its owner. A concurrent match
// run that touched the request first surfaces as ErrRequestBusy.
func (c *requestCommandsImpl) Cancel(ctx context.Context, requestID, actorID uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		req, err := tx.Reads().RequestByID(ctx, requestID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if !req.IsOwnedBy(actorID) {
			return ErrRequestAccess
		}
		if err := req.Cancel(c.clock.Now()); err != nil {
			return errs.Mark(err, ErrRequestClosed)
		}
		return tx.Requests().SaveState(ctx, tx.DB(), req)
	})
	if infra.IsKind(err, infra.KindConflict) {
		return errs.Mark(err, ErrRequestBusy)
	}
	return err
}

func (c *requestCommandsImpl) Delete(ctx context.Context, requestID uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Requests().Delete(ctx, tx.DB(), requestID)
	})
	if infra.IsKind(err, infra.KindNotFound) {
		return ErrRequestNotFound
	}
	return err
}

func (c *requestCommandsImpl) DeleteAll(ctx context.Context, status *request.Status) (int64, error) {
	var deleted int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Requests().DeleteAll(ctx, tx.DB(), status)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Info("shopping requests deleted", "count", deleted, "status", statusLabel(status))
	return deleted, nil
}

func categorizedLabel(p intent.ParsedIntent) string {
	if p.Category == nil {
		return "false"
	}
	return "true"
}

func statusLabel(s *request.Status) string {
	if s == nil {
		return "all"
	}
	return s.String()
}
