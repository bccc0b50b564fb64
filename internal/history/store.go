// Package history keeps rewrite history in a local embedded database and mirrors
// it to an optional remote store on a best-effort basis.
//
// Local writes always happen and their errors propagate. Remote calls are made
// only when a remote is configured; their failures are logged and dropped, never
// retried, and never reconciled later.
package history

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RichardoC/humaniza/internal/models"
)

// Local is the embedded store. *db.Database implements it.
type Local interface {
	InsertRecord(ctx context.Context, rec *models.HistoryRecord) error
	SetRemoteID(ctx context.Context, localID int64, remoteID string) error
	ListRecords(ctx context.Context, ownerID string) ([]models.HistoryRecord, error)
	DeleteRecord(ctx context.Context, ownerID string, localID int64, remoteID string) (int64, error)
	DeleteRecordsByOwner(ctx context.Context, ownerID string) (int64, error)
}

// Remote is the mirror. *remote.Client implements it.
type Remote interface {
	Insert(ctx context.Context, rec models.HistoryRecord) (string, error)
	List(ctx context.Context, ownerID string) ([]models.HistoryRecord, error)
	Delete(ctx context.Context, ownerID, remoteID string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// Store is safe for concurrent use as long as its Local and Remote are.
type Store struct {
	local  Local
	remote Remote
	logger *zap.Logger
	now    func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithRemote enables mirroring. A nil remote leaves the store local-only.
func WithRemote(r Remote) Option {
	return func(s *Store) { s.remote = r }
}

// WithClock replaces time.Now for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a store over local. logger may be nil.
func New(local Local, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{local: local, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteConfigured reports whether the store mirrors to a remote.
func (s *Store) RemoteConfigured() bool {
	return s.remote != nil
}

// Save writes a record locally and then tries to mirror it.
func (s *Store) Save(ctx context.Context, owner, source, result string, mode models.Mode) (*models.HistoryRecord, error) {
	rec := &models.HistoryRecord{
		OwnerID:    owner,
		SourceText: source,
		ResultText: result,
		Mode:       mode,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.local.InsertRecord(ctx, rec); err != nil {
		return nil, err
	}

	if s.remote == nil {
		return rec, nil
	}

	remoteID, err := s.remote.Insert(ctx, *rec)
	if err != nil {
		s.logger.Warn("remote mirror failed",
			zap.String("op", "save"),
			zap.String("owner", owner),
			zap.Int64("localId", rec.LocalID),
			zap.Error(err))
		return rec, nil
	}

	if err := s.local.SetRemoteID(ctx, rec.LocalID, remoteID); err != nil {
		s.logger.Warn("failed to record remote id locally",
			zap.Int64("localId", rec.LocalID),
			zap.String("remoteId", remoteID),
			zap.Error(err))
		return rec, nil
	}
	rec.RemoteID = remoteID
	return rec, nil
}

// List returns the owner's history newest first, from the remote when it answers
// and from the local store otherwise. Results are never merged.
func (s *Store) List(ctx context.Context, owner string) ([]models.HistoryRecord, error) {
	if s.remote != nil {
		records, err := s.remote.List(ctx, owner)
		if err == nil {
			return records, nil
		}
		s.logger.Warn("remote list failed, using local history",
			zap.String("owner", owner),
			zap.Error(err))
	}
	return s.local.ListRecords(ctx, owner)
}

// Delete removes one of the owner's records locally and, when remoteID is set,
// from the remote. Records of other owners are left alone.
func (s *Store) Delete(ctx context.Context, owner string, localID int64, remoteID string) error {
	if _, err := s.local.DeleteRecord(ctx, owner, localID, remoteID); err != nil {
		return err
	}

	if s.remote == nil || remoteID == "" {
		return nil
	}
	if err := s.remote.Delete(ctx, owner, remoteID); err != nil {
		s.logger.Warn("remote delete failed",
			zap.String("owner", owner),
			zap.Int64("localId", localID),
			zap.String("remoteId", remoteID),
			zap.Error(err))
	}
	return nil
}

// Clear removes all of the owner's records. Clearing an empty history is not an error.
func (s *Store) Clear(ctx context.Context, owner string) error {
	if _, err := s.local.DeleteRecordsByOwner(ctx, owner); err != nil {
		return err
	}

	if s.remote == nil {
		return nil
	}
	if err := s.remote.DeleteByOwner(ctx, owner); err != nil {
		s.logger.Warn("remote clear failed",
			zap.String("owner", owner),
			zap.Error(err))
	}
	return nil
}
