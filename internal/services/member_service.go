package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/credentials"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/optimistic"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/repository"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/validation"
)

type memberService struct {
	members   repository.MemberRepository
	adhesion  repository.AdhesionRepository
	writer    *optimistic.Writer
	hashCost  int
	opTimeout time.Duration
	log       *zap.SugaredLogger
}

// NewMemberService wires the flows to the two collection gateways and
// the optimistic writer.
func NewMemberService(
	members repository.MemberRepository,
	adhesion repository.AdhesionRepository,
	writer *optimistic.Writer,
	hashCost int,
	opTimeout time.Duration,
	log *zap.SugaredLogger,
) MemberService {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &memberService{
		members:   members,
		adhesion:  adhesion,
		writer:    writer,
		hashCost:  hashCost,
		opTimeout: opTimeout,
		log:       log,
	}
}

// Signup runs validate -> uniqueness check -> write. The uniqueness
// pre-check gives the member a friendly message; the unique index on
// the collection is what actually guarantees the invariant when two
// signups race.
func (s *memberService) Signup(ctx context.Context, in validation.SignupInput) (*models.Member, error) {
	if err := validation.CheckSignup(in); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	_, err := s.members.FindByUsername(lookupCtx, in.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Errorw("uniqueness check failed", "identite", in.Username, "error", err)
		return nil, fmt.Errorf("uniqueness check: %w", ErrInternal)
	}

	hash, err := credentials.Hash(in.Password, s.hashCost)
	if err != nil {
		s.log.Errorw("password hashing failed", "error", err)
		return nil, fmt.Errorf("hash password: %w", ErrInternal)
	}

	now := time.Now().UTC()
	id := primitive.NewObjectID()
	member := &models.Member{
		ID:             id,
		Username:       in.Username,
		Email:          in.Email,
		Password:       hash,
		Gender:         in.Gender,
		IsStudent:      in.IsStudent,
		IsAdult:        in.IsAdult,
		Role:           models.RoleMember,
		PhotoURL:       models.PhotoURLFor(id),
		Recommendation: models.DefaultRecommendation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Provisional success: the insert runs on the writer's goroutine
	// and a late duplicate-key loss of the race surfaces on the
	// failure feed.
	write := *member
	err = s.writer.Enqueue("signup:"+member.Username, func(wctx context.Context) error {
		return s.members.Insert(wctx, &write)
	})
	if err != nil {
		s.log.Errorw("signup write dispatch failed", "identite", in.Username, "error", err)
		return nil, fmt.Errorf("dispatch write: %w", ErrInternal)
	}

	return member.Sanitized(), nil
}

// Login looks the member up in the canonical collection first and
// falls back to the legacy adhesion collection, then verifies the
// password. Both failure modes collapse into ErrInvalidCredentials.
func (s *memberService) Login(ctx context.Context, username, password string) (*models.Member, error) {
	member, err := s.findByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Infow("login failed: unknown identite", "identite", username)
			return nil, ErrInvalidCredentials
		}
		s.log.Errorw("login lookup failed", "identite", username, "error", err)
		return nil, fmt.Errorf("login lookup: %w", ErrInternal)
	}

	if !credentials.Verify(member.Password, password) {
		s.log.Infow("login failed: wrong password", "identite", username)
		return nil, ErrInvalidCredentials
	}

	return member.Sanitized(), nil
}

// Lookup resolves a profile for the session layer.
func (s *memberService) Lookup(ctx context.Context, username string) (*models.Member, error) {
	member, err := s.findByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		s.log.Errorw("profile lookup failed", "identite", username, "error", err)
		return nil, fmt.Errorf("profile lookup: %w", ErrInternal)
	}
	return member.Sanitized(), nil
}

func (s *memberService) findByUsername(ctx context.Context, username string) (*models.Member, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	member, err := s.members.FindByUsername(opCtx, username)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Legacy members signed up through the old adhesion process and
	// may not be migrated yet.
	return s.adhesion.FindByUsername(opCtx, username)
}
