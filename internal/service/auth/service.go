package auth

import (
	"context"
	"fmt"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/auth"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/security"
)

type Service struct {
	userRepo repository.UserRepository
	jwt      auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwt auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		jwt:      jwt,
		hasher:   hasher,
	}
}

func (s *Service) Register(ctx context.Context, in *model.RegisterRequest) (*model.User, error) {
	if existing, _ := s.userRepo.GetByEmail(ctx, in.Email); existing != nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid password", err)
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         model.UserRoleMember,
		IsActive:     true,
	}
	if in.Phone != "" {
		user.Phone = &in.Phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, in *model.LoginRequest) (*model.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized(fmt.Errorf("account disabled"))
	}

	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	return s.issueTokens(user)
}

func (s *Service) Refresh(ctx context.Context, in *model.RefreshRequest) (*model.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	return s.issueTokens(user)
}

func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	return s.jwt.ValidateToken(token)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
