package commands

import (
	"context"
	"log/slog"

	"cinema-booking/internal/domain/user"
	reqdto "cinema-booking/internal/handler/dto/request"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/pkg/jwt"
	"cinema-booking/internal/pkg/password"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"
)

var (
	ErrUserNotFound         = errs.New("user not found")
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrUserInactive         = errs.New("user inactive")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type LoginResult struct {
	User      *queries.AuthorizedUserView
	TokenPair *TokenPair
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthCommands interface {
	Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	readStore  queries.UserReadStore
	jwtService *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, readStore queries.UserReadStore, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		readStore:  readStore,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error) {
	credentials, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	account, err := a.authenticate(ctx, credentials)
	if err != nil {
		return nil, err
	}

	pair, err := a.issuePair(account)
	if err != nil {
		return nil, err
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, tx.DB(), account.ID)
	})
	if err != nil {
		// the session is already issued
		slog.Warn("failed to update last login", "user_id", account.ID, "error", err.Error())
	}

	slog.Info("user logged in", "user_id", account.ID, "role", account.Role)
	return &LoginResult{User: account, TokenPair: pair}, nil
}

// RefreshToken rotates both tokens. The role is re-read from the store so
// promotions and demotions apply on the next refresh.
func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, errs.Wrapf(ErrTokenValidation, "unexpected token type %q", claims.TokenType)
	}

	account, err := a.readStore.FindByID(ctx, claims.UserID)
	if err != nil || account == nil {
		return nil, ErrUserNotFound
	}
	if !account.IsActive {
		return nil, ErrUserInactive
	}

	return a.issuePair(account)
}

func (a *authCommandsImpl) issuePair(account *queries.AuthorizedUserView) (*TokenPair, error) {
	role, err := user.NewRole(account.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	var pair TokenPair
	if pair.AccessToken, err = a.jwtService.GenerateAccessToken(account.ID, role); err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	if pair.RefreshToken, err = a.jwtService.GenerateRefreshToken(account.ID, role); err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	return &pair, nil
}

// authenticate answers unknown accounts and wrong passwords identically,
// including the bcrypt cost, so emails cannot be probed.
func (a *authCommandsImpl) authenticate(ctx context.Context, credentials user.Credentials) (*queries.AuthorizedUserView, error) {
	account, hashed, err := a.readStore.FindByEmail(ctx, credentials.Email().Value())
	if err != nil || account == nil {
		_ = password.ComparePassword("", credentials.Password().Value())
		return nil, ErrInvalidCredentials
	}

	if err := password.ComparePassword(hashed, credentials.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrUserInactive
	}
	return account, nil
}
