package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/converter"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest, idPhoto *dto.FileUpload) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID, role string) (*dto.UserResponse, error)
}

type authUsecase struct {
	db           database.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	doctorRepo   repository.DoctorRepository
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
	photoStorage service.PhotoStorage
	now          func() time.Time
}

func NewAuthUsecase(
	db database.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	photoStorage service.PhotoStorage,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		doctorRepo:   doctorRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		photoStorage: photoStorage,
		now:          time.Now,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Name:           req.Name,
		Email:          normalizeEmail(req.Email),
		HashedPassword: string(hashedPassword),
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := u.userRepo.Create(u.db.DB(ctx), user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, storageError("create user", err)
	}

	return converter.UserToResponse(user), nil
}

// RegisterDoctor creates the doctor account. A failed ID photo upload is
// logged and the account is created without it.
func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest, idPhoto *dto.FileUpload) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	email := normalizeEmail(req.Email)
	doctor := &entity.Doctor{
		Name:           req.Name,
		Email:          email,
		HashedPassword: string(hashedPassword),
		Phone:          req.Phone,
		Specialty:      req.Specialty,
		Location:       req.Location,
	}

	if idPhoto != nil {
		publicID := fmt.Sprintf("doctor-id-%s-%d", email, u.now().UnixMilli())
		url, err := u.photoStorage.Upload(ctx, publicID, idPhoto.Content)
		if err != nil {
			u.log.Warnf("Failed to upload ID photo for %s: %+v", email, err)
		} else {
			doctor.IDPhotoURL = &url
		}
	}

	if err := u.doctorRepo.Create(u.db.DB(ctx), doctor); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, storageError("create doctor", err)
	}

	return converter.DoctorToUserResponse(doctor), nil
}

// Login authenticates against the doctors table when role is "doctor" and
// against patients otherwise.
func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	role := entity.NormalizeRole(req.Role)
	email := normalizeEmail(req.Email)
	db := u.db.DB(ctx)

	var (
		accountID      uuid.UUID
		hashedPassword string
	)
	switch role {
	case entity.RoleDoctor:
		doctor, err := u.doctorRepo.FindByEmail(db, email)
		if err != nil {
			u.log.Warnf("Failed to find doctor by email: %+v", err)
			return nil, storageError("find doctor", err)
		}
		if doctor == nil {
			return nil, ErrInvalidCredentials
		}
		accountID, hashedPassword = doctor.ID, doctor.HashedPassword
	default:
		user, err := u.userRepo.FindByEmail(db, email)
		if err != nil {
			u.log.Warnf("Failed to find user by email: %+v", err)
			return nil, storageError("find user", err)
		}
		if user == nil {
			return nil, ErrInvalidCredentials
		}
		accountID, hashedPassword = user.ID, user.HashedPassword
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, accountID, email, role)
}

func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	if err := u.tokenStore.Revoke(ctx, userID, jwt.AccessToken, accessTokenID); err != nil {
		return err
	}
	if refreshTokenID == "" {
		return nil
	}
	return u.tokenStore.Revoke(ctx, userID, jwt.RefreshToken, refreshTokenID)
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Refresh tokens are single use
	if err := u.tokenStore.Revoke(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID); err != nil {
		return nil, err
	}

	return u.issueTokens(ctx, claims.UserID, claims.Email, entity.NormalizeRole(claims.Role))
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID, role string) (*dto.UserResponse, error) {
	db := u.db.DB(ctx)

	if role == entity.RoleDoctor {
		doctor, err := u.doctorRepo.FindByID(db, userID)
		if err != nil {
			u.log.Warnf("Failed to find doctor by ID: %+v", err)
			return nil, storageError("find doctor", err)
		}
		if doctor == nil {
			return nil, ErrUserNotFound
		}
		return converter.DoctorToUserResponse(doctor), nil
	}

	user, err := u.userRepo.FindByID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, storageError("find user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email, role string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, userID, jwt.AccessToken, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		return nil, err
	}
	if err := u.tokenStore.Store(ctx, userID, jwt.RefreshToken, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:         role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
