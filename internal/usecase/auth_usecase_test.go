package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taherx7/Medi-connect/config"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/pkg/jwt"
)

type authFixture struct {
	store  *memStore
	tokens *fakeTokenStore
	photos *fakePhotoStorage
	jwt    *jwt.JWTService
	auth   *authUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	store := newMemStore()
	tokens := newFakeTokenStore()
	photos := &fakePhotoStorage{}
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})

	auth := NewAuthUsecase(
		&fakeTransactor{s: store}, newTestLogger(),
		&fakeUserRepo{s: store}, &fakeDoctorRepo{s: store},
		jwtService, tokens, photos,
	).(*authUsecase)
	auth.now = func() time.Time { return time.UnixMilli(1900000000000) }

	return &authFixture{store: store, tokens: tokens, photos: photos, jwt: jwtService, auth: auth}
}

func TestRegisterPatientAndLogin(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		Name: "Omar", Email: " Omar@Example.com", Password: "secret1", Phone: "0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "omar@example.com", user.Email)
	assert.Equal(t, entity.RolePatient, user.Role)
	assert.Equal(t, "0100", user.Phone)

	tokens, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "omar@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RolePatient, tokens.Role)
	assert.Equal(t, int64(900), tokens.ExpiresIn)
	assert.Len(t, f.tokens.tokens, 2)

	claims, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, entity.RolePatient, claims.Role)
}

func TestRegisterPatient_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	req := &dto.RegisterPatientRequest{Name: "Omar", Email: "omar@example.com", Password: "secret1"}

	_, err := f.auth.RegisterPatient(context.Background(), req)
	require.NoError(t, err)

	_, err = f.auth.RegisterPatient(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{Name: "Omar", Email: "omar@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.Login(context.Background(), &dto.LoginRequest{Email: "omar@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Empty(t, f.tokens.tokens)
}

func TestLogin_DoctorRoleUsesDoctorAccounts(t *testing.T) {
	f := newAuthFixture(t)
	doctor, err := f.auth.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		Name: "Dr Sara", Email: "sara@example.com", Password: "secret1", Specialty: "Dermatology",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDoctor, doctor.Role)

	_, err = f.auth.Login(context.Background(), &dto.LoginRequest{Email: "sara@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tokens, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "sara@example.com", Password: "secret1", Role: "doctor"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDoctor, tokens.Role)
}

func TestRegisterDoctor_UploadsIDPhoto(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		Name: "Dr Sara", Email: "sara@example.com", Password: "secret1",
	}, &dto.FileUpload{Filename: "id.jpg", Content: strings.NewReader("jpeg")})
	require.NoError(t, err)

	require.Equal(t, []string{"doctor-id-sara@example.com-1900000000000"}, f.photos.publicIDs)
	stored, err := (&fakeDoctorRepo{s: f.store}).FindByEmail(nil, "sara@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.IDPhotoURL)
	assert.Contains(t, *stored.IDPhotoURL, "doctor-id-sara@example.com")
}

func TestRegisterDoctor_FailedUploadStillCreatesAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.photos.err = errors.New("cloudinary unavailable")

	_, err := f.auth.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		Name: "Dr Sara", Email: "sara@example.com", Password: "secret1",
	}, &dto.FileUpload{Filename: "id.jpg", Content: strings.NewReader("jpeg")})
	require.NoError(t, err)

	stored, err := (&fakeDoctorRepo{s: f.store}).FindByEmail(nil, "sara@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.IDPhotoURL)
}

func TestRefreshToken_IsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{Name: "Omar", Email: "omar@example.com", Password: "secret1"})
	require.NoError(t, err)
	tokens, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "omar@example.com", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := f.auth.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, entity.RolePatient, refreshed.Role)

	_, err = f.auth.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.auth.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.auth.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesTokens(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{Name: "Omar", Email: "omar@example.com", Password: "secret1"})
	require.NoError(t, err)
	tokens, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "omar@example.com", Password: "secret1"})
	require.NoError(t, err)

	access, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(context.Background(), access.UserID, access.TokenID, refresh.TokenID))
	assert.Empty(t, f.tokens.tokens)
}

func TestGetCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	patient, err := f.auth.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{Name: "Omar", Email: "omar@example.com", Password: "secret1"})
	require.NoError(t, err)
	doctor, err := f.auth.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{Name: "Dr Sara", Email: "sara@example.com", Password: "secret1"}, nil)
	require.NoError(t, err)

	me, err := f.auth.GetCurrentUser(context.Background(), patient.ID, entity.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, "Omar", me.Name)

	me, err = f.auth.GetCurrentUser(context.Background(), doctor.ID, entity.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, "Dr Sara", me.Name)

	_, err = f.auth.GetCurrentUser(context.Background(), doctor.ID, entity.RolePatient)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
