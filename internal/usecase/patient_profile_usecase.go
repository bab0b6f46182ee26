package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/converter"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
)

type PatientProfileUsecase interface {
	// GetDashboard returns the patient with every reservation, newest slot first.
	GetDashboard(ctx context.Context, patientID uuid.UUID) (*dto.PatientDashboardResponse, error)
}

type patientProfileUsecase struct {
	db              database.Transactor
	log             *logrus.Logger
	userRepo        repository.UserRepository
	reservationRepo repository.ReservationRepository
}

func NewPatientProfileUsecase(
	db database.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	reservationRepo repository.ReservationRepository,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
	}
}

func (u *patientProfileUsecase) GetDashboard(ctx context.Context, patientID uuid.UUID) (*dto.PatientDashboardResponse, error) {
	db := u.db.DB(ctx)

	user, err := u.userRepo.FindByID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, storageError("find user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	reservations, err := u.reservationRepo.FindByPatientWithDoctor(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find reservations for patient %s: %+v", patientID, err)
		return nil, storageError("find reservations", err)
	}

	return converter.PatientDashboardToResponse(user, reservations), nil
}
