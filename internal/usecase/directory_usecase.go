package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/converter"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/domain/repository"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"golang.org/x/sync/errgroup"
)

const (
	homeDoctorLimit   = 6
	autocompleteLimit = 10
)

type DirectoryUsecase interface {
	Home(ctx context.Context) (*dto.HomeResponse, error)
	SearchDoctors(ctx context.Context, query *dto.SearchDoctorsQuery) ([]dto.DoctorResponse, error)
	// Autocomplete returns an empty list for a blank term.
	Autocomplete(ctx context.Context, term string) ([]dto.DoctorSummaryResponse, error)
}

type directoryUsecase struct {
	db              database.Transactor
	log             *logrus.Logger
	userRepo        repository.UserRepository
	doctorRepo      repository.DoctorRepository
	reservationRepo repository.ReservationRepository
}

func NewDirectoryUsecase(
	db database.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	reservationRepo repository.ReservationRepository,
) DirectoryUsecase {
	return &directoryUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		doctorRepo:      doctorRepo,
		reservationRepo: reservationRepo,
	}
}

// Home loads the site counters and the first doctors in parallel.
func (u *directoryUsecase) Home(ctx context.Context) (*dto.HomeResponse, error) {
	var (
		stats   entity.SiteStats
		doctors []entity.Doctor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Doctors, err = u.doctorRepo.Count(u.db.DB(gctx))
		return err
	})
	g.Go(func() (err error) {
		stats.Patients, err = u.userRepo.Count(u.db.DB(gctx))
		return err
	})
	g.Go(func() (err error) {
		stats.Reservations, err = u.reservationRepo.Count(u.db.DB(gctx))
		return err
	})
	g.Go(func() (err error) {
		doctors, err = u.doctorRepo.FindTop(u.db.DB(gctx), homeDoctorLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to load home page data: %+v", err)
		return nil, storageError("load home", err)
	}

	return &dto.HomeResponse{
		Stats:   converter.SiteStatsToResponse(stats),
		Doctors: converter.DoctorsToResponses(doctors),
	}, nil
}

func (u *directoryUsecase) SearchDoctors(ctx context.Context, query *dto.SearchDoctorsQuery) ([]dto.DoctorResponse, error) {
	filter := entity.DoctorFilter{
		Name:     strings.TrimSpace(query.Name),
		Location: strings.TrimSpace(query.Location),
		Query:    strings.TrimSpace(query.Q),
	}

	doctors, err := u.doctorRepo.Search(u.db.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, storageError("search doctors", err)
	}
	return converter.DoctorsToResponses(doctors), nil
}

func (u *directoryUsecase) Autocomplete(ctx context.Context, term string) ([]dto.DoctorSummaryResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []dto.DoctorSummaryResponse{}, nil
	}

	doctors, err := u.doctorRepo.Search(u.db.DB(ctx), entity.DoctorFilter{Query: term, Limit: autocompleteLimit})
	if err != nil {
		u.log.Warnf("Failed to search doctors for autocomplete: %+v", err)
		return nil, storageError("autocomplete doctors", err)
	}
	return converter.DoctorsToSummaries(doctors), nil
}
