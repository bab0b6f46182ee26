package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	"github.com/taherx7/Medi-connect/internal/service"
	"github.com/taherx7/Medi-connect/internal/slot"
	"github.com/taherx7/Medi-connect/pkg/jwt"
	"gorm.io/gorm"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memStore backs every fake repository. Setting err makes all repository
// calls fail; createReservationErr and auditErr fail a single write and
// auditReadErr fails activity reads.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]entity.User
	doctors      map[uuid.UUID]entity.Doctor
	reservations map[uuid.UUID]entity.Reservation
	blocked      map[uuid.UUID]entity.BlockedSlot
	audit        []entity.AuditLog

	err                  error
	createReservationErr error
	auditErr             error
	auditReadErr         error
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[uuid.UUID]entity.User{},
		doctors:      map[uuid.UUID]entity.Doctor{},
		reservations: map[uuid.UUID]entity.Reservation{},
		blocked:      map[uuid.UUID]entity.BlockedSlot{},
	}
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := newMemStore()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.doctors {
		c.doctors[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.blocked {
		c.blocked[k] = v
	}
	c.audit = append([]entity.AuditLog(nil), s.audit...)
	return c
}

func (s *memStore) restore(from *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = from.users
	s.doctors = from.doctors
	s.reservations = from.reservations
	s.blocked = from.blocked
	s.audit = from.audit
}

func (s *memStore) addUser(name, email string) entity.User {
	u := entity.User{ID: uuid.New(), Name: name, Email: email}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addDoctor(name string, start, end slot.TimeOfDay, minutes int) entity.Doctor {
	d := entity.Doctor{
		ID:                  uuid.New(),
		Name:                name,
		Email:               strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com",
		WorkingHoursStart:   entity.WorkingHour(start),
		WorkingHoursEnd:     entity.WorkingHour(end),
		AvgConsultationTime: &minutes,
	}
	s.doctors[d.ID] = d
	return d
}

func (s *memStore) addReservation(doctorID, userID uuid.UUID, at time.Time, status entity.ReservationStatus) entity.Reservation {
	r := entity.Reservation{
		ID:            uuid.New(),
		DoctorID:      doctorID,
		UserID:        userID,
		TimeSlot:      at,
		Status:        status,
		PaymentStatus: entity.PaymentStatusPending,
	}
	s.reservations[r.ID] = r
	return r
}

func (s *memStore) addBlocked(doctorID uuid.UUID, start, end time.Time) entity.BlockedSlot {
	b := entity.BlockedSlot{ID: uuid.New(), DoctorID: doctorID, StartTime: start, EndTime: end}
	s.blocked[b.ID] = b
	return b
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

// fakeTransactor discards the store changes of a failed transaction.
type fakeTransactor struct {
	s *memStore
}

func (t *fakeTransactor) DB(ctx context.Context) *gorm.DB {
	return nil
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return uniqueViolation("uq_users_email")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) LockByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.FindByID(db, id)
}

func (r *fakeUserRepo) Count(db *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	return int64(len(r.s.users)), nil
}

type fakeDoctorRepo struct{ s *memStore }

func (r *fakeDoctorRepo) Create(db *gorm.DB, doctor *entity.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	for _, d := range r.s.doctors {
		if d.Email == doctor.Email {
			return uniqueViolation("uq_doctors_email")
		}
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	r.s.doctors[doctor.ID] = *doctor
	return nil
}

func (r *fakeDoctorRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *fakeDoctorRepo) FindByEmail(db *gorm.DB, email string) (*entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	for _, d := range r.s.doctors {
		if d.Email == email {
			return &d, nil
		}
	}
	return nil, nil
}

func (r *fakeDoctorRepo) Update(db *gorm.DB, doctor *entity.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	r.s.doctors[doctor.ID] = *doctor
	return nil
}

func (r *fakeDoctorRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	if _, ok := r.s.doctors[id]; !ok {
		return 0, nil
	}
	delete(r.s.doctors, id)
	return 1, nil
}

func (r *fakeDoctorRepo) Search(db *gorm.DB, filter entity.DoctorFilter) ([]entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}

	contains := func(value, term string) bool {
		return strings.Contains(strings.ToLower(value), strings.ToLower(term))
	}

	var result []entity.Doctor
	for _, d := range r.s.doctors {
		if filter.Name != "" && !contains(d.Name, filter.Name) {
			continue
		}
		if filter.Location != "" && !contains(d.Location, filter.Location) {
			continue
		}
		if filter.Query != "" && !contains(d.Name, filter.Query) && !contains(d.Location, filter.Query) {
			continue
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *fakeDoctorRepo) FindTop(db *gorm.DB, limit int) ([]entity.Doctor, error) {
	return r.Search(db, entity.DoctorFilter{Limit: limit})
}

func (r *fakeDoctorRepo) Count(db *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	return int64(len(r.s.doctors)), nil
}

type fakeReservationRepo struct{ s *memStore }

func (r *fakeReservationRepo) Create(db *gorm.DB, reservation *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	if r.s.createReservationErr != nil {
		return r.s.createReservationErr
	}
	for _, existing := range r.s.reservations {
		if existing.DoctorID == reservation.DoctorID && existing.TimeSlot.Equal(reservation.TimeSlot) &&
			existing.Status == entity.ReservationStatusConfirmed && reservation.Status == entity.ReservationStatusConfirmed {
			return uniqueViolation(reservationSlotConstraint)
		}
	}
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	r.s.reservations[reservation.ID] = *reservation
	return nil
}

func (r *fakeReservationRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *fakeReservationRepo) FindActiveByPatient(db *gorm.DB, patientID uuid.UUID, now time.Time) ([]entity.Reservation, error) {
	return r.filter(func(res entity.Reservation) bool {
		return res.UserID == patientID && res.IsActive(now)
	}, true)
}

func (r *fakeReservationRepo) FindBookedTimes(db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	found, err := r.filter(func(res entity.Reservation) bool {
		return res.DoctorID == doctorID && !res.IsCancelled() && !res.TimeSlot.Before(from) && res.TimeSlot.Before(to)
	}, true)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(found))
	for _, res := range found {
		times = append(times, res.TimeSlot)
	}
	return times, nil
}

func (r *fakeReservationRepo) CancelReservation(db *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	res, ok := r.s.reservations[id]
	if !ok || res.IsCancelled() {
		return 0, nil
	}
	res.Cancel()
	r.s.reservations[id] = res
	return 1, nil
}

func (r *fakeReservationRepo) FindByPatientWithDoctor(db *gorm.DB, patientID uuid.UUID) ([]entity.Reservation, error) {
	found, err := r.filter(func(res entity.Reservation) bool { return res.UserID == patientID }, false)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range found {
		if d, ok := r.s.doctors[found[i].DoctorID]; ok {
			found[i].Doctor = &d
		}
	}
	return found, nil
}

func (r *fakeReservationRepo) FindByDoctorWithPatient(db *gorm.DB, doctorID uuid.UUID) ([]entity.Reservation, error) {
	found, err := r.filter(func(res entity.Reservation) bool { return res.DoctorID == doctorID }, true)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range found {
		if u, ok := r.s.users[found[i].UserID]; ok {
			found[i].User = &u
		}
	}
	return found, nil
}

func (r *fakeReservationRepo) DeleteByDoctor(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	var n int64
	for id, res := range r.s.reservations {
		if res.DoctorID == doctorID {
			delete(r.s.reservations, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeReservationRepo) Count(db *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	return int64(len(r.s.reservations)), nil
}

func (r *fakeReservationRepo) filter(keep func(entity.Reservation) bool, ascending bool) ([]entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var found []entity.Reservation
	for _, res := range r.s.reservations {
		if keep(res) {
			found = append(found, res)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if ascending {
			return found[i].TimeSlot.Before(found[j].TimeSlot)
		}
		return found[i].TimeSlot.After(found[j].TimeSlot)
	})
	return found, nil
}

type fakeBlockedSlotRepo struct{ s *memStore }

func (r *fakeBlockedSlotRepo) Create(db *gorm.DB, blocked *entity.BlockedSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	if blocked.ID == uuid.Nil {
		blocked.ID = uuid.New()
	}
	r.s.blocked[blocked.ID] = *blocked
	return nil
}

func (r *fakeBlockedSlotRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.BlockedSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	b, ok := r.s.blocked[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *fakeBlockedSlotRepo) FindOverlapping(db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]entity.BlockedSlot, error) {
	return r.filter(func(b entity.BlockedSlot) bool {
		return b.DoctorID == doctorID && b.StartTime.Before(to) && b.EndTime.After(from)
	})
}

func (r *fakeBlockedSlotRepo) FindUpcomingByDoctor(db *gorm.DB, doctorID uuid.UUID, now time.Time) ([]entity.BlockedSlot, error) {
	return r.filter(func(b entity.BlockedSlot) bool {
		return b.DoctorID == doctorID && b.EndTime.After(now)
	})
}

func (r *fakeBlockedSlotRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	if _, ok := r.s.blocked[id]; !ok {
		return 0, nil
	}
	delete(r.s.blocked, id)
	return 1, nil
}

func (r *fakeBlockedSlotRepo) DeleteByDoctor(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return 0, r.s.err
	}
	var n int64
	for id, b := range r.s.blocked {
		if b.DoctorID == doctorID {
			delete(r.s.blocked, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeBlockedSlotRepo) DeleteEndedBefore(db *gorm.DB, cutoff time.Time) ([]entity.BlockedSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var removed []entity.BlockedSlot
	for id, b := range r.s.blocked {
		if b.EndTime.Before(cutoff) {
			removed = append(removed, b)
			delete(r.s.blocked, id)
		}
	}
	return removed, nil
}

func (r *fakeBlockedSlotRepo) filter(keep func(entity.BlockedSlot) bool) ([]entity.BlockedSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var found []entity.BlockedSlot
	for _, b := range r.s.blocked {
		if keep(b) {
			found = append(found, b)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].StartTime.Before(found[j].StartTime) })
	return found, nil
}

type fakeAuditRepo struct{ s *memStore }

func (r *fakeAuditRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	log.ID = int64(len(r.s.audit) + 1)
	r.s.audit = append(r.s.audit, *log)
	return nil
}

func (r *fakeAuditRepo) FindByActor(db *gorm.DB, actorID uuid.UUID, limit int) ([]entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.auditReadErr != nil {
		return nil, r.s.auditReadErr
	}
	var logs []entity.AuditLog
	for i := len(r.s.audit) - 1; i >= 0 && len(logs) < limit; i-- {
		if a := r.s.audit[i]; a.ActorID != nil && *a.ActorID == actorID {
			logs = append(logs, a)
		}
	}
	return logs, nil
}

// fakeCache records invalidations on top of a map. Counters mirror the Redis
// cache so a Set carrying an outdated stamp is dropped.
type fakeCache struct {
	mu                 sync.Mutex
	entries            map[string][]slot.Availability
	versions           map[uuid.UUID]int64
	generations        map[string]int64
	invalidatedDates   []string
	invalidatedDoctors []uuid.UUID

	// afterStamp runs once a stamp has been handed out, before the caller loads.
	afterStamp func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:     map[string][]slot.Availability{},
		versions:    map[uuid.UUID]int64{},
		generations: map[string]int64{},
	}
}

func (c *fakeCache) Get(ctx context.Context, doctorID uuid.UUID, date string) ([]slot.Availability, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[doctorID.String()+":"+date]
	return v, ok, nil
}

func (c *fakeCache) Stamp(ctx context.Context, doctorID uuid.UUID, date string) (service.Stamp, error) {
	c.mu.Lock()
	stamp := service.Stamp{
		Version:    c.versions[doctorID],
		Generation: c.generations[doctorID.String()+":"+date],
	}
	hook := c.afterStamp
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return stamp, nil
}

func (c *fakeCache) Set(ctx context.Context, doctorID uuid.UUID, date string, stamp service.Stamp, dayEnd time.Time, slots []slot.Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := doctorID.String() + ":" + date
	if c.versions[doctorID] != stamp.Version || c.generations[key] != stamp.Generation {
		return nil
	}
	c.entries[key] = slots
	return nil
}

func (c *fakeCache) InvalidateDate(ctx context.Context, doctorID uuid.UUID, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := doctorID.String() + ":" + date
	c.generations[key]++
	delete(c.entries, key)
	c.invalidatedDates = append(c.invalidatedDates, date)
	return nil
}

func (c *fakeCache) InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[doctorID]++
	prefix := doctorID.String() + ":"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.invalidatedDoctors = append(c.invalidatedDoctors, doctorID)
	return nil
}

type fakeReminders struct {
	scheduled map[uuid.UUID]time.Time
	cancelled []uuid.UUID
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{scheduled: map[uuid.UUID]time.Time{}}
}

func (r *fakeReminders) Schedule(ctx context.Context, reservationID uuid.UUID, timeSlot time.Time) error {
	r.scheduled[reservationID] = timeSlot
	return nil
}

func (r *fakeReminders) Cancel(ctx context.Context, reservationID uuid.UUID) error {
	delete(r.scheduled, reservationID)
	r.cancelled = append(r.cancelled, reservationID)
	return nil
}

type fakeTokenStore struct {
	tokens     map[string]bool
	revokedAll []uuid.UUID
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]bool{}}
}

func (s *fakeTokenStore) Store(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	s.tokens[service.TokenKey(tokenType, userID, tokenID)] = true
	return nil
}

func (s *fakeTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error) {
	return s.tokens[service.TokenKey(tokenType, userID, tokenID)], nil
}

func (s *fakeTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error {
	delete(s.tokens, service.TokenKey(tokenType, userID, tokenID))
	return nil
}

func (s *fakeTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for key := range s.tokens {
		if strings.Contains(key, ":"+userID.String()+":") {
			delete(s.tokens, key)
		}
	}
	s.revokedAll = append(s.revokedAll, userID)
	return nil
}

type fakePhotoStorage struct {
	err       error
	publicIDs []string
}

func (p *fakePhotoStorage) Upload(ctx context.Context, publicID string, file io.Reader) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.publicIDs = append(p.publicIDs, publicID)
	return "https://res.cloudinary.com/demo/image/upload/" + publicID, nil
}
