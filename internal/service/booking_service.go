// Package service holds the booking admission logic: input validation, the
// interval overlap check, secret authorization and the mapping of store
// failures onto a small error taxonomy the HTTP layer can translate.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/queue"
	"github.com/iliyamo/room-booking/internal/repository"
)

// Options tunes a BookingService.  Zero values fall back to the defaults.
type Options struct {
	MinDuration         time.Duration // default 30m
	DefaultRoomCapacity int           // capacity of implicitly created rooms, default 4
	Timeout             time.Duration // per store call, default 5s
}

func (o Options) withDefaults() Options {
	if o.MinDuration <= 0 {
		o.MinDuration = 30 * time.Minute
	}
	if o.DefaultRoomCapacity <= 0 {
		o.DefaultRoomCapacity = 4
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	return o
}

// Candidate is a proposed booking as submitted by a caller.
type Candidate struct {
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name"`
	Floor     string `json:"floor"`
	BookedBy  string `json:"booked_by"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Secret    string `json:"booking_secret"`
}

// BookingQuery filters ListBookings.  Status is matched against the derived
// status.
type BookingQuery struct {
	RoomID string
	Date   string
	Status model.Status
}

// RoomInput is the writable part of a room.
type RoomInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Floor    string `json:"floor"`
	Capacity int    `json:"capacity"`
}

// BookingService admits, lists, patches and cancels bookings.
type BookingService struct {
	store  Store
	gate   Authorizer
	events EventPublisher
	log    *zap.Logger
	opts   Options
	now    func() time.Time
}

// NewBookingService wires a service.  events and log may be nil.
func NewBookingService(store Store, gate Authorizer, events EventPublisher, log *zap.Logger, opts Options) *BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{
		store:  store,
		gate:   gate,
		events: events,
		log:    log,
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

// Authorizer returns the gate used for secret checks.
func (s *BookingService) Authorizer() Authorizer { return s.gate }

// Ping checks that the store is reachable.
func (s *BookingService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	return s.storeErr("ping", s.store.Ping(ctx))
}

// Propose validates c and admits it unless it overlaps an existing booking
// for the same room and date, in which case a *ConflictError naming the
// earliest overlapping booking is returned.
func (s *BookingService) Propose(ctx context.Context, c Candidate) (model.Booking, error) {
	return s.propose(ctx, c, false)
}

// ProposeOverride admits c without the overlap check.  Only the admin route
// reaches it.
func (s *BookingService) ProposeOverride(ctx context.Context, c Candidate) (model.Booking, error) {
	return s.propose(ctx, c, true)
}

func (s *BookingService) propose(ctx context.Context, c Candidate, override bool) (model.Booking, error) {
	c.RoomID = strings.TrimSpace(c.RoomID)
	c.BookedBy = strings.TrimSpace(c.BookedBy)
	c.Date = strings.TrimSpace(c.Date)
	c.StartTime = strings.TrimSpace(c.StartTime)
	c.EndTime = strings.TrimSpace(c.EndTime)

	switch {
	case c.RoomID == "":
		return model.Booking{}, required("room_id")
	case c.Date == "":
		return model.Booking{}, required("date")
	case c.StartTime == "":
		return model.Booking{}, required("start_time")
	case c.EndTime == "":
		return model.Booking{}, required("end_time")
	case c.BookedBy == "":
		return model.Booking{}, required("booked_by")
	case c.Secret == "":
		return model.Booking{}, required("booking_secret")
	}

	if _, err := time.Parse(model.DateLayout, c.Date); err != nil {
		return model.Booking{}, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD", Err: ErrInvalidTimeFormat}
	}
	start, err := ParseClock(c.StartTime)
	if err != nil {
		return model.Booking{}, &ValidationError{Field: "start_time", Reason: "must be HH:MM", Err: err}
	}
	end, err := ParseClock(c.EndTime)
	if err != nil {
		return model.Booking{}, &ValidationError{Field: "end_time", Reason: "must be HH:MM", Err: err}
	}
	minMinutes := int(s.opts.MinDuration / time.Minute)
	if end-start < minMinutes {
		return model.Booking{}, fmt.Errorf("%w: must be at least %d minutes", ErrInvalidDuration, minMinutes)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	room, err := s.store.EnsureRoom(ctx, model.Room{
		ID:       c.RoomID,
		Name:     cmp.Or(strings.TrimSpace(c.RoomName), c.RoomID),
		Floor:    strings.TrimSpace(c.Floor),
		Capacity: s.opts.DefaultRoomCapacity,
	})
	if err != nil {
		return model.Booking{}, s.storeErr("ensure room", err)
	}

	now := s.now()
	roomID := room.ID
	b := model.Booking{
		ID:        uuid.NewString(),
		RoomID:    &roomID,
		RoomName:  cmp.Or(strings.TrimSpace(c.RoomName), room.Name),
		Floor:     cmp.Or(strings.TrimSpace(c.Floor), room.Floor),
		BookedBy:  c.BookedBy,
		Date:      c.Date,
		StartTime: FormatClock(start),
		EndTime:   FormatClock(end),
		Secret:    c.Secret,
		CreatedAt: now.UTC(),
	}
	b.Status = b.DeriveStatus(now)

	var admit repository.AdmitFunc
	if !override {
		admit = func(sameDay []model.Booking) error {
			return s.firstConflict(sameDay, start, end)
		}
	}
	if err := s.store.AdmitBooking(ctx, &b, admit); err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			s.log.Info("booking rejected",
				zap.String("room_id", roomID),
				zap.String("date", b.Date),
				zap.String("conflicts_with", ce.Booking.ID))
			return model.Booking{}, ce
		}
		return model.Booking{}, s.storeErr("admit booking", err)
	}

	s.log.Info("booking admitted",
		zap.String("booking_id", b.ID),
		zap.String("room_id", roomID),
		zap.String("date", b.Date),
		zap.String("start", b.StartTime),
		zap.String("end", b.EndTime),
		zap.Bool("override", override))
	s.publish(queue.EventBookingCreated, b, override)
	return b, nil
}

// firstConflict returns a *ConflictError for the earliest booking in sameDay
// that overlaps [start, end).  sameDay is ordered by start time.
func (s *BookingService) firstConflict(sameDay []model.Booking, start, end int) error {
	for _, existing := range sameDay {
		es, err := ParseClock(existing.StartTime)
		if err != nil {
			s.log.Warn("skipping booking with malformed start", zap.String("booking_id", existing.ID))
			continue
		}
		ee, err := ParseClock(existing.EndTime)
		if err != nil {
			s.log.Warn("skipping booking with malformed end", zap.String("booking_id", existing.ID))
			continue
		}
		if Overlaps(start, end, es, ee) {
			return newConflict(existing.WithDerivedStatus(s.now()))
		}
	}
	return nil
}

// Delete removes booking id when secret matches its stored secret or the
// admin override token.
func (s *BookingService) Delete(ctx context.Context, id, secret string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return s.storeErr("get booking", err)
	}
	if !s.gate.Authorize(b.Secret, secret) {
		s.log.Info("booking delete refused", zap.String("booking_id", id))
		return ErrForbidden
	}
	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return s.storeErr("delete booking", err)
	}

	override := secret != b.Secret
	s.log.Info("booking deleted", zap.String("booking_id", id), zap.Bool("override", override))
	s.publish(queue.EventBookingCancelled, b.WithDerivedStatus(s.now()), override)
	return nil
}

// UpdateStatus stores status as the booking's status hint.  It performs no
// authorization.  The returned booking carries the derived status.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status model.Status) (model.Booking, error) {
	if !status.Valid() {
		return model.Booking{}, &ValidationError{Field: "status", Reason: "must be one of upcoming, in-progress, completed"}
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	b, err := s.store.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return model.Booking{}, s.storeErr("update booking status", err)
	}
	s.publish(queue.EventBookingStatusChanged, b, false)
	return b.WithDerivedStatus(s.now()), nil
}

// ListBookings returns bookings ordered by date, then start time, each with
// its status derived from the current time.
func (s *BookingService) ListBookings(ctx context.Context, q BookingQuery) ([]model.Booking, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "must be one of upcoming, in-progress, completed"}
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	rows, err := s.store.ListBookings(ctx, repository.BookingFilter{RoomID: q.RoomID, Date: q.Date})
	if err != nil {
		return nil, s.storeErr("list bookings", err)
	}
	now := s.now()
	out := make([]model.Booking, 0, len(rows))
	for _, b := range rows {
		b = b.WithDerivedStatus(now)
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// ListRooms returns rooms ordered by floor, then name.
func (s *BookingService) ListRooms(ctx context.Context) ([]model.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, s.storeErr("list rooms", err)
	}
	return rooms, nil
}

// CreateRoom adds a room.  An empty ID is replaced by a UUID and a zero
// capacity by the configured default.
func (s *BookingService) CreateRoom(ctx context.Context, in RoomInput) (model.Room, error) {
	room, err := s.roomFromInput(in)
	if err != nil {
		return model.Room{}, err
	}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	created, err := s.store.CreateRoom(ctx, room)
	if err != nil {
		return model.Room{}, s.storeErr("create room", err)
	}
	s.log.Info("room created", zap.String("room_id", created.ID))
	return created, nil
}

// UpsertRoom creates or replaces room id.
func (s *BookingService) UpsertRoom(ctx context.Context, id string, in RoomInput) (model.Room, error) {
	in.ID = id
	room, err := s.roomFromInput(in)
	if err != nil {
		return model.Room{}, err
	}
	if room.ID == "" {
		return model.Room{}, required("id")
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	saved, err := s.store.UpsertRoom(ctx, room)
	if err != nil {
		return model.Room{}, s.storeErr("upsert room", err)
	}
	s.log.Info("room saved", zap.String("room_id", saved.ID))
	return saved, nil
}

// DeleteRoom removes room id.  Its bookings survive with a nil room id.
func (s *BookingService) DeleteRoom(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.store.DeleteRoom(ctx, id); err != nil {
		return s.storeErr("delete room", err)
	}
	s.log.Info("room deleted", zap.String("room_id", id))
	return nil
}

func (s *BookingService) roomFromInput(in RoomInput) (model.Room, error) {
	room := model.Room{
		ID:       strings.TrimSpace(in.ID),
		Name:     strings.TrimSpace(in.Name),
		Floor:    strings.TrimSpace(in.Floor),
		Capacity: in.Capacity,
	}
	if room.Name == "" {
		return model.Room{}, required("name")
	}
	if room.Capacity < 0 {
		return model.Room{}, &ValidationError{Field: "capacity", Reason: "must not be negative"}
	}
	if room.Capacity == 0 {
		room.Capacity = s.opts.DefaultRoomCapacity
	}
	return room, nil
}

// storeErr maps repository errors onto the service taxonomy.  Anything that
// is not a known outcome becomes a *StoreError.
func (s *BookingService) storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrBookingNotFound), errors.Is(err, repository.ErrRoomNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrRoomExists
	}
	s.log.Error("store failure", zap.String("op", op), zap.Error(err))
	return &StoreError{Op: op, Err: err}
}

// publish sends an event in the background.  Delivery failures are logged by
// the publisher and never affect the request.
func (s *BookingService) publish(typ string, b model.Booking, override bool) {
	if s.events == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		RoomName:   b.RoomName,
		Floor:      b.Floor,
		BookedBy:   b.BookedBy,
		Date:       b.Date,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     string(b.Status),
		Override:   override,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	if b.RoomID != nil {
		ev.RoomID = *b.RoomID
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn("event publish failed", zap.String("type", typ), zap.Error(err))
		}
	}()
}
