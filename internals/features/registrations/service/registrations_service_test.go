package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	accountModel "arcevents_backend/internals/features/accounts/model"
	"arcevents_backend/internals/features/auth/session"
	eventModel "arcevents_backend/internals/features/events/model"
	"arcevents_backend/internals/features/registrations/dto"
	"arcevents_backend/internals/features/registrations/model"
	"arcevents_backend/internals/helpers/apperror"
	helperOSS "arcevents_backend/internals/helpers/oss"
	"arcevents_backend/internals/testkit"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mem   *testkit.Memory
	blobs *helperOSS.MemoryBlobStore
	svc   *RegistrationService
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mem:   testkit.NewMemory(),
		blobs: helperOSS.NewMemoryBlobStore(),
		now:   time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
	}
	f.svc = NewRegistrationService(f.mem, f.mem, f.mem, f.blobs, time.Second).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) event(t *testing.T, slug string, mut func(*eventModel.EventModel)) *eventModel.EventModel {
	t.Helper()
	e := &eventModel.EventModel{
		EventName:   "Event " + slug,
		EventSlug:   slug,
		EventStatus: eventModel.EventStatusLive,
	}
	if mut != nil {
		mut(e)
	}
	require.NoError(t, f.mem.CreateEvent(context.Background(), e))
	return e
}

func paidReunion(e *eventModel.EventModel) {
	e.EventIsPaid = true
	e.EventBasePrice = 500
	e.EventAddonPricePerMember = 200
	e.EventFamilyAllowed = true
}

var receipt = &helperOSS.Upload{Filename: "receipt.png", ContentType: "image/png", Data: []byte("png")}

func alum(sub string) session.UserSession {
	return session.UserSession{SubjectID: sub, Email: sub + "@alumni.test", Name: "Alum " + sub}
}

func baseRequest() dto.RegisterRequest {
	return dto.RegisterRequest{Name: "Rina Putri", Batch: "2012", Contact: "+62811000111"}
}

func TestRegisterPaidEventComputesAmountAndReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, "reunion-2025", paidReunion)

	req := baseRequest()
	req.FamilyMembers = []model.FamilyMember{
		{Name: "Budi", Relation: "spouse"},
		{Name: "Sari", Relation: "child"},
	}
	clientAmount := int64(1)
	req.Amount = &clientAmount

	reg, err := f.svc.Register(ctx, alum("g-1"), "reunion-2025", req, receipt)
	require.NoError(t, err)
	assert.Equal(t, int64(900), reg.RegistrationAmount, "client amount is ignored")
	assert.Equal(t, model.StatusPending, reg.RegistrationStatus)
	assert.Equal(t, ev.EventID, *reg.RegistrationEventID)
	assert.Equal(t, "reunion-2025", reg.RegistrationEventSlug)
	assert.NotEmpty(t, reg.RegistrationReceiptURL)
	assert.True(t, f.blobs.Has(reg.RegistrationReceiptKey))
	assert.Len(t, reg.RegistrationFamilyMembers, 2)

	admin := session.AdminSession{AdminID: uuid.New(), Username: "root@arc.edu"}
	approved, err := f.svc.SetStatus(ctx, admin, ev.EventID, reg.RegistrationID, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.RegistrationStatus)
	require.NotNil(t, approved.RegistrationApprovedBy)
	assert.Equal(t, admin.AdminID, *approved.RegistrationApprovedBy)
	require.NotNil(t, approved.RegistrationApprovedAt)
	assert.True(t, f.now.Equal(*approved.RegistrationApprovedAt))

	back, err := f.svc.SetStatus(ctx, admin, ev.EventID, reg.RegistrationID, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, back.RegistrationStatus)
	assert.Nil(t, back.RegistrationApprovedBy)
	assert.Nil(t, back.RegistrationApprovedAt)

	stored, ok := f.mem.Registration(reg.RegistrationID)
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, stored.RegistrationStatus)
	assert.Nil(t, stored.RegistrationApprovedAt)
}

func TestRegisterTwiceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.event(t, "reunion-2025", paidReunion)

	first, err := f.svc.Register(ctx, alum("g-1"), "reunion-2025", baseRequest(), receipt)
	require.NoError(t, err)

	again := baseRequest()
	again.Name = "Someone Else"
	_, err = f.svc.Register(ctx, alum("g-1"), "reunion-2025", again, receipt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrAlreadyRegistered))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	stored, ok := f.mem.Registration(first.RegistrationID)
	require.True(t, ok)
	assert.Equal(t, "Rina Putri", stored.RegistrationName)
	assert.Equal(t, 1, f.mem.RegistrationCount())
	assert.Equal(t, 1, f.blobs.Len(), "the losing receipt is released")
}

func TestConcurrentRegisterExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.event(t, "gala", nil)

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dupes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), alum("same"), "gala", baseRequest(), nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperror.ErrAlreadyRegistered):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dupes)
	assert.Equal(t, 1, f.mem.RegistrationCount())
}

func TestRegisterUploadFailurePersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.event(t, "reunion-2025", paidReunion)
	f.blobs.FailUploads(errors.New("bucket unavailable"))

	_, err := f.svc.Register(context.Background(), alum("g-1"), "reunion-2025", baseRequest(), receipt)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	assert.Equal(t, 0, f.mem.RegistrationCount())
}

func TestRegisterUploadTimeoutIsUpstream(t *testing.T) {
	f := newFixture(t)
	f.svc.uploadTimeout = 20 * time.Millisecond
	f.event(t, "reunion-2025", paidReunion)
	f.blobs.SetDelay(time.Second)

	_, err := f.svc.Register(context.Background(), alum("g-1"), "reunion-2025", baseRequest(), receipt)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	assert.Equal(t, 0, f.mem.RegistrationCount())
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.event(t, "paid", paidReunion)
	f.event(t, "solo", nil)

	t.Run("paid event needs a receipt", func(t *testing.T) {
		_, err := f.svc.Register(ctx, alum("a"), "paid", baseRequest(), nil)
		var ae *apperror.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperror.KindValidation, ae.Kind)
		assert.Contains(t, ae.Fields, "receipt")
	})

	t.Run("family members rejected when not allowed", func(t *testing.T) {
		req := baseRequest()
		req.FamilyMembers = []model.FamilyMember{{Name: "Budi", Relation: "spouse"}}
		_, err := f.svc.Register(ctx, alum("b"), "solo", req, nil)
		var ae *apperror.Error
		require.ErrorAs(t, err, &ae)
		assert.Contains(t, ae.Fields, "family_members")
	})

	t.Run("blank name after trimming", func(t *testing.T) {
		req := baseRequest()
		req.Name = "   "
		_, err := f.svc.Register(ctx, alum("c"), "solo", req, nil)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := f.svc.Register(ctx, alum("d"), "nope", baseRequest(), nil)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.svc.Register(ctx, session.UserSession{}, "solo", baseRequest(), nil)
		assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	})

	assert.Equal(t, 0, f.mem.RegistrationCount())
	assert.Equal(t, 0, f.blobs.Len())
}

func TestRegisterFreeEventIgnoresReceipt(t *testing.T) {
	f := newFixture(t)
	f.event(t, "free", func(e *eventModel.EventModel) { e.EventFamilyAllowed = true })

	req := baseRequest()
	req.FamilyMembers = []model.FamilyMember{{Name: "Budi", Relation: "spouse"}}
	reg, err := f.svc.Register(context.Background(), alum("g-1"), "free", req, receipt)
	require.NoError(t, err)
	assert.Zero(t, reg.RegistrationAmount)
	assert.Empty(t, reg.RegistrationReceiptURL)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestRegisterArchivedEventIsNotFound(t *testing.T) {
	f := newFixture(t)
	ev := f.event(t, "old", nil)
	require.NoError(t, f.mem.ArchiveEvent(context.Background(), ev.EventID, f.now))

	_, err := f.svc.Register(context.Background(), alum("g-1"), "old", baseRequest(), nil)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSetStatusScopedToEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.event(t, "a", nil)
	b := f.event(t, "b", nil)
	reg, err := f.svc.Register(ctx, alum("g-1"), "a", baseRequest(), nil)
	require.NoError(t, err)

	admin := session.AdminSession{AdminID: uuid.New()}
	_, err = f.svc.SetStatus(ctx, admin, b.EventID, reg.RegistrationID, model.StatusApproved)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.svc.SetStatus(ctx, admin, a.EventID, reg.RegistrationID, model.StatusApproved)
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, admin, a.EventID, reg.RegistrationID, model.Status("DONE"))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestSetStatusApprovedToRejectedRestampsReviewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, "gala", nil)
	reg, err := f.svc.Register(ctx, alum("g-1"), "gala", baseRequest(), nil)
	require.NoError(t, err)

	first := session.AdminSession{AdminID: uuid.New()}
	second := session.AdminSession{AdminID: uuid.New()}
	_, err = f.svc.SetStatus(ctx, first, ev.EventID, reg.RegistrationID, model.StatusApproved)
	require.NoError(t, err)

	got, err := f.svc.SetStatus(ctx, second, ev.EventID, reg.RegistrationID, model.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.RegistrationStatus)

	stored, _ := f.mem.Registration(reg.RegistrationID)
	assert.Equal(t, model.StatusRejected, stored.RegistrationStatus)
	require.NotNil(t, stored.RegistrationApprovedBy)
	assert.Equal(t, second.AdminID, *stored.RegistrationApprovedBy)
	require.NotNil(t, stored.RegistrationApprovedAt)
	assert.True(t, f.now.Equal(*stored.RegistrationApprovedAt))

	// every (status, target) pair is accepted
	for _, target := range []model.Status{model.StatusPending, model.StatusRejected, model.StatusApproved, model.StatusApproved, model.StatusPending, model.StatusPending} {
		got, err = f.svc.SetStatus(ctx, first, ev.EventID, reg.RegistrationID, target)
		require.NoError(t, err, "-> %s", target)
		assert.Equal(t, target, got.RegistrationStatus)
	}
}

func TestListMineMatchesSubjectOrEmailAndKeepsOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.event(t, "a", nil)
	f.event(t, "b", nil)
	f.event(t, "c", nil)

	me := alum("g-1")
	_, err := f.svc.Register(ctx, me, "a", baseRequest(), nil)
	require.NoError(t, err)
	// same mailbox, older subject id
	_, err = f.svc.Register(ctx, session.UserSession{SubjectID: "legacy", Email: "G-1@Alumni.test"}, "b", baseRequest(), nil)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, alum("other"), "c", baseRequest(), nil)
	require.NoError(t, err)

	renamed := *a
	renamed.EventName = "Renamed A"
	require.NoError(t, f.mem.SaveEvent(ctx, &renamed))

	mine, err := f.svc.ListMine(ctx, me)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	names := []string{mine[0].EventName, mine[1].EventName}
	assert.Contains(t, names, "Renamed A")
	assert.Contains(t, names, "Event b")

	_, err = f.mem.PurgeEvent(ctx, a.EventID, f.now)
	require.NoError(t, err)
	mine, err = f.svc.ListMine(ctx, me)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, m := range mine {
		if m.RegistrationEventSlug == "a" {
			assert.True(t, m.IsOrphaned())
			assert.Equal(t, "Event a", m.EventName, "orphans fall back to the snapshot")
		}
	}
}

func TestListMineFlagsArchivedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.event(t, "a", nil)
	f.event(t, "b", nil)

	me := alum("g-1")
	reg, err := f.svc.Register(ctx, me, "a", baseRequest(), nil)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, me, "b", baseRequest(), nil)
	require.NoError(t, err)

	require.NoError(t, f.mem.ArchiveEvent(ctx, a.EventID, f.now))

	stored, _ := f.mem.Registration(reg.RegistrationID)
	require.NotNil(t, stored.RegistrationOrphanedAt)
	assert.True(t, f.now.Equal(*stored.RegistrationOrphanedAt))
	assert.False(t, stored.IsOrphaned(), "archive keeps the event reference")

	mine, err := f.svc.ListMine(ctx, me)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, m := range mine {
		assert.Equal(t, m.EventSlug == "a", m.EventIsDeleted, m.EventSlug)
	}

	_, err = f.svc.GetMine(ctx, me, "a")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	rows, err := f.svc.ListForEvent(ctx, session.AdminSession{AdminID: uuid.New()}, a.EventID)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "admins still review registrations of archived events")
}

func TestReleaseReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, "reunion-2025", paidReunion)

	reg, err := f.svc.Register(ctx, alum("g-1"), "reunion-2025", baseRequest(), receipt)
	require.NoError(t, err)
	key := reg.RegistrationReceiptKey
	require.True(t, f.blobs.Has(key))

	got, err := f.svc.ReleaseReceipt(ctx, reg.RegistrationID)
	require.NoError(t, err)
	assert.Empty(t, got.RegistrationReceiptURL)
	assert.Empty(t, got.RegistrationReceiptKey)
	assert.False(t, f.blobs.Has(key))
	assert.Contains(t, f.blobs.Deleted(), key)

	stored, _ := f.mem.Registration(reg.RegistrationID)
	assert.Empty(t, stored.RegistrationReceiptURL)
	assert.Empty(t, stored.RegistrationReceiptKey)
	assert.Equal(t, model.StatusPending, stored.RegistrationStatus)

	// second release has nothing to delete
	_, err = f.svc.ReleaseReceipt(ctx, reg.RegistrationID)
	require.NoError(t, err)
	assert.Len(t, f.blobs.Deleted(), 1)

	_, err = f.svc.ReleaseReceipt(ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	// orphaned rows still release
	other, err := f.svc.Register(ctx, alum("g-2"), "reunion-2025", baseRequest(), receipt)
	require.NoError(t, err)
	_, err = f.mem.PurgeEvent(ctx, ev.EventID, f.now)
	require.NoError(t, err)
	_, err = f.svc.ReleaseReceipt(ctx, other.RegistrationID)
	require.NoError(t, err)
	assert.False(t, f.blobs.Has(other.RegistrationReceiptKey))
}

func TestGetMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.event(t, "a", nil)

	_, err := f.svc.GetMine(ctx, alum("g-1"), "a")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	reg, err := f.svc.Register(ctx, alum("g-1"), "a", baseRequest(), nil)
	require.NoError(t, err)
	got, err := f.svc.GetMine(ctx, alum("g-1"), "A")
	require.NoError(t, err)
	assert.Equal(t, reg.RegistrationID, got.RegistrationID)
}

func TestListForEventScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.event(t, "a", nil)
	d := f.event(t, "d", nil)
	_, err := f.svc.Register(ctx, alum("g-1"), "a", baseRequest(), nil)
	require.NoError(t, err)

	rows, err := f.svc.ListForEvent(ctx, session.AdminSession{AdminID: uuid.New()}, a.EventID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	ctl := session.ControllerSession{ControllerID: uuid.New(), ApprovedEvents: []uuid.UUID{a.EventID}}
	rows, err = f.svc.ListForEvent(ctx, ctl, a.EventID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.svc.ListForEvent(ctx, ctl, d.EventID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = f.svc.ListForEvent(ctx, alum("g-1"), a.EventID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	rows, err = f.svc.ListForEvent(ctx, session.AdminSession{}, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestCountsAndDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.event(t, "a", nil)
	b := f.event(t, "b", nil)
	admin := session.AdminSession{AdminID: uuid.New()}

	var ids []uuid.UUID
	for _, sub := range []string{"u1", "u2", "u3", "u4"} {
		reg, err := f.svc.Register(ctx, alum(sub), "a", baseRequest(), nil)
		require.NoError(t, err)
		ids = append(ids, reg.RegistrationID)
	}
	_, err := f.svc.SetStatus(ctx, admin, a.EventID, ids[0], model.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, admin, a.EventID, ids[1], model.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, admin, a.EventID, ids[2], model.StatusRejected)
	require.NoError(t, err)

	counts, err := f.svc.CountsForEvent(ctx, a.EventID)
	require.NoError(t, err)
	assert.Equal(t, dto.Counts{Total: 4, Approved: 2, Pending: 1, Rejected: 1}, counts)
	assert.Equal(t, counts.Total, counts.Approved+counts.Pending+counts.Rejected)

	require.NoError(t, f.mem.CreateController(ctx, &accountModel.ControllerModel{
		ControllerUsername:       "gate",
		ControllerIsActive:       true,
		ControllerApprovedEvents: pq.StringArray{a.EventID.String()},
	}))
	stats, err := f.svc.AdminStats(ctx, a.EventID)
	require.NoError(t, err)
	assert.Equal(t, counts, stats.Counts)
	assert.Equal(t, int64(1), stats.Controllers)

	_, err = f.svc.AdminStats(ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	dash, err := f.svc.ControllerDashboard(ctx, session.ControllerSession{
		ControllerID:   uuid.New(),
		ApprovedEvents: []uuid.UUID{a.EventID, b.EventID, uuid.New()},
	})
	require.NoError(t, err)
	require.Len(t, dash, 2, "unknown ids are skipped")
	byID := map[uuid.UUID]dto.DashboardEvent{}
	for _, d := range dash {
		byID[d.EventID] = d
	}
	assert.Equal(t, counts, byID[a.EventID].Counts)
	assert.Equal(t, dto.Counts{}, byID[b.EventID].Counts)
}
