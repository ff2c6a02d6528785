package mining

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
)

type stubPricing struct {
	rate decimal.Decimal
	err  error
}

func (p *stubPricing) PerToolRate(ctx context.Context, resource domain.ResourceType) (decimal.Decimal, error) {
	if p.err != nil {
		return decimal.Zero, p.err
	}
	return p.rate, nil
}

func (f *fixture) withPricing(p Pricing) {
	f.reg = NewRegistry(Deps{
		Lands:     f.lands,
		Tools:     f.tools,
		Ledger:    f.ledger,
		Pricing:   p,
		Caps:      f.caps,
		Publisher: f.pub,
		Clock:     f.clk,
	}, f.cfg)
}

func (f *fixture) durability(t *testing.T, id string) int {
	t.Helper()
	tools, err := f.tools.GetTools(f.ctx, testUser, []string{id})
	require.NoError(t, err)
	return tools[0].Durability
}

func TestScenario_YLDCapSharedAcrossHours(t *testing.T) {
	f := newFixture(t, 5)
	f.giveFood(1000)
	tools := f.addTools(domain.ToolPickaxe, 10, 100)

	started, err := f.reg.StartSession(f.ctx, testUser, "yld-land", tools)
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceYLD, started.Resource)
	s := f.session(t, started.ID)

	f.clk.Advance(time.Hour)
	res := s.Tick(f.ctx, f.clk.Now())
	assert.Equal(t, 1, res.HoursSettled)
	assert.True(t, res.Requested.Equal(dec(10)))
	assert.True(t, res.Granted.Equal(dec(5)))
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.SettledHours)
	assert.Equal(t, 0, snap.CarryMinutes)
	assert.True(t, snap.PendingOutput.Equal(dec(5)))
	assert.True(t, f.yld.Remaining(f.ctx).IsZero())

	f.clk.Advance(time.Hour)
	res = s.Tick(f.ctx, f.clk.Now())
	assert.True(t, res.Granted.IsZero())
	snap = s.Snapshot()
	assert.Equal(t, 2, snap.SettledHours)
	assert.True(t, snap.PendingOutput.Equal(dec(5)))

	f.clk.Advance(30 * time.Minute)
	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.SettledHours)
	assert.Equal(t, 30, st.ForfeitedMinutes)
	assert.True(t, st.Output.Equal(dec(5)))
	assert.Equal(t, domain.StopReasonManual, st.Reason)

	assert.True(t, f.balance(domain.ResourceYLD).Equal(dec(5)))
	assert.True(t, f.balance(domain.ResourceFood).Equal(dec(960)), "two hours of ten tools at two food each")
	assert.Equal(t, 98, f.durability(t, tools[0]))

	idle, err := f.tools.CountIdle(f.ctx, testUser, domain.ToolPickaxe)
	require.NoError(t, err)
	assert.Equal(t, 10, idle)

	assert.Equal(t, 1, f.pub.count(event.SessionStarted))
	assert.Equal(t, 2, f.pub.count(event.HourSettled))
	assert.Equal(t, 1, f.pub.count(event.SessionStopped))
}

func TestScenario_LevelCapRejectsWithoutReserving(t *testing.T) {
	f := newFixture(t, 100)
	f.lands.SetUserLevel(testUser, 6)
	tools := f.addTools(domain.ToolPickaxe, 71, 100)

	_, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools)
	assert.ErrorIs(t, err, domain.ErrLevelCapExceeded)

	idle, err := f.tools.CountIdle(f.ctx, testUser, domain.ToolPickaxe)
	require.NoError(t, err)
	assert.Equal(t, 71, idle)
	assert.Empty(t, f.reg.List(f.ctx, testUser, true))
}

func TestScenario_AddInUseTool(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(1000)
	tools := f.addTools(domain.ToolPickaxe, 3, 100)

	a, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools[:2])
	require.NoError(t, err)
	_, err = f.reg.StartSession(f.ctx, testUser, "yld-land", tools[2:])
	require.NoError(t, err)

	_, err = f.reg.AddTools(f.ctx, testUser, a.ID, tools[2:])
	assert.ErrorIs(t, err, domain.ErrToolUnavailable)

	got, err := f.reg.Get(f.ctx, testUser, a.ID)
	require.NoError(t, err)
	assert.Equal(t, tools[:2], got.ToolIDs)
}

func TestStart_Validation(t *testing.T) {
	f := newFixture(t, 100)
	axes := f.addTools(domain.ToolAxe, 2, 100)

	_, err := f.reg.StartSession(f.ctx, testUser, "ore-land", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.reg.StartSession(f.ctx, testUser, "town", axes)
	assert.ErrorIs(t, err, domain.ErrLandNotMineable)

	_, err = f.reg.StartSession(f.ctx, testUser, "ore-land", axes)
	assert.ErrorIs(t, err, domain.ErrIncompatibleTool)

	_, err = f.reg.StartSession(f.ctx, testUser, "nowhere", axes)
	assert.ErrorIs(t, err, domain.ErrLandNotFound)

	_, err = f.reg.StartSession(f.ctx, testUser, "forest", []string{axes[0], "ghost"})
	assert.ErrorIs(t, err, domain.ErrToolUnavailable)

	_, err = f.reg.StartSession(f.ctx, testUser, "forest", []string{axes[0], axes[0]})
	assert.ErrorIs(t, err, domain.ErrToolUnavailable)

	idle, _ := f.tools.CountIdle(f.ctx, testUser, domain.ToolAxe)
	assert.Equal(t, 2, idle, "failed starts must not reserve tools")
}

func TestTick_PollingFrequencyDoesNotMatter(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(10000)
	a, err := f.reg.StartSession(f.ctx, testUser, "ore-land", f.addTools(domain.ToolPickaxe, 3, 100))
	require.NoError(t, err)
	b, err := f.reg.StartSession(f.ctx, testUser, "ore-land", f.addTools(domain.ToolPickaxe, 3, 100))
	require.NoError(t, err)
	sa, sb := f.session(t, a.ID), f.session(t, b.ID)

	end := testStart.Add(185 * time.Minute)
	for f.clk.Now().Before(end) {
		f.clk.Advance(37 * time.Second)
		sa.Tick(f.ctx, f.clk.Now())
	}
	f.clk.Set(end)
	sa.Tick(f.ctx, end)
	sb.Tick(f.ctx, end)

	snapA, snapB := sa.Snapshot(), sb.Snapshot()
	assert.Equal(t, 3, snapA.SettledHours)
	assert.Equal(t, snapB.SettledHours, snapA.SettledHours)
	assert.Equal(t, 5, snapA.CarryMinutes)
	assert.Equal(t, snapB.CarryMinutes, snapA.CarryMinutes)
	assert.True(t, snapA.PendingOutput.Equal(dec(27)))
	assert.True(t, snapB.PendingOutput.Equal(snapA.PendingOutput))
	assert.Equal(t, snapB.LastTickAt, snapA.LastTickAt)
}

func TestTick_PendingIsMonotonic(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(10000)
	p := &stubPricing{rate: dec(5)}
	f.withPricing(p)

	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", f.addTools(domain.ToolPickaxe, 2, 100))
	require.NoError(t, err)
	s := f.session(t, started.ID)

	last := decimal.Zero
	for i, rate := range []int64{5, 0, 2, 9, 0, 1} {
		p.rate = dec(rate)
		f.clk.Advance(time.Hour)
		s.Tick(f.ctx, f.clk.Now())
		pending := s.Snapshot().PendingOutput
		assert.True(t, pending.GreaterThanOrEqual(last), "hour %d decreased pending", i)
		last = pending
	}
	assert.True(t, last.Equal(dec(34)))
}

func TestStop_ForfeitsPartialHour(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(100)
	tools := f.addTools(domain.ToolPickaxe, 2, 100)
	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools)
	require.NoError(t, err)

	f.clk.Advance(59*time.Minute + 59*time.Second)
	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, st.SettledHours)
	assert.Equal(t, 59, st.ForfeitedMinutes)
	assert.True(t, st.Output.IsZero())
	assert.Equal(t, 0, f.ledger.credits)
	assert.Equal(t, 100, f.durability(t, tools[0]))
	assert.True(t, f.balance(domain.ResourceFood).Equal(dec(100)))
}

func TestStop_Idempotent(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(100)
	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", f.addTools(domain.ToolPickaxe, 2, 100))
	require.NoError(t, err)

	f.clk.Advance(2 * time.Hour)
	first, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)

	f.clk.Advance(5 * time.Hour)
	second, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.ledger.credits)
	assert.True(t, f.balance(domain.ResourceIron).Equal(dec(12)))
	assert.Equal(t, 1, f.pub.count(event.SessionStopped))
}

func TestTick_FoodExhaustionForcesStop(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(8)
	tools := f.addTools(domain.ToolPickaxe, 2, 100)
	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools)
	require.NoError(t, err)
	s := f.session(t, started.ID)

	f.clk.Advance(3*time.Hour + 10*time.Minute)
	res := s.Tick(f.ctx, f.clk.Now())
	require.NotNil(t, res.Stopped)
	assert.Equal(t, 2, res.HoursSettled)
	assert.Equal(t, domain.StopReasonFoodExhausted, res.Stopped.Reason)
	assert.Equal(t, 2, res.Stopped.SettledHours)
	assert.Equal(t, 1, res.Stopped.UnsettledHours)
	assert.Equal(t, 10, res.Stopped.ForfeitedMinutes)
	assert.True(t, res.Stopped.Output.Equal(dec(12)))

	assert.Equal(t, domain.SessionClosed, s.Status())
	assert.True(t, f.balance(domain.ResourceIron).Equal(dec(12)))
	assert.True(t, f.balance(domain.ResourceFood).IsZero())
	assert.Equal(t, 98, f.durability(t, tools[1]))
	assert.Equal(t, 1, f.pub.count(event.FoodExhausted))

	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StopReasonFoodExhausted, st.Reason)
}

func TestTick_DefersWithoutRateAndReusesLastRate(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(100)
	p := &stubPricing{err: domain.ErrRateUnavailable}
	f.withPricing(p)

	started, err := f.reg.StartSession(f.ctx, testUser, "forest", f.addTools(domain.ToolAxe, 1, 100))
	require.NoError(t, err)
	s := f.session(t, started.ID)

	f.clk.Advance(2 * time.Hour)
	res := s.Tick(f.ctx, f.clk.Now())
	assert.True(t, res.Deferred)
	assert.Equal(t, 0, res.HoursSettled)
	assert.Equal(t, 120, s.Snapshot().CarryMinutes)
	assert.True(t, f.balance(domain.ResourceFood).Equal(dec(100)))

	p.err = nil
	p.rate = dec(2)
	res = s.Tick(f.ctx, f.clk.Now())
	assert.Equal(t, 2, res.HoursSettled)
	assert.True(t, s.Snapshot().PendingOutput.Equal(dec(4)))

	p.err = errors.New("pricing down")
	f.clk.Advance(time.Hour)
	res = s.Tick(f.ctx, f.clk.Now())
	assert.Equal(t, 1, res.HoursSettled)
	assert.False(t, res.Deferred)
	assert.True(t, s.Snapshot().PendingOutput.Equal(dec(6)))
}

func TestStop_ResumesAfterCreditFailure(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(100)
	tools := f.addTools(domain.ToolPickaxe, 2, 100)
	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools)
	require.NoError(t, err)

	f.clk.Advance(3 * time.Hour)
	f.ledger.failCredits = 1
	_, err = f.reg.StopSession(f.ctx, testUser, started.ID)
	require.Error(t, err)

	snap, err := f.reg.Get(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStopping, snap.Status)
	assert.True(t, snap.ToolsReleased)
	assert.Equal(t, 97, f.durability(t, tools[0]))

	_, err = f.reg.AddTools(f.ctx, testUser, started.ID, f.addTools(domain.ToolPickaxe, 1, 100))
	assert.ErrorIs(t, err, domain.ErrSessionNotActive)

	f.clk.Advance(time.Hour)
	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.SettledHours)
	assert.True(t, st.Output.Equal(dec(18)))
	assert.Equal(t, 97, f.durability(t, tools[0]), "tools must not be released twice")
	assert.Equal(t, 1, f.ledger.credits)
}

func TestStop_DeferredHoursKeepSessionActive(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(100)
	p := &stubPricing{err: domain.ErrRateUnavailable}
	f.withPricing(p)
	tools := f.addTools(domain.ToolAxe, 1, 100)

	started, err := f.reg.StartSession(f.ctx, testUser, "forest", tools)
	require.NoError(t, err)

	f.clk.Advance(3*time.Hour + 10*time.Minute)
	_, err = f.reg.StopSession(f.ctx, testUser, started.ID)
	assert.ErrorIs(t, err, domain.ErrSettlementDeferred)

	snap, err := f.reg.Get(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, snap.Status)
	assert.Equal(t, 190, snap.CarryMinutes)
	assert.Equal(t, 0, f.ledger.credits)
	idle, _ := f.tools.CountIdle(f.ctx, testUser, domain.ToolAxe)
	assert.Equal(t, 0, idle, "tools stay reserved while hours are owed")

	p.err = nil
	p.rate = dec(2)
	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.SettledHours)
	assert.Equal(t, 10, st.ForfeitedMinutes)
	assert.Equal(t, 0, st.UnsettledHours)
	assert.True(t, st.Output.Equal(dec(6)))
	assert.True(t, f.balance(domain.ResourceWood).Equal(dec(6)))
}

func TestStop_DeferredFoodDebitKeepsSessionActive(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(100)
	tools := f.addTools(domain.ToolPickaxe, 1, 100)
	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools)
	require.NoError(t, err)

	f.clk.Advance(time.Hour)
	f.reg.eng.ledger = &brokenDebitLedger{flakyLedger: f.ledger}
	_, err = f.reg.StopSession(f.ctx, testUser, started.ID)
	assert.ErrorIs(t, err, domain.ErrSettlementDeferred)

	f.reg.eng.ledger = f.ledger
	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.SettledHours)
	assert.True(t, st.Output.Equal(dec(3)))
}

func TestStart_ReserveBoundsSessionOutput(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(100)
	reserve := dec(5)
	f.lands.AddLand(domain.Land{ID: "small-pit", OwnerID: testUser, Category: domain.LandOreMine, Reserve: &reserve})

	started, err := f.reg.StartSession(f.ctx, testUser, "small-pit", f.addTools(domain.ToolPickaxe, 1, 100))
	require.NoError(t, err)
	assert.True(t, started.Reserve.Valid)

	f.clk.Advance(3 * time.Hour)
	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.SettledHours)
	assert.True(t, st.Output.Equal(dec(5)), "got %s", st.Output)
	assert.True(t, f.balance(domain.ResourceFood).Equal(dec(94)), "food is still drawn once the reserve is gone")
}

func TestStart_RejectsLandOwnedByAnotherUser(t *testing.T) {
	f := newFixture(t, 100)
	f.lands.AddLand(domain.Land{ID: "neighbour", OwnerID: "user-2", Category: domain.LandOreMine})
	tools := f.addTools(domain.ToolPickaxe, 1, 100)

	_, err := f.reg.StartSession(f.ctx, testUser, "neighbour", tools)
	assert.ErrorIs(t, err, domain.ErrLandNotOwned)
	idle, _ := f.tools.CountIdle(f.ctx, testUser, domain.ToolPickaxe)
	assert.Equal(t, 1, idle)
}

func TestRemoveTools(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(1000)
	tools := f.addTools(domain.ToolPickaxe, 3, 100)
	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools)
	require.NoError(t, err)

	f.clk.Advance(2 * time.Hour)
	snap, err := f.reg.RemoveTools(f.ctx, testUser, started.ID, tools[:1])
	require.NoError(t, err)
	assert.Equal(t, tools[1:], snap.ToolIDs)
	assert.Equal(t, 2, snap.SettledHours, "elapsed hours settle before the tool count changes")
	assert.Equal(t, 98, f.durability(t, tools[0]))

	_, err = f.reg.RemoveTools(f.ctx, testUser, started.ID, tools[:1])
	assert.ErrorIs(t, err, domain.ErrToolUnavailable)
	_, err = f.reg.RemoveTools(f.ctx, testUser, started.ID, tools[1:])
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.clk.Advance(time.Hour)
	st, err := f.reg.StopSession(f.ctx, testUser, started.ID)
	require.NoError(t, err)
	assert.True(t, st.Output.Equal(dec(24)))
	assert.Equal(t, 97, f.durability(t, tools[1]))
	assert.Equal(t, 98, f.durability(t, tools[0]))
}

func TestAddTools(t *testing.T) {
	f := newFixture(t, 100)
	f.giveFood(1000)
	f.lands.SetUserLevel(testUser, 1)
	tools := f.addTools(domain.ToolPickaxe, 11, 100)
	axes := f.addTools(domain.ToolAxe, 1, 100)

	started, err := f.reg.StartSession(f.ctx, testUser, "ore-land", tools[:8])
	require.NoError(t, err)

	_, err = f.reg.AddTools(f.ctx, testUser, started.ID, tools[8:])
	assert.ErrorIs(t, err, domain.ErrLevelCapExceeded)

	_, err = f.reg.AddTools(f.ctx, testUser, started.ID, axes)
	assert.ErrorIs(t, err, domain.ErrIncompatibleTool)

	_, err = f.reg.AddTools(f.ctx, testUser, started.ID, tools[:1])
	assert.ErrorIs(t, err, domain.ErrToolUnavailable)

	_, err = f.reg.AddTools(f.ctx, testUser, started.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.clk.Advance(time.Hour)
	snap, err := f.reg.AddTools(f.ctx, testUser, started.ID, tools[8:10])
	require.NoError(t, err)
	assert.Len(t, snap.ToolIDs, 10)
	assert.True(t, snap.PendingOutput.Equal(dec(24)), "first hour settles at eight tools")
	assert.Equal(t, 0, snap.ToolHours[tools[9]])

	idle, _ := f.tools.CountIdle(f.ctx, testUser, domain.ToolPickaxe)
	assert.Equal(t, 1, idle)
}

func TestCapConservationAcrossConcurrentSessions(t *testing.T) {
	f := newFixture(t, 23)
	f.giveFood(100000)

	sessions := make([]*Session, 0, 5)
	for i := 0; i < 5; i++ {
		started, err := f.reg.StartSession(f.ctx, testUser, "yld-land", f.addTools(domain.ToolPickaxe, 10, 100))
		require.NoError(t, err)
		sessions = append(sessions, f.session(t, started.ID))
	}

	f.clk.Advance(3 * time.Hour)
	done := make(chan struct{})
	for _, s := range sessions {
		go func(s *Session) {
			s.Tick(f.ctx, f.clk.Now())
			done <- struct{}{}
		}(s)
	}
	for range sessions {
		<-done
	}

	total := decimal.Zero
	for _, s := range sessions {
		total = total.Add(s.Snapshot().PendingOutput)
	}
	assert.True(t, total.Equal(dec(23)), "granted %s", total)

	result := f.reg.StopAll(f.ctx, testUser)
	assert.Equal(t, 5, result.Stopped)
	assert.True(t, result.FlushedByResource[domain.ResourceYLD].Equal(dec(23)))
	assert.True(t, f.balance(domain.ResourceYLD).Equal(dec(23)))
	assert.Equal(t, 5, f.pub.count(event.SessionStopped))
}
