package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/lgs-tracker/internal/db/repository"
)

func TestPeriodKey(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-W11", periodKey(WindowWeekly, at))
	assert.Equal(t, "2025-03", periodKey(WindowMonthly, at))
	assert.Equal(t, "", periodKey(WindowAllTime, at))

	// ISO week of Jan 1 2027 belongs to 2026.
	assert.Equal(t, "2026-W53", periodKey(WindowWeekly, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestKeys(t *testing.T) {
	svc := NewService(nil, zerolog.Nop(), ServiceOptions{})
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "rank:monthly:2025-03", svc.rankingKey(WindowMonthly, at))
	assert.Equal(t, "rank:all_time", svc.rankingKey(WindowAllTime, at))
	assert.Equal(t, "rank:weekly:2025-W11:meta:u1", svc.metaKey(WindowWeekly, at, "u1"))
	assert.Equal(t, defaultWindows, svc.Windows())
}

func TestWindowTTL(t *testing.T) {
	assert.Equal(t, 14*24*time.Hour, windowTTL(WindowWeekly))
	assert.Equal(t, 62*24*time.Hour, windowTTL(WindowMonthly))
	assert.Zero(t, windowTTL(WindowAllTime))
}

type mockRanks struct {
	mock.Mock
}

func (m *mockRanks) Top(ctx context.Context, window string, limit int) ([]Entry, error) {
	args := m.Called(ctx, window, limit)
	entries, _ := args.Get(0).([]Entry)
	return entries, args.Error(1)
}

func (m *mockRanks) Rank(ctx context.Context, window, userID string) (Entry, bool, error) {
	args := m.Called(ctx, window, userID)
	return args.Get(0).(Entry), args.Bool(1), args.Error(2)
}

type mockSnapshots struct {
	mock.Mock
}

func (m *mockSnapshots) Latest(ctx context.Context, window string) (repository.RankingSnapshot, error) {
	args := m.Called(ctx, window)
	return args.Get(0).(repository.RankingSnapshot), args.Error(1)
}

func (m *mockSnapshots) Insert(ctx context.Context, snap repository.RankingSnapshot) (int64, error) {
	args := m.Called(ctx, snap)
	return args.Get(0).(int64), args.Error(1)
}

func get(t *testing.T, h *HTTPHandler, window, query, user string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/rankings/"+window+query, nil)
	req.SetPathValue("window", window)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	body := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandleGet_FromRedisWithCallerRank(t *testing.T) {
	ranks := new(mockRanks)
	top := []Entry{{Rank: 1, UserID: "u2", Score: 140.5, Exams: 2}, {Rank: 2, UserID: "u1", Score: 111.7, Exams: 1}}
	ranks.On("Top", mock.Anything, WindowMonthly, 5).Return(top, nil)
	ranks.On("Rank", mock.Anything, WindowMonthly, "u1").Return(top[1], true, nil)

	h := NewHTTPHandler(ranks, nil, zerolog.Nop())
	rec, body := get(t, h, WindowMonthly, "?limit=5", "u1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"redis"`, string(body["source"]))

	var got []Entry
	require.NoError(t, json.Unmarshal(body["top"], &got))
	assert.Equal(t, top, got)

	var me Entry
	require.NoError(t, json.Unmarshal(body["me"], &me))
	assert.Equal(t, 2, me.Rank)
	ranks.AssertExpectations(t)
}

func TestHandleGet_FallsBackToSnapshot(t *testing.T) {
	ranks := new(mockRanks)
	ranks.On("Top", mock.Anything, WindowAllTime, 1).Return(nil, errors.New("redis down"))

	stored, err := json.Marshal([]Entry{{Rank: 1, UserID: "u3", Score: 90}, {Rank: 2, UserID: "u4", Score: 80}})
	require.NoError(t, err)
	snaps := new(mockSnapshots)
	snaps.On("Latest", mock.Anything, WindowAllTime).Return(repository.RankingSnapshot{Entries: stored}, nil)

	h := NewHTTPHandler(ranks, snaps, zerolog.Nop())
	_, body := get(t, h, WindowAllTime, "?limit=1", "")

	assert.JSONEq(t, `"snapshot"`, string(body["source"]))
	var got []Entry
	require.NoError(t, json.Unmarshal(body["top"], &got))
	require.Len(t, got, 1)
	assert.Equal(t, "u3", got[0].UserID)
	assert.NotContains(t, body, "me")
}

func TestHandleGet_EmptyRanking(t *testing.T) {
	snaps := new(mockSnapshots)
	snaps.On("Latest", mock.Anything, WindowWeekly).Return(repository.RankingSnapshot{}, repository.ErrNotFound)

	h := NewHTTPHandler(nil, snaps, zerolog.Nop())
	_, body := get(t, h, WindowWeekly, "", "")
	assert.JSONEq(t, `[]`, string(body["top"]))
}

func TestHandleGet_UnknownWindow(t *testing.T) {
	h := NewHTTPHandler(nil, nil, zerolog.Nop())
	rec, body := get(t, h, "daily", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `"unknown_ranking_window"`, string(body["error"]))
}

type fakeTop struct {
	entries map[string][]Entry
}

func (f fakeTop) Windows() []string { return defaultWindows }

func (f fakeTop) SnapshotTop(_ context.Context, window string) ([]Entry, error) {
	return f.entries[window], nil
}

func TestSnapshotWorker_PersistsNonEmptyWindows(t *testing.T) {
	src := fakeTop{entries: map[string][]Entry{
		WindowMonthly: {{Rank: 1, UserID: "u1", Score: 111.7, Exams: 1}},
	}}
	store := new(mockSnapshots)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(s repository.RankingSnapshot) bool {
		return s.Window == WindowMonthly && len(s.SourceHash) == 64 && len(s.Entries) > 0
	})).Return(int64(1), nil).Once()

	w := NewSnapshotWorker(src, store, time.Minute, zerolog.Nop())
	w.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	w.tick(context.Background())

	store.AssertExpectations(t)
}

func TestSnapshotWorker_RunStopsOnCancel(t *testing.T) {
	store := new(mockSnapshots)
	w := NewSnapshotWorker(fakeTop{}, store, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
