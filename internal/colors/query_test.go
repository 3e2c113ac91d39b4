package colors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*Resolver, *fakeStore) {
	t.Helper()
	conv := testConverter(t)
	st := newFakeStore(conv)
	r := NewResolver(st, conv, 15)
	// 22:52 CEST
	r.now = func() time.Time { return time.Date(2025, 9, 28, 20, 52, 0, 0, time.UTC) }
	return r, st
}

func seed(t *testing.T, st *fakeStore) {
	t.Helper()
	require.NoError(t, st.Write(Key{Date: "2025-09-28", Slot: "22-30"}, Colors{"west": "#112233"}))
	require.NoError(t, st.Write(Key{Date: "2025-09-28", Slot: "22-45"}, Colors{"west": "#445566"}))
}

func TestResolveLatest(t *testing.T) {
	r, st := newTestResolver(t)
	seed(t, st)

	res, err := r.Resolve(Query{})
	require.NoError(t, err)
	require.NotNil(t, res.Reading)
	assert.Nil(t, res.Day)

	md := res.Reading.Metadata
	assert.Equal(t, "#445566", res.Reading.Colors["west"])
	assert.False(t, md.IsHistoricalData)
	assert.Equal(t, time.Date(2025, 9, 28, 20, 45, 0, 0, time.UTC), md.LastUpdated.Timestamp)
	assert.Equal(t, "2025-09-28 22:45 CEST", md.LastUpdated.Formatted)
	assert.Equal(t, "7 minutes ago", md.CacheAge)
	require.NotNil(t, md.NextUpdate)
	assert.Equal(t, time.Date(2025, 9, 28, 21, 0, 0, 0, time.UTC), md.NextUpdate.Timestamp)
	assert.Equal(t, "2025-09-28 23:00 CEST", md.NextUpdate.Formatted)
	assert.Equal(t, "in 8 minutes", md.NextUpdate.TimeRemaining)
}

func TestResolveLatestEmpty(t *testing.T) {
	r, _ := newTestResolver(t)

	_, err := r.Resolve(Query{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestResolveExactIsHistorical(t *testing.T) {
	r, st := newTestResolver(t)
	seed(t, st)

	res, err := r.Resolve(Query{Date: "2025-09-28", Time: "22:30"})
	require.NoError(t, err)
	require.NotNil(t, res.Reading)

	md := res.Reading.Metadata
	assert.Equal(t, "#112233", res.Reading.Colors["west"])
	assert.True(t, md.IsHistoricalData)
	assert.Empty(t, md.CacheAge)
	assert.Nil(t, md.NextUpdate)
}

func TestResolveExactMissing(t *testing.T) {
	r, st := newTestResolver(t)
	seed(t, st)

	_, err := r.Resolve(Query{Date: "2025-09-28", Time: "9:15"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestResolveDay(t *testing.T) {
	r, st := newTestResolver(t)
	seed(t, st)

	res, err := r.Resolve(Query{Date: "2025-09-28"})
	require.NoError(t, err)
	require.NotNil(t, res.Day)
	assert.Nil(t, res.Reading)
	assert.Equal(t, 2, res.Day.Count)
	assert.Equal(t, "22:30", res.Day.Snapshots[0].Time)
	assert.Equal(t, "22:45", res.Day.Snapshots[1].Time)
}

func TestResolveValidation(t *testing.T) {
	r, st := newTestResolver(t)
	seed(t, st)

	cases := []Query{
		{Time: "22:30"},
		{Date: "28-09-2025"},
		{Date: "2025-09-28", Time: "22.30"},
		{Date: "2025-09-28", Time: "24:00"},
		{Date: "2025-09-28", Time: "22-30"},
		{Date: "2025-02-30"},
	}
	for _, q := range cases {
		_, err := r.Resolve(q)
		assert.ErrorIs(t, err, ErrValidation, "%+v", q)
	}
}

func TestAvailableDates(t *testing.T) {
	r, st := newTestResolver(t)
	seed(t, st)
	require.NoError(t, st.Write(Key{Date: "2025-09-20", Slot: "08-00"}, Colors{"west": "#000000"}))

	out, err := r.AvailableDates()
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "2025-09-28", out.Latest)
	assert.Equal(t, "2025-09-20", out.Oldest)
	assert.Equal(t, DateSummary{Date: "2025-09-28", Count: 2, FirstTime: "22:30", LastTime: "22:45"}, out.Dates[0])
}

func TestRecent(t *testing.T) {
	r, st := newTestResolver(t)
	seed(t, st)

	out, err := r.Recent(30)
	require.NoError(t, err)
	assert.Equal(t, 30, out.Days)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "22:45", out.Snapshots[0].Time)
}
