package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempString(t *testing.T) {
	assert.Equal(t, "21.4°C", Snapshot{Temperature: 21.37}.TempString())
	assert.Equal(t, "70.0°F", Snapshot{Temperature: 70, Unit: "F"}.TempString())
	assert.Equal(t, "-3.5°C", Snapshot{Temperature: -3.5}.TempString())
}

func TestStoreRoundTrip(t *testing.T) {
	st := NewStore(time.Hour)
	assert.Nil(t, st.Get(), "empty store")

	st.Set(Snapshot{Temperature: 18, Description: "overcast"})
	got := st.Get()
	require.NotNil(t, got)
	assert.Equal(t, "overcast", got.Description)
	assert.False(t, got.UpdatedAt.IsZero(), "zero UpdatedAt gets stamped")

	st.Clear()
	assert.Nil(t, st.Get())
}

func TestStoreReturnsCopy(t *testing.T) {
	st := NewStore(time.Hour)
	st.Set(Snapshot{Temperature: 10})

	a := st.Get()
	a.Temperature = 99
	assert.EqualValues(t, 10, st.Get().Temperature)
}

func TestStoreAgesOut(t *testing.T) {
	st := NewStore(10 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }

	st.Set(Snapshot{Temperature: 5})
	require.NotNil(t, st.Get())

	st.now = func() time.Time { return base.Add(11 * time.Minute) }
	assert.Nil(t, st.Get(), "snapshot older than max age must disappear")
}
