package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedTimeTrigger_NextTime(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		minute   int
		now      time.Time
		expected time.Time
	}{
		{
			name:     "same day trigger",
			hour:     14,
			minute:   30,
			now:      time.Date(2025, 8, 2, 10, 0, 0, 0, time.Local),
			expected: time.Date(2025, 8, 2, 14, 30, 0, 0, time.Local),
		},
		{
			name:     "next day trigger",
			hour:     8,
			minute:   0,
			now:      time.Date(2025, 8, 2, 10, 0, 0, 0, time.Local),
			expected: time.Date(2025, 8, 3, 8, 0, 0, 0, time.Local),
		},
		{
			name:     "exact time is not advanced",
			hour:     10,
			minute:   0,
			now:      time.Date(2025, 8, 2, 10, 0, 0, 0, time.Local),
			expected: time.Date(2025, 8, 2, 10, 0, 0, 0, time.Local),
		},
		{
			name:     "one second past rolls over",
			hour:     10,
			minute:   0,
			now:      time.Date(2025, 8, 2, 10, 0, 1, 0, time.Local),
			expected: time.Date(2025, 8, 3, 10, 0, 0, 0, time.Local),
		},
		{
			name:     "month boundary",
			hour:     6,
			minute:   0,
			now:      time.Date(2025, 8, 31, 23, 0, 0, 0, time.Local),
			expected: time.Date(2025, 9, 1, 6, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := &FixedTimeTrigger{
				Hour:   tt.hour,
				Minute: tt.minute,
			}

			result := trigger.NextTime(tt.now)
			require.NotNil(t, result)
			assert.True(t, tt.expected.Equal(*result), "got %v, want %v", *result, tt.expected)
		})
	}
}

func TestFixedTimeTrigger_NextTime_Zones(t *testing.T) {
	fixed := time.FixedZone("X", -5*60*60)

	trigger := &FixedTimeTrigger{Hour: 8, Minute: 0}
	now := time.Date(2025, 8, 2, 21, 0, 0, 0, fixed)
	result := trigger.NextTime(now)
	require.NotNil(t, result)
	assert.True(t, time.Date(2025, 8, 3, 8, 0, 0, 0, fixed).Equal(*result), "got %v", *result)
	assert.Equal(t, 11*time.Hour, result.Sub(now))
	assert.Equal(t, fixed, result.Location())

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 02:30 does not exist on 9 Mar 2025 and is normalised to 03:30 EDT
	gap := &FixedTimeTrigger{Hour: 2, Minute: 30}
	now = time.Date(2025, 3, 9, 1, 30, 0, 0, newYork)
	result = gap.NextTime(now)
	require.NotNil(t, result)
	assert.Equal(t, time.Hour, result.Sub(now))
}

func TestFixedTimeTrigger_Hash(t *testing.T) {
	trigger1 := &FixedTimeTrigger{Hour: 12, Minute: 30}
	trigger2 := &FixedTimeTrigger{Hour: 12, Minute: 31}
	trigger3 := &FixedTimeTrigger{Hour: 13, Minute: 30}

	hash1 := trigger1.Hash()
	hash2 := trigger2.Hash()
	hash3 := trigger3.Hash()

	assert.NotZero(t, hash1)
	assert.NotEqual(t, hash1, hash2)
	assert.NotEqual(t, hash1, hash3)
	assert.NotEqual(t, hash2, hash3)

	// Test that same times produce same hashes
	trigger4 := &FixedTimeTrigger{Hour: 12, Minute: 30}
	assert.Equal(t, hash1, trigger4.Hash())
}

func TestSunTrigger_NextTime(t *testing.T) {
	// Test with a known location (New York City)
	lat, lon := 40.7128, -74.0060
	now := time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)

	sunrise := NewSunTrigger(lat, lon, false, 0)
	sunset := NewSunTrigger(lat, lon, true, 0)

	rise := sunrise.NextTime(now)
	set := sunset.NextTime(now)
	require.NotNil(t, rise)
	require.NotNil(t, set)
	assert.True(t, rise.Before(*set))

	early := NewSunTrigger(lat, lon, false, -30*time.Minute).NextTime(now)
	require.NotNil(t, early)
	assert.Equal(t, 30*time.Minute, rise.Sub(*early))
}

func TestSunTrigger_Resolve(t *testing.T) {
	// Sunrise in New York on 2 Aug 2025 is just before 10:00 UTC.
	now := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	got, err := NewSunTrigger(40.7128, -74.0060, false, 0).Resolve(now)
	require.NoError(t, err)
	assert.Contains(t, []int{9, 10}, got.Hour)

	// Midnight sun in Tromsø: no sunset in late June.
	polar := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	_, err = NewSunTrigger(69.6492, 18.9553, true, 0).Resolve(polar)
	assert.ErrorIs(t, err, ErrNoSunEvent)
}

func TestSunTrigger_Hash(t *testing.T) {
	trigger1 := NewSunTrigger(40.7128, -74.0060, false, 0)
	trigger2 := NewSunTrigger(40.7128, -74.0060, true, 0)
	trigger3 := NewSunTrigger(51.5074, -0.1278, false, 0)
	trigger4 := NewSunTrigger(40.7128, -74.0060, false, 0)

	assert.NotEqual(t, trigger1.Hash(), trigger2.Hash())
	assert.NotEqual(t, trigger1.Hash(), trigger3.Hash())
	assert.Equal(t, trigger1.Hash(), trigger4.Hash())
}

func TestTriggerInterface(t *testing.T) {
	// Test that all trigger types implement the Trigger interface
	var _ Trigger = &FixedTimeTrigger{}
	var _ Trigger = &SunTrigger{}
	var _ Trigger = &Plan{}
}
