package scheduling

import (
	"testing"
	"time"

	"github.com/Xevion/go-buzz/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule(t *testing.T) {
	builder := NewSchedule()
	assert.NotNil(t, builder)
	assert.Empty(t, builder.errors)
	assert.Empty(t, builder.triggers)
	assert.NotNil(t, builder.hashes)
}

func TestDailyScheduleBuilder_OnFixedTime(t *testing.T) {
	tests := []struct {
		name        string
		hour        int
		minute      int
		expectError bool
	}{
		{
			name:   "valid time",
			hour:   12,
			minute: 30,
		},
		{
			name:   "midnight",
			hour:   0,
			minute: 0,
		},
		{
			name:        "invalid hour negative",
			hour:        -1,
			minute:      30,
			expectError: true,
		},
		{
			name:        "invalid hour too high",
			hour:        24,
			minute:      30,
			expectError: true,
		},
		{
			name:        "invalid minute negative",
			hour:        12,
			minute:      -1,
			expectError: true,
		},
		{
			name:        "invalid minute too high",
			hour:        12,
			minute:      60,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewSchedule()
			result := builder.OnFixedTime(tt.hour, tt.minute)

			assert.Equal(t, builder, result) // Should return self for chaining

			if tt.expectError {
				assert.Len(t, builder.errors, 1)
			} else {
				assert.Empty(t, builder.errors)
				assert.Len(t, builder.triggers, 1)
			}
		})
	}
}

func TestDailyScheduleBuilder_OnTime(t *testing.T) {
	builder := NewSchedule().OnTime("07:15").OnTime("7:15")

	assert.Len(t, builder.triggers, 1)
	require.Len(t, builder.errors, 1)
	assert.ErrorIs(t, builder.errors[0], types.ErrInvalidTime)
}

func TestDailyScheduleBuilder_DuplicateTriggers(t *testing.T) {
	builder := NewSchedule()

	// Add the same fixed time trigger twice
	builder.OnFixedTime(12, 30)
	builder.OnFixedTime(12, 30)

	assert.Len(t, builder.errors, 1)
	assert.Len(t, builder.triggers, 1) // Only one should be added
	assert.ErrorIs(t, builder.errors[0], ErrDuplicateTrigger)
}

func TestDailyScheduleBuilder_SunRequiresLocation(t *testing.T) {
	builder := NewSchedule().OnSunrise("-30m")
	assert.Len(t, builder.errors, 1)
	assert.Empty(t, builder.triggers)

	builder = NewSchedule().WithLocation(40.7128, -74.0060).OnSunset("invalid")
	assert.Len(t, builder.errors, 1)
}

func TestDailyScheduleBuilder_Build(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC) }

	plan, err := NewSchedule().
		WithNow(now).
		WithLocation(40.7128, -74.0060).
		OnFixedTime(18, 0).
		OnFixedTime(8, 0).
		OnSunrise().
		Build()
	require.NoError(t, err)
	require.Equal(t, 3, plan.Len())

	times := plan.Times()
	assert.Equal(t, types.BuzzTime{Hour: 8, Minute: 0}, times[0])
	assert.Equal(t, types.BuzzTime{Hour: 18, Minute: 0}, times[2])
}

func TestDailyScheduleBuilder_Build_Errors(t *testing.T) {
	tests := []struct {
		name         string
		setupBuilder func(*DailyScheduleBuilder)
	}{
		{
			name:         "no triggers",
			setupBuilder: func(b *DailyScheduleBuilder) {},
		},
		{
			name: "invalid hour",
			setupBuilder: func(b *DailyScheduleBuilder) {
				b.OnFixedTime(25, 0)
			},
		},
		{
			name: "sun without location",
			setupBuilder: func(b *DailyScheduleBuilder) {
				b.OnSunrise()
			},
		},
		{
			name: "no sunset at the pole in summer",
			setupBuilder: func(b *DailyScheduleBuilder) {
				b.WithNow(func() time.Time { return time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC) }).
					WithLocation(69.6492, 18.9553).
					OnSunset()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewSchedule()
			tt.setupBuilder(builder)

			plan, err := builder.Build()
			assert.Error(t, err)
			assert.Nil(t, plan)
		})
	}
}

func TestDailyScheduleBuilder_Chaining(t *testing.T) {
	builder := NewSchedule()

	result := builder.
		OnFixedTime(8, 0).
		OnFixedTime(12, 0).
		OnTime("18:00")

	assert.Equal(t, builder, result)
	assert.Len(t, builder.triggers, 3)
	assert.Empty(t, builder.errors)
}
