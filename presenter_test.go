package buzz

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/Xevion/go-buzz/types"
	"github.com/stretchr/testify/assert"
)

func TestMultiPresenter(t *testing.T) {
	a, b := &fakePresenter{}, &fakePresenter{}
	m := MultiPresenter{a, b}

	m.ShowCurrentTime("10:00:00")
	m.ShowCountdown("1h 0m 0s")
	m.SetFlashing(true)
	m.RenderTimesList([]types.BuzzTime{bt("11:00")})

	for _, p := range []*fakePresenter{a, b} {
		assert.Equal(t, []string{"10:00:00"}, p.times)
		assert.Equal(t, "1h 0m 0s", p.LastCountdown())
		assert.Equal(t, []bool{true}, p.Flashes())
		assert.Equal(t, [][]types.BuzzTime{{bt("11:00")}}, p.lists)
	}
}

func TestLogPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPresenter(slog.New(slog.NewTextHandler(&buf, nil)))

	p.ShowCurrentTime("10:00:00")
	assert.Empty(t, buf.String())

	p.SetFlashing(true)
	p.RenderTimesList([]types.BuzzTime{bt("08:00"), bt("20:00")})

	out := buf.String()
	assert.Contains(t, out, "Flash on")
	assert.Contains(t, out, "count=2")
}
