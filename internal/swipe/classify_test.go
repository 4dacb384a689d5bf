package swipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevDevLee/namens-tinder/internal/config"
	"github.com/KevDevLee/namens-tinder/internal/domain"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		g      Gesture
		want   domain.Decision
		wantOK bool
	}{
		{"right past threshold", Gesture{DX: 150, DY: 0, VX: 200}, domain.Like, true},
		{"right but too far up", Gesture{DX: 150, DY: -200}, domain.Maybe, true},
		{"right outside band, not far enough up", Gesture{DX: 150, DY: -100}, "", false},
		{"left past threshold", Gesture{DX: -121, DY: 79}, domain.Nope, true},
		{"flick right from center", Gesture{VX: 1001}, domain.Like, true},
		{"flick left from center", Gesture{VX: -1001}, domain.Nope, true},
		{"flick up", Gesture{VY: -1500}, domain.Maybe, true},
		{"drag up", Gesture{DY: -141}, domain.Maybe, true},
		{"exactly on threshold", Gesture{DX: 120}, "", false},
		{"small drag", Gesture{DX: 30, DY: -20, VX: 300}, "", false},
		{"drag down", Gesture{DY: 300}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.g, th)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPending(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, domain.Like, Pending(41, 0, th))
	assert.Equal(t, domain.Nope, Pending(-41, -100, th))
	assert.Equal(t, domain.Maybe, Pending(10, -41, th))
	assert.Equal(t, domain.Decision(""), Pending(40, -40, th))
}

func TestExitDirection(t *testing.T) {
	assert.Equal(t, Right, ExitDirection(domain.Like))
	assert.Equal(t, Left, ExitDirection(domain.Nope))
	assert.Equal(t, Up, ExitDirection(domain.Maybe))
}

func TestThresholdsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, DefaultThresholds(), ThresholdsFromConfig(cfg))

	cfg.Swipe.Horizontal = 90
	cfg.Swipe.Flick = -1
	th := ThresholdsFromConfig(cfg)
	assert.Equal(t, 90.0, th.Horizontal)
	assert.Equal(t, 1000.0, th.Flick)

	got, ok := Classify(Gesture{DX: 100}, th)
	assert.True(t, ok)
	assert.Equal(t, domain.Like, got)
}

func TestDeck(t *testing.T) {
	d := NewDeck([]Card{{NameID: 1}, {NameID: 2}})

	c, ok := d.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.NameID)

	d.PushFront(c)
	assert.Equal(t, []Card{{NameID: 1}, {NameID: 2}}, d.Cards())

	d.Pop()
	d.Pop()
	_, ok = d.Front()
	assert.False(t, ok)
	_, ok = d.Pop()
	assert.False(t, ok)
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, st := range []State{Idle, Dragging, Committing} {
		b, err := st.MarshalText()
		require.NoError(t, err)

		var got State
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, st, got)
	}

	var s State
	assert.Error(t, s.UnmarshalText([]byte("flying")))
}
