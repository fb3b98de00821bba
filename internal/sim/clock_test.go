package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/swarmspawn/internal/config"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestClock_Advance(t *testing.T) {
	c := NewClock(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(150 * time.Millisecond)
	c.Advance(-time.Second)
	c.Advance(0)

	assert.Equal(t, 150*time.Millisecond, c.Elapsed())
	assert.Equal(t, epoch.Add(150*time.Millisecond), c.Now())
	assert.Equal(t, epoch, c.Start())
}

func TestDayCycle_IsDaytime(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DayCycle
		elapsed time.Duration
		want    bool
	}{
		{name: "start of day", cfg: config.DayCycle{DayLength: time.Minute, NightLength: time.Minute}, elapsed: 0, want: true},
		{name: "end of day", cfg: config.DayCycle{DayLength: time.Minute, NightLength: time.Minute}, elapsed: time.Minute - 1, want: true},
		{name: "night", cfg: config.DayCycle{DayLength: time.Minute, NightLength: time.Minute}, elapsed: time.Minute, want: false},
		{name: "second day", cfg: config.DayCycle{DayLength: time.Minute, NightLength: time.Minute}, elapsed: 2 * time.Minute, want: true},
		{name: "starts at night", cfg: config.DayCycle{DayLength: time.Minute, NightLength: 30 * time.Second, StartAtNight: true}, elapsed: 10 * time.Second, want: false},
		{name: "day after first night", cfg: config.DayCycle{DayLength: time.Minute, NightLength: 30 * time.Second, StartAtNight: true}, elapsed: 30 * time.Second, want: true},
		{name: "no night", cfg: config.DayCycle{DayLength: time.Minute}, elapsed: 5 * time.Minute, want: true},
		{name: "no day", cfg: config.DayCycle{NightLength: time.Minute}, elapsed: 5 * time.Minute, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(epoch)
			c.Advance(tt.elapsed)
			d := NewDayCycle(tt.cfg, c)

			assert.Equal(t, tt.want, d.IsDaytime())
			if tt.want {
				assert.Equal(t, "day", d.Phase())
			} else {
				assert.Equal(t, "night", d.Phase())
			}
		})
	}
}
