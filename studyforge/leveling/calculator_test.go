package leveling

import "testing"

func TestCalculator_XPForLevel(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())

	tests := []struct {
		name  string
		level int
		want  int64
	}{
		{name: "level one is free", level: 1, want: 0},
		{name: "zero clamps to free", level: 0, want: 0},
		{name: "level two", level: 2, want: 100},
		{name: "level three", level: 3, want: 250},
		{name: "level four", level: 4, want: 475},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.XPForLevel(tt.level); got != tt.want {
				t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
			}
		})
	}
}

func TestCalculator_XPForLevelMonotonic(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())

	prev := int64(-1)
	for level := 1; level <= 50; level++ {
		got := calc.XPForLevel(level)
		if got < prev {
			t.Fatalf("XPForLevel(%d) = %d, below previous %d", level, got, prev)
		}
		prev = got
	}
}

func TestCalculator_LevelForXP(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())

	tests := []struct {
		name string
		xp   int64
		want int
	}{
		{name: "no xp", xp: 0, want: 1},
		{name: "just below level two", xp: 99, want: 1},
		{name: "exactly level two", xp: 100, want: 2},
		{name: "mid level two", xp: 180, want: 2},
		{name: "exactly level three", xp: 250, want: 3},
		{name: "absurd xp caps at max level", xp: 1 << 60, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.LevelForXP(tt.xp); got != tt.want {
				t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
			}
		})
	}
}

func TestCalculator_ProgressToNext(t *testing.T) {
	calc := NewCalculator(NewDefaultConfig())

	current, required := calc.ProgressToNext(150)
	if current != 50 || required != 150 {
		t.Errorf("ProgressToNext(150) = %d/%d, want 50/150", current, required)
	}

	current, required = calc.ProgressToNext(calc.XPForLevel(50))
	if current != 0 || required != 0 {
		t.Errorf("ProgressToNext(max) = %d/%d, want 0/0", current, required)
	}
}
