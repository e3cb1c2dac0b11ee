package tomlkeys

import (
	"testing"
	"time"
)

func TestTablesAndDottedAssignmentsShareKeys(t *testing.T) {
	for _, input := range []string{
		"[frame]\nframes = 600\n",
		"frame.frames = 600\n",
	} {
		values, err := Decode([]byte(input))
		if err != nil {
			t.Fatalf("decode %q: %v", input, err)
		}
		if frames, ok := values.Int("frame.frames"); !ok || frames != 600 {
			t.Fatalf("expected frame.frames 600 from %q, got %d (%v)", input, frames, ok)
		}
	}
}

func TestKeysIgnoreCaseAndUnderscores(t *testing.T) {
	values, err := Decode([]byte("[Resources]\nHISTORY_SIZE = 12\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if size, ok := values.Int("resources.history-size"); !ok || size != 12 {
		t.Fatalf("expected 12, got %d (%v)", size, ok)
	}
	if !values.Has("RESOURCES.History_Size") {
		t.Fatalf("expected lookup to normalize its key")
	}
}

func TestCollidingSpellingsKeepFirstSorted(t *testing.T) {
	values := Flatten(map[string]any{
		"move_speed": int64(2),
		"move-speed": int64(1),
	})
	if len(values) != 1 {
		t.Fatalf("expected one key, got %v", values)
	}
	if speed, _ := values.Int("move-speed"); speed != 1 {
		t.Fatalf("expected move-speed to win, got %d", speed)
	}
}

func TestTypedAccessors(t *testing.T) {
	values, err := Decode([]byte(`flag = true
count = 7
name = " hello "
speed = 2.5
tick = "16ms"
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if flag, ok := values.Bool("flag"); !ok || !flag {
		t.Fatalf("expected flag true")
	}
	if name, ok := values.String("name"); !ok || name != "hello" {
		t.Fatalf("expected trimmed name, got %q", name)
	}
	if _, ok := values.String("count"); ok {
		t.Fatalf("expected count to not read as a string")
	}
	if speed, ok := values.Float("speed"); !ok || speed != 2.5 {
		t.Fatalf("expected speed 2.5, got %v", speed)
	}
	if whole, ok := values.Float("count"); !ok || whole != 7 {
		t.Fatalf("expected integer to read as float, got %v", whole)
	}
	if _, ok := values.Int("speed"); ok {
		t.Fatalf("expected fractional float to not read as int")
	}
	if tick, ok := values.Duration("tick"); !ok || tick != 16*time.Millisecond {
		t.Fatalf("expected 16ms, got %v", tick)
	}
	if _, ok := values.Duration("name"); ok {
		t.Fatalf("expected invalid duration to be rejected")
	}
	if _, ok := values.Bool("missing"); ok {
		t.Fatalf("expected missing key to report false")
	}
}

func TestSetMergeAndClone(t *testing.T) {
	base := Values{}
	if base.Set("  ", 1) {
		t.Fatalf("expected blank key to be ignored")
	}
	base.Set("Frame.Tick", 5*time.Millisecond)

	copied := base.Clone()
	copied.Merge(Values{"frame.tick": "20ms", "log.level": "debug"})

	if tick, _ := base.Duration("frame.tick"); tick != 5*time.Millisecond {
		t.Fatalf("expected clone to leave base alone, got %v", tick)
	}
	if tick, _ := copied.Duration("frame.tick"); tick != 20*time.Millisecond {
		t.Fatalf("expected merged tick, got %v", tick)
	}
	if level, _ := copied.String("log.level"); level != "debug" {
		t.Fatalf("expected merged level, got %q", level)
	}
}

func TestArraysStayWhole(t *testing.T) {
	values, err := Decode([]byte(`watch = ["route.yaml", "camera.yaml"]` + "\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	value, ok := values.Lookup("watch")
	if !ok {
		t.Fatalf("expected watch key")
	}
	if items, ok := value.([]any); !ok || len(items) != 2 {
		t.Fatalf("expected two entries, got %#v", value)
	}
}
