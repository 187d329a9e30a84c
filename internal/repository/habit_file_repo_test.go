package repository

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap"

	"habitpal/internal/model"
)

func newHabitRepo(t *testing.T) *HabitFileRepository {
	t.Helper()
	return NewHabitFileRepository(filepath.Join(t.TempDir(), "habits.txt"), zap.NewNop())
}

func TestHabitRepoMissingFile(t *testing.T) {
	repo := newHabitRepo(t)

	habits, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(habits) != 0 {
		t.Fatalf("expected empty list, got %d", len(habits))
	}
}

func TestHabitRepoRoundTrip(t *testing.T) {
	repo := newHabitRepo(t)
	ctx := context.Background()

	want := []*model.Habit{
		{Name: "Meditate", Frequency: model.FrequencyDaily, TotalDays: 10, CompletedDays: 4, ReminderTime: "07:00"},
		{Name: "Gym", Frequency: model.FrequencyWeekly, TotalDays: 12, CompletedDays: 12, ReminderTime: ""},
		{Name: "Journal", Frequency: model.FrequencyDaily, TotalDays: 30, CompletedDays: 0, ReminderTime: "21:30"},
	}

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d habits want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].MarshalLine() != want[i].MarshalLine() {
			t.Errorf("habit %d = %q want %q", i, got[i].MarshalLine(), want[i].MarshalLine())
		}
	}
}

func TestHabitRepoFileFormat(t *testing.T) {
	repo := newHabitRepo(t)

	habits := []*model.Habit{
		{Name: "Meditate", Frequency: model.FrequencyDaily, TotalDays: 10, CompletedDays: 1, ReminderTime: "07:00"},
		{Name: "Gym", Frequency: model.FrequencyWeekly, TotalDays: 4},
	}
	if err := repo.Save(context.Background(), habits); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(repo.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	want := "Meditate,Daily,10,1,07:00\nGym,Weekly,4,0,\n"
	if string(data) != want {
		t.Fatalf("file content = %q want %q", data, want)
	}
}

func TestHabitRepoSkipsMalformedLines(t *testing.T) {
	repo := newHabitRepo(t)

	content := "Meditate,Daily,10,1,07:00\n" +
		"garbage line\n" +
		"Read,Daily,ten,0,\n" +
		"\n" +
		"Gym,Weekly,4,2,\n"
	if err := os.WriteFile(repo.Path(), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	habits, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("loaded %d habits want 2", len(habits))
	}
	if habits[0].Name != "Meditate" || habits[1].Name != "Gym" {
		t.Fatalf("unexpected order: %q, %q", habits[0].Name, habits[1].Name)
	}
}

func TestHabitRepoSkipsOverlongLine(t *testing.T) {
	repo := newHabitRepo(t)

	content := "Read,Daily,10,1,07:00\n" +
		strings.Repeat("x", 70*1024) + "\n" +
		"Run,Weekly,4,0,"
	if err := os.WriteFile(repo.Path(), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	habits, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("loaded %d habits want 2", len(habits))
	}
	if habits[0].Name != "Read" || habits[1].Name != "Run" {
		t.Fatalf("unexpected habits: %q, %q", habits[0].Name, habits[1].Name)
	}
}

func TestHabitRepoSaveOverwrites(t *testing.T) {
	repo := newHabitRepo(t)
	ctx := context.Background()

	first := []*model.Habit{
		{Name: "A", Frequency: model.FrequencyDaily, TotalDays: 1},
		{Name: "B", Frequency: model.FrequencyDaily, TotalDays: 1},
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, first[:1]); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("expected only A after overwrite, got %d habits", len(got))
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(repo.Path()), ".habits.txt.*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestHabitRepoSaveFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions differ on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := filepath.Join(t.TempDir(), "ro")
	if err := os.Mkdir(dir, 0o555); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	repo := NewHabitFileRepository(filepath.Join(dir, "habits.txt"), zap.NewNop())

	err := repo.Save(context.Background(), []*model.Habit{{Name: "A", Frequency: model.FrequencyDaily, TotalDays: 1}})
	if err == nil {
		t.Fatalf("expected write error in read-only directory")
	}
}

func TestHabitRepoCanceledContext(t *testing.T) {
	repo := newHabitRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Load(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
