package main

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/taskminder/internal/database"
	"github.com/dukerupert/taskminder/internal/email"
	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/push"
	"github.com/dukerupert/taskminder/internal/store"
)

// writeConfig creates a config file pointing at a fresh database and
// returns the config and database paths.
func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "taskminder.db")
	cfgPath := filepath.Join(dir, "taskminder.yaml")
	body := "database:\n  path: " + dbPath + "\ntimezone: UTC\nlog:\n  level: error\n" + extra
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, dbPath
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedRoutine(t *testing.T, dbPath string) {
	t.Helper()
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	user, err := store.NewUserStore(db).Create(ctx, "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	due := "09:00"
	_, err = store.NewRoutineStore(db).Create(ctx, model.Routine{
		UserID: user.ID, Title: "Standup", Priority: model.PriorityHigh,
		Frequency: model.FrequencyDaily, Days: model.StringSet{"monday"},
		DueTime: &due, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create routine: %v", err)
	}
}

func TestVAPIDKeys(t *testing.T) {
	out, err := runCmd(t, "vapid-keys")
	if err != nil {
		t.Fatalf("vapid-keys: %v", err)
	}
	if !strings.Contains(out, "vapid_public_key: ") || !strings.Contains(out, "vapid_private_key: ") {
		t.Errorf("output = %q", out)
	}
}

func TestGenerateRoutineTasks(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedRoutine(t, dbPath)

	// 2025-01-06 is a Monday.
	out, err := runCmd(t, "--config", cfgPath, "generate-routine-tasks", "--date", "2025-01-06")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Standup") || !strings.Contains(out, "2025-01-06 09:00") {
		t.Errorf("output missing generated task:\n%s", out)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	tasks, err := store.NewTaskStore(db).List(context.Background(), store.TaskFilter{TargetDate: "2025-01-06"})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("tasks = %d, want 1", len(tasks))
	}
}

func TestGenerateRoutineTasksRange(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedRoutine(t, dbPath)

	out, err := runCmd(t, "--config", cfgPath, "generate-routine-tasks", "--date", "2025-01-06", "--days-ahead", "8")
	if err != nil {
		t.Fatalf("generate range: %v", err)
	}
	if !strings.Contains(out, "2025-01-06 to 2025-01-13") {
		t.Errorf("output = %s", out)
	}
}

func TestGenerateRoutineTasksPreviewWritesNothing(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedRoutine(t, dbPath)

	out, err := runCmd(t, "--config", cfgPath, "generate-routine-tasks", "--date", "2025-01-06", "--preview")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "Routine preview") || !strings.Contains(out, "2025-01-06") {
		t.Errorf("output = %s", out)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	tasks, _ := store.NewTaskStore(db).List(context.Background(), store.TaskFilter{})
	if len(tasks) != 0 {
		t.Errorf("preview created %d tasks", len(tasks))
	}
}

func TestGenerateRoutineTasksBadFlags(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	if _, err := runCmd(t, "--config", cfgPath, "generate-routine-tasks", "--days-ahead", "0"); err == nil {
		t.Error("expected error for --days-ahead 0")
	}
	if _, err := runCmd(t, "--config", cfgPath, "generate-routine-tasks", "--date", "06/01/2025"); err == nil {
		t.Error("expected error for malformed --date")
	}
}

func TestSendReminderEmails(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	out, err := runCmd(t, "--config", cfgPath, "send-reminder-emails", "--catch-up")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, "Reminder emails") || !strings.Contains(out, "Overdue notifications") {
		t.Errorf("output = %s", out)
	}
}

func TestCleanExpiredReminders(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	out, err := runCmd(t, "--config", cfgPath, "clean-expired-reminders")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out, "Removed") {
		t.Errorf("output = %s", out)
	}
}

func TestResetOverdueFlag(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ctx := context.Background()
	user, _ := store.NewUserStore(db).Create(ctx, "Eve", "eve@example.com")
	tasks := store.NewTaskStore(db)
	task, err := tasks.Create(ctx, model.Task{UserID: user.ID, Title: "File taxes"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if ok, err := tasks.ClaimOverdueNotification(ctx, task.ID); err != nil || !ok {
		t.Fatalf("claim: %v %v", ok, err)
	}
	db.Close()

	if _, err := runCmd(t, "--config", cfgPath, "reset-overdue-flag", "--task", "999"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing task err = %v", err)
	}

	id := strconv.FormatInt(task.ID, 10)
	out, err := runCmd(t, "--config", cfgPath, "reset-overdue-flag", "--task", id)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "task "+id) {
		t.Errorf("output = %q", out)
	}

	db, err = database.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db.Close()
	got, _ := store.NewTaskStore(db).GetByID(ctx, task.ID)
	if got.OverdueNotificationSent {
		t.Error("flag still set after reset")
	}
}

func TestSetupFailures(t *testing.T) {
	t.Run("bad timezone", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "")
		os.WriteFile(cfgPath, []byte("database:\n  path: x.db\ntimezone: Mars/Olympus\n"), 0o600)
		if _, err := runCmd(t, "--config", cfgPath, "clean-expired-reminders"); err == nil {
			t.Error("expected config error")
		}
	})

	t.Run("postmark without token", func(t *testing.T) {
		cfgPath, _ := writeConfig(t, "mail:\n  driver: postmark\n")
		_, err := runCmd(t, "--config", cfgPath, "send-reminder-emails")
		if !errors.Is(err, email.ErrNotConfigured) {
			t.Errorf("err = %v, want ErrNotConfigured", err)
		}
	})
}

func TestSendReminderEmailsPublishesOverdueEvent(t *testing.T) {
	var (
		mu     sync.Mutex
		topics []string
	)
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		topics = append(topics, r.Header.Get("Topic"))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer endpoint.Close()

	pub, priv, err := push.GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("vapid keys: %v", err)
	}
	cfgPath, dbPath := writeConfig(t, "push:\n  vapid_public_key: "+pub+"\n  vapid_private_key: "+priv+"\n  subscriber: ops@example.com\n")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ctx := context.Background()
	user, _ := store.NewUserStore(db).Create(ctx, "Finn", "finn@example.com")
	due := time.Now().Add(-30 * time.Minute)
	task, err := store.NewTaskStore(db).Create(ctx, model.Task{UserID: user.ID, Title: "Send invoice", DueDate: &due})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("client key: %v", err)
	}
	auth := make([]byte, 16)
	rand.Read(auth)
	_, err = store.NewPushStore(db).CreateSubscription(ctx, user.ID, endpoint.URL,
		base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(auth))
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	db.Close()

	out, err := runCmd(t, "--config", cfgPath, "send-reminder-emails")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, "Overdue notifications") {
		t.Errorf("output = %s", out)
	}

	mu.Lock()
	defer mu.Unlock()
	want := "task_overdue-" + strconv.FormatInt(task.ID, 10)
	if len(topics) != 1 || topics[0] != want {
		t.Errorf("push topics = %v, want [%s]", topics, want)
	}
}
