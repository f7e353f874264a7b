package repository

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/tgienger/tasktrack/internal/kv"
	"github.com/tgienger/tasktrack/internal/models"
)

func projectIDs(projects []models.Project) string {
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	return strings.Join(ids, ",")
}

func TestProjectRepository_SeedsDefaultsOnFirstAccess(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	repo := NewProjectRepository(store, testOptions()...)

	projects, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if got := projectIDs(projects); got != "1,2,3" {
		t.Fatalf("seeded ids = %s, want 1,2,3", got)
	}
	for _, p := range projects {
		if !p.Active || p.Color == "" || p.Name == "" {
			t.Errorf("bad seed project %+v", p)
		}
	}

	// Seed is persisted immediately along with the marker
	mustGet(t, store, ProjectsKey)
	mustGet(t, store, ProjectsInitializedKey)

	writes := store.Writes()
	if _, err := repo.FindAll(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Writes() != writes {
		t.Error("second read should not reseed")
	}
}

func TestProjectRepository_NoReseedAfterDeletingAll(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	repo := NewProjectRepository(store, testOptions()...)

	for _, id := range []string{"1", "2", "3"} {
		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("delete %s: %v", id, err)
		}
	}

	projects, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("expected empty collection after deleting all, got %s", projectIDs(projects))
	}

	// Even with the payload key gone, the marker prevents reseeding
	if err := store.Delete(ctx, ProjectsKey); err != nil {
		t.Fatal(err)
	}
	projects, err = repo.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("reseeded despite marker: %s", projectIDs(projects))
	}
}

func TestProjectRepository_ExistingPayloadWithoutMarker(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.Set(ctx, ProjectsKey, `[]`); err != nil {
		t.Fatal(err)
	}

	repo := NewProjectRepository(store, testOptions()...)
	projects, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("stored empty collection must not be reseeded, got %s", projectIDs(projects))
	}
	mustGet(t, store, ProjectsInitializedKey)
}

func TestProjectRepository_CreateFindDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository(kv.NewMemory(), testOptions()...)

	created, err := repo.Create(ctx, models.CreateProjectCommand{Name: "Infra", Description: "Servers", Color: "#FF0000"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.Active || created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("unexpected project %+v", created)
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != created {
		t.Errorf("round trip mismatch\n got  %+v\n want %+v", got, created)
	}

	all, _ := repo.FindAll(ctx)
	if got := projectIDs(all); got != "1,2,3,"+created.ID {
		t.Errorf("ids = %s", got)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Errorf("deleting a missing project: %v", err)
	}
}

func TestProjectRepository_CorruptPayloadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.Set(ctx, ProjectsKey, `[{"id":"9","createdAt":`); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	var reported *models.CorruptionError
	repo := NewProjectRepository(store,
		WithLogger(log.New(&logs, "", 0)),
		WithCorruptionHandler(func(e *models.CorruptionError) { reported = e }),
	)

	projects, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if got := projectIDs(projects); got != "1,2,3" {
		t.Errorf("fallback ids = %s, want defaults", got)
	}
	if reported == nil || reported.Key != ProjectsKey {
		t.Errorf("corruption not reported: %v", reported)
	}
	if !strings.Contains(logs.String(), `"projects"`) {
		t.Errorf("expected a diagnostic, got %q", logs.String())
	}
}

func TestProjectRepository_SeedWriteFailureStillReturnsDefaults(t *testing.T) {
	var logs bytes.Buffer
	store := &failingStore{Store: kv.NewMemory(), failSet: true}
	repo := NewProjectRepository(store, WithLogger(log.New(&logs, "", 0)))

	projects, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(projects) != 3 {
		t.Errorf("got %d projects, want 3 defaults", len(projects))
	}
	if !strings.Contains(logs.String(), "seeding default projects") {
		t.Errorf("expected seed failure to be logged, got %q", logs.String())
	}

	_, err = repo.Create(context.Background(), models.CreateProjectCommand{Name: "x", Color: "#000"})
	if !errors.Is(err, models.ErrStorageWriteFailed) {
		t.Errorf("expected ErrStorageWriteFailed on create, got %v", err)
	}
}

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	dir := NewUserDirectory()

	users, err := dir.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users, want 3", len(users))
	}

	// FindAll hands out a copy
	users[0].Name = "changed"
	again, _ := dir.FindAll(ctx)
	if again[0].Name == "changed" {
		t.Error("FindAll must return a defensive copy")
	}

	u, err := dir.FindByID(ctx, "2")
	if err != nil || u.Role != models.RoleManager {
		t.Errorf("FindByID(2) = %+v, %v", u, err)
	}
	if _, err := dir.FindByID(ctx, "42"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	current, err := dir.CurrentUser(ctx)
	if err != nil || current.ID != again[0].ID {
		t.Errorf("CurrentUser() = %+v, %v", current, err)
	}
}
