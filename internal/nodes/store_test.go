package nodes_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/domain"
	"github.com/goliatone/go-participatory/internal/nodes"
)

func newStore(opts ...nodes.StoreOption) nodes.Store {
	return nodes.NewStore(nodes.NewMemoryNodeRepository(), opts...)
}

func seedNodes(t *testing.T, store nodes.Store, containerID uuid.UUID, count int) []*nodes.Node {
	t.Helper()
	out := make([]*nodes.Node, 0, count)
	for i := 0; i < count; i++ {
		node, err := store.Append(context.Background(), nodes.AppendNodeInput{
			ContainerID: containerID,
			Level:       domain.LevelArticle,
			Title:       "1",
			Body:        "body",
			Actor:       uuid.New(),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		out = append(out, node)
	}
	return out
}

func assertContiguous(t *testing.T, store nodes.Store, containerID uuid.UUID) []*nodes.Node {
	t.Helper()
	records, err := store.List(context.Background(), containerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, record := range records {
		if record.Position != i+1 {
			t.Fatalf("position gap at index %d: got %d", i, record.Position)
		}
	}
	return records
}

func TestAppendAssignsContiguousPositions(t *testing.T) {
	store := newStore()
	containerID := uuid.New()

	created := seedNodes(t, store, containerID, 5)
	for i, node := range created {
		if node.Position != i+1 {
			t.Fatalf("expected position %d got %d", i+1, node.Position)
		}
		if !node.Draft {
			t.Fatalf("expected draft node")
		}
	}
	assertContiguous(t, store, containerID)
}

func TestAppendRejectsInvalidLevel(t *testing.T) {
	store := newStore()

	_, err := store.Append(context.Background(), nodes.AppendNodeInput{
		ContainerID: uuid.New(),
		Level:       domain.Level("chapter"),
		Title:       "x",
	})
	if !errors.Is(err, nodes.ErrLevelInvalid) {
		t.Fatalf("expected ErrLevelInvalid got %v", err)
	}
}

func TestAppendEnforcesNodeLimit(t *testing.T) {
	store := newStore(nodes.WithMaxNodes(2))
	containerID := uuid.New()

	seedNodes(t, store, containerID, 2)

	_, err := store.Append(context.Background(), nodes.AppendNodeInput{
		ContainerID: containerID,
		Level:       domain.LevelArticle,
		Title:       "3",
		Body:        "body",
	})
	if !errors.Is(err, nodes.ErrNodeLimitExceeded) {
		t.Fatalf("expected ErrNodeLimitExceeded got %v", err)
	}
}

func TestMoveKeepsSequenceContiguous(t *testing.T) {
	store := newStore()
	containerID := uuid.New()
	created := seedNodes(t, store, containerID, 5)

	if err := store.Move(context.Background(), containerID, created[4].ID, 1); err != nil {
		t.Fatalf("move to front: %v", err)
	}
	records := assertContiguous(t, store, containerID)
	if records[0].ID != created[4].ID {
		t.Fatalf("expected moved node first")
	}

	if err := store.Move(context.Background(), containerID, created[0].ID, 5); err != nil {
		t.Fatalf("move to back: %v", err)
	}
	records = assertContiguous(t, store, containerID)
	if records[4].ID != created[0].ID {
		t.Fatalf("expected moved node last")
	}
}

func TestMoveRandomSequencePreservesInvariant(t *testing.T) {
	store := newStore()
	containerID := uuid.New()
	created := seedNodes(t, store, containerID, 8)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		node := created[rng.Intn(len(created))]
		target := rng.Intn(len(created)) + 1
		if err := store.Move(context.Background(), containerID, node.ID, target); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		assertContiguous(t, store, containerID)
	}
}

func TestMoveOutOfRangeLeavesStateUnchanged(t *testing.T) {
	store := newStore()
	containerID := uuid.New()
	created := seedNodes(t, store, containerID, 3)

	before := assertContiguous(t, store, containerID)

	for _, target := range []int{0, -1, 4, 100} {
		err := store.Move(context.Background(), containerID, created[1].ID, target)
		var rangeErr *nodes.RangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("target %d: expected RangeError got %v", target, err)
		}
	}

	after := assertContiguous(t, store, containerID)
	for i := range before {
		if before[i].ID != after[i].ID || before[i].Position != after[i].Position {
			t.Fatalf("state changed after rejected move at index %d", i)
		}
	}
}

func TestMoveUnknownNode(t *testing.T) {
	store := newStore()
	containerID := uuid.New()
	seedNodes(t, store, containerID, 2)

	err := store.Move(context.Background(), containerID, uuid.New(), 1)
	var notFound *nodes.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError got %v", err)
	}
}

func TestMoveRejectsPublishedNode(t *testing.T) {
	store := newStore()
	containerID := uuid.New()
	created := seedNodes(t, store, containerID, 2)

	published := created[0]
	published.Draft = false
	now := time.Now()
	published.PublishedAt = &now
	if _, err := store.Update(context.Background(), published); err != nil {
		t.Fatalf("update: %v", err)
	}

	err := store.Move(context.Background(), containerID, published.ID, 2)
	if !errors.Is(err, nodes.ErrNodePublished) {
		t.Fatalf("expected ErrNodePublished got %v", err)
	}
}

func TestDeleteDraftsScopesToContainer(t *testing.T) {
	store := newStore()
	containerA := uuid.New()
	containerB := uuid.New()
	seedNodes(t, store, containerA, 3)
	seedNodes(t, store, containerB, 2)

	removed, err := store.DeleteDrafts(context.Background(), containerA)
	if err != nil {
		t.Fatalf("delete drafts: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed got %d", removed)
	}

	left, err := store.List(context.Background(), containerB)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected other container untouched, got %d nodes", len(left))
	}
}

func TestSnapshotReplaceRoundTrip(t *testing.T) {
	store := newStore()
	containerID := uuid.New()
	created := seedNodes(t, store, containerID, 3)

	snapshot, err := store.Snapshot(context.Background(), containerID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if err := store.Move(context.Background(), containerID, created[2].ID, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := store.DeleteDrafts(context.Background(), containerID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := store.Replace(context.Background(), containerID, snapshot); err != nil {
		t.Fatalf("replace: %v", err)
	}

	records := assertContiguous(t, store, containerID)
	if len(records) != 3 {
		t.Fatalf("expected 3 restored nodes got %d", len(records))
	}
	for i, record := range records {
		if record.ID != created[i].ID {
			t.Fatalf("restored order mismatch at %d", i)
		}
	}
}

func TestGetScopesToContainer(t *testing.T) {
	store := newStore()
	containerA := uuid.New()
	containerB := uuid.New()
	created := seedNodes(t, store, containerA, 1)
	seedNodes(t, store, containerB, 1)

	_, err := store.Get(context.Background(), containerB, created[0].ID)
	var notFound *nodes.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for cross-container get, got %v", err)
	}
}

func TestLockedSerializesSameContainer(t *testing.T) {
	store := newStore()
	containerID := uuid.New()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- store.Locked(context.Background(), containerID, func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := store.Locked(ctx, containerID, func(ctx context.Context) error { return nil })
	if !errors.Is(err, nodes.ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("locked holder: %v", err)
	}

	// The lock is free again; the same call now succeeds.
	if err := store.Locked(context.Background(), containerID, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("relock: %v", err)
	}
}

func TestLockedNestedCallsJoinCriticalSection(t *testing.T) {
	store := newStore()
	containerID := uuid.New()

	err := store.Locked(context.Background(), containerID, func(ctx context.Context) error {
		_, err := store.Append(ctx, nodes.AppendNodeInput{
			ContainerID: containerID,
			Level:       domain.LevelSection,
			Title:       "Inside",
		})
		return err
	})
	if err != nil {
		t.Fatalf("nested append under lock: %v", err)
	}
}

func TestLockedIndependentContainersProceed(t *testing.T) {
	store := newStore()
	containerA := uuid.New()
	containerB := uuid.New()

	err := store.Locked(context.Background(), containerA, func(ctx context.Context) error {
		ctxB, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return store.Locked(ctxB, containerB, func(ctx context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("independent containers should not contend: %v", err)
	}
}
