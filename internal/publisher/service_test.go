package publisher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/domain"
	"github.com/goliatone/go-participatory/internal/editor"
	"github.com/goliatone/go-participatory/internal/nodes"
	"github.com/goliatone/go-participatory/internal/publisher"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type fixture struct {
	store       nodes.Store
	editor      editor.Service
	coordinator publisher.Coordinator
	actor       uuid.UUID
	cid         uuid.UUID
	records     []*nodes.Node
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := nodes.NewStore(nodes.NewMemoryNodeRepository())
	editorService := editor.NewService(store)
	f := &fixture{
		store:  store,
		editor: editorService,
		actor:  uuid.New(),
		cid:    uuid.New(),
		clock:  time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	f.coordinator = publisher.NewCoordinator(store, editorService,
		publisher.WithClock(func() time.Time { return f.clock }),
	)

	inputs := []nodes.AppendNodeInput{
		{ContainerID: f.cid, Level: domain.LevelSection, Title: "Overview", Actor: f.actor},
		{ContainerID: f.cid, Level: domain.LevelArticle, Title: "1", Body: "First body", Actor: f.actor},
		{ContainerID: f.cid, Level: domain.LevelArticle, Title: "2", Body: "Second body", Actor: f.actor},
	}
	for _, input := range inputs {
		node, err := store.Append(context.Background(), input)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		f.records = append(f.records, node)
	}
	return f
}

func (f *fixture) listState(t *testing.T) []*nodes.Node {
	t.Helper()
	records, err := f.store.List(context.Background(), f.cid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return records
}

func TestPublishStampsAllNodes(t *testing.T) {
	f := newFixture(t)

	result, err := f.coordinator.Publish(context.Background(), publisher.PublishRequest{
		ContainerID: f.cid,
		Actor:       f.actor,
		Edits: []editor.NodeEdit{
			{NodeID: f.records[1].ID, Body: strPtr("Final body")},
		},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(result.Nodes) != 3 {
		t.Fatalf("expected 3 published nodes got %d", len(result.Nodes))
	}
	if !result.PublishedAt.Equal(f.clock) {
		t.Fatalf("expected publish at %v got %v", f.clock, result.PublishedAt)
	}

	for _, record := range f.listState(t) {
		if record.Draft {
			t.Fatalf("node %s still draft", record.ID)
		}
		if record.PublishedAt == nil || !record.PublishedAt.Equal(result.PublishedAt) {
			t.Fatalf("node %s missing shared timestamp", record.ID)
		}
		if record.UpdatedBy != f.actor {
			t.Fatalf("node %s missing actor attribution", record.ID)
		}
	}
}

func TestPublishEditFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	before := f.listState(t)

	_, err := f.coordinator.Publish(context.Background(), publisher.PublishRequest{
		ContainerID: f.cid,
		Actor:       f.actor,
		Edits: []editor.NodeEdit{
			{NodeID: f.records[2].ID, Position: intPtr(1)},
			{NodeID: f.records[1].ID, Title: strPtr("")},
		},
	})

	var validationErr *editor.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	if _, ok := validationErr.Failures[f.records[1].ID]; !ok {
		t.Fatalf("expected failure for node with blank title")
	}

	// The valid move in the same batch must not survive the rollback.
	after := f.listState(t)
	if len(after) != len(before) {
		t.Fatalf("node count changed: %d != %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Position != before[i].Position {
			t.Fatalf("order changed after failed publish: got %s@%d want %s@%d",
				after[i].ID, after[i].Position, before[i].ID, before[i].Position)
		}
		if after[i].Draft != before[i].Draft || after[i].Title != before[i].Title {
			t.Fatalf("node %s mutated after failed publish", after[i].ID)
		}
	}
}

func TestPublishValidatesNodesOutsideEditBatch(t *testing.T) {
	f := newFixture(t)

	// Corrupt a node the publish edits never touch.
	broken := f.records[2]
	broken.Body = ""
	if _, err := f.store.Update(context.Background(), broken); err != nil {
		t.Fatalf("seed corruption: %v", err)
	}
	before := f.listState(t)

	_, err := f.coordinator.Publish(context.Background(), publisher.PublishRequest{
		ContainerID: f.cid,
		Actor:       f.actor,
		Edits: []editor.NodeEdit{
			{NodeID: f.records[1].ID, Body: strPtr("Touched body")},
		},
	})

	var validationErr *editor.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	messages, ok := validationErr.Failures[broken.ID]
	if !ok || len(messages) != 1 || messages[0] != "body is required" {
		t.Fatalf("expected body failure for untouched node got %v", validationErr.Failures)
	}

	// The edit that did apply in phase 1 rolls back with everything else.
	after := f.listState(t)
	for i := range before {
		if after[i].Body != before[i].Body || after[i].Draft != before[i].Draft {
			t.Fatalf("node %s mutated after failed publish", after[i].ID)
		}
	}
}

func TestPublishFailureMapDeterministicOnRetry(t *testing.T) {
	f := newFixture(t)

	broken := f.records[1]
	broken.Body = ""
	if _, err := f.store.Update(context.Background(), broken); err != nil {
		t.Fatalf("seed corruption: %v", err)
	}

	request := publisher.PublishRequest{ContainerID: f.cid, Actor: f.actor}

	var first, second *editor.ValidationError
	_, err := f.coordinator.Publish(context.Background(), request)
	if !errors.As(err, &first) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	_, err = f.coordinator.Publish(context.Background(), request)
	if !errors.As(err, &second) {
		t.Fatalf("expected ValidationError on retry got %v", err)
	}

	if len(first.Failures) != len(second.Failures) {
		t.Fatalf("failure maps differ across retries")
	}
	for id, messages := range first.Failures {
		retried, ok := second.Failures[id]
		if !ok || len(retried) != len(messages) {
			t.Fatalf("failure map for %s differs across retries", id)
		}
		for i := range messages {
			if messages[i] != retried[i] {
				t.Fatalf("failure message differs: %q != %q", messages[i], retried[i])
			}
		}
	}
}

func TestPublishEmptyContainer(t *testing.T) {
	f := newFixture(t)
	empty := uuid.New()

	_, err := f.coordinator.Publish(context.Background(), publisher.PublishRequest{
		ContainerID: empty,
		Actor:       f.actor,
	})
	if !errors.Is(err, publisher.ErrNothingToPublish) {
		t.Fatalf("expected ErrNothingToPublish got %v", err)
	}
}

func TestPublishAlreadyPublishedContainer(t *testing.T) {
	f := newFixture(t)

	if _, err := f.coordinator.Publish(context.Background(), publisher.PublishRequest{
		ContainerID: f.cid,
		Actor:       f.actor,
	}); err != nil {
		t.Fatalf("first publish: %v", err)
	}

	_, err := f.coordinator.Publish(context.Background(), publisher.PublishRequest{
		ContainerID: f.cid,
		Actor:       f.actor,
	})
	var validationErr *editor.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	for _, record := range f.records {
		messages, ok := validationErr.Failures[record.ID]
		if !ok || messages[0] != "node is already published" {
			t.Fatalf("expected already-published failure for %s got %v", record.ID, validationErr.Failures)
		}
	}
}

func TestPublishRequiresContainer(t *testing.T) {
	f := newFixture(t)

	_, err := f.coordinator.Publish(context.Background(), publisher.PublishRequest{Actor: f.actor})
	if !errors.Is(err, publisher.ErrContainerRequired) {
		t.Fatalf("expected ErrContainerRequired got %v", err)
	}
}

// stateWatchRepo lists the container after every mutation, recording whether a
// reader at that moment would see draft and published nodes side by side.
type stateWatchRepo struct {
	inner nodes.Repository
	cid   uuid.UUID

	mu    sync.Mutex
	mixed bool
}

func (r *stateWatchRepo) observe(ctx context.Context) {
	records, err := r.inner.ListByContainer(ctx, r.cid)
	if err != nil {
		return
	}
	draft, published := 0, 0
	for _, record := range records {
		if record.Draft {
			draft++
		} else {
			published++
		}
	}
	r.mu.Lock()
	if draft > 0 && published > 0 {
		r.mixed = true
	}
	r.mu.Unlock()
}

func (r *stateWatchRepo) Create(ctx context.Context, node *nodes.Node) (*nodes.Node, error) {
	record, err := r.inner.Create(ctx, node)
	r.observe(ctx)
	return record, err
}

func (r *stateWatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*nodes.Node, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *stateWatchRepo) ListByContainer(ctx context.Context, containerID uuid.UUID) ([]*nodes.Node, error) {
	return r.inner.ListByContainer(ctx, containerID)
}

func (r *stateWatchRepo) Update(ctx context.Context, node *nodes.Node) (*nodes.Node, error) {
	record, err := r.inner.Update(ctx, node)
	r.observe(ctx)
	return record, err
}

func (r *stateWatchRepo) DeleteDrafts(ctx context.Context, containerID uuid.UUID) (int, error) {
	removed, err := r.inner.DeleteDrafts(ctx, containerID)
	r.observe(ctx)
	return removed, err
}

func (r *stateWatchRepo) ReplaceContainer(ctx context.Context, containerID uuid.UUID, records []*nodes.Node) error {
	err := r.inner.ReplaceContainer(ctx, containerID, records)
	r.observe(ctx)
	return err
}

func TestPublishCommitNeverVisiblyMixed(t *testing.T) {
	cid := uuid.New()
	actor := uuid.New()
	repo := &stateWatchRepo{inner: nodes.NewMemoryNodeRepository(), cid: cid}
	store := nodes.NewStore(repo)
	editorService := editor.NewService(store)
	coordinator := publisher.NewCoordinator(store, editorService)

	inputs := []nodes.AppendNodeInput{
		{ContainerID: cid, Level: domain.LevelSection, Title: "Overview", Actor: actor},
		{ContainerID: cid, Level: domain.LevelArticle, Title: "1", Body: "First body", Actor: actor},
		{ContainerID: cid, Level: domain.LevelArticle, Title: "2", Body: "Second body", Actor: actor},
	}
	var article *nodes.Node
	for _, input := range inputs {
		node, err := store.Append(context.Background(), input)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		article = node
	}

	result, err := coordinator.Publish(context.Background(), publisher.PublishRequest{
		ContainerID: cid,
		Actor:       actor,
		Edits: []editor.NodeEdit{
			{NodeID: article.ID, Body: strPtr("Edited body")},
		},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(result.Nodes) != 3 {
		t.Fatalf("expected 3 published nodes got %d", len(result.Nodes))
	}

	repo.mu.Lock()
	mixed := repo.mixed
	repo.mu.Unlock()
	if mixed {
		t.Fatalf("a reader could observe draft and published nodes in the same container mid-commit")
	}

	records, err := store.List(context.Background(), cid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, record := range records {
		if record.Draft || record.PublishedAt == nil {
			t.Fatalf("node %s not committed", record.ID)
		}
	}
}
