// Package participatory turns markdown documents into ordered, editable
// collections of typed text nodes scoped to a container, with draft editing,
// two-phase all-or-nothing publication, and transactional discard.
package participatory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	internaldomain "github.com/goliatone/go-participatory/internal/domain"
	"github.com/goliatone/go-participatory/internal/editor"
	"github.com/goliatone/go-participatory/internal/logging"
	"github.com/goliatone/go-participatory/internal/logging/gologger"
	"github.com/goliatone/go-participatory/internal/nodes"
	"github.com/goliatone/go-participatory/internal/parser"
	"github.com/goliatone/go-participatory/internal/publisher"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

// Status exports the draft/published lifecycle enum. The standalone domain
// package re-exports the same enums for hosts that only need the types.
type Status = internaldomain.Status

// Level exports the structural node level enum.
type Level = internaldomain.Level

const (
	StatusDraft     = internaldomain.StatusDraft
	StatusPublished = internaldomain.StatusPublished

	LevelSection    = internaldomain.LevelSection
	LevelSubSection = internaldomain.LevelSubSection
	LevelArticle    = internaldomain.LevelArticle
)

// Node exports the node record for consumers of the participatory package.
type Node = nodes.Node

// NodeStore exports the ordered node store contract.
type NodeStore = nodes.Store

// EditorService exports the draft editor contract.
type EditorService = editor.Service

// PublishCoordinator exports the publish coordinator contract.
type PublishCoordinator = publisher.Coordinator

// NodeEdit exports the per-node edit payload.
type NodeEdit = editor.NodeEdit

// FailureMap exports the aggregated per-node failure shape.
type FailureMap = editor.FailureMap

// ValidationError exports the failure-carrying error returned by save and publish.
type ValidationError = editor.ValidationError

// ImportResult exports the importer's result payload.
type ImportResult = parser.ImportResult

// DocumentMetadata exports the parsed frontmatter header.
type DocumentMetadata = parser.Metadata

// Module is the top level participatory text runtime façade.
type Module struct {
	config    Config
	provider  interfaces.LoggerProvider
	store     nodes.Store
	editor    editor.Service
	publisher publisher.Coordinator
	importer  *parser.Importer
}

// Option overrides module wiring at construction time.
type Option func(*moduleDeps)

type moduleDeps struct {
	repo     nodes.Repository
	provider interfaces.LoggerProvider
	clock    func() time.Time
	id       nodes.IDGenerator
}

// WithDB wires a bun-backed node repository over the supplied database.
func WithDB(db *bun.DB) Option {
	return func(d *moduleDeps) {
		if db != nil {
			d.repo = nodes.NewBunNodeRepository(db)
		}
	}
}

// WithRepository injects a custom node repository, replacing the default
// in-memory one.
func WithRepository(repo nodes.Repository) Option {
	return func(d *moduleDeps) {
		if repo != nil {
			d.repo = repo
		}
	}
}

// WithLoggerProvider injects a logger provider, replacing the one derived
// from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(d *moduleDeps) {
		if provider != nil {
			d.provider = provider
		}
	}
}

// WithClock overrides timestamps across the store and coordinator.
func WithClock(clock func() time.Time) Option {
	return func(d *moduleDeps) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithIDGenerator overrides node ID generation.
func WithIDGenerator(generator nodes.IDGenerator) Option {
	return func(d *moduleDeps) {
		if generator != nil {
			d.id = generator
		}
	}
}

// New constructs a participatory text module from the configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := &moduleDeps{
		clock: time.Now,
		id:    uuid.New,
	}
	for _, opt := range opts {
		opt(deps)
	}

	if deps.provider == nil {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		deps.provider = provider
	}
	if deps.repo == nil {
		deps.repo = nodes.NewMemoryNodeRepository()
	}

	store := nodes.NewStore(deps.repo,
		nodes.WithClock(deps.clock),
		nodes.WithIDGenerator(deps.id),
		nodes.WithLogger(logging.NodesLogger(deps.provider)),
		nodes.WithMaxNodes(cfg.Limits.MaxNodesPerContainer),
	)

	editorService := editor.NewService(store,
		editor.WithLogger(logging.EditorLogger(deps.provider)),
	)

	coordinator := publisher.NewCoordinator(store, editorService,
		publisher.WithClock(deps.clock),
		publisher.WithLogger(logging.PublisherLogger(deps.provider)),
	)

	importer := parser.NewImporter(parser.ImporterConfig{
		Store: store,
		Parser: parser.New(parser.Options{
			Extensions:       cfg.Parser.Extensions,
			MaxDocumentBytes: cfg.Limits.MaxDocumentBytes,
		}),
		Logger: logging.ParserLogger(deps.provider),
	})

	return &Module{
		config:    cfg,
		provider:  deps.provider,
		store:     store,
		editor:    editorService,
		publisher: coordinator,
		importer:  importer,
	}, nil
}

func buildLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "noop":
		return nil, nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
	default:
		return nil, ErrLoggingProviderUnknown
	}
}

// Nodes returns the ordered node store.
func (m *Module) Nodes() NodeStore {
	return m.store
}

// Editor returns the draft editor service.
func (m *Module) Editor() EditorService {
	return m.editor
}

// Publisher returns the publish coordinator.
func (m *Module) Publisher() PublishCoordinator {
	return m.publisher
}

// LoggerProvider exposes the configured logger provider for host integrations.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// ImportDocument parses a markdown source into an empty container.
func (m *Module) ImportDocument(ctx context.Context, containerID, actor uuid.UUID, source []byte) (*ImportResult, error) {
	return m.importer.ImportDocument(ctx, parser.ImportRequest{
		ContainerID: containerID,
		Actor:       actor,
		Source:      source,
	})
}

// SaveDraft applies a batch of edits to a draft text, returning per-node
// failures without aborting the batch.
func (m *Module) SaveDraft(ctx context.Context, containerID, actor uuid.UUID, edits []NodeEdit) (*editor.ApplyResult, error) {
	return m.editor.ApplyEdits(ctx, editor.ApplyEditsRequest{
		ContainerID: containerID,
		Actor:       actor,
		Edits:       edits,
	})
}

// Publish applies pending edits and commits every draft node of the container
// in one all-or-nothing transition.
func (m *Module) Publish(ctx context.Context, containerID, actor uuid.UUID, edits []NodeEdit) (*publisher.PublishResult, error) {
	return m.publisher.Publish(ctx, publisher.PublishRequest{
		ContainerID: containerID,
		Actor:       actor,
		Edits:       edits,
	})
}

// Discard removes every draft node of the container.
func (m *Module) Discard(ctx context.Context, containerID uuid.UUID) (int, error) {
	return m.editor.Discard(ctx, containerID)
}
