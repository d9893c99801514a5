package parser

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/logging"
	"github.com/goliatone/go-participatory/internal/nodes"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

// ImportRequest asks for a source document to be parsed and appended to an
// empty container as draft nodes.
type ImportRequest struct {
	ContainerID uuid.UUID
	Actor       uuid.UUID
	Source      []byte
}

// ImportResult reports what an import produced.
type ImportResult struct {
	Metadata Metadata
	Nodes    []*nodes.Node
}

// Importer turns parsed documents into stored draft nodes. The append loop
// runs inside the container's critical section; a failure midway restores the
// container to empty so no partial sequence survives.
type Importer struct {
	store  nodes.Store
	parser *Parser
	logger interfaces.Logger
}

// ImporterConfig encapsulates the importer's dependencies.
type ImporterConfig struct {
	Store  nodes.Store
	Parser *Parser
	Logger interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	engine := cfg.Parser
	if engine == nil {
		engine = New(Options{})
	}
	return &Importer{
		store:  cfg.Store,
		parser: engine,
		logger: logger,
	}
}

// ImportDocument parses the source and populates the container. The target
// container must be empty; one container holds exactly one participatory
// text at a time.
func (i *Importer) ImportDocument(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.ContainerID == uuid.Nil {
		return nil, ErrContainerRequired
	}

	var result *ImportResult
	err := i.store.Locked(ctx, req.ContainerID, func(ctx context.Context) error {
		existing, err := i.store.List(ctx, req.ContainerID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrContainerNotEmpty
		}

		doc, err := i.parser.Parse(req.Source)
		if err != nil {
			return err
		}

		created := make([]*nodes.Node, 0, len(doc.Blocks))
		for _, block := range doc.Blocks {
			node, err := i.store.Append(ctx, nodes.AppendNodeInput{
				ContainerID: req.ContainerID,
				Level:       block.Level,
				Title:       block.Title,
				Body:        block.Body,
				Actor:       req.Actor,
			})
			if err != nil {
				if restoreErr := i.store.Replace(ctx, req.ContainerID, nil); restoreErr != nil {
					i.logger.Error("import.rollback.failed", "container_id", req.ContainerID, "error", restoreErr)
				}
				return err
			}
			created = append(created, node)
		}

		result = &ImportResult{
			Metadata: doc.Metadata,
			Nodes:    created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("import.document",
		"container_id", req.ContainerID,
		"nodes", len(result.Nodes),
		"articles", countArticles(result.Nodes),
	)
	return result, nil
}

func countArticles(records []*nodes.Node) int {
	count := 0
	for _, record := range records {
		if record.Level.HasBody() {
			count++
		}
	}
	return count
}
