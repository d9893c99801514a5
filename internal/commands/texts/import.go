package textscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/commands"
	"github.com/goliatone/go-participatory/internal/parser"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

const importDocumentMessageType = "participatory.text.import"

// ImportDocumentCommand requests parsing a source document into an empty
// container's draft node collection.
type ImportDocumentCommand struct {
	ContainerID uuid.UUID `json:"container_id"`
	Actor       uuid.UUID `json:"actor"`
	Source      []byte    `json:"source"`
}

// Type implements command.Message.
func (ImportDocumentCommand) Type() string { return importDocumentMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m ImportDocumentCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContainerID == uuid.Nil {
		errs["container_id"] = validation.NewError("participatory.text.import.container_required", "container_id is required")
	}
	if m.Actor == uuid.Nil {
		errs["actor"] = validation.NewError("participatory.text.import.actor_required", "actor is required")
	}
	if len(m.Source) == 0 {
		errs["source"] = validation.NewError("participatory.text.import.source_required", "source document is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ImportDocumentHandler imports documents via the parser's importer using the
// shared command handler foundation.
type ImportDocumentHandler struct {
	inner *commands.Handler[ImportDocumentCommand]
}

// NewImportDocumentHandler constructs a handler wired to the provided importer.
func NewImportDocumentHandler(importer *parser.Importer, logger interfaces.Logger, opts ...commands.HandlerOption[ImportDocumentCommand]) *ImportDocumentHandler {
	exec := func(ctx context.Context, msg ImportDocumentCommand) error {
		_, err := importer.ImportDocument(ctx, parser.ImportRequest{
			ContainerID: msg.ContainerID,
			Actor:       msg.Actor,
			Source:      msg.Source,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[ImportDocumentCommand]{
		commands.WithLogger[ImportDocumentCommand](logger),
		commands.WithOperation[ImportDocumentCommand]("texts.import"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDocumentHandler{
		inner: commands.NewHandler[ImportDocumentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportDocumentCommand].Execute.
func (h *ImportDocumentHandler) Execute(ctx context.Context, msg ImportDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}
