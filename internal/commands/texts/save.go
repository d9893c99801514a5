package textscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/commands"
	"github.com/goliatone/go-participatory/internal/editor"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

const saveDraftMessageType = "participatory.text.save"

// SaveDraftCommand applies a batch of node edits while the text stays draft.
// Valid edits persist; invalid ones are reported without aborting the batch.
type SaveDraftCommand struct {
	ContainerID uuid.UUID         `json:"container_id"`
	Actor       uuid.UUID         `json:"actor"`
	Edits       []editor.NodeEdit `json:"edits"`
}

// Type implements command.Message.
func (SaveDraftCommand) Type() string { return saveDraftMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m SaveDraftCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContainerID == uuid.Nil {
		errs["container_id"] = validation.NewError("participatory.text.save.container_required", "container_id is required")
	}
	if m.Actor == uuid.Nil {
		errs["actor"] = validation.NewError("participatory.text.save.actor_required", "actor is required")
	}
	if len(m.Edits) == 0 {
		errs["edits"] = validation.NewError("participatory.text.save.edits_required", "at least one edit is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SaveDraftHandler applies draft edits via the editor service. A non-empty
// failure map surfaces as *editor.ValidationError so callers can re-render
// the offending rows.
type SaveDraftHandler struct {
	inner *commands.Handler[SaveDraftCommand]
}

// NewSaveDraftHandler constructs a handler wired to the provided editor service.
func NewSaveDraftHandler(service editor.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveDraftCommand]) *SaveDraftHandler {
	exec := func(ctx context.Context, msg SaveDraftCommand) error {
		result, err := service.ApplyEdits(ctx, editor.ApplyEditsRequest{
			ContainerID: msg.ContainerID,
			Actor:       msg.Actor,
			Edits:       msg.Edits,
		})
		if err != nil {
			return err
		}
		if !result.Failures.Empty() {
			return &editor.ValidationError{Failures: result.Failures}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveDraftCommand]{
		commands.WithLogger[SaveDraftCommand](logger),
		commands.WithOperation[SaveDraftCommand]("texts.save"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveDraftHandler{
		inner: commands.NewHandler[SaveDraftCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SaveDraftCommand].Execute.
func (h *SaveDraftHandler) Execute(ctx context.Context, msg SaveDraftCommand) error {
	return h.inner.Execute(ctx, msg)
}
