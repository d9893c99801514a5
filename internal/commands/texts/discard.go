package textscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/commands"
	"github.com/goliatone/go-participatory/internal/editor"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

const discardTextMessageType = "participatory.text.discard"

// DiscardTextCommand removes every draft node of a container in one
// transaction, abandoning the in-progress text.
type DiscardTextCommand struct {
	ContainerID uuid.UUID `json:"container_id"`
	Actor       uuid.UUID `json:"actor"`
}

// Type implements command.Message.
func (DiscardTextCommand) Type() string { return discardTextMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m DiscardTextCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContainerID == uuid.Nil {
		errs["container_id"] = validation.NewError("participatory.text.discard.container_required", "container_id is required")
	}
	if m.Actor == uuid.Nil {
		errs["actor"] = validation.NewError("participatory.text.discard.actor_required", "actor is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DiscardTextHandler discards drafts via the editor service using the shared
// command handler foundation.
type DiscardTextHandler struct {
	inner *commands.Handler[DiscardTextCommand]
}

// NewDiscardTextHandler constructs a handler wired to the provided editor service.
func NewDiscardTextHandler(service editor.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DiscardTextCommand]) *DiscardTextHandler {
	exec := func(ctx context.Context, msg DiscardTextCommand) error {
		_, err := service.Discard(ctx, msg.ContainerID)
		return err
	}

	handlerOpts := []commands.HandlerOption[DiscardTextCommand]{
		commands.WithLogger[DiscardTextCommand](logger),
		commands.WithOperation[DiscardTextCommand]("texts.discard"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DiscardTextHandler{
		inner: commands.NewHandler[DiscardTextCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DiscardTextCommand].Execute.
func (h *DiscardTextHandler) Execute(ctx context.Context, msg DiscardTextCommand) error {
	return h.inner.Execute(ctx, msg)
}
