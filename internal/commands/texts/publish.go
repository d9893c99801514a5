package textscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/commands"
	"github.com/goliatone/go-participatory/internal/editor"
	"github.com/goliatone/go-participatory/internal/publisher"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

const publishTextMessageType = "participatory.text.publish"

// PublishTextCommand requests the all-or-nothing publication of a container's
// draft nodes, applying the supplied edits first.
type PublishTextCommand struct {
	ContainerID uuid.UUID         `json:"container_id"`
	Actor       uuid.UUID         `json:"actor"`
	Edits       []editor.NodeEdit `json:"edits,omitempty"`
}

// Type implements command.Message.
func (PublishTextCommand) Type() string { return publishTextMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m PublishTextCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContainerID == uuid.Nil {
		errs["container_id"] = validation.NewError("participatory.text.publish.container_required", "container_id is required")
	}
	if m.Actor == uuid.Nil {
		errs["actor"] = validation.NewError("participatory.text.publish.actor_required", "actor is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishTextHandler publishes texts via the coordinator using the shared
// command handler foundation.
type PublishTextHandler struct {
	inner *commands.Handler[PublishTextCommand]
}

// NewPublishTextHandler constructs a handler wired to the provided coordinator.
func NewPublishTextHandler(coordinator publisher.Coordinator, logger interfaces.Logger, opts ...commands.HandlerOption[PublishTextCommand]) *PublishTextHandler {
	exec := func(ctx context.Context, msg PublishTextCommand) error {
		_, err := coordinator.Publish(ctx, publisher.PublishRequest{
			ContainerID: msg.ContainerID,
			Actor:       msg.Actor,
			Edits:       msg.Edits,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishTextCommand]{
		commands.WithLogger[PublishTextCommand](logger),
		commands.WithOperation[PublishTextCommand]("texts.publish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishTextHandler{
		inner: commands.NewHandler[PublishTextCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishTextCommand].Execute.
func (h *PublishTextHandler) Execute(ctx context.Context, msg PublishTextCommand) error {
	return h.inner.Execute(ctx, msg)
}
