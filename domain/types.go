// Package domain re-exports the node enums for hosts that want to reference
// levels and statuses (in their own models or wire formats) without importing
// the full participatory module.
package domain

import internaldomain "github.com/goliatone/go-participatory/internal/domain"

// Status represents lifecycle states for participatory text nodes.
type Status = internaldomain.Status

const (
	// StatusDraft indicates nodes still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPublished identifies nodes available to participants.
	StatusPublished = internaldomain.StatusPublished
)

// Level identifies the structural role of a node within the document.
type Level = internaldomain.Level

const (
	// LevelSection maps to a top level heading in the source document.
	LevelSection = internaldomain.LevelSection
	// LevelSubSection maps to any nested heading in the source document.
	LevelSubSection = internaldomain.LevelSubSection
	// LevelArticle maps to a paragraph of body text, labelled sequentially.
	LevelArticle = internaldomain.LevelArticle
)
