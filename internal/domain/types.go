package domain

// Status represents lifecycle states for participatory text nodes
type Status string

const (
	// StatusDraft indicates nodes still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies nodes available to participants
	StatusPublished Status = "published"
)

// Level identifies the structural role of a node within the document.
// Sections and sub sections come from headings; articles carry body text.
type Level string

const (
	// LevelSection maps to a top level heading in the source document
	LevelSection Level = "section"
	// LevelSubSection maps to any nested heading in the source document
	LevelSubSection Level = "sub_section"
	// LevelArticle maps to a paragraph of body text, labelled sequentially
	LevelArticle Level = "article"
)

// Valid reports whether the level is one of the known variants.
func (l Level) Valid() bool {
	switch l {
	case LevelSection, LevelSubSection, LevelArticle:
		return true
	}
	return false
}

// HasBody reports whether nodes of this level carry editable body text.
func (l Level) HasBody() bool {
	return l == LevelArticle
}
