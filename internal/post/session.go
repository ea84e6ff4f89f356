// Package post implements the conversational post composition flow: the
// per-user session store, the dialogue state machine, the category router
// and the publisher fan-out.
package post

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Step identifies the current stage of a post composition session.
type Step int

const (
	// StepTopic waits for the post topic.
	StepTopic Step = iota
	// StepDescription waits for the post description.
	StepDescription
	// StepLink waits for an optional link.
	StepLink
	// StepCategory waits for a category reaction on the prompt message.
	StepCategory
)

// String returns the step name for logs.
func (s Step) String() string {
	switch s {
	case StepTopic:
		return "topic"
	case StepDescription:
		return "description"
	case StepLink:
		return "link"
	case StepCategory:
		return "category"
	}
	return "unknown"
}

var (
	// ErrSessionActive is returned when a user already has an open session.
	ErrSessionActive = errors.New("post: session already active")
	// ErrInvalidCategory is returned for a tag outside the fixed category set.
	ErrInvalidCategory = errors.New("post: invalid category")
	// ErrUnknownChannel is returned when a channel ID cannot be resolved.
	ErrUnknownChannel = errors.New("post: unknown channel")
)

// Draft accumulates the collected post fields.
type Draft struct {
	Topic       string
	Description string
	Link        string
	Tag         string
}

// Session tracks one user's composition progress. A user has at most one.
type Session struct {
	UserID        string
	ID            uuid.UUID
	Step          Step
	ChannelID     string
	AuthorMention string
	Draft         Draft
	// PromptMessageID is set once the category prompt has been sent.
	PromptMessageID string
	StartedAt       time.Time
}
