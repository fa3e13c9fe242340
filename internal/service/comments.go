// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/storyfront/internal/content"
	"github.com/olegiv/storyfront/internal/metrics"
)

// SubmissionState is the outcome of one comment submission. A submission is
// pending while Submit runs and always leaves it submitted or failed.
type SubmissionState string

const (
	StateSubmitted SubmissionState = "submitted"
	StateFailed    SubmissionState = "failed"
)

// CommentInput is a reader's comment as received from the form or the API.
type CommentInput struct {
	PostID  string `json:"_id" validate:"required,max=128"`
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Comment string `json:"comment" validate:"required,max=5000"`
}

// Submission is the outcome of CommentService.Submit. Err is set when the
// state is failed; it is a ValidationError for rejected input and the store's
// error otherwise.
type Submission struct {
	State     SubmissionState
	CommentID string
	Err       error
}

// Invalid reports whether the submission failed validation.
func (s Submission) Invalid() bool {
	return s.State == StateFailed && errors.Is(s.Err, ErrInvalidRequest)
}

// PostLookup tells whether a post id is published.
type PostLookup interface {
	HasPostID(id string) bool
}

// CommentService accepts reader comments for moderation.
type CommentService struct {
	content  ContentStore
	posts    PostLookup
	validate *validator.Validate
	policy   *bluemonday.Policy
	logger   *slog.Logger
}

// NewCommentService creates a CommentService. posts may be nil to accept
// comments for any post id.
func NewCommentService(store ContentStore, posts PostLookup, logger *slog.Logger) *CommentService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &CommentService{
		content:  store,
		posts:    posts,
		validate: v,
		policy:   bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

// Submit validates and stores one comment. The comment is created unapproved.
// There is no idempotency key: resubmitting after a failure the store actually
// applied creates a second comment.
func (s *CommentService) Submit(ctx context.Context, in CommentInput) Submission {
	var sub Submission

	in = s.clean(in)
	if err := s.check(in); err != nil {
		sub.State, sub.Err = StateFailed, err
		metrics.CommentSubmissions.WithLabelValues("invalid").Inc()
		s.logger.Info("comment rejected", "post_id", in.PostID, "error", err)
		return sub
	}

	id, err := s.content.CreateComment(ctx, content.NewComment{
		PostID:  in.PostID,
		Name:    in.Name,
		Email:   in.Email,
		Comment: in.Comment,
	})
	if err != nil {
		sub.State, sub.Err = StateFailed, err
		metrics.CommentSubmissions.WithLabelValues(string(StateFailed)).Inc()
		s.logger.Error("failed to create comment", "post_id", in.PostID, "error", err)
		return sub
	}

	sub.State, sub.CommentID = StateSubmitted, id
	metrics.CommentSubmissions.WithLabelValues(string(StateSubmitted)).Inc()
	s.logger.Info("comment submitted for moderation", "post_id", in.PostID, "comment_id", id)
	return sub
}

// maxStripPasses bounds how many layers of entity encoding are unwrapped.
const maxStripPasses = 4

// clean trims every field and strips markup from the free-text ones.
func (s *CommentService) clean(in CommentInput) CommentInput {
	return CommentInput{
		PostID:  strings.TrimSpace(in.PostID),
		Name:    s.stripMarkup(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Comment: s.stripMarkup(in.Comment),
	}
}

// stripMarkup removes tags and stores plain text. Unescaping can turn
// "&lt;b&gt;" into a new tag, so sanitising repeats until the text is stable.
// Input that keeps decoding into markup is kept entity-encoded.
func (s *CommentService) stripMarkup(v string) string {
	for range maxStripPasses {
		next := html.UnescapeString(s.policy.Sanitize(v))
		if next == v {
			return strings.TrimSpace(v)
		}
		v = next
	}
	return strings.TrimSpace(s.policy.Sanitize(v))
}

func (s *CommentService) check(in CommentInput) error {
	fields := map[string]string{}

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = describeRule(fe)
		}
	}

	if _, bad := fields["_id"]; !bad && s.posts != nil && !s.posts.HasPostID(in.PostID) {
		fields["_id"] = "unknown post"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
