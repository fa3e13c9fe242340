// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/storyfront/internal/content"
	"github.com/olegiv/storyfront/internal/testutil"
)

type knownPosts map[string]bool

func (k knownPosts) HasPostID(id string) bool { return k[id] }

func validInput() CommentInput {
	return CommentInput{
		PostID:  "p1",
		Name:    "Bob",
		Email:   "bob@example.com",
		Comment: "Loved it",
	}
}

func TestCommentService_Submit(t *testing.T) {
	store := testutil.NewFakeContent()
	svc := NewCommentService(store, knownPosts{"p1": true}, testutil.TestLoggerSilent())

	sub := svc.Submit(context.Background(), validInput())
	require.Equal(t, StateSubmitted, sub.State)
	require.NoError(t, sub.Err)
	assert.NotEmpty(t, sub.CommentID)

	comments := store.Comments()
	require.Len(t, comments, 1, "exactly one record is created")
	c := comments[0]
	assert.False(t, c.Approved)
	assert.Equal(t, "p1", c.Post.Ref)
	assert.Equal(t, "Bob", c.Name)
	assert.Equal(t, "bob@example.com", c.Email)
	assert.Equal(t, "Loved it", c.Comment)
}

func TestCommentService_SubmitStoreFailure(t *testing.T) {
	store := testutil.NewFakeContent()
	store.WriteErr = &content.WriteError{Op: "create_comment", StatusCode: 403}
	svc := NewCommentService(store, nil, testutil.TestLoggerSilent())

	sub := svc.Submit(context.Background(), validInput())
	assert.Equal(t, StateFailed, sub.State)
	assert.False(t, sub.Invalid())

	var we *content.WriteError
	assert.ErrorAs(t, sub.Err, &we)
	assert.Empty(t, store.Comments())
}

func TestCommentService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CommentInput)
		field  string
	}{
		{"missing post", func(in *CommentInput) { in.PostID = "" }, "_id"},
		{"unknown post", func(in *CommentInput) { in.PostID = "p9" }, "_id"},
		{"missing name", func(in *CommentInput) { in.Name = "  " }, "name"},
		{"markup-only name", func(in *CommentInput) { in.Name = "<b></b>" }, "name"},
		{"missing email", func(in *CommentInput) { in.Email = "" }, "email"},
		{"bad email", func(in *CommentInput) { in.Email = "not-an-email" }, "email"},
		{"missing comment", func(in *CommentInput) { in.Comment = "" }, "comment"},
		{"long comment", func(in *CommentInput) { in.Comment = strings.Repeat("x", 5001) }, "comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFakeContent()
			svc := NewCommentService(store, knownPosts{"p1": true}, testutil.TestLoggerSilent())

			in := validInput()
			tt.mutate(&in)
			sub := svc.Submit(context.Background(), in)

			require.Equal(t, StateFailed, sub.State)
			assert.True(t, sub.Invalid())
			assert.ErrorIs(t, sub.Err, ErrInvalidRequest)

			var ve *ValidationError
			require.ErrorAs(t, sub.Err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			assert.Empty(t, store.Comments(), "invalid input never reaches the store")
		})
	}
}

func TestCommentService_StripsMarkup(t *testing.T) {
	store := testutil.NewFakeContent()
	svc := NewCommentService(store, nil, testutil.TestLoggerSilent())

	in := validInput()
	in.Name = "  <i>Bob</i> & co "
	in.Comment = `<script>alert(1)</script>Nice <a href="x">post</a>, 1 < 2`

	sub := svc.Submit(context.Background(), in)
	require.Equal(t, StateSubmitted, sub.State)

	c := store.Comments()[0]
	assert.Equal(t, "Bob & co", c.Name)
	assert.Equal(t, "Nice post, 1 < 2", c.Comment)
}

func TestCommentService_StripsEncodedMarkup(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    string
	}{
		{"encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;Nice post", "Nice post"},
		{"encoded tag", "&lt;b&gt;bold&lt;/b&gt; claim", "bold claim"},
		{"double encoded", "&amp;lt;i&amp;gt;deep&amp;lt;/i&amp;gt;", "deep"},
		{"plain entities", "Tom &amp; Jerry", "Tom & Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFakeContent()
			svc := NewCommentService(store, nil, testutil.TestLoggerSilent())

			in := validInput()
			in.Comment = tt.comment
			sub := svc.Submit(context.Background(), in)
			require.Equal(t, StateSubmitted, sub.State)

			c := store.Comments()[0]
			assert.Equal(t, tt.want, c.Comment)
			assert.NotContains(t, c.Comment, "<")
		})
	}
}

func TestCommentService_EncodedScriptOnlyIsRejected(t *testing.T) {
	store := testutil.NewFakeContent()
	svc := NewCommentService(store, nil, testutil.TestLoggerSilent())

	in := validInput()
	in.Comment = "&lt;script&gt;alert(1)&lt;/script&gt;"
	sub := svc.Submit(context.Background(), in)

	assert.True(t, sub.Invalid())
	assert.Empty(t, store.Comments())
}

func TestCommentService_DuplicateSubmissionsAreSeparateRecords(t *testing.T) {
	store := testutil.NewFakeContent()
	svc := NewCommentService(store, nil, testutil.TestLoggerSilent())

	first := svc.Submit(context.Background(), validInput())
	second := svc.Submit(context.Background(), validInput())

	require.Equal(t, StateSubmitted, first.State)
	require.Equal(t, StateSubmitted, second.State)
	assert.NotEqual(t, first.CommentID, second.CommentID)
	assert.Len(t, store.Comments(), 2)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "email": "is invalid"}}
	assert.Equal(t, "invalid request: email: is invalid, name: is required", err.Error())
}
