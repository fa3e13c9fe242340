// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// CreateComment stores a new comment against a post. Comments are always
// created unapproved; moderation happens in the store's own studio.
// It returns the id of the new document.
func (c *Client) CreateComment(ctx context.Context, in NewComment) (string, error) {
	if in.PostID == "" {
		return "", &WriteError{Op: "create_comment", Err: errors.New("post id is required")}
	}

	id := uuid.NewString()
	doc := map[string]any{
		"_id":   id,
		"_type": "comment",
		"post": Reference{
			Type: "reference",
			Ref:  in.PostID,
		},
		"name":     in.Name,
		"email":    in.Email,
		"comment":  in.Comment,
		"approved": false,
	}

	ids, err := c.mutate(ctx, "create_comment", []map[string]any{{"create": doc}})
	if err != nil {
		return "", err
	}
	if len(ids) > 0 && ids[0] != "" {
		return ids[0], nil
	}
	return id, nil
}
