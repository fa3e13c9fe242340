package render

import "github.com/olegiv/storyfront/internal/content"

// IndexPage is the data of the "index" page.
type IndexPage struct {
	Posts []content.PostSummary
}

// PostPage is the data of the "post" page.
type PostPage struct {
	Post *content.Post
	Form CommentForm
}

// CommentForm is the state of the comment form on a post page. State is one
// of "", "submitted" or "failed"; a submitted form shows the thank-you panel.
type CommentForm struct {
	PostID      string
	Action      string
	State       string
	Error       string
	FieldErrors map[string]string

	Name    string
	Email   string
	Comment string
}

// ErrorPage is the data of the "404" and "error" pages.
type ErrorPage struct {
	Status  int
	Message string
}
