package gate // import "github.com/joincivil/civil-content-gate/pkg/gate"

import (
	"github.com/joincivil/civil-content-gate/pkg/model"
)

const (
	// DefaultPreviewLength is the number of characters kept in a preview body
	DefaultPreviewLength = 140

	// TruncationMarker is appended to previews that were cut
	TruncationMarker = "…"
)

// PreviewText returns the first n characters of text, followed by the
// truncation marker if text was longer than n. Characters are runes, so a
// multi-byte character is never split.
func PreviewText(text string, n int) string {
	if n < 0 {
		n = 0
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i] + TruncationMarker
		}
		count++
	}
	return text
}

// Project returns the view of post allowed by access
func Project(access model.Access, post *model.Post, previewLength int) model.ProjectedPost {
	projected := model.ProjectedPost{
		ID:         post.ID(),
		CampaignID: post.CampaignID(),
		Title:      post.Title(),
		Author:     post.AuthorHex(),
		CreatedAt:  post.CreatedAt(),
		Access:     access,
	}
	if access == model.AccessFull {
		projected.Body = post.Body()
	} else {
		projected.BodyPreview = PreviewText(post.Body(), previewLength)
	}
	return projected
}

// ProjectAll projects every post, keeping their order
func ProjectAll(access model.Access, posts []*model.Post, previewLength int) []model.ProjectedPost {
	projected := make([]model.ProjectedPost, len(posts))
	for i, post := range posts {
		projected[i] = Project(access, post, previewLength)
	}
	return projected
}
