package cms

import (
	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/action"
)

// gate decides whether viewer may read post. A gated post is returned as a
// copy without content together with the code the UI maps to a prompt.
func gate(post *PostBase, viewer Viewer) (*PostBase, string) {
	code := ""
	switch post.Visibility {
	case models.VisibilityLoggedIn:
		if !viewer.IsLoggedIn {
			code = action.CodeUnauthorized
		}
	case models.VisibilitySubscribers:
		if !viewer.IsLoggedIn {
			code = action.CodeUnauthorized
		} else if !viewer.IsSubscriber {
			code = action.CodeNotSubscriber
		}
	}
	if code == "" {
		return post, ""
	}
	return withoutContent(post), code
}

// isrCode is the restriction code a static render reports for a visibility.
func isrCode(visibility string) string {
	switch visibility {
	case models.VisibilityLoggedIn:
		return action.CodeUnauthorized
	case models.VisibilitySubscribers:
		return action.CodeNotSubscriber
	}
	return ""
}

func withoutContent(post *PostBase) *PostBase {
	blank := *post
	blank.Content = ""
	return &blank
}

func gatedResult(post *PostBase, code string) action.Result[*PostBase] {
	if code == action.CodeNotSubscriber {
		return action.Forbidden[*PostBase]("This content is available to subscribers only.").
			WithCode(code).WithData(post)
	}
	return action.Unauthorized[*PostBase]("Please log in to view this content.").WithData(post)
}
