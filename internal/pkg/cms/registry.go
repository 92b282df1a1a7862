package cms

import (
	"fmt"

	"github.com/clawsite/clawsite/app/models"
)

// Registry holds one Module per post type.
type Registry struct {
	modules map[string]*Module
}

func NewRegistry(deps Deps) (*Registry, error) {
	r := &Registry{modules: map[string]*Module{}}
	for _, postType := range []string{models.PostTypeBlog, models.PostTypeGlossary, models.PostTypeDoc} {
		m, err := NewModule(postType, deps)
		if err != nil {
			return nil, err
		}
		r.modules[postType] = m
	}
	return r, nil
}

func (r *Registry) Get(postType string) (*Module, error) {
	m, ok := r.modules[postType]
	if !ok {
		return nil, fmt.Errorf("unknown post type %q", postType)
	}
	return m, nil
}
