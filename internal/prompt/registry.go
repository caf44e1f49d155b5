package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/awickham/feedforge/internal/domain"
)

// ErrTemplateNotFound is returned when no template file exists for a name.
var ErrTemplateNotFound = errors.New("prompt template not found")

// Registry loads prompt templates from a directory and caches them by
// name. Each template is read from disk at most once until invalidated.
type Registry struct {
	dir string

	mu    sync.Mutex
	cache map[string]domain.PromptTemplate
}

// NewRegistry creates a registry rooted at dir.
func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:   dir,
		cache: make(map[string]domain.PromptTemplate),
	}
}

// Load returns the template for name, reading <dir>/<name>.json on first
// use.
func (r *Registry) Load(name string) (domain.PromptTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if template, ok := r.cache[name]; ok {
		return template, nil
	}

	path := filepath.Join(r.dir, filepath.Base(name)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PromptTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return domain.PromptTemplate{}, fmt.Errorf("failed to read template %s: %w", name, err)
	}

	var template domain.PromptTemplate
	if err := json.Unmarshal(data, &template); err != nil {
		return domain.PromptTemplate{}, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	if template.Name == "" {
		template.Name = name
	}

	r.cache[name] = template
	return template, nil
}

// Invalidate drops the cached copy of name so the next Load rereads it.
// An empty name drops the whole cache.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		r.cache = make(map[string]domain.PromptTemplate)
		return
	}
	delete(r.cache, name)
}
