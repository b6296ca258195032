package render

import (
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry stores renderers by name, providing discovery and duplication
// safeguards.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}

	r.renderers[name] = renderer
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[name]
	return ok
}

// Negotiate picks the renderer whose content type best matches an HTTP Accept
// header. Ties on quality keep header order; wildcards and unmatched headers
// return fallback.
func (r *Registry) Negotiate(accept, fallback string) (Renderer, error) {
	r.mu.RLock()
	byType := make(map[string]Renderer, len(r.renderers))
	for _, renderer := range r.renderers {
		mediaType, _, err := mime.ParseMediaType(renderer.ContentType())
		if err != nil {
			continue
		}
		if _, exists := byType[mediaType]; !exists || renderer.Name() == fallback {
			byType[mediaType] = renderer
		}
	}
	r.mu.RUnlock()

	for _, mediaType := range acceptedTypes(accept) {
		if renderer, ok := byType[mediaType]; ok {
			return renderer, nil
		}
	}
	return r.Get(fallback)
}

type acceptEntry struct {
	mediaType string
	quality   float64
	index     int
}

func acceptedTypes(header string) []string {
	var entries []acceptEntry
	for idx, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mediaType, params, err := mime.ParseMediaType(part)
		if err != nil || strings.Contains(mediaType, "*") {
			continue
		}
		quality := 1.0
		if raw, ok := params["q"]; ok {
			if q, err := strconv.ParseFloat(raw, 64); err == nil {
				quality = q
			}
		}
		if quality <= 0 {
			continue
		}
		entries = append(entries, acceptEntry{mediaType: mediaType, quality: quality, index: idx})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].quality != entries[j].quality {
			return entries[i].quality > entries[j].quality
		}
		return entries[i].index < entries[j].index
	})

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.mediaType)
	}
	return out
}
