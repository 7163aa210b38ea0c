package view

import (
	"maps"
	"sync"
)

// Form holds the comment form's field values.
type Form struct {
	mu     sync.Mutex
	fields map[string]string
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{fields: map[string]string{}}
}

// Set sets a field value.
func (f *Form) Set(name, value string) {
	f.mu.Lock()
	f.fields[name] = value
	f.mu.Unlock()
}

// Get returns a field value.
func (f *Form) Get(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields[name]
}

// Values returns a copy of all fields.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.fields)
}

// Reset clears every field.
func (f *Form) Reset() {
	f.mu.Lock()
	clear(f.fields)
	f.mu.Unlock()
}
