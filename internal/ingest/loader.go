package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
)

// Loader resolves one reference argument into a document
type Loader interface {
	// Name returns the loader name
	Name() string

	// CanHandle checks whether this loader recognizes the reference
	CanHandle(ref string) bool

	// Load resolves the reference into a document
	Load(ctx context.Context, ref string) (Document, error)
}

// Registry resolves reference arguments through the first loader that
// recognizes them, falling back to treating the argument as inline text
type Registry struct {
	loaders []Loader
	inline  Loader
}

// NewRegistry creates a registry with the built-in loaders. fetcher may be
// nil, in which case URL references fail.
func NewRegistry(fetcher *Fetcher) *Registry {
	r := &Registry{inline: &InlineLoader{}}
	r.Register(&URLLoader{fetcher: fetcher})
	r.Register(&FileLoader{})
	return r
}

// Register adds a loader, tried before the inline fallback
func (r *Registry) Register(loader Loader) {
	r.loaders = append(r.loaders, loader)
}

func (r *Registry) findLoader(ref string) Loader {
	for _, loader := range r.loaders {
		if loader.CanHandle(ref) {
			return loader
		}
	}
	return r.inline
}

// LoadAll resolves each reference in order. URL references are fetched
// together through FetchAll so the fetch concurrency bound applies across
// them.
func (r *Registry) LoadAll(ctx context.Context, refs []string) ([]Document, error) {
	docs := make([]Document, len(refs))

	var urls []string
	var urlIndices []int

	for i, ref := range refs {
		loader := r.findLoader(ref)
		if urlLoader, ok := loader.(*URLLoader); ok {
			if urlLoader.fetcher == nil {
				return nil, fmt.Errorf("no fetcher configured for URL reference %s", ref)
			}
			urls = append(urls, ref)
			urlIndices = append(urlIndices, i)
			continue
		}

		doc, err := loader.Load(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("load reference %d: %w", i, err)
		}
		docs[i] = doc
	}

	if len(urls) > 0 {
		fetched, err := r.urlLoader().fetcher.FetchAll(ctx, urls)
		if err != nil {
			return nil, err
		}
		for j, doc := range fetched {
			docs[urlIndices[j]] = doc
		}
	}

	return docs, nil
}

func (r *Registry) urlLoader() *URLLoader {
	for _, loader := range r.loaders {
		if urlLoader, ok := loader.(*URLLoader); ok {
			return urlLoader
		}
	}
	return nil
}

// URLLoader fetches http(s) references
type URLLoader struct {
	fetcher *Fetcher
}

// Name returns the loader name
func (l *URLLoader) Name() string {
	return "url"
}

// CanHandle reports whether ref is an http(s) URL
func (l *URLLoader) CanHandle(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load fetches the URL
func (l *URLLoader) Load(ctx context.Context, ref string) (Document, error) {
	if l.fetcher == nil {
		return Document{}, fmt.Errorf("no fetcher configured")
	}
	return l.fetcher.Fetch(ctx, ref)
}

// FileLoader reads local file references
type FileLoader struct{}

// Name returns the loader name
func (l *FileLoader) Name() string {
	return "file"
}

// CanHandle reports whether ref names an existing regular file
func (l *FileLoader) CanHandle(ref string) bool {
	info, err := os.Stat(ref)
	return err == nil && info.Mode().IsRegular()
}

// Load reads the file
func (l *FileLoader) Load(_ context.Context, ref string) (Document, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return Document{}, fmt.Errorf("read file: %w", err)
	}

	text := string(data)
	if strings.EqualFold(filepath.Ext(ref), ".html") || strings.EqualFold(filepath.Ext(ref), ".htm") {
		text, err = HTMLToText(text)
		if err != nil {
			return Document{}, fmt.Errorf("parse html: %w", err)
		}
	}

	return Document{
		Text:   text,
		Source: model.SourceMeta{Path: ref, Bytes: len(data)},
	}, nil
}

// InlineLoader treats the reference itself as document text
type InlineLoader struct{}

// Name returns the loader name
func (l *InlineLoader) Name() string {
	return "inline"
}

// CanHandle always succeeds; the inline loader is the fallback
func (l *InlineLoader) CanHandle(string) bool {
	return true
}

// Load wraps the text in a document
func (l *InlineLoader) Load(_ context.Context, ref string) (Document, error) {
	return Document{Text: ref, Source: model.SourceMeta{Bytes: len(ref)}}, nil
}
