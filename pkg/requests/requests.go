// Package requests loads named request templates (YAML/JSON) for the CLI.
package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/voter-science/trc-client/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

const defaultVerb = "GET"

// Definition is a single named request declared in a requests file.
type Definition struct {
	Name       string               `json:"name" yaml:"name"`
	Verb       string               `json:"verb" yaml:"verb"`
	Path       string               `json:"path" yaml:"path"`
	Body       any                  `json:"body" yaml:"body"`
	AuthHeader string               `json:"auth_header" yaml:"auth_header"`
	Geo        *httpclient.GeoPoint `json:"geo" yaml:"geo"`
}

type file struct {
	Requests []Definition `json:"requests" yaml:"requests"`
}

// Registry holds request definitions keyed by name.
type Registry struct {
	mu   sync.RWMutex
	defs []Definition
	idx  map[string]Definition
}

// Load reads the registry from a YAML or JSON file.
func Load(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("requests file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	parsed, err := parseFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Requests) == 0 {
		return nil, errors.New("requests file contains no requests entries")
	}

	reg := &Registry{
		defs: make([]Definition, len(parsed.Requests)),
		idx:  make(map[string]Definition, len(parsed.Requests)),
	}
	for i := range parsed.Requests {
		def := sanitize(parsed.Requests[i])
		if err := validate(def); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, exists := reg.idx[def.Name]; exists {
			return nil, fmt.Errorf("duplicate request name %q", def.Name)
		}
		reg.defs[i] = def
		reg.idx[def.Name] = def
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseFile(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out file
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}
	return file{}, errors.New("requests file format not recognized (expected YAML or JSON)")
}

func sanitize(def Definition) Definition {
	def.Name = strings.TrimSpace(def.Name)
	def.Verb = strings.ToUpper(strings.TrimSpace(def.Verb))
	if def.Verb == "" {
		def.Verb = defaultVerb
	}
	def.Path = strings.TrimSpace(def.Path)
	def.AuthHeader = strings.TrimSpace(def.AuthHeader)
	return def
}

func validate(def Definition) error {
	if def.Name == "" {
		return errors.New("name is required")
	}
	if def.Path == "" {
		return fmt.Errorf("path is required for request %q", def.Name)
	}
	if !strings.HasPrefix(def.Path, "/") {
		return fmt.Errorf("path for request %q must start with /", def.Name)
	}
	return nil
}

// ByName returns the definition registered under name.
func (r *Registry) ByName(name string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Definition{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.idx[name]
	return def, ok
}

// All returns all definitions in file order.
func (r *Registry) All() []Definition {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// ToRequest converts the definition into a client request. An empty
// auth header means no Authorization header at all.
func (d Definition) ToRequest() httpclient.Request {
	req := httpclient.Request{
		Verb: d.Verb,
		Path: d.Path,
		Body: d.Body,
	}
	if d.AuthHeader != "" {
		auth := d.AuthHeader
		req.AuthHeader = &auth
	}
	if d.Geo != nil {
		geo := *d.Geo
		req.Geo = &geo
	}
	return req
}
