package command

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidManifest = errors.New("invalid command manifest")
	ErrUnknownHandler  = errors.New("unknown command handler")
)

// Extensions lists the manifest file extensions the loader recognizes.
var Extensions = []string{".yaml", ".yml"}

// Manifest is the on-disk declaration of one command.
type Manifest struct {
	Name        string `yaml:"name"        validate:"required,max=32"`
	Description string `yaml:"description"`
	// Handler selects the compiled implementation from the catalog.
	Handler string `yaml:"handler" validate:"required"`
	// Text is handler-specific data, e.g. the answer of a "reply" command.
	Text      string `yaml:"text"`
	OwnerOnly bool   `yaml:"owner_only"`
}

// Factory builds a handler from its manifest.
type Factory func(m Manifest) (HandlerFunc, error)

// Catalog maps handler names to the factories that build them.
type Catalog map[string]Factory

// ParseManifest decodes and validates one manifest. The name is lowercased.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	m.Name = strings.ToLower(strings.TrimSpace(m.Name))
	m.Handler = strings.TrimSpace(m.Handler)

	if err := validator.New().Struct(m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if strings.IndexFunc(m.Name, unicode.IsSpace) >= 0 {
		return Manifest{}, fmt.Errorf("%w: name %q contains whitespace", ErrInvalidManifest, m.Name)
	}
	return m, nil
}

// Build resolves m against the catalog and returns the ready command.
func (c Catalog) Build(m Manifest) (Command, error) {
	factory, ok := c[m.Handler]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownHandler, m.Handler)
	}
	exec, err := factory(m)
	if err != nil {
		return Command{}, fmt.Errorf("failed to build handler %q: %w", m.Handler, err)
	}

	mws := []Middleware{Recover()}
	if m.OwnerOnly {
		mws = append(mws, OwnerOnly())
	}

	return Command{
		Name:        m.Name,
		Description: m.Description,
		Handler:     m.Handler,
		OwnerOnly:   m.OwnerOnly,
		Execute:     Chain(exec, mws...),
	}, nil
}

// Load builds a registry from the manifests in dir. A missing directory yields an
// empty registry. Files are read in lexical order; when two manifests declare the
// same name the later file wins and a warning is logged.
func Load(dir string, catalog Catalog, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "command_registry")
	reg := NewRegistry()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("Commands directory not found, no commands loaded", "dir", dir)
			return reg, nil
		}
		return nil, fmt.Errorf("failed to read commands directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !hasManifestExt(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		cmd, err := loadFile(path, catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load command %s: %w", path, err)
		}
		if prev, replaced := reg.Register(cmd); replaced {
			log.Warn("Duplicate command name, later manifest wins",
				"command", cmd.Name, "previous", prev.Source, "current", cmd.Source)
		}
		log.Debug("Loaded command", "command", cmd.Name, "handler", cmd.Handler, "path", path)
	}

	log.Info("Commands loaded", "dir", dir, "count", reg.Len())
	return reg, nil
}

func loadFile(path string, catalog Catalog) (Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return Command{}, err
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return Command{}, err
	}
	cmd, err := catalog.Build(m)
	if err != nil {
		return Command{}, err
	}
	cmd.Source = path
	return cmd, nil
}

func hasManifestExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
