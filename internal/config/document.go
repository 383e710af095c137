package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"autojobfinder/pkg/utils"
)

// RequiredSections are the top-level keys every configuration document must carry
var RequiredSections = []string{"search", "application", "platforms", "browser", "delays", "logging"}

// requiredFields lists the dotted keys that must be present, grouped by section
var requiredFields = []string{
	"search.keywords",
	"search.location",
	"search.experience_level",
	"search.job_type",
	"search.date_posted",
	"application.apply_active",
	"platforms.linkedin.enabled",
	"platforms.linkedin.search_limit",
	"platforms.indeed.enabled",
	"platforms.indeed.search_limit",
	"platforms.glassdoor.enabled",
	"platforms.glassdoor.search_limit",
	"browser.headless",
	"delays.min_delay",
	"delays.max_delay",
	"delays.page_load_timeout",
	"logging.file_path",
	"logging.level",
	"logging.max_file_size",
	"logging.backup_count",
}

// Document is the raw nested key-value configuration with dotted-path access
type Document struct {
	path string
	data map[string]interface{}
	mu   sync.RWMutex
}

// NewDocument wraps an in-memory mapping. A nil mapping yields an empty document.
func NewDocument(data map[string]interface{}) *Document {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Document{data: data}
}

// LoadDocument reads a YAML document from disk, expanding ${VAR} references
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewConfigError(fmt.Sprintf("configuration file not found: %s", path))
	}

	doc, err := ParseDocument([]byte(expandEnvVars(string(data))))
	if err != nil {
		return nil, err
	}
	doc.path = path
	return doc, nil
}

// ParseDocument parses YAML content into a Document
func ParseDocument(content []byte) (*Document, error) {
	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, utils.NewConfigError(fmt.Sprintf("error parsing configuration: %v", err))
	}
	return NewDocument(data), nil
}

// Path returns the file the document was loaded from, if any
func (d *Document) Path() string {
	return d.path
}

// Validate checks that every required section and field is present
func (d *Document) Validate() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, section := range RequiredSections {
		if _, ok := d.data[section]; !ok {
			return utils.NewValidationError(fmt.Sprintf("missing required configuration section: %s", section))
		}
	}

	for _, key := range requiredFields {
		if _, ok := lookup(d.data, key); !ok {
			return utils.NewValidationError(fmt.Sprintf("missing required configuration field: %s", key))
		}
	}

	return nil
}

// Get returns the value at a dotted key such as "search.keywords", or
// defaultValue when any segment of the path is absent.
func (d *Document) Get(key string, defaultValue interface{}) interface{} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if value, ok := lookup(d.data, key); ok {
		return value
	}
	return defaultValue
}

// Update sets the value at a dotted key, creating intermediate mappings
func (d *Document) Update(key string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	segments := strings.Split(key, ".")
	node := d.data
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

// Save writes the document back to the file it was loaded from
func (d *Document) Save() error {
	if d.path == "" {
		return utils.NewConfigError("document has no backing file")
	}
	return d.SaveTo(d.path)
}

// SaveTo writes the document as YAML to path
func (d *Document) SaveTo(path string) error {
	d.mu.RLock()
	content, err := yaml.Marshal(d.data)
	d.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to save configuration to %s: %w", path, err)
	}
	return nil
}

// decode converts the document into the typed Config
func (d *Document) decode(out *Config) error {
	d.mu.RLock()
	content, err := yaml.Marshal(d.data)
	d.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return utils.NewValidationError(err.Error())
	}
	return nil
}

func lookup(data map[string]interface{}, key string) (interface{}, bool) {
	var current interface{} = data
	for _, segment := range strings.Split(key, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
