package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// sectionDecoder decodes one top-level YAML section into a fresh value and
// installs it on the target, replacing what was there.
type sectionDecoder func(target *Config, node *yaml.Node) error

// replaceWith returns a sectionDecoder for a section of type S. Decoding into
// a zero S matters for map sections, which yaml.v3 would otherwise merge into.
func replaceWith[S any](set func(*Config, S)) sectionDecoder {
	return func(target *Config, node *yaml.Node) error {
		var v S
		if err := node.Decode(&v); err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// sections maps the top-level keys of a config file to their decoders. Keys
// missing here are ignored.
//
//nolint:gochecknoglobals // Fixed lookup table.
var sections = map[string]sectionDecoder{
	"paginator": replaceWith(func(c *Config, v PaginatorConfig) { c.Paginator = v }),
	"sources":   replaceWith(func(c *Config, v map[string]SourceConfig) { c.Sources = v }),
	"logging":   replaceWith(func(c *Config, v LoggingConfig) { c.Logging = v }),
	"output":    replaceWith(func(c *Config, v OutputConfig) { c.Output = v }),
	"serve":     replaceWith(func(c *Config, v ServeConfig) { c.Serve = v }),
}

// ShallowMergeYAML applies the YAML file at overlayPath to target. Every
// top-level section present in the file replaces the whole section in
// target; absent sections are left alone.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var doc yaml.Node
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}
	// Empty or comment-only files decode to an empty document.
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing overlay YAML from %s: top level must be a mapping", overlayPath)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		decode, ok := sections[key]
		if !ok {
			continue
		}
		if err = decode(target, value); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}
