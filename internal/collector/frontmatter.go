package collector

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

// Known front-matter keys; everything else is preserved in Extra.
var knownKeys = map[string]struct{}{
	"id":          {},
	"title":       {},
	"description": {},
	"uplink":      {},
	"downlinks":   {},
	"entities":    {},
}

// splitFrontMatter separates the YAML header (between leading ---
// delimiters) from the document body. Invalid YAML falls back to an
// empty header with the whole content as body; a header problem is a
// rule-level finding, never a collection failure.
func splitFrontMatter(data []byte) (models.FrontMatter, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return models.FrontMatter{}, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; treat everything as body.
		return models.FrontMatter{}, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm models.FrontMatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return models.FrontMatter{}, string(data)
	}

	// Unknown keys go into the Extra side bag rather than being
	// silently dropped.
	var raw map[string]any
	if err := yaml.Unmarshal(yamlBlock, &raw); err == nil {
		for k := range raw {
			if _, ok := knownKeys[k]; ok {
				delete(raw, k)
			}
		}
		if len(raw) > 0 {
			fm.Extra = raw
		}
	}

	return fm, body
}
