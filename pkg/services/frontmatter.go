package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"umbraco-cms/pkg/models"
)

// Front matter keys Hugo reads for scheduling.
const (
	ReleaseDateKey = "publishDate"
	RemoveDateKey  = "expiryDate"
	DraftKey       = "draft"
	KeyKey         = "key"
	IDKey          = "id"
)

func ParseFrontMatter(content []byte) (map[string]interface{}, string, string, error) {
	str := normalizeLineEndings(string(content))

	for _, d := range []struct{ delim, format string }{{"---", "yaml"}, {"+++", "toml"}} {
		if !strings.HasPrefix(str, d.delim+"\n") {
			continue
		}
		rest := str[len(d.delim)+1:]
		var head, body string
		if strings.HasPrefix(rest, d.delim) {
			body = rest[len(d.delim):]
		} else if end := strings.Index(rest, "\n"+d.delim); end >= 0 {
			head = rest[:end+1]
			body = rest[end+1+len(d.delim):]
		} else {
			continue
		}

		fm := map[string]interface{}{}
		var err error
		if d.format == "yaml" {
			err = yaml.Unmarshal([]byte(head), &fm)
		} else {
			err = toml.Unmarshal([]byte(head), &fm)
		}
		if err != nil {
			return nil, "", "", fmt.Errorf("parsing %s front matter: %w", d.format, err)
		}
		if fm == nil {
			fm = map[string]interface{}{}
		}
		return fm, strings.TrimSpace(body), d.format, nil
	}

	if strings.HasPrefix(strings.TrimSpace(str), "{") {
		var fm map[string]interface{}
		if err := json.Unmarshal(content, &fm); err == nil {
			return fm, "", "json", nil
		}
	}

	return nil, "", "", fmt.Errorf("unknown format")
}

func ConstructFileContent(fm map[string]interface{}, body string, format string) ([]byte, error) {
	normalizedFM := sanitizeFrontMatter(fm)
	if normalizedFM == nil {
		normalizedFM = map[string]interface{}{}
	}

	var buf bytes.Buffer
	switch format {
	case "yaml":
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	case "toml":
		buf.WriteString("+++\n")
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		buf.WriteString("+++\n")
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// GenerateContentFromCollection builds a new variant file from the
// collection's field defaults, letting overrides win.
func GenerateContentFromCollection(collection models.Collection, overrides map[string]interface{}) ([]byte, error) {
	fm := make(map[string]interface{})
	var bodyContent string

	for _, field := range collection.Fields {
		if val, ok := overrides[field.Name]; ok {
			if field.Name == "body" {
				if strVal, ok := val.(string); ok {
					bodyContent = strVal
				}
				continue
			}
			fm[field.Name] = val
			continue
		}

		if field.Name == "body" {
			if val, ok := field.Default.(string); ok {
				bodyContent = val
			}
			continue
		}

		if field.Default != nil {
			fm[field.Name] = field.Default
		} else {
			switch field.Widget {
			case "datetime":
				fm[field.Name] = time.Now().Format(time.RFC3339)
			case "boolean":
				fm[field.Name] = false
			case "list":
				fm[field.Name] = []string{}
			default:
				fm[field.Name] = ""
			}
		}
	}
	for k, v := range overrides {
		if _, ok := fm[k]; !ok && k != "body" {
			fm[k] = v
		}
	}

	return ConstructFileContent(fm, bodyContent, "toml")
}

func sanitizeFrontMatter(fm map[string]interface{}) map[string]interface{} {
	if fm == nil {
		return nil
	}
	sanitized := make(map[string]interface{}, len(fm))
	for k, v := range fm {
		sanitized[k] = sanitizeFrontMatterValue(v)
	}
	return sanitized
}

func sanitizeFrontMatterValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return sanitizeFrontMatter(v)
	case map[interface{}]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, inner := range v {
			normalized[fmt.Sprint(key)] = sanitizeFrontMatterValue(inner)
		}
		return normalized
	case []interface{}:
		slice := make([]interface{}, len(v))
		for i := range v {
			slice[i] = sanitizeFrontMatterValue(v[i])
		}
		return slice
	default:
		return v
	}
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}

var frontMatterTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// frontMatterTime reads a date value written by YAML, TOML or JSON front
// matter. Values without a zone are taken to be in loc.
func frontMatterTime(fm map[string]interface{}, key string, loc *time.Location) (*time.Time, error) {
	raw, ok := fm[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var t time.Time
	switch v := raw.(type) {
	case time.Time:
		t = v
	case toml.LocalDateTime:
		t = v.AsTime(loc)
	case toml.LocalDate:
		t = v.AsTime(loc)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parsed, err := parseFrontMatterTimeString(strings.TrimSpace(v), loc)
		if err != nil {
			return nil, fmt.Errorf("front matter %s: %w", key, err)
		}
		t = parsed
	default:
		return nil, fmt.Errorf("front matter %s: unsupported date value %T", key, raw)
	}
	t = t.In(loc)
	return &t, nil
}

func parseFrontMatterTimeString(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range frontMatterTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// setFrontMatterTime stores t as an RFC 3339 string, or removes the key when t is nil.
func setFrontMatterTime(fm map[string]interface{}, key string, t *time.Time) {
	if t == nil {
		delete(fm, key)
		return
	}
	fm[key] = t.Format(time.RFC3339)
}

func frontMatterString(fm map[string]interface{}, key string) string {
	if v, ok := fm[key].(string); ok {
		return v
	}
	return ""
}

func frontMatterBool(fm map[string]interface{}, key string) bool {
	switch v := fm[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}
