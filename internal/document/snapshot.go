package document

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatter is the YAML header carried by every snapshot so a State can be
// reconstructed from disk alone.
type frontMatter struct {
	Version      int      `yaml:"version"`
	Topics       []string `yaml:"topics"`
	Sources      []string `yaml:"sources,omitempty"`
	LastModified string   `yaml:"last_modified"`
}

// renderSnapshot serializes front matter plus a markdown body.
func renderSnapshot(fm frontMatter, body string) (string, error) {
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(head)
	sb.WriteString("---\n\n")
	sb.WriteString(body)
	return sb.String(), nil
}

// parseSnapshot restores a State from a snapshot file's bytes.
func parseSnapshot(data []byte) (State, error) {
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return State{}, fmt.Errorf("snapshot missing front matter")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return State{}, fmt.Errorf("snapshot front matter not terminated")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return State{}, fmt.Errorf("parse front matter: %w", err)
	}

	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")

	state := State{
		Content: body,
		Topics:  fm.Topics,
		Version: fm.Version,
		Sources: fm.Sources,
		Metadata: map[string]string{
			"last_modified": fm.LastModified,
		},
	}
	return state, nil
}

// Slugify converts a topic into a filename-safe lowercase token.
func Slugify(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range topic {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.Trim(sb.String(), "_")
	if slug == "" {
		return "none"
	}
	if len(slug) > 48 {
		slug = strings.Trim(slug[:48], "_")
	}
	return slug
}

// snapshotSeq extracts the leading sequence number from a snapshot filename.
func snapshotSeq(name string) (int, bool) {
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:idx])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// snapshotStage extracts the stage token that follows the sequence number.
// Stage names may themselves contain underscores, so known stages are matched
// longest-first.
func snapshotStage(name string) (Stage, bool) {
	idx := strings.Index(name, "_")
	if idx < 0 || idx+1 >= len(name) {
		return "", false
	}
	rest := name[idx+1:]
	for _, stage := range []Stage{
		StageInitialResearch,
		StageEditorDraft,
		StageJudgeReview,
		StageExpansion,
	} {
		if strings.HasPrefix(rest, string(stage)+"_") {
			return stage, true
		}
	}
	return "", false
}

// parseSources collects the URLs named on attribution lines. The aggregator
// writes one "Source: {url}" line per research block, which makes the
// contributing URL set recoverable from content alone.
func parseSources(content string) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		url, ok := strings.CutPrefix(line, "Source: ")
		if !ok {
			continue
		}
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls
}

// unionSources merges added into existing, preserving first-seen order and
// never dropping a previously present URL.
func unionSources(existing, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, url := range existing {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		merged = append(merged, url)
	}
	for _, url := range added {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		merged = append(merged, url)
	}
	return merged
}
