package lesson

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// maxParallelReads bounds ReadAll's concurrency.
const maxParallelReads = 8

// Parse decodes one lesson, or a list of lessons, from data.
func Parse(data []byte) ([]*Lesson, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse lesson: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var lessons []*Lesson
		if err := doc.Decode(&lessons); err != nil {
			return nil, fmt.Errorf("decode lessons: %w", err)
		}
		return lessons, nil
	}

	var l Lesson
	if err := doc.Decode(&l); err != nil {
		return nil, fmt.Errorf("decode lesson: %w", err)
	}
	return []*Lesson{&l}, nil
}

// Read reads every lesson in the file at path.
func Read(path string) ([]*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lessons, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lessons, nil
}

// ReadAll reads the files concurrently. Results keep the order of paths; the
// first error cancels the remaining reads.
func ReadAll(ctx context.Context, paths []string) ([][]*Lesson, error) {
	results := make([][]*Lesson, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lessons, err := Read(p)
			if err != nil {
				return err
			}
			results[i] = lessons
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Marshal encodes a lesson as YAML.
func Marshal(l *Lesson) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encode lesson: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode lesson: %w", err)
	}
	return buf.Bytes(), nil
}

// Write writes a lesson to a YAML file.
func Write(l *Lesson, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
