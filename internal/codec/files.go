package codec

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/planforge/planforge/internal/component"
)

// ExportFile writes the serialized component to dir and returns the path.
// The filename is derived from the document name and timestamp; compress
// switches to gzip output.
func ExportFile(dir, name string, c component.Component, compress bool, at time.Time) (string, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '/', '\\':
			return '_'
		}
		return r
	}, name)
	if clean == "" {
		clean = "component"
	}
	timestamp := at.Format("20060102_150405")

	var filename string
	if compress {
		filename = fmt.Sprintf("%s_%s.json.gz", clean, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", clean, timestamp)
	}
	outputPath := filepath.Join(dir, filename)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if compress {
		zw := gzip.NewWriter(f)
		defer zw.Close()
		if err := json.NewEncoder(zw).Encode(c); err != nil {
			return "", err
		}
		return outputPath, nil
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		return "", err
	}
	return outputPath, nil
}

// ImportFile reads a serialized component from disk. Unreadable payloads
// fail with ErrUnreadableFormat carrying the file name.
func ImportFile(path string) (component.Component, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ReadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// ImportReader reads a serialized component from an uploaded stream. The
// name only labels errors.
func ImportReader(r io.Reader, name string) (component.Component, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	c, err := ReadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", filepath.Base(name), err)
	}
	return c, nil
}
