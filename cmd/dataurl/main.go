// Command dataurl writes the data URL the try-on form would send for each
// image in a directory, one <name>.txt per image.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tryon-web/internal/domain/valueobjects"
	"tryon-web/internal/logging"
)

var validExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func main() {
	inDir := pflag.String("in", "images", "directory of images to encode")
	outDir := pflag.String("out", "encoded", "directory to write data URLs to")
	pflag.Parse()

	logger, err := logging.NewLogger("info", true)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	written, err := encodeDir(*inDir, *outDir)
	if err != nil {
		logger.Fatal("encoding failed", zap.Error(err))
	}
	logger.Info("encoded images", zap.Int("count", written), zap.String("out", *outDir))
}

func encodeDir(inDir, outDir string) (int, error) {
	files, err := os.ReadDir(inDir)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if file.IsDir() || !slices.Contains(validExtensions, ext) {
			continue
		}

		dataURL, err := encodeFile(filepath.Join(inDir, file.Name()))
		if err != nil {
			return written, fmt.Errorf("%s: %w", file.Name(), err)
		}

		name := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())) + ".txt"
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(dataURL), 0o644); err != nil {
			return written, err
		}
		written++
	}

	return written, nil
}

func encodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	payload, err := valueobjects.NewImagePayload(data, "")
	if err != nil {
		return "", err
	}
	return payload.DataURL(), nil
}
