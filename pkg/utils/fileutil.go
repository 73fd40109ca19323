package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateUploadKey builds the object-storage key for an uploaded
// original: <timestamp>-<random>.<ext>.
func GenerateUploadKey(filename string) string {
	ext := filepath.Ext(filename)
	random := uuid.New().String()[:8]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), random, ext)
}

// GenerateStorageKey builds a collision-free key for converted output,
// keeping the original base name recognizable.
func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filepath.Base(filename), ext)
	random := uuid.New().String()[:8]
	return fmt.Sprintf("converted/%s_%d_%s%s", name, time.Now().Unix(), random, ext)
}

// ReplaceExt swaps a file name's extension for the target format.
func ReplaceExt(filename, target string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return base + "." + target
}
