package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"inventory-system/config"
)

// ValidateFile проверяет размер и тип загружаемого файла по правилам контекста из config.UploadContexts.
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("неизвестный контекст загрузки: %s", contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := rules.MaxSizeMB * 1024 * 1024
		if fileHeader.Size > maxSizeBytes {
			return fmt.Errorf("arquivo (%d KB) excede o limite de %d MB", fileHeader.Size/1024, rules.MaxSizeMB)
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if len(rules.AllowedExtensions) > 0 && !slices.Contains(rules.AllowedExtensions, ext) {
		return fmt.Errorf("extensão de arquivo não permitida: %s", ext)
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("не удалось прочитать файл для определения типа")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("не удалось сбросить указатель файла")
	}

	mimeType := http.DetectContentType(buffer[:n])
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}

	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return fmt.Errorf("tipo de arquivo não permitido: %s", mimeType)
	}
	return nil
}
