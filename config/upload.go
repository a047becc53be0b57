package config

type UploadConfig struct {
	AllowedMimeTypes  []string
	AllowedExtensions []string
	MaxSizeMB         int64
	PathPrefix        string
}

// xlsx определяется DetectContentType как zip.
var UploadContexts = map[string]UploadConfig{
	"inventory_source": {
		AllowedMimeTypes:  []string{"text/plain", "text/csv", "application/zip", "application/octet-stream"},
		AllowedExtensions: []string{".csv", ".txt", ".xlsx"},
		MaxSizeMB:         50,
		PathPrefix:        "imports/equipment",
	},
	"license_source": {
		AllowedMimeTypes:  []string{"text/plain", "text/csv", "application/octet-stream"},
		AllowedExtensions: []string{".csv", ".txt"},
		MaxSizeMB:         10,
		PathPrefix:        "imports/licenses",
	},
	"profile_photo": {
		AllowedMimeTypes:  []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		MaxSizeMB:         5,
		PathPrefix:        "avatars",
	},
}
