package progression

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
)

//go:embed badges.yaml
var catalogYAML []byte

type catalogFile struct {
	Badges []models.Badge `yaml:"badges"`
}

// ParseCatalog decodes and validates a badge catalog document.
func ParseCatalog(data []byte) ([]models.Badge, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse badge catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Badges))
	for _, b := range file.Badges {
		if b.ID == "" {
			return nil, fmt.Errorf("badge catalog: badge without id")
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("badge catalog: duplicate id %s", b.ID)
		}
		seen[b.ID] = true
		if b.Target <= 0 {
			return nil, fmt.Errorf("badge catalog: badge %s target must be positive", b.ID)
		}
		if _, err := RuleFor(b); err != nil {
			return nil, fmt.Errorf("badge catalog: %w", err)
		}
	}
	return file.Badges, nil
}

// Catalog returns the badge catalog embedded in the binary.
func Catalog() ([]models.Badge, error) {
	return ParseCatalog(catalogYAML)
}

// SyncCatalog writes the embedded catalog into the store's badges table.
func SyncCatalog(ctx context.Context, store storage.Provider) (int, error) {
	badges, err := Catalog()
	if err != nil {
		return 0, err
	}
	for _, b := range badges {
		if err := store.SaveBadge(ctx, b); err != nil {
			return 0, err
		}
	}
	return len(badges), nil
}
