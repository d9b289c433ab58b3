package slots

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/osse101/reelfaucet/internal/domain"
)

// CatalogFile is the on-disk catalog format
type CatalogFile struct {
	Symbols []domain.Symbol `json:"symbols"`
	Payouts []PayoutEntry   `json:"payouts"`
}

// LoadCatalog reads and validates a catalog JSON file
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var file CatalogFile
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	return NewCatalog(file.Symbols, file.Payouts)
}
