package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// MovementTypeSpec tipo de movimiento declarado en el catálogo.
type MovementTypeSpec struct {
	Name         string `mapstructure:"name"`
	Sign         int    `mapstructure:"sign"`
	AffectsStock *bool  `mapstructure:"affects_stock"` // nil = true
	Transfer     bool   `mapstructure:"transfer"`
}

// FacilitySpec planta declarada en el catálogo.
type FacilitySpec struct {
	ID                 string   `mapstructure:"id"`
	Name               string   `mapstructure:"name"`
	Aliases            []string `mapstructure:"aliases"`
	ReceivingWarehouse string   `mapstructure:"receiving_warehouse"`
}

// Catalog tipos de movimiento y plantas. Las listas vacías se sustituyen por los valores
// integrados del dominio.
type Catalog struct {
	MovementTypes    []MovementTypeSpec `mapstructure:"movement_types"`
	Facilities       []FacilitySpec     `mapstructure:"facilities"`
	AutoTransferType string             `mapstructure:"auto_transfer_type"`
}

// LoadCatalog lee el catálogo YAML de path. Path vacío devuelve un catálogo vacío.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer catálogo %s: %w", path, err)
	}
	var cat Catalog
	if err := v.Unmarshal(&cat); err != nil {
		return nil, fmt.Errorf("decodificar catálogo %s: %w", path, err)
	}
	for i, t := range cat.MovementTypes {
		if t.Name == "" {
			return nil, fmt.Errorf("catálogo: tipo de movimiento #%d sin nombre", i+1)
		}
	}
	for i, f := range cat.Facilities {
		if f.ID == "" {
			return nil, fmt.Errorf("catálogo: planta #%d sin id", i+1)
		}
	}
	return &cat, nil
}
