package identity

import (
	"context"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
)

var _ ports.Directory = (*StaticDirectory)(nil)

// StaticDirectory directorio de aprobadores y revisor leído de configuración.
type StaticDirectory struct {
	approvers []string
	reviewer  string
}

// NewStaticDirectory construye el directorio; se descartan ids vacíos y repetidos.
func NewStaticDirectory(approvers []string, reviewer string) *StaticDirectory {
	seen := make(map[string]struct{}, len(approvers))
	out := make([]string, 0, len(approvers))
	for _, id := range approvers {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return &StaticDirectory{approvers: out, reviewer: reviewer}
}

func (d *StaticDirectory) Approvers(context.Context) ([]string, error) {
	return append([]string(nil), d.approvers...), nil
}

func (d *StaticDirectory) Reviewer(context.Context) (string, error) {
	return d.reviewer, nil
}
