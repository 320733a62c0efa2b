package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Facility identifica uno de los dos contextos de inventario semi-independientes.
type Facility string

const (
	FacilityCanet  Facility = "canet"
	FacilityHuarte Facility = "huarte"
)

// Facilities devuelve las plantas conocidas en orden estable.
func Facilities() []Facility {
	return []Facility{FacilityCanet, FacilityHuarte}
}

// ParseFacility normaliza el identificador recibido (ej. "Canet", "HUARTE").
func ParseFacility(s string) (Facility, bool) {
	f := Facility(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FacilityCanet, FacilityHuarte:
		return f, true
	}
	return "", false
}

// Counterpart devuelve la otra planta.
func (f Facility) Counterpart() Facility {
	if f == FacilityCanet {
		return FacilityHuarte
	}
	return FacilityCanet
}

// Origen de un movimiento. Solo manual y edited son editables por usuarios.
type MovementSource string

const (
	SourceManual         MovementSource = "manual"
	SourceEdited         MovementSource = "edited"
	SourceMirror         MovementSource = "mirror"
	SourceAutoTransferIn MovementSource = "auto-transfer-in"
)

// IsDerived informa si el origen corresponde a una fila generada por la sincronización.
func (s MovementSource) IsDerived() bool {
	return s == SourceMirror || s == SourceAutoTransferIn
}

// DateLayout formato de fecha de los movimientos en el documento.
const DateLayout = "2006-01-02"

// legacyDateLayouts formatos aceptados de datos antiguos.
var legacyDateLayouts = []string{DateLayout, "02/01/2006", "2/1/2006", time.RFC3339}

// Movement es un asiento del libro de existencias de una planta.
// SignedQuantity = Quantity * Sign; Quantity nunca es negativa.
type Movement struct {
	ID                 int64           `json:"id"`
	Facility           Facility        `json:"facility"`
	Date               string          `json:"date"`
	MovementType       string          `json:"movement_type"`
	Product            string          `json:"product"`
	Lot                string          `json:"lot"`
	Warehouse          string          `json:"warehouse"`
	Quantity           decimal.Decimal `json:"quantity"`
	Sign               int             `json:"sign"`
	SignedQuantity     decimal.Decimal `json:"signed_quantity"`
	CounterpartyClient string          `json:"counterparty_client,omitempty"`
	Destination        string          `json:"destination,omitempty"`
	DocumentRef        string          `json:"document_ref,omitempty"`
	Note               string          `json:"note,omitempty"`
	Source             MovementSource  `json:"source"`
	OriginID           *int64          `json:"origin_id,omitempty"`
	NeedsReview        bool            `json:"needs_review,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	UpdatedBy          string          `json:"updated_by"`
}

// ApplySign fija el signo y recalcula la cantidad con signo.
func (m *Movement) ApplySign(sign int) {
	if sign < 0 {
		m.Sign = -1
	} else {
		m.Sign = 1
	}
	m.SignedQuantity = m.Quantity.Mul(decimal.NewFromInt(int64(m.Sign)))
}

// Day interpreta la fecha del movimiento. ok=false para filas sin fecha válida (saldo inicial).
func (m Movement) Day() (time.Time, bool) {
	return ParseMovementDate(m.Date)
}

// ParseMovementDate interpreta una fecha en los formatos conocidos.
func ParseMovementDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// MovementLedger es el documento de movimientos de una planta junto a su versión observada.
type MovementLedger struct {
	Facility  Facility
	Version   int64
	Movements []Movement
}

// Find devuelve el índice del movimiento con el id dado o -1.
func (l *MovementLedger) Find(id int64) int {
	for i := range l.Movements {
		if l.Movements[i].ID == id {
			return i
		}
	}
	return -1
}

// NextID asigna max(ids de usuario)+1; las filas derivadas usan rangos propios.
func (l *MovementLedger) NextID() int64 {
	var max int64
	for _, m := range l.Movements {
		if m.Source.IsDerived() {
			continue
		}
		if m.ID > max {
			max = m.ID
		}
	}
	return max + 1
}
