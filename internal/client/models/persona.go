// Package models contains the client-side data types exchanged with the
// DNI lookup service. Field names follow the service's wire format.
package models

import "time"

// Persona is a stored document-holder record. NroDoc is the natural key:
// an 8-digit document number, immutable after creation.
type Persona struct {
	ID                 int64      `json:"id,omitempty"`
	TipoDoc            string     `json:"tipodoc,omitempty"`
	NroDoc             string     `json:"nrodoc"`
	Nombres            string     `json:"nombres,omitempty"`
	ApellidoPaterno    string     `json:"apellido_paterno,omitempty"`
	ApellidoMaterno    string     `json:"apellido_materno,omitempty"`
	CodigoVerificacion string     `json:"codigo_verificacion,omitempty"`
	FechaRegistro      *time.Time `json:"fecha_registro,omitempty"`
	DesdeCache         bool       `json:"desde_cache,omitempty"`
}

// FullName joins the name fields the way the service displays them.
func (p Persona) FullName() string {
	s := p.Nombres
	if p.ApellidoPaterno != "" {
		s += " " + p.ApellidoPaterno
	}
	if p.ApellidoMaterno != "" {
		s += " " + p.ApellidoMaterno
	}
	return s
}
