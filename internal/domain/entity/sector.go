package entity

import "time"

// Sector lugar de almacenamiento (almacén central, cocina, barra, salón...).
// Cada tenant tiene exactamente un sector central que no se puede eliminar y recibe los desbordes.
type Sector struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	IsCentral   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
