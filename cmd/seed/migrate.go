package main

import (
	"context"
	"fmt"
)

// Modos del flag -migrate.
const (
	migrateUp     = "up"
	migrateDown   = "down"
	migrateStatus = "status"
)

// schemaMigrator es la parte de postgres.Migrator que usa el comando.
type schemaMigrator interface {
	Up(ctx context.Context, steps int) (int, error)
	Down(ctx context.Context, steps int) (int, error)
	Status(ctx context.Context) (int64, int, error)
}

// runMigrations ejecuta el modo pedido y devuelve un resumen para el log.
// Solo el modo up continúa con la carga de datos.
func runMigrations(ctx context.Context, m schemaMigrator, mode string, steps int) (summary string, seed bool, err error) {
	switch mode {
	case migrateUp:
		n, err := m.Up(ctx, steps)
		if err != nil {
			return "", false, fmt.Errorf("aplicar migraciones: %w", err)
		}
		return fmt.Sprintf("%d migraciones aplicadas", n), true, nil
	case migrateDown:
		n, err := m.Down(ctx, steps)
		if err != nil {
			return "", false, fmt.Errorf("revertir migraciones: %w", err)
		}
		return fmt.Sprintf("%d migraciones revertidas", n), false, nil
	case migrateStatus:
		version, count, err := m.Status(ctx)
		if err != nil {
			return "", false, fmt.Errorf("estado de migraciones: %w", err)
		}
		return fmt.Sprintf("versión %d, %d migraciones aplicadas", version, count), false, nil
	default:
		return "", false, fmt.Errorf("modo de migración desconocido %q (up|down|status)", mode)
	}
}
