package inventory

import "github.com/jhoicas/crochet-api/internal/domain"

// CheckReservation implementa la regla de reserva de stock (servicio de dominio).
//
//	libre = disponibles - retenidoPorCarritos
//	falla si solicitado > libre + retenidoPorEstaLinea
//
// retenidoPorCarritos incluye la cantidad de la propia línea, por eso se suma de vuelta.
func CheckReservation(available, heldByCarts, requested, alreadyHeld int) error {
	if requested < 1 || alreadyHeld < 0 {
		return domain.ErrInvalidInput
	}
	free := available - heldByCarts
	if requested > free+alreadyHeld {
		return domain.ErrInsufficientStock
	}
	return nil
}
