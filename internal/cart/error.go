package cart

import "boutique-be/internal/apperr"

var (
	ErrInsufficientStock = apperr.New(apperr.KindInsufficientStock, "Stock insuffisant pour ce produit")
	ErrProductIDRequired = apperr.New(apperr.KindInvalidInput, "L'identifiant du produit est requis")
	ErrCartBusy          = apperr.New(apperr.KindConflict, "Panier en cours de modification, veuillez réessayer")
)
