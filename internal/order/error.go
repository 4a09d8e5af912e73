package order

import "boutique-be/internal/apperr"

var (
	ErrEmptyOrder        = apperr.New(apperr.KindInvalidInput, "Aucun article dans la commande")
	ErrInvalidItem       = apperr.New(apperr.KindInvalidInput, "Article de commande invalide")
	ErrInvalidTotal      = apperr.New(apperr.KindInvalidInput, "Montant total invalide")
	ErrInvalidStatus     = apperr.New(apperr.KindInvalidInput, "Statut de commande invalide")
	ErrIllegalTransition = apperr.New(apperr.KindInvalidInput, "Changement de statut non autorisé")
	ErrOrderConflict     = apperr.New(apperr.KindInvalidInput, "La commande a été modifiée entre-temps, veuillez réessayer")
	ErrOrderNotFound     = apperr.New(apperr.KindNotFound, "Commande introuvable")
	ErrInsufficientStock = apperr.New(apperr.KindInsufficientStock, "Stock insuffisant pour un article de la commande")
)
