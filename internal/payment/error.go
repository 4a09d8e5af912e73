package payment

import (
	"errors"

	"boutique-be/internal/apperr"
)

var (
	ErrProvider         = apperr.New(apperr.KindPaymentProvider, "Le service de paiement a refusé la demande")
	ErrProviderDown     = apperr.New(apperr.KindPaymentProvider, "Service de paiement indisponible, veuillez réessayer")
	ErrAlreadyPaid      = apperr.New(apperr.KindInvalidInput, "Cette commande est déjà payée")
	ErrTokenMismatch    = apperr.New(apperr.KindInvalidInput, "Ce paiement ne correspond pas à la commande")
	ErrTokenRequired    = apperr.New(apperr.KindInvalidInput, "Jeton de paiement manquant")
	ErrOrderIDRequired  = apperr.New(apperr.KindInvalidInput, "Identifiant de commande manquant")
	ErrInvalidSignature = apperr.New(apperr.KindUnauthenticated, "Signature de notification invalide")
)

// errTransient marks failures worth one retry (network errors, 5xx).
var errTransient = errors.New("paymee: transient failure")
