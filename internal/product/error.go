package product

import "boutique-be/internal/apperr"

var ErrProductNotFound = apperr.New(apperr.KindNotFound, "Produit introuvable")
