package user

import "boutique-be/internal/apperr"

var (
	ErrEmailExists        = apperr.New(apperr.KindInvalidInput, "Cet email est déjà utilisé")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "Email ou mot de passe incorrect")
	ErrInvalidRegister    = apperr.New(apperr.KindInvalidInput, "Nom, email et mot de passe (6 caractères minimum) sont requis")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "Utilisateur introuvable")
)
