package services

import (
	"net/http"

	"github.com/josmejia2401/jac-vision/internal/apierrors"
)

// Caller-visible failures. The credentials error is deliberately identical
// for unknown users and wrong passwords.
var (
	ErrInvalidCredentials = apierrors.New(http.StatusUnauthorized, "Usuario o contraseña inválidos")
	ErrAccountDeleted     = apierrors.New(http.StatusForbidden, "Tu cuenta ha sido eliminada. Contacta soporte.")
	ErrTokenExpired       = apierrors.New(http.StatusUnauthorized, "El token ha expirado")
	ErrTokenNotFound      = apierrors.New(http.StatusUnauthorized, "Token inválido o revocado")
	ErrInvalidAudience    = apierrors.New(http.StatusBadRequest, "El valor de 'audience' es inválido")
	ErrUserNotFound       = apierrors.New(http.StatusBadRequest, "Usuario no encontrado")
	ErrUserUnavailable    = apierrors.New(http.StatusBadRequest, "Usuario no disponible en este momento")
	ErrWrongPassword      = apierrors.New(http.StatusBadRequest, "La contraseña actual no es correcta")
	ErrSamePassword       = apierrors.New(http.StatusBadRequest, "La nueva contraseña no puede ser igual a la anterior")
)
