package campaign

import "errors"

// Validation errors are reported before any request is sent.
var (
	ErrNameRequired    = errors.New("el nombre de la campaña es obligatorio")
	ErrMessageRequired = errors.New("el mensaje es obligatorio")
	ErrNoRecipients    = errors.New("no hay destinatarios seleccionados")
	ErrInvalidSchedule = errors.New("el intervalo y el máximo por hora deben ser mayores a cero")
	ErrImageType       = errors.New("tipo de imagen no permitido")
	ErrImageTooLarge   = errors.New("la imagen excede el tamaño máximo")
	ErrNotConfirmed    = errors.New("la acción requiere confirmación")
	ErrTokenMismatch   = errors.New("el texto de confirmación no coincide")
	ErrUnknownAction   = errors.New("unknown campaign action")
)
