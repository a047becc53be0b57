package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = errors.New("неверный метод подписи токена")
	ErrInvalidToken         = errors.New("недопустимый токен")
	ErrTokenExpired         = errors.New("срок действия токена истёк")
	ErrTokenNotYetValid     = errors.New("токен ещё не активен")
	ErrTokenIsNotRefresh    = errors.New("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = errors.New("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = errors.New("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = errors.New("неверный формат заголовка авторизации")
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	ErrUnauthorized       = errors.New("неавторизован")
	ErrForbidden          = errors.New("доступ запрещён")
	ErrAccountLocked      = errors.New("аккаунт временно заблокирован")
	ErrInvalid2FAToken    = errors.New("неверный код 2FA")
	ErrChallengeNotFound  = errors.New("сессия 2FA не найдена или истекла")

	// Контекст
	ErrUserIDNotFoundInContext = errors.New("UserID не найден в контексте запроса")
	ErrUserNotFound            = errors.New("пользователь не найден")

	// Общие
	ErrNotFound                = errors.New("запись не найдена")
	ErrBadRequest              = errors.New("неверный запрос")
	ErrConflict                = errors.New("конфликт данных")
	ErrValidation              = errors.New("ошибка валидации")
	ErrInvalidTransition       = errors.New("недопустимый переход состояния")
	ErrConfirmationRequired    = errors.New("требуется явное подтверждение")
	ErrFeatureNotConfigured    = errors.New("функция не настроена")
	ErrNotImplemented          = errors.New("не реализовано")
)

// HttpError несёт HTTP-код и сообщение для клиента вместе с исходной ошибкой.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func (e *InvalidInputError) Unwrap() error { return ErrValidation }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// StatusFor сопоставляет доменную ошибку с HTTP-кодом и сообщением для клиента.
// Второй результат false, если ошибка не из нашего списка.
func StatusFor(err error) (int, string, bool) {
	var inputErr *InvalidInputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Message, true
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "Dados inválidos", true
	case errors.Is(err, ErrConfirmationRequired):
		return http.StatusBadRequest, "Esta operação exige confirmação explícita", true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, "Registro não encontrado", true
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "Conflito com um registro existente", true
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, "Operação inválida para o estado atual do item", true
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "Acesso negado", true
	case errors.Is(err, ErrAccountLocked):
		return http.StatusTooManyRequests, "Muitas tentativas de login. Tente novamente mais tarde", true
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Usuário ou senha inválidos", true
	case errors.Is(err, ErrInvalid2FAToken), errors.Is(err, ErrChallengeNotFound):
		return http.StatusUnauthorized, "Código de verificação inválido", true
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenNotYetValid),
		errors.Is(err, ErrTokenIsNotAccess),
		errors.Is(err, ErrTokenIsNotRefresh),
		errors.Is(err, ErrUserIDNotFoundInContext):
		return http.StatusUnauthorized, "Não autenticado", true
	case errors.Is(err, ErrFeatureNotConfigured):
		return http.StatusBadRequest, "Funcionalidade não configurada", true
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented, "Não implementado", true
	}
	return 0, "", false
}
