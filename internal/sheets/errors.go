package sheets

import "errors"

var (
	// ErrUserNotFound пользователь отсутствует в справочнике подписок.
	ErrUserNotFound = errors.New("user not found in directory")
	// ErrStudentNotFound студент отсутствует в клиентской таблице.
	ErrStudentNotFound = errors.New("student not found in client sheet")
)
