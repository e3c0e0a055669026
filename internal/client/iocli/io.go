// Package iocli абстрагирует терминал для команд клиента: вывод,
// построчный ввод и скрытый ввод токена редактора.
package iocli

//go:generate moq -out io_mock.go . IO

// IO терминал команды
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
