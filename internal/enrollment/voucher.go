// Package enrollment реализует рабочий процесс подписки студента:
// отправку заявки с ваучером оплаты и административные переходы
// одобрения/отклонения, с инвалидацией зависимых чтений после мутаций.
package enrollment

import (
	"errors"
	"fmt"
	"net/http"
)

// MaxVoucherSize потолок размера ваучера в байтах (5 МБ).
const MaxVoucherSize = 5 * 1024 * 1024

// Ошибки проверки ваучера. Проверка выполняется до любого сетевого вызова,
// чтобы не тратить попытки загрузки на заведомо негодный файл.
var (
	// ErrVoucherEmpty — файл не выбран или пуст.
	ErrVoucherEmpty = errors.New("payment voucher is required")
	// ErrVoucherType — файл не является изображением допустимого типа.
	ErrVoucherType = errors.New("only JPG, PNG or WEBP images are allowed")
	// ErrVoucherTooLarge — файл превышает потолок размера.
	ErrVoucherTooLarge = errors.New("voucher file must not exceed 5MB")
)

// allowedVoucherTypes белый список MIME-типов изображения ваучера.
// jpg и jpeg определяются как один тип image/jpeg.
var allowedVoucherTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Voucher изображение-подтверждение оплаты, отправляемое вместе с заявкой.
type Voucher struct {
	Filename string
	Data     []byte
}

// Validate проверяет ваучер до сетевого вызова: тип определяется по
// содержимому файла (заявленному имени не доверяем), размер сравнивается
// с потолком включительно.
func (v Voucher) Validate() error {
	const op = "enrollment.Voucher.Validate"
	if len(v.Data) == 0 {
		return fmt.Errorf("%s: %w", op, ErrVoucherEmpty)
	}
	if len(v.Data) > MaxVoucherSize {
		return fmt.Errorf("%s: %w", op, ErrVoucherTooLarge)
	}
	contentType := http.DetectContentType(v.Data)
	if _, ok := allowedVoucherTypes[contentType]; !ok {
		return fmt.Errorf("%s: %w: got %s", op, ErrVoucherType, contentType)
	}
	return nil
}

// ContentType возвращает MIME-тип, определённый по содержимому файла.
func (v Voucher) ContentType() string {
	return http.DetectContentType(v.Data)
}
