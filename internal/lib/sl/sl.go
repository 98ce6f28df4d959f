// Package sl содержит мелкие помощники для slog, общие для клиентского ядра
// и dev-бэкенда. Ошибки логируются единообразно: всегда под ключом "error",
// рядом с op-полем вызывающего.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
// Используется во всех слоях репозитория, от шлюза до обработчиков
// dev-бэкенда:
//
//	log.Error("failed to submit enrollment", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
