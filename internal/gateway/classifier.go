// Package gateway реализует шлюз исходящих запросов клиента: подстановку
// bearer-токена в каждый запрос и классификацию входящих ответов 401.
//
// Бэкенд перегружает статус 401 двумя смыслами: "не аутентифицирован" и
// "аутентифицирован, но не имеет права на ресурс". Шлюз различает их по
// адресу конечной точки через явную таблицу, а не по самому коду статуса.
// Это единственное место, откуда допускается глобальный побочный эффект
// принудительного выхода; отдельные компоненты сессию не очищают.
package gateway

import "strings"

// Classifier решает, считать ли 401 от конечной точки мягким сигналом
// "нет права" (сессия сохраняется) или жёстким отказом аутентификации.
type Classifier struct {
	soft []string
}

// DefaultSoftEndpoints возвращает таблицу конечных точек, для которых 401 —
// нормальный ответ "права еще нет":
//
//   - /enrollments/check-access — проверка доступа без активной подписки;
//   - /enrollments/my-enrollment — запрос записи, которой может не быть.
//
// Расширение таблицы — осознанное изменение контракта, а не правка по месту.
func DefaultSoftEndpoints() []string {
	return []string{
		"/enrollments/check-access",
		"/enrollments/my-enrollment",
	}
}

// NewClassifier создает классификатор с заданной таблицей мягких конечных точек.
func NewClassifier(softEndpoints []string) *Classifier {
	return &Classifier{soft: softEndpoints}
}

// IsSoft сообщает, относится ли путь запроса к мягким конечным точкам.
func (c *Classifier) IsSoft(path string) bool {
	for _, endpoint := range c.soft {
		if strings.Contains(path, endpoint) {
			return true
		}
	}
	return false
}
